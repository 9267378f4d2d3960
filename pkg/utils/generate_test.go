package utils

import (
	"regexp"
	"testing"
	"time"
)

func TestGenerateOrderCode(t *testing.T) {
	pattern := regexp.MustCompile(`^LES-\d{8}-[A-Z0-9]{5}$`)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("format", func(t *testing.T) {
		code := GenerateOrderCode(now)
		if !pattern.MatchString(code) {
			t.Errorf("code %q does not match LES-YYYYMMDD-XXXXX", code)
		}
		if code[4:12] != "20250301" {
			t.Errorf("date segment = %q, want 20250301", code[4:12])
		}
	})

	t.Run("suffix varies", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			seen[GenerateOrderCode(now)] = true
		}
		if len(seen) < 2 {
			t.Error("expected random suffixes, got identical codes")
		}
	})

	t.Run("suffix draws from the whole alphabet", func(t *testing.T) {
		seen := make(map[byte]bool)
		for i := 0; i < 500; i++ {
			for _, c := range []byte(GenerateOrderCode(now)[13:]) {
				seen[c] = true
			}
		}
		// 2500 uniform draws over 36 characters miss one only with
		// vanishing probability.
		for _, c := range []byte(codeAlphabet) {
			if !seen[c] {
				t.Errorf("character %q never drawn", c)
			}
		}
	})
}

func TestGenerateUUID(t *testing.T) {
	a := GenerateUUID()
	b := GenerateUUID()
	if a == b {
		t.Error("expected distinct UUIDs")
	}
}
