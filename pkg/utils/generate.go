package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

// ==================== ORDER CODE ====================

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderCode creates a human-readable order code.
// Format: LES-YYYYMMDD-XXXXX where X is an uppercase alphanumeric character.
func GenerateOrderCode(now time.Time) string {
	datePart := now.Format("20060102")
	return fmt.Sprintf("LES-%s-%s", datePart, randomSuffix(5))
}

func randomSuffix(length int) string {
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))

	buf := make([]byte, length)
	for i := range buf {
		// rand.Int draws uniformly, so no character is favored by the
		// alphabet size not dividing 256.
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("read random bytes: %v", err))
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}
