package middleware

import (
	"net/http"
	"strings"

	"lesson-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminKey middleware protects administrative routes. The caller presents a
// bearer key which is compared against the configured bcrypt hash.
func AdminKey(config utils.AdminConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.KeyHash == "" {
				logger.Error("Admin key hash not configured, rejecting admin request",
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Admin access not configured")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			key := parts[1]

			if err := bcrypt.CompareHashAndPassword([]byte(config.KeyHash), []byte(key)); err != nil {
				logger.Warn("Invalid admin key",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr),
				)
				utils.ResponseUnauthorized(w, "Invalid admin key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
