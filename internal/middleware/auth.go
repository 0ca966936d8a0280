package middleware

import (
	"crypto/subtle"

	"github.com/GoPolymarket/gaslessgate/internal/config"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

const (
	HeaderGatewayKey = "X-Gateway-Key"
	ContextClientKey = "client_key"

	anonymousClient = "anonymous"
)

// AuthMiddleware checks the gateway key when one is required and stores a
// masked client identifier for rate limiting, idempotency and audit.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderGatewayKey)
		required := cfg != nil && cfg.Auth.RequireAPIKey

		if required {
			if apiKey == "" {
				c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing API key", nil))
				c.Abort()
				return
			}
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.Auth.APIKey)) != 1 {
				c.Error(apperrors.New(apperrors.ErrAuthFailed, "invalid API key", nil))
				c.Abort()
				return
			}
		}

		c.Set(ContextClientKey, MaskKey(apiKey))
		c.Next()
	}
}

// ClientKey returns the masked client identifier set by AuthMiddleware.
func ClientKey(c *gin.Context) string {
	if v, ok := c.Get(ContextClientKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return anonymousClient
}

// MaskKey keeps the first and last four characters of a key.
func MaskKey(key string) string {
	switch {
	case key == "":
		return anonymousClient
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "****" + key[len(key)-4:]
	}
}
