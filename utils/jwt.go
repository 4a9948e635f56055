package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-pet-photo-service/config"
)

// ExtractToken reads the access token from the access_token cookie, falling
// back to an "Authorization: Bearer" header. Empty means no token.
func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// ParseToken verifies an HMAC-signed JWT against JWT_SECRET_KEY. Tokens
// signed with any other algorithm are rejected.
func ParseToken(tokenString string, cfg *config.EnvConfig) (*jwt.Token, error) {
	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	secret := []byte(cfg.JWT.SecretKey)
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// InjectClaimsToContext copies user_id (a UUID) and the optional permission
// claim onto the gin context.
func InjectClaimsToContext(c *gin.Context, claims jwt.MapClaims) error {
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return errors.New("invalid user_id format")
	}
	if _, err := uuid.Parse(userIDStr); err != nil {
		return errors.New("invalid user_id format")
	}
	c.Set("user_id", userIDStr)

	permission, _ := claims["permission"].(string)
	c.Set("permission", permission)
	return nil
}
