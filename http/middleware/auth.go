package middlewares

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tnqbao/gau-pet-photo-service/config"
	"github.com/tnqbao/gau-pet-photo-service/utils"
)

const (
	// TimestampTolerance bounds the clock skew accepted on signed requests, in seconds.
	TimestampTolerance = 300
)

// AuthMiddleware accepts a bearer JWT (header or access_token cookie).
func AuthMiddleware(cfg *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := utils.ExtractToken(c)
		if tokenStr == "" {
			utils.JSON401(c, "Authorization token is required")
			return
		}
		handleJWTAuth(c, cfg, tokenStr)
	}
}

// ServiceAuthMiddleware guards endpoints other services call. Either a bearer
// JWT or an HMAC signature made with the shared internal secret is accepted:
//
//	Authorization: HMAC <caller>:<hex signature>
//	X-Timestamp:   <unix seconds>
func ServiceAuthMiddleware(cfg *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		switch {
		case authHeader == "":
			utils.JSON401(c, "Authorization header is required")
		case strings.HasPrefix(authHeader, "Bearer "):
			handleJWTAuth(c, cfg, strings.TrimPrefix(authHeader, "Bearer "))
		case strings.HasPrefix(authHeader, "HMAC "):
			handleHMACAuth(c, cfg, strings.TrimPrefix(authHeader, "HMAC "))
		default:
			utils.JSON401(c, "Invalid authorization type. Use 'Bearer' or 'HMAC'")
		}
	}
}

func handleJWTAuth(c *gin.Context, cfg *config.EnvConfig, tokenStr string) {
	if tokenStr == "" {
		utils.JSON401(c, "Invalid Bearer token")
		return
	}

	parsedToken, err := utils.ParseToken(tokenStr, cfg)
	if err != nil || !parsedToken.Valid {
		utils.JSON401(c, "Invalid or expired token")
		return
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		utils.JSON401(c, "Invalid token claims")
		return
	}
	if err := utils.InjectClaimsToContext(c, claims); err != nil {
		utils.JSON401(c, "Invalid claims")
		return
	}
	c.Set("auth_method", "jwt")

	c.Next()
}

func handleHMACAuth(c *gin.Context, cfg *config.EnvConfig, value string) {
	if cfg.Internal.HMACSecret == "" {
		utils.JSON401(c, "HMAC authentication is disabled")
		return
	}

	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		utils.JSON401(c, "Invalid HMAC authorization format. Expected: HMAC <caller>:<signature>")
		return
	}
	caller, clientSignature := parts[0], parts[1]

	timestamp, err := strconv.ParseInt(c.GetHeader("X-Timestamp"), 10, 64)
	if err != nil {
		utils.JSON401(c, "X-Timestamp header is required")
		return
	}
	if utils.Abs(time.Now().Unix()-timestamp) > TimestampTolerance {
		utils.JSON401(c, "Request timestamp expired")
		return
	}

	var body []byte
	if c.Request.Body != nil {
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			utils.JSON400(c, "Failed to read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	expected := utils.SignRequest(cfg.Internal.HMACSecret, c.Request.Method, c.Request.URL.Path, timestamp, body)
	if !utils.SecureCompare(expected, clientSignature) {
		utils.JSON401(c, "Invalid signature")
		return
	}

	c.Set("caller", caller)
	c.Set("auth_method", "hmac")

	c.Next()
}
