package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-pet-photo-service/config"
)

type Middlewares struct {
	CORSMiddleware        gin.HandlerFunc
	AuthMiddleware        gin.HandlerFunc
	ServiceAuthMiddleware gin.HandlerFunc
}

func NewMiddlewares(cfg *config.Config) (*Middlewares, error) {
	return &Middlewares{
		CORSMiddleware:        CORSMiddleware(cfg.EnvConfig),
		AuthMiddleware:        AuthMiddleware(cfg.EnvConfig),
		ServiceAuthMiddleware: ServiceAuthMiddleware(cfg.EnvConfig),
	}, nil
}
