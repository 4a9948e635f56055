package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-pet-photo-service/config"
	"github.com/tnqbao/gau-pet-photo-service/http/controller"
	"github.com/tnqbao/gau-pet-photo-service/http/route"
	infraPkg "github.com/tnqbao/gau-pet-photo-service/infra"
	"github.com/tnqbao/gau-pet-photo-service/repository"
	"github.com/tnqbao/gau-pet-photo-service/service"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	if cfg.EnvConfig.Environment.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	infra := infraPkg.InitInfra(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		infra.Close(ctx)
	}()

	repo := repository.InitRepository(infra)
	photoService := service.InitPhotoService(cfg, infra, repo)

	ctrl := controller.NewController(cfg, infra, repo, photoService)

	router := routes.SetupRouter(ctrl)

	addr := ":" + cfg.EnvConfig.HTTPPort
	log.Printf("HTTP Server started on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
