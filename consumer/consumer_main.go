package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-pet-photo-service/config"
	"github.com/tnqbao/gau-pet-photo-service/consumer/worker"
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
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)
	photoService := service.InitPhotoService(cfg, infra, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ownerConsumer := worker.NewOwnerConsumer(infra.RabbitMQ.Channel, infra.Logger, photoService)
	if err := ownerConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Owner consumer: %v", err)
		log.Fatalf("Failed to start Owner consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	infra.Close(shutdownCtx)

	infra.Logger.InfoWithContextf(shutdownCtx, "Consumer exited properly")
}
