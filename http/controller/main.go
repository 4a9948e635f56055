package controller

import (
	"context"
	"errors"

	"github.com/tnqbao/gau-pet-photo-service/config"
	"github.com/tnqbao/gau-pet-photo-service/infra"
	"github.com/tnqbao/gau-pet-photo-service/repository"
	"github.com/tnqbao/gau-pet-photo-service/service"
)

// HealthCheckFunc probes one dependency.
type HealthCheckFunc func(ctx context.Context) error

type Controller struct {
	Config       *config.Config
	Infra        *infra.Infra
	Repository   *repository.Repository
	PhotoService *service.PhotoService
	HealthChecks map[string]HealthCheckFunc
}

func NewController(cfg *config.Config, infraClient *infra.Infra, repo *repository.Repository, photoService *service.PhotoService) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	if photoService == nil {
		panic("Failed to initialize PhotoService")
	}
	if infraClient.Logger == nil {
		infraClient.Logger = infra.NewNopLogger()
	}
	return &Controller{
		Config:       cfg,
		Infra:        infraClient,
		Repository:   repo,
		PhotoService: photoService,
		HealthChecks: healthChecks(infraClient, cfg.EnvConfig.Photo.Bucket),
	}
}

func healthChecks(i *infra.Infra, bucket string) map[string]HealthCheckFunc {
	checks := map[string]HealthCheckFunc{}
	if i.Postgres != nil {
		checks["postgres"] = i.Postgres.Ping
	}
	if i.Redis != nil {
		checks["redis"] = i.Redis.Ping
	}
	if i.Minio != nil {
		checks["minio"] = func(ctx context.Context) error {
			return i.Minio.HealthCheck(ctx, bucket)
		}
	}
	if i.RabbitMQ != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if i.RabbitMQ.Connection == nil || i.RabbitMQ.Connection.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}
