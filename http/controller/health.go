package controller

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-pet-photo-service/http/controller/dto"
	"github.com/tnqbao/gau-pet-photo-service/utils"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 3 * time.Second

// HealthCheck probes every dependency concurrently. One failing probe marks the
// service unavailable but the others still report.
func (ctrl *Controller) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		g      errgroup.Group
		checks = make(map[string]string, len(ctrl.HealthChecks))
	)
	for name, check := range ctrl.HealthChecks {
		name, check := name, check
		g.Go(func() error {
			status := "ok"
			err := check(ctx)
			if err != nil {
				status = err.Error()
				ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Health] %s check failed", name)
			}
			mu.Lock()
			checks[name] = status
			mu.Unlock()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		utils.JSON503(c, dto.HealthResponseDTO{Status: "unavailable", Checks: checks})
		return
	}
	utils.JSON200(c, dto.HealthResponseDTO{Status: "ok", Checks: checks})
}
