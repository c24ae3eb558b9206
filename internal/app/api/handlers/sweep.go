package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/racebio/promoter/internal/app/service/trialsweep"
	"github.com/racebio/promoter/pkg/response"
)

// @Summary      Run Trial Expiration Sweep (Scheduler)
// @Description  Reverts every account whose trial has expired back to the free tier. Idempotent; safe to retry.
// @Tags         Scheduler
// @Produce      json
// @Param        X-Sweep-Token header string false "shared scheduler secret"
// @Success      200  {object}  trialsweep.Result
// @Router       /api/v1/scheduler/trial_expiration_sweep [post]
func ApiRunTrialExpirationSweep(svc *trialsweep.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterSchedulerRoutes(r gin.IRouter, svc *trialsweep.Service) {
	r.POST("/trial_expiration_sweep", ApiRunTrialExpirationSweep(svc))
}
