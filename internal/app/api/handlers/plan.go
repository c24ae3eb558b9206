package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/racebio/promoter/internal/app/service/redemption"
	"github.com/racebio/promoter/pkg/response"
)

// @Summary      Upgrade plan via a static promo code
// @Description  Legacy direct-apply path: a configured code sets the account plan outright, writing no ledger records.
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        request body redemption.DirectApplyRequest true "plan upgrade request"
// @Success      200  {object}  redemption.DirectApplyResult
// @Router       /api/v1/plan/upgrade [post]
func ApiUpgradePlan(eng *redemption.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req redemption.DirectApplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := eng.DirectApply(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPlanRoutes(r gin.IRouter, eng *redemption.Engine) {
	r.POST("/plan/upgrade", ApiUpgradePlan(eng))
}
