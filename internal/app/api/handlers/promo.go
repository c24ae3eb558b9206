package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/racebio/promoter/internal/app/service/promocode"
	"github.com/racebio/promoter/internal/app/service/redemption"
	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/response"
)

// @Summary      Validate a promo code
// @Description  Read-only probe of a promo code; never changes usage counters.
// @Tags         Promo
// @Produce      json
// @Param        code query string true "promo code, case-insensitive"
// @Success      200  {object}  promocode.ValidationResult
// @Router       /api/v1/promo/validate [get]
func ApiValidatePromoCode(reg *promocode.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		if code == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing code"))
			return
		}
		res, err := reg.Validate(c.Request.Context(), code)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Redeem a promo code
// @Description  Records the redemption atomically: usage record, promo counters, commission accrual, ambassador aggregates, and the entitlement grant.
// @Tags         Promo
// @Accept       json
// @Produce      json
// @Param        request body redemption.RedeemRequest true "redemption request"
// @Success      200  {object}  redemption.RedeemResult
// @Router       /api/v1/promo/redeem [post]
func ApiRedeemPromoCode(eng *redemption.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req redemption.RedeemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.ClientMeta == nil {
			req.ClientMeta = &models.ClientMeta{}
		}
		if req.ClientMeta.IP == "" {
			req.ClientMeta.IP = c.ClientIP()
		}
		if req.ClientMeta.UserAgent == "" {
			req.ClientMeta.UserAgent = c.Request.UserAgent()
		}

		res, err := eng.Redeem(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPromoRoutes(r gin.IRouter, reg *promocode.Registry, eng *redemption.Engine) {
	r.GET("/promo/validate", ApiValidatePromoCode(reg))
	r.POST("/promo/redeem", ApiRedeemPromoCode(eng))
}
