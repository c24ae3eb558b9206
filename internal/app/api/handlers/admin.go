package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ambsvc "github.com/racebio/promoter/internal/app/service/ambassador"
	"github.com/racebio/promoter/internal/app/service/statistics"
	"github.com/racebio/promoter/pkg/response"
	"github.com/racebio/promoter/pkg/types"
)

// @Summary      Create Ambassador (Admin)
// @Description  Registers a referral partner. Commission rate defaults to 20, type to recurring.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ambassador.CreateRequest true "create ambassador request"
// @Success      200  {object}  models.Ambassador
// @Router       /api/v1/admin/ambassadors [post]
func ApiCreateAmbassador(svc *ambsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ambsvc.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		amb, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(amb))
	}
}

// @Summary      List Ambassadors (Admin)
// @Description  Lists ambassadors with nested promo codes and count summaries; optional status filter.
// @Tags         Admin
// @Produce      json
// @Param        status query string false "active|inactive"
// @Success      200  {array}  ambassador.ListItem
// @Router       /api/v1/admin/ambassadors [get]
func ApiListAmbassadors(svc *ambsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := types.AmbassadorStatus(c.Query("status"))
		if status != "" && status != types.AmbassadorStatusActive && status != types.AmbassadorStatusInactive {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid status filter"))
			return
		}
		items, err := svc.List(c.Request.Context(), status)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Reconcile Ambassador Aggregates (Admin)
// @Description  Recomputes aggregate counters from source records, reports drift and optionally repairs it.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "ambassador id"
// @Param        repair query bool false "overwrite the aggregate row with recomputed values"
// @Success      200  {object}  ambassador.ReconcileResult
// @Router       /api/v1/admin/ambassadors/{id}/reconcile [post]
func ApiReconcileAmbassador(svc *ambsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		repair := c.Query("repair") == "true"
		res, err := svc.Reconcile(c.Request.Context(), id, repair)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Mark Commission Paid (Admin)
// @Description  Transitions a commission from pending to paid. Amounts and aggregates are never altered.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "commission id"
// @Success      200  {object}  models.Commission
// @Router       /api/v1/admin/commissions/{id}/mark_paid [post]
func ApiMarkCommissionPaid(svc *ambsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.MarkCommissionPaid(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Promo Usages (Admin)
// @Description  Paginated, filterable listing of redemption records.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ambassador.ScanUsagesRequest true "listing request with filters, pagination and sorting"
// @Success      200  {object}  ambassador.ScanUsagesResponse
// @Router       /api/v1/admin/list_promo_usages [post]
func ApiListPromoUsages(svc *ambsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ambsvc.ScanUsagesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanUsages(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get Redemption Statistics (Admin)
// @Description  Daily redemption counts, revenue and commission over a date range.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.RedemptionStatisticRequest true "statistic request"
// @Success      200  {object}  statistics.RedemptionStatisticResponse
// @Router       /api/v1/admin/get_redemption_statistic [post]
func ApiGetRedemptionStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.RedemptionStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetDailyRedemptionStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, amb *ambsvc.Service, stats *statistics.Service) {
	r.POST("/ambassadors", ApiCreateAmbassador(amb))
	r.GET("/ambassadors", ApiListAmbassadors(amb))
	r.POST("/ambassadors/:id/reconcile", ApiReconcileAmbassador(amb))
	r.POST("/commissions/:id/mark_paid", ApiMarkCommissionPaid(amb))
	r.POST("/list_promo_usages", ApiListPromoUsages(amb))
	r.POST("/get_redemption_statistic", ApiGetRedemptionStatistic(stats))
}
