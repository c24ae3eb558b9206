package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func routeSet(r *gin.Engine) map[string]bool {
	set := make(map[string]bool)
	for _, rt := range r.Routes() {
		set[rt.Method+" "+rt.Path] = true
	}
	return set
}

func TestRegisterPromoRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	RegisterPromoRoutes(g, nil, nil)
	RegisterPlanRoutes(g, nil)

	routes := routeSet(r)
	require.True(t, routes["GET /api/v1/promo/validate"])
	require.True(t, routes["POST /api/v1/promo/redeem"])
	require.True(t, routes["POST /api/v1/plan/upgrade"])
}

func TestRegisterAdminRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/admin")
	RegisterAdminRoutes(g, nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/admin/ambassadors"])
	require.True(t, routes["GET /api/v1/admin/ambassadors"])
	require.True(t, routes["POST /api/v1/admin/ambassadors/:id/reconcile"])
	require.True(t, routes["POST /api/v1/admin/commissions/:id/mark_paid"])
	require.True(t, routes["POST /api/v1/admin/list_promo_usages"])
	require.True(t, routes["POST /api/v1/admin/get_redemption_statistic"])
}

func TestRegisterSchedulerRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/scheduler")
	RegisterSchedulerRoutes(g, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/scheduler/trial_expiration_sweep"])
}

func TestRegisterHealthRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHealthRoutes(r)

	routes := routeSet(r)
	require.True(t, routes["GET /healthz"])
}
