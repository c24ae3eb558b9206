package redemption

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/racebio/promoter/internal/models"
	"github.com/racebio/promoter/pkg/apperr"
	"github.com/racebio/promoter/pkg/config"
	"github.com/racebio/promoter/pkg/tool"
	"github.com/racebio/promoter/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Ambassador{},
		&models.PromoCode{},
		&models.PromoCodeUsage{},
		&models.Commission{},
		&models.CommissionLog{},
	))
	return db
}

func newTestEngine(t *testing.T, cfg *config.Config) (*Engine, *gorm.DB) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{Promo: config.PromoConfig{EnforceMaxUses: true}}
	}
	db := newTestDB(t)
	return NewEngine(cfg, db, zap.NewNop().Sugar()), db
}

type fixture struct {
	ambassador *models.Ambassador
	promo      *models.PromoCode
	account    *models.Account
}

func seedFixture(t *testing.T, db *gorm.DB, mutate func(*fixture)) *fixture {
	t.Helper()
	f := &fixture{
		ambassador: &models.Ambassador{
			ID:             tool.GenerateUUIDV7(),
			Name:           "Jamie Runner",
			Email:          "jamie@example.com",
			CommissionRate: 20,
			CommissionType: types.CommissionTypeRecurring,
			Status:         types.AmbassadorStatusActive,
		},
		account: &models.Account{
			ID:   tool.GenerateUUIDV7(),
			Plan: types.InternalPlanFree,
		},
	}
	f.promo = &models.PromoCode{
		ID:           tool.GenerateUUIDV7(),
		Code:         "JAMIE20",
		AmbassadorID: f.ambassador.ID,
		Plan:         types.ExternalPlanPro,
		Active:       true,
	}
	if mutate != nil {
		mutate(f)
	}
	require.NoError(t, db.Create(f.ambassador).Error)
	require.NoError(t, db.Create(f.promo).Error)
	require.NoError(t, db.Create(f.account).Error)
	return f
}

func redeemReq(f *fixture) *RedeemRequest {
	return &RedeemRequest{
		PromoCodeID:    f.promo.ID,
		AccountID:      f.account.ID,
		PlanType:       types.ExternalPlanPro,
		BillingCycle:   types.BillingCycleMonthly,
		OriginalAmount: 120,
		DiscountAmount: 20,
		FinalAmount:    100,
	}
}

func TestRedeem_RecordsAllFourWrites(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, nil)

	res, err := eng.Redeem(context.Background(), redeemReq(f))
	require.NoError(t, err)
	require.NotNil(t, res.Usage)
	require.NotNil(t, res.Commission)

	var pc models.PromoCode
	require.NoError(t, db.First(&pc, "id = ?", f.promo.ID).Error)
	assert.EqualValues(t, 1, pc.CurrentUses)
	assert.InDelta(t, 100, pc.TotalRevenue, 1e-9)

	var amb models.Ambassador
	require.NoError(t, db.First(&amb, "id = ?", f.ambassador.ID).Error)
	assert.EqualValues(t, 1, amb.TotalReferrals)
	assert.InDelta(t, 100, amb.TotalRevenue, 1e-9)
	assert.InDelta(t, 20, amb.TotalCommission, 1e-9)

	assert.Equal(t, res.Usage.ID, res.Commission.UsageID)
	assert.Equal(t, types.CommissionStatusPending, res.Commission.Status)
	assert.Equal(t, tool.AccountingPeriod(time.Now()), res.Commission.Period)
}

func TestRedeem_CommissionMathAndRateSnapshot(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, nil)

	first, err := eng.Redeem(context.Background(), redeemReq(f))
	require.NoError(t, err)
	assert.InDelta(t, 20.0, first.Commission.Amount, 1e-9)
	assert.InDelta(t, 20.0, first.Commission.RateSnapshot, 1e-9)

	// Raising the ambassador's rate must not touch the first commission.
	require.NoError(t, db.Model(&models.Ambassador{}).Where("id = ?", f.ambassador.ID).
		Update("commission_rate", 30).Error)

	second, err := eng.Redeem(context.Background(), redeemReq(f))
	require.NoError(t, err)
	assert.InDelta(t, 30.0, second.Commission.Amount, 1e-9)
	assert.InDelta(t, 30.0, second.Commission.RateSnapshot, 1e-9)

	var persisted models.Commission
	require.NoError(t, db.First(&persisted, "id = ?", first.Commission.ID).Error)
	assert.InDelta(t, 20.0, persisted.Amount, 1e-9)
	assert.InDelta(t, 20.0, persisted.RateSnapshot, 1e-9)
}

func TestRedeem_AggregateConsistencyOverManyRedemptions(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, nil)

	const n = 5
	var wantRevenue, wantCommission float64
	for i := 0; i < n; i++ {
		req := redeemReq(f)
		req.FinalAmount = float64(50 + i*10)
		req.OriginalAmount = req.FinalAmount + req.DiscountAmount
		res, err := eng.Redeem(context.Background(), req)
		require.NoError(t, err)
		wantRevenue += req.FinalAmount
		wantCommission += res.Commission.Amount
	}

	var amb models.Ambassador
	require.NoError(t, db.First(&amb, "id = ?", f.ambassador.ID).Error)
	assert.EqualValues(t, n, amb.TotalReferrals)
	assert.InDelta(t, wantRevenue, amb.TotalRevenue, 1e-9)
	assert.InDelta(t, wantCommission, amb.TotalCommission, 1e-9)

	var sum float64
	require.NoError(t, db.Model(&models.Commission{}).
		Where("ambassador_id = ?", amb.ID).
		Select("coalesce(sum(amount), 0)").Scan(&sum).Error)
	assert.InDelta(t, sum, amb.TotalCommission, 1e-9)
}

func TestRedeem_AtomicRollbackOnCommissionFailure(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, nil)

	eng.commissionInsertHook = func() error { return errors.New("commission store down") }

	_, err := eng.Redeem(context.Background(), redeemReq(f))
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrPersistence))

	var usageCount int64
	require.NoError(t, db.Model(&models.PromoCodeUsage{}).Count(&usageCount).Error)
	assert.Zero(t, usageCount)

	var pc models.PromoCode
	require.NoError(t, db.First(&pc, "id = ?", f.promo.ID).Error)
	assert.Zero(t, pc.CurrentUses)
	assert.Zero(t, pc.TotalRevenue)

	var amb models.Ambassador
	require.NoError(t, db.First(&amb, "id = ?", f.ambassador.ID).Error)
	assert.Zero(t, amb.TotalReferrals)
	assert.Zero(t, amb.TotalRevenue)
	assert.Zero(t, amb.TotalCommission)

	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", f.account.ID).Error)
	assert.Equal(t, types.InternalPlanFree, acct.Plan)
}

func TestRedeem_MaxUsesEnforced(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	one := int64(1)
	f := seedFixture(t, db, func(f *fixture) { f.promo.MaxUses = &one })

	_, err := eng.Redeem(context.Background(), redeemReq(f))
	require.NoError(t, err)

	_, err = eng.Redeem(context.Background(), redeemReq(f))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	var pc models.PromoCode
	require.NoError(t, db.First(&pc, "id = ?", f.promo.ID).Error)
	assert.EqualValues(t, 1, pc.CurrentUses)
}

func TestRedeem_MaxUsesAdvisoryWhenDisabled(t *testing.T) {
	cfg := &config.Config{Promo: config.PromoConfig{EnforceMaxUses: false}}
	eng, db := newTestEngine(t, cfg)
	one := int64(1)
	f := seedFixture(t, db, func(f *fixture) { f.promo.MaxUses = &one })

	_, err := eng.Redeem(context.Background(), redeemReq(f))
	require.NoError(t, err)
	_, err = eng.Redeem(context.Background(), redeemReq(f))
	require.NoError(t, err)

	var pc models.PromoCode
	require.NoError(t, db.First(&pc, "id = ?", f.promo.ID).Error)
	assert.EqualValues(t, 2, pc.CurrentUses)
}

func TestRedeem_InactiveCodeRejected(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, func(f *fixture) { f.promo.Active = false })

	_, err := eng.Redeem(context.Background(), redeemReq(f))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestRedeem_UnknownPromoAndAccount(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, nil)

	req := redeemReq(f)
	req.PromoCodeID = tool.GenerateUUIDV7()
	_, err := eng.Redeem(context.Background(), req)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	req = redeemReq(f)
	req.AccountID = tool.GenerateUUIDV7()
	_, err = eng.Redeem(context.Background(), req)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRedeem_ValidationErrors(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, nil)

	tests := []struct {
		name   string
		mutate func(*RedeemRequest)
	}{
		{"missing promo id", func(r *RedeemRequest) { r.PromoCodeID = "" }},
		{"missing account id", func(r *RedeemRequest) { r.AccountID = "" }},
		{"bad plan type", func(r *RedeemRequest) { r.PlanType = "PLATINUM" }},
		{"bad billing cycle", func(r *RedeemRequest) { r.BillingCycle = "weekly" }},
		{"zero final amount", func(r *RedeemRequest) { r.FinalAmount = 0 }},
		{"negative discount", func(r *RedeemRequest) { r.DiscountAmount = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := redeemReq(f)
			tt.mutate(req)
			_, err := eng.Redeem(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
		})
	}

	var usageCount int64
	require.NoError(t, db.Model(&models.PromoCodeUsage{}).Count(&usageCount).Error)
	assert.Zero(t, usageCount)
}

func TestRedeem_IdempotencyKeyConflict(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, nil)

	key := "client-retry-1"
	req := redeemReq(f)
	req.IdempotencyKey = &key
	_, err := eng.Redeem(context.Background(), req)
	require.NoError(t, err)

	req = redeemReq(f)
	req.IdempotencyKey = &key
	_, err = eng.Redeem(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	var usageCount int64
	require.NoError(t, db.Model(&models.PromoCodeUsage{}).Count(&usageCount).Error)
	assert.EqualValues(t, 1, usageCount)
}

func TestRedeem_IdempotencyKeyRaceMapsToConflict(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, nil)

	// A concurrent retry with the same key lands between the count pre-check
	// and the usage insert; the unique index rejects the insert and the
	// caller must still see a conflict, not a persistence failure.
	key := "client-retry-2"
	eng.usageInsertHook = func(tx *gorm.DB) error {
		return tx.Create(&models.PromoCodeUsage{
			ID:             tool.GenerateUUIDV7(),
			PromoCodeID:    f.promo.ID,
			AccountID:      f.account.ID,
			AmbassadorID:   f.ambassador.ID,
			Plan:           types.ExternalPlanPro,
			BillingCycle:   types.BillingCycleMonthly,
			OriginalAmount: 120,
			DiscountAmount: 20,
			FinalAmount:    100,
			IdempotencyKey: &key,
		}).Error
	}

	req := redeemReq(f)
	req.IdempotencyKey = &key
	_, err := eng.Redeem(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.False(t, errors.Is(err, apperr.ErrPersistence))
}

func TestRedeem_GrantsTrialEntitlement(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	days := 14
	f := seedFixture(t, db, func(f *fixture) { f.promo.DurationDays = &days })

	fixedNow := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	eng.now = func() time.Time { return fixedNow }

	_, err := eng.Redeem(context.Background(), redeemReq(f))
	require.NoError(t, err)

	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", f.account.ID).Error)
	assert.Equal(t, types.InternalPlanCoach, acct.Plan)
	require.NotNil(t, acct.TrialEndsAt)
	assert.WithinDuration(t, fixedNow.Add(14*24*time.Hour), *acct.TrialEndsAt, time.Second)
	require.NotNil(t, acct.TrialPlan)
	assert.Equal(t, types.ExternalPlanPro, *acct.TrialPlan)
}

func TestRedeem_PermanentGrantLeavesTrialClear(t *testing.T) {
	eng, db := newTestEngine(t, nil)
	f := seedFixture(t, db, func(f *fixture) { f.promo.Plan = types.ExternalPlanElite })

	req := redeemReq(f)
	req.PlanType = types.ExternalPlanElite
	_, err := eng.Redeem(context.Background(), req)
	require.NoError(t, err)

	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", f.account.ID).Error)
	assert.Equal(t, types.InternalPlanAthletePro, acct.Plan)
	assert.Nil(t, acct.TrialEndsAt)
	assert.Nil(t, acct.TrialPlan)
}
