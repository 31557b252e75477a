package loader

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fatflowers/saasgen/internal/app/service/generator"
	"github.com/fatflowers/saasgen/internal/models"
	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/gormlog"
	"github.com/fatflowers/saasgen/pkg/types"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlog.New(zaptest.NewLogger(t).Sugar(), gormlogger.Warn),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newLoader(t *testing.T, db *gorm.DB, mode types.LoadMode) *Loader {
	t.Helper()
	cfg := config.Default()
	cfg.Database.BatchSize = 100
	cfg.Database.LoadMode = mode
	l, err := New(zaptest.NewLogger(t).Sugar(), db, cfg)
	require.NoError(t, err)
	return l
}

func generated(t *testing.T, customers int) *models.Dataset {
	t.Helper()
	p := generator.DefaultParams()
	p.Customers = customers
	ds, err := generator.New(zaptest.NewLogger(t).Sugar(), nil).Generate(context.Background(), p)
	require.NoError(t, err)
	return ds
}

func TestNew_InvalidMode(t *testing.T) {
	cfg := config.Default()
	cfg.Database.LoadMode = "append"
	_, err := New(zaptest.NewLogger(t).Sugar(), setupDB(t), cfg)
	require.Error(t, err)
}

func TestLoader_Replace(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	l := newLoader(t, db, types.LoadModeReplace)
	ds := generated(t, 120)

	v, err := l.Load(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, int64(120), v.Customers)
	assert.Equal(t, int64(120), v.Subscriptions)
	assert.Equal(t, int64(len(ds.Payments)), v.Payments)
	assert.Equal(t, int64(36), v.Costs)
	assert.Zero(t, v.OrphanSubscriptions)
	assert.Zero(t, v.OrphanPayments)

	// a second replace load starts from empty tables
	v, err = l.Load(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, int64(120), v.Customers)

	want := ds.Subscriptions[7]
	var got models.Subscription
	require.NoError(t, db.First(&got, "subscription_id = ?", want.ID).Error)
	assert.Equal(t, want.CustomerID, got.CustomerID)
	assert.Equal(t, want.StartDate, got.StartDate)
	assert.Equal(t, want.EndDate, got.EndDate)
	assert.True(t, want.MonthlyPrice.Equal(got.MonthlyPrice))

	var cost models.Cost
	require.NoError(t, db.First(&cost, "month = ?", "2022-01").Error)
	assert.True(t, ds.Costs[0].MarketingCost.Equal(cost.MarketingCost))
}

func TestLoader_Upsert(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	l := newLoader(t, db, types.LoadModeUpsert)
	ds := generated(t, 40)

	_, err := l.Load(ctx, ds)
	require.NoError(t, err)

	ds.Customers[0].Country = "NZ"
	ds.Costs[0].InfraCost = decimal.NewFromInt(1)
	v, err := l.Load(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, int64(40), v.Customers)
	assert.Equal(t, int64(len(ds.Payments)), v.Payments)

	var c models.Customer
	require.NoError(t, db.First(&c, "customer_id = ?", ds.Customers[0].ID).Error)
	assert.Equal(t, "NZ", c.Country)
	var cost models.Cost
	require.NoError(t, db.First(&cost, "month = ?", ds.Costs[0].Month).Error)
	assert.True(t, decimal.NewFromInt(1).Equal(cost.InfraCost))
}

func TestLoader_VerifyOrphans(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	l := newLoader(t, db, types.LoadModeReplace)
	ds := generated(t, 5)
	_, err := l.Load(ctx, ds)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Payment{
		ID:          "P9999999",
		CustomerID:  "C999999",
		PaymentDate: types.MustParseDate("2022-02-01"),
		Amount:      decimal.RequireFromString("29.99"),
		Status:      types.PaymentStatusSuccess,
	}).Error)

	v, err := l.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.OrphanPayments)
	assert.Zero(t, v.OrphanSubscriptions)

	err = v.Check(ds, types.LoadModeReplace)
	require.ErrorIs(t, err, ErrVerificationFailed)
	assert.Contains(t, err.Error(), "payments has")
	assert.Contains(t, err.Error(), "reference missing customers")
	// upsert tolerates extra rows but not orphans
	require.ErrorIs(t, v.Check(ds, types.LoadModeUpsert), ErrVerificationFailed)
}

func TestLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newLoader(t, setupDB(t), types.LoadModeReplace)
	_, err := l.Load(ctx, generated(t, 5))
	require.Error(t, err)
}
