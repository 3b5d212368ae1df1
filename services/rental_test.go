package services

import (
	"testing"
	"time"

	"autohive/models"

	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d.UTC()
}

func TestCalculateRentalCost_Basic(t *testing.T) {
	// 3 天、日租金 100：無折扣，稅 10%
	cost, err := CalculateRentalCost(100, date(t, "2025-12-01"), date(t, "2025-12-04"))
	require.NoError(t, err)
	require.Equal(t, 3, cost.Days)
	require.Equal(t, 300.0, cost.Subtotal)
	require.Equal(t, 0.0, cost.Discount)
	require.Equal(t, 30.0, cost.Tax)
	require.Equal(t, 330.0, cost.Total)
}

func TestCalculateRentalCost_WeeklyDiscount(t *testing.T) {
	// 7 天觸發 9 折
	cost, err := CalculateRentalCost(100, date(t, "2025-12-01"), date(t, "2025-12-08"))
	require.NoError(t, err)
	require.Equal(t, 7, cost.Days)
	require.Equal(t, 700.0, cost.Subtotal)
	require.Equal(t, 70.0, cost.Discount)
	require.Equal(t, 63.0, cost.Tax)
	require.Equal(t, 693.0, cost.Total)
}

func TestCalculateRentalCost_MonthlyDiscount(t *testing.T) {
	// 30 天觸發 8 折
	cost, err := CalculateRentalCost(50, date(t, "2025-12-01"), date(t, "2025-12-31"))
	require.NoError(t, err)
	require.Equal(t, 30, cost.Days)
	require.Equal(t, 1500.0, cost.Subtotal)
	require.Equal(t, 300.0, cost.Discount)
	require.Equal(t, 120.0, cost.Tax)
	require.Equal(t, 1320.0, cost.Total)
}

func TestCalculateRentalCost_RoundsToCents(t *testing.T) {
	cost, err := CalculateRentalCost(33.33, date(t, "2025-12-01"), date(t, "2025-12-04"))
	require.NoError(t, err)
	require.Equal(t, 99.99, cost.Subtotal)
	require.Equal(t, 10.0, cost.Tax)
	require.Equal(t, 109.99, cost.Total)
}

func TestCalculateRentalCost_Deterministic(t *testing.T) {
	start := date(t, "2026-01-10")
	end := date(t, "2026-01-20")

	first, err := CalculateRentalCost(75.5, start, end)
	require.NoError(t, err)
	second, err := CalculateRentalCost(75.5, start, end)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCalculateRentalCost_Invalid(t *testing.T) {
	_, err := CalculateRentalCost(100, date(t, "2025-12-04"), date(t, "2025-12-01"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = CalculateRentalCost(100, date(t, "2025-12-01"), date(t, "2025-12-01"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = CalculateRentalCost(0, date(t, "2025-12-01"), date(t, "2025-12-04"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = CalculateRentalCost(-10, date(t, "2025-12-01"), date(t, "2025-12-04"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestRangesOverlap_AdjacentAllowed(t *testing.T) {
	// 既有租賃 12/1~12/4，新租賃 12/4~12/6 接續不算重疊
	require.False(t, RangesOverlap(
		date(t, "2025-12-01"), date(t, "2025-12-04"),
		date(t, "2025-12-04"), date(t, "2025-12-06")))

	// 新租賃結束於既有起租日也不算重疊
	require.False(t, RangesOverlap(
		date(t, "2025-12-04"), date(t, "2025-12-06"),
		date(t, "2025-12-01"), date(t, "2025-12-04")))
}

func TestRangesOverlap_Conflicts(t *testing.T) {
	// 12/3~12/5 與既有 12/1~12/4 重疊
	require.True(t, RangesOverlap(
		date(t, "2025-12-01"), date(t, "2025-12-04"),
		date(t, "2025-12-03"), date(t, "2025-12-05")))

	// 完全包含
	require.True(t, RangesOverlap(
		date(t, "2025-12-01"), date(t, "2025-12-10"),
		date(t, "2025-12-03"), date(t, "2025-12-05")))

	// 完全相同
	require.True(t, RangesOverlap(
		date(t, "2025-12-01"), date(t, "2025-12-04"),
		date(t, "2025-12-01"), date(t, "2025-12-04")))
}

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(models.RentalStatusPending, models.RentalStatusConfirmed))
	require.True(t, CanTransition(models.RentalStatusPending, models.RentalStatusCancelled))
	require.True(t, CanTransition(models.RentalStatusConfirmed, models.RentalStatusActive))
	require.True(t, CanTransition(models.RentalStatusConfirmed, models.RentalStatusCancelled))
	require.True(t, CanTransition(models.RentalStatusActive, models.RentalStatusCompleted))

	// 終態不可再轉換
	require.False(t, CanTransition(models.RentalStatusCompleted, models.RentalStatusCancelled))
	require.False(t, CanTransition(models.RentalStatusCancelled, models.RentalStatusPending))

	// 不可跳級或回退
	require.False(t, CanTransition(models.RentalStatusPending, models.RentalStatusActive))
	require.False(t, CanTransition(models.RentalStatusPending, models.RentalStatusCompleted))
	require.False(t, CanTransition(models.RentalStatusActive, models.RentalStatusCancelled))
	require.False(t, CanTransition(models.RentalStatusActive, models.RentalStatusPending))
	require.False(t, CanTransition("unknown", models.RentalStatusConfirmed))
}

func TestRoundCents(t *testing.T) {
	require.Equal(t, 10.56, roundCents(10.556))
	require.Equal(t, 10.55, roundCents(10.554))
	require.Equal(t, 0.0, roundCents(0))
}
