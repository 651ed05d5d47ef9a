package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange_DefaultsToLast30Days(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 4, 5, 0, time.UTC)
	start, end, err := parseDateRange(&PaymentStatisticRequest{}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, end.AddDate(0, 0, -30), start)
}

func TestParseDateRange_NonUTCNowUsesUTCDayBoundary(t *testing.T) {
	// 03:30 local on Sep 2 in Dhaka is still Sep 1 in UTC; the window must
	// close at the UTC day boundary, not the local one.
	dhaka := time.FixedZone("BST", 6*3600)
	now := time.Date(2026, 9, 2, 3, 30, 0, 0, dhaka)

	start, end, err := parseDateRange(&PaymentStatisticRequest{}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, end.AddDate(0, 0, -30), start)
}

func TestParseDateRange_ExplicitWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	start, end, err := parseDateRange(&PaymentStatisticRequest{StartDate: "2026-08-01", EndDate: "2026-08-31"}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), start)
	// end date is inclusive, SQL bound is the next day
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestParseDateRange_Invalid(t *testing.T) {
	now := time.Now()

	_, _, err := parseDateRange(&PaymentStatisticRequest{StartDate: "01/08/2026"}, now)
	require.Error(t, err)

	_, _, err = parseDateRange(&PaymentStatisticRequest{StartDate: "2026-08-31", EndDate: "2026-08-01"}, now)
	require.Error(t, err)
}

func TestSumPoints(t *testing.T) {
	assert.Zero(t, sumPoints(nil))
	assert.Equal(t, int64(42), sumPoints([]*DailyPoint{{Date: "2026-08-01", Value: 40}, {Date: "2026-08-02", Value: 2}}))
}
