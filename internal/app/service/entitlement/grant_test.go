package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routina/payments/internal/models"
	"github.com/routina/payments/pkg/types"
)

func grantReq(tranID string, months int, processedAt time.Time) *GrantRequest {
	return &GrantRequest{
		UserID:         "user123",
		PlanID:         types.PlanMonthly,
		DurationMonths: months,
		TransactionID:  tranID,
		Provider:       types.PaymentProviderSSLCommerz,
		AmountCents:    19900,
		Currency:       "BDT",
		Reason:         types.EntitlementChangeReasonPayment,
		ProcessedAt:    processedAt,
	}
}

func TestResolveGrant_FirstGrant(t *testing.T) {
	processedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	row, deduplicated := resolveGrant(nil, grantReq("t1", 1, processedAt))
	require.False(t, deduplicated)
	require.NotEmpty(t, row.ID)
	assert.True(t, row.IsPremiumActive)
	assert.Equal(t, "t1", row.LastTransactionID)
	require.NotNil(t, row.ValidUntil)
	assert.Equal(t, processedAt.AddDate(0, 1, 0), *row.ValidUntil)
}

func TestResolveGrant_SameTransactionIsNoOp(t *testing.T) {
	firstValidUntil := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	existing := &models.Entitlement{
		ID:                "e1",
		UserID:            "user123",
		IsPremiumActive:   true,
		PlanID:            types.PlanMonthly,
		ValidUntil:        &firstValidUntil,
		LastTransactionID: "t1",
	}

	// Redelivery arrives later; validity must not move.
	row, deduplicated := resolveGrant(existing, grantReq("t1", 1, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
	require.True(t, deduplicated)
	assert.Same(t, existing, row)
	assert.Equal(t, firstValidUntil, *row.ValidUntil)
}

func TestResolveGrant_NewTransactionOverwrites(t *testing.T) {
	oldValidUntil := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	existing := &models.Entitlement{
		ID:                "e1",
		CreatedAt:         createdAt,
		UserID:            "user123",
		IsPremiumActive:   true,
		PlanID:            types.PlanMonthly,
		ValidUntil:        &oldValidUntil,
		LastTransactionID: "t1",
	}

	processedAt := time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)
	req := grantReq("t2", 12, processedAt)
	req.PlanID = types.PlanYearly

	row, deduplicated := resolveGrant(existing, req)
	require.False(t, deduplicated)
	assert.Equal(t, "e1", row.ID)
	assert.Equal(t, createdAt, row.CreatedAt)
	assert.Equal(t, types.PlanYearly, row.PlanID)
	assert.Equal(t, "t2", row.LastTransactionID)
	require.NotNil(t, row.ValidUntil)
	assert.Equal(t, processedAt.AddDate(0, 12, 0), *row.ValidUntil)
}

func TestResolveGrant_BlankTransactionNeverDeduplicates(t *testing.T) {
	existing := &models.Entitlement{
		ID:                "e1",
		UserID:            "user123",
		LastTransactionID: "",
	}

	row, deduplicated := resolveGrant(existing, grantReq("", 1, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	require.False(t, deduplicated)
	assert.Equal(t, "e1", row.ID)
}
