package notifier

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routina/payments/internal/app/service/entitlement"
	"github.com/routina/payments/internal/models"
	"github.com/routina/payments/internal/platform/sslcommerz"
	"github.com/routina/payments/pkg/config"
	"github.com/routina/payments/pkg/types"
)

type fakeValidator struct {
	resp   *sslcommerz.ValidationResponse
	err    error
	calls  int
	valIDs []string
}

func (f *fakeValidator) ValidateTransaction(_ context.Context, valID string) (*sslcommerz.ValidationResponse, error) {
	f.calls++
	f.valIDs = append(f.valIDs, valID)
	return f.resp, f.err
}

type fakeStore struct {
	got    *entitlement.GrantRequest
	result *entitlement.ApplyResult
	err    error
	calls  int
}

func (f *fakeStore) Apply(_ context.Context, req *entitlement.GrantRequest) (*entitlement.ApplyResult, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	validUntil := req.ProcessedAt.AddDate(0, req.DurationMonths, 0)
	return &entitlement.ApplyResult{
		Entitlement: &models.Entitlement{
			UserID:            req.UserID,
			IsPremiumActive:   true,
			PlanID:            req.PlanID,
			ValidUntil:        &validUntil,
			LastTransactionID: req.TransactionID,
		},
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Plans: []*types.Plan{
			{ID: types.PlanMonthly, AmountCents: 19900, Currency: "BDT", DurationMonths: 1},
			{ID: types.PlanYearly, AmountCents: 199900, Currency: "BDT", DurationMonths: 12},
		},
	}
}

func newTestService(gw GatewayValidator, store EntitlementStore) *Service {
	return New(testConfig(), gw, store, nil, zap.NewNop().Sugar())
}

func callbackForm(status, valID string) url.Values {
	form := url.Values{}
	if status != "" {
		form.Set("status", status)
	}
	if valID != "" {
		form.Set("val_id", valID)
	}
	return form
}

func TestHandleCallback_MissingRequiredFields(t *testing.T) {
	gw := &fakeValidator{}
	store := &fakeStore{}
	s := newTestService(gw, store)

	for _, form := range []url.Values{
		callbackForm("", "v1"),
		callbackForm("VALID", ""),
		{},
	} {
		_, err := s.HandleCallback(context.Background(), form)
		require.True(t, errors.Is(err, ErrMalformedCallback))
	}
	assert.Zero(t, gw.calls)
	assert.Zero(t, store.calls)
}

func TestHandleCallback_SelfReportedNotValid(t *testing.T) {
	gw := &fakeValidator{}
	store := &fakeStore{}
	s := newTestService(gw, store)

	_, err := s.HandleCallback(context.Background(), callbackForm("FAILED", "v1"))
	require.True(t, errors.Is(err, ErrSelfReportedStatusInvalid))
	// Cheap filter: no gateway round-trip, no write.
	assert.Zero(t, gw.calls)
	assert.Zero(t, store.calls)
}

func TestHandleCallback_ServerValidationRefused(t *testing.T) {
	gw := &fakeValidator{resp: &sslcommerz.ValidationResponse{Status: "INVALID", ValID: "v1"}}
	store := &fakeStore{}
	s := newTestService(gw, store)

	_, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v1"))
	require.True(t, errors.Is(err, ErrServerValidationFailed))
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, []string{"v1"}, gw.valIDs)
	assert.Zero(t, store.calls)
}

func TestHandleCallback_GatewayUnreachable(t *testing.T) {
	gw := &fakeValidator{err: sslcommerz.ErrGatewayUnreachable}
	store := &fakeStore{}
	s := newTestService(gw, store)

	_, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v1"))
	require.True(t, errors.Is(err, sslcommerz.ErrGatewayUnreachable))
	assert.Zero(t, store.calls)
}

func TestHandleCallback_MissingSubjectIdentifier(t *testing.T) {
	gw := &fakeValidator{resp: &sslcommerz.ValidationResponse{
		Status: sslcommerz.StatusValid, ValID: "v1", TranID: "t1", ValueB: "monthly",
	}}
	store := &fakeStore{}
	s := newTestService(gw, store)

	_, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v1"))
	require.True(t, errors.Is(err, ErrMissingSubjectIdentifier))
	assert.Zero(t, store.calls)
}

func TestHandleCallback_MonthlyGrant(t *testing.T) {
	gw := &fakeValidator{resp: &sslcommerz.ValidationResponse{
		Status:   sslcommerz.StatusValid,
		ValID:    "v1",
		TranID:   "t1",
		ValueA:   "user123",
		ValueB:   "monthly",
		Amount:   "199.00",
		Currency: "BDT",
	}}
	store := &fakeStore{}
	s := newTestService(gw, store)

	before := time.Now()
	res, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v1"))
	require.NoError(t, err)

	require.Equal(t, 1, store.calls)
	assert.Equal(t, "user123", store.got.UserID)
	assert.Equal(t, "monthly", store.got.PlanID)
	assert.Equal(t, 1, store.got.DurationMonths)
	assert.Equal(t, "t1", store.got.TransactionID)
	assert.Equal(t, types.PaymentProviderSSLCommerz, store.got.Provider)
	assert.Equal(t, int64(19900), store.got.AmountCents)
	assert.Equal(t, types.EntitlementChangeReasonPayment, store.got.Reason)

	assert.Equal(t, "user123", res.UserID)
	assert.Equal(t, "t1", res.TranID)
	assert.False(t, res.Deduplicated)
	// valid_until lands one month after processing time
	wantMin := before.AddDate(0, 1, 0)
	wantMax := time.Now().AddDate(0, 1, 0)
	assert.False(t, res.ValidUntil.Before(wantMin))
	assert.False(t, res.ValidUntil.After(wantMax))
}

func TestHandleCallback_YearlyGrant(t *testing.T) {
	gw := &fakeValidator{resp: &sslcommerz.ValidationResponse{
		Status: sslcommerz.StatusValid, ValID: "v2", TranID: "t2", ValueA: "user456", ValueB: "yearly",
	}}
	store := &fakeStore{}
	s := newTestService(gw, store)

	_, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v2"))
	require.NoError(t, err)
	assert.Equal(t, 12, store.got.DurationMonths)
}

func TestHandleCallback_ValidatedStatusAlsoConfirms(t *testing.T) {
	// Re-validating an already validated val_id reports VALIDATED; the
	// redelivered callback must still be honored.
	gw := &fakeValidator{resp: &sslcommerz.ValidationResponse{
		Status: sslcommerz.StatusValidated, ValID: "v1", TranID: "t1", ValueA: "user123", ValueB: "monthly",
	}}
	store := &fakeStore{}
	s := newTestService(gw, store)

	_, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v1"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
}

func TestHandleCallback_UnknownPlanFallsBackToOneMonth(t *testing.T) {
	gw := &fakeValidator{resp: &sslcommerz.ValidationResponse{
		Status: sslcommerz.StatusValid, ValID: "v3", TranID: "t3", ValueA: "user789", ValueB: "lifetime",
	}}
	store := &fakeStore{}
	s := newTestService(gw, store)

	_, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v3"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.got.DurationMonths)
}

func TestHandleCallback_StoreWriteFailed(t *testing.T) {
	gw := &fakeValidator{resp: &sslcommerz.ValidationResponse{
		Status: sslcommerz.StatusValid, ValID: "v1", TranID: "t1", ValueA: "user123", ValueB: "monthly",
	}}
	store := &fakeStore{err: errors.New("connection reset")}
	s := newTestService(gw, store)

	_, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v1"))
	require.True(t, errors.Is(err, ErrStoreWriteFailed))
	require.Contains(t, err.Error(), "connection reset")
}

func TestHandleCallback_RedeliveryIsAcknowledged(t *testing.T) {
	validUntil := time.Now().AddDate(0, 1, 0)
	gw := &fakeValidator{resp: &sslcommerz.ValidationResponse{
		Status: sslcommerz.StatusValid, ValID: "v1", TranID: "t1", ValueA: "user123", ValueB: "monthly",
	}}
	store := &fakeStore{result: &entitlement.ApplyResult{
		Deduplicated: true,
		Entitlement: &models.Entitlement{
			UserID:            "user123",
			IsPremiumActive:   true,
			ValidUntil:        &validUntil,
			LastTransactionID: "t1",
		},
	}}
	s := newTestService(gw, store)

	res, err := s.HandleCallback(context.Background(), callbackForm("VALID", "v1"))
	require.NoError(t, err)
	assert.True(t, res.Deduplicated)
	assert.True(t, res.ValidUntil.Equal(validUntil))
}

func TestResolvePlanDuration(t *testing.T) {
	s := newTestService(nil, nil)

	tests := []struct {
		planID     string
		wantMonths int
		wantKnown  bool
	}{
		{"monthly", 1, true},
		{"yearly", 12, true},
		{"lifetime", 1, false},
		{"", 1, false},
	}
	for _, tt := range tests {
		months, known := s.resolvePlanDuration(tt.planID)
		assert.Equal(t, tt.wantMonths, months, tt.planID)
		assert.Equal(t, tt.wantKnown, known, tt.planID)
	}
}

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"199.00", 19900},
		{"1999.50", 199950},
		{"0", 0},
		{"", 0},
		{"not-a-number", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAmountCents(tt.in), tt.in)
	}
}
