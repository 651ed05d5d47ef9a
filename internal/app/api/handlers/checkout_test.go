package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routina/payments/internal/app/service/checkout"
	"github.com/routina/payments/internal/platform/sslcommerz"
	"github.com/routina/payments/pkg/config"
	"github.com/routina/payments/pkg/response"
	"github.com/routina/payments/pkg/types"
)

type stubGateway struct {
	resp *sslcommerz.CreateSessionResponse
	err  error
}

func (s *stubGateway) CreateSession(_ context.Context, _ *sslcommerz.CreateSessionRequest) (*sslcommerz.CreateSessionResponse, error) {
	return s.resp, s.err
}

func checkoutTestRouter(gw checkout.SessionGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		PublicBaseURL: "https://api.routina.app",
		Plans: []*types.Plan{
			{ID: types.PlanMonthly, Name: "Routina Premium Monthly", AmountCents: 19900, Currency: "BDT", DurationMonths: 1},
		},
	}
	svc := checkout.New(cfg, gw, zap.NewNop().Sugar())
	r := gin.New()
	r.POST("/api/v1/payment/checkout", ApiInitiateCheckout(svc))
	return r
}

func postCheckout(r *gin.Engine, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/checkout", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiInitiateCheckout_ReturnsRedirectURL(t *testing.T) {
	gw := &stubGateway{resp: &sslcommerz.CreateSessionResponse{
		Status:         "SUCCESS",
		GatewayPageURL: "https://sandbox.sslcommerz.com/EasyCheckOut/abc",
	}}
	r := checkoutTestRouter(gw)

	w := postCheckout(r, checkout.InitiateRequest{UserID: "user123", PlanID: "monthly"})
	require.Equal(t, http.StatusOK, w.Code)

	var env response.APIResponse[checkout.InitiateResult]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	require.Equal(t, "https://sandbox.sslcommerz.com/EasyCheckOut/abc", env.Data.RedirectURL)
	require.NotEmpty(t, env.Data.TranID)
}

func TestApiInitiateCheckout_UnknownPlanIsBadRequest(t *testing.T) {
	r := checkoutTestRouter(&stubGateway{})

	w := postCheckout(r, checkout.InitiateRequest{UserID: "user123", PlanID: "lifetime"})
	require.Equal(t, http.StatusOK, w.Code)

	var env response.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}

func TestApiInitiateCheckout_MissingUserIsBadRequest(t *testing.T) {
	r := checkoutTestRouter(&stubGateway{})

	w := postCheckout(r, checkout.InitiateRequest{PlanID: "monthly"})
	require.Equal(t, http.StatusOK, w.Code)

	var env response.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}

func TestApiInitiateCheckout_GatewayRejectionIsServerError(t *testing.T) {
	gw := &stubGateway{err: fmt.Errorf("%w: store credential invalid", sslcommerz.ErrSessionRejected)}
	r := checkoutTestRouter(gw)

	w := postCheckout(r, checkout.InitiateRequest{UserID: "user123", PlanID: "monthly"})
	require.Equal(t, http.StatusOK, w.Code)

	var env response.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, response.APIResponseCodeError, env.Code)
}
