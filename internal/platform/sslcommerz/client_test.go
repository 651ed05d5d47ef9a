package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Options{
		StoreID:       "teststore",
		StorePassword: "testpass",
		Sandbox:       true,
		Timeout:       2 * time.Second,
		BaseURL:       srv.URL,
	}, zap.NewNop().Sugar())
	require.NoError(t, err)
	return c, srv
}

func TestCreateSession_Success(t *testing.T) {
	var gotForm map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, sessionPath, r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"store_id":     r.PostFormValue("store_id"),
			"total_amount": r.PostFormValue("total_amount"),
			"tran_id":      r.PostFormValue("tran_id"),
			"value_a":      r.PostFormValue("value_a"),
			"value_b":      r.PostFormValue("value_b"),
		}
		json.NewEncoder(w).Encode(CreateSessionResponse{
			Status:         StatusSuccess,
			SessionKey:     "sess-1",
			GatewayPageURL: "https://gateway.example.com/pay/sess-1",
		})
	}))

	res, err := c.CreateSession(context.Background(), &CreateSessionRequest{
		TranID:     "t-1",
		Amount:     "199.00",
		Currency:   "BDT",
		SuccessURL: "https://app.example.com/payment/success",
		FailURL:    "https://app.example.com/payment/fail",
		CancelURL:  "https://app.example.com/payment/cancel",
		IPNURL:     "https://app.example.com/api/v1/payment/ipn",
		ValueA:     "user123",
		ValueB:     "monthly",
	})
	require.NoError(t, err)
	require.Equal(t, "https://gateway.example.com/pay/sess-1", res.GatewayPageURL)
	require.Equal(t, "teststore", gotForm["store_id"])
	require.Equal(t, "199.00", gotForm["total_amount"])
	require.Equal(t, "t-1", gotForm["tran_id"])
	require.Equal(t, "user123", gotForm["value_a"])
	require.Equal(t, "monthly", gotForm["value_b"])
}

func TestCreateSession_RejectedCarriesReason(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CreateSessionResponse{Status: "FAILED", FailedReason: "store is deactivated"})
	}))

	_, err := c.CreateSession(context.Background(), &CreateSessionRequest{TranID: "t-1", Amount: "1.00", Currency: "BDT"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSessionRejected))
	require.Contains(t, err.Error(), "store is deactivated")
}

func TestCreateSession_TransportFailureIsUnreachable(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := c.CreateSession(context.Background(), &CreateSessionRequest{TranID: "t-1", Amount: "1.00", Currency: "BDT"})
	require.True(t, errors.Is(err, ErrGatewayUnreachable))
}

func TestValidateTransaction_EchoesPassthrough(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, validationPath, r.URL.Path)
		require.Equal(t, "v1", r.URL.Query().Get("val_id"))
		require.Equal(t, "teststore", r.URL.Query().Get("store_id"))
		json.NewEncoder(w).Encode(ValidationResponse{
			Status: StatusValid,
			TranID: "t-1",
			ValID:  "v1",
			ValueA: "user123",
			ValueB: "yearly",
		})
	}))

	res, err := c.ValidateTransaction(context.Background(), "v1")
	require.NoError(t, err)
	require.True(t, res.Confirmed())
	require.Equal(t, "user123", res.ValueA)
	require.Equal(t, "yearly", res.ValueB)
}

func TestValidateTransaction_InvalidIsNotConfirmed(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ValidationResponse{Status: "INVALID_TRANSACTION", ValID: "v1"})
	}))

	res, err := c.ValidateTransaction(context.Background(), "v1")
	require.NoError(t, err)
	require.False(t, res.Confirmed())
}

func TestValidationResponse_ConfirmedStatuses(t *testing.T) {
	require.True(t, (&ValidationResponse{Status: StatusValid}).Confirmed())
	require.True(t, (&ValidationResponse{Status: StatusValidated}).Confirmed())
	require.False(t, (&ValidationResponse{Status: "FAILED"}).Confirmed())
	require.False(t, (*ValidationResponse)(nil).Confirmed())
}
