package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	sandboxBaseURL = "https://sandbox.sslcommerz.com"
	liveBaseURL    = "https://securepay.sslcommerz.com"

	sessionPath    = "/gwprocess/v4/api.php"
	validationPath = "/validator/api/validationserverAPI.php"

	// Gateway status literals.
	StatusSuccess   = "SUCCESS"
	StatusValid     = "VALID"
	StatusValidated = "VALIDATED"
)

var (
	// ErrGatewayUnreachable covers transport-level failures on either outbound
	// call. The caller may retry; nothing was decided by the gateway.
	ErrGatewayUnreachable = errors.New("gateway unreachable")
	// ErrSessionRejected means the gateway refused to open a checkout session.
	ErrSessionRejected = errors.New("gateway rejected session creation")
)

type Options struct {
	StoreID       string
	StorePassword string
	Sandbox       bool
	Timeout       time.Duration
	// BaseURL overrides the gateway host; used by tests.
	BaseURL string
}

// Client talks to the SSLCommerz merchant API: hosted-checkout session
// creation and the server-to-server transaction validator.
type Client struct {
	opts       *Options
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewClient(opts *Options, log *zap.SugaredLogger) (*Client, error) {
	if opts == nil {
		return nil, errors.New("opts is nil")
	}
	if opts.StoreID == "" || opts.StorePassword == "" {
		return nil, errors.New("gateway store credentials are required")
	}
	base := opts.BaseURL
	if base == "" {
		if opts.Sandbox {
			base = sandboxBaseURL
		} else {
			base = liveBaseURL
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		opts:       opts,
		baseURL:    strings.TrimSuffix(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

// CreateSessionRequest carries everything the hosted-checkout session needs.
// All URLs must be absolute; the gateway resolves them from outside.
type CreateSessionRequest struct {
	TranID      string
	Amount      string
	Currency    string
	SuccessURL  string
	FailURL     string
	CancelURL   string
	IPNURL      string
	ProductName string
	CustName    string
	CustEmail   string
	// ValueA and ValueB are opaque passthrough fields; the validator echoes
	// them back (user id and plan id respectively).
	ValueA string
	ValueB string
}

type CreateSessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.opts.StoreID)
	form.Set("store_passwd", c.opts.StorePassword)
	form.Set("total_amount", req.Amount)
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_listener_url", req.IPNURL)
	form.Set("product_name", req.ProductName)
	form.Set("product_category", "subscription")
	form.Set("product_profile", "non-physical-goods")
	form.Set("shipping_method", "NO")
	form.Set("cus_name", req.CustName)
	form.Set("cus_email", req.CustEmail)
	form.Set("value_a", req.ValueA)
	form.Set("value_b", req.ValueB)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpRes, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer httpRes.Body.Close()

	var res CreateSessionResponse
	if err := json.NewDecoder(httpRes.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if res.Status != StatusSuccess {
		return &res, fmt.Errorf("%w: %s", ErrSessionRejected, res.FailedReason)
	}
	if res.GatewayPageURL == "" {
		return &res, fmt.Errorf("%w: missing redirect url", ErrSessionRejected)
	}
	return &res, nil
}

// ValidationResponse is the validator's view of a transaction. The validator,
// not the callback payload, is the source of truth; user id and plan id are
// taken from the echoed passthrough fields.
type ValidationResponse struct {
	Status    string `json:"status"`
	TranID    string `json:"tran_id"`
	ValID     string `json:"val_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	RiskLevel string `json:"risk_level"`
	ValueA    string `json:"value_a"`
	ValueB    string `json:"value_b"`
}

// Confirmed reports whether the validator vouches for the transaction.
// VALIDATED is what re-validating an already validated val_id returns, which
// redelivered callbacks make routine.
func (r *ValidationResponse) Confirmed() bool {
	return r != nil && (r.Status == StatusValid || r.Status == StatusValidated)
}

func (c *Client) ValidateTransaction(ctx context.Context, valID string) (*ValidationResponse, error) {
	if valID == "" {
		return nil, errors.New("val_id is empty")
	}

	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", c.opts.StoreID)
	q.Set("store_passwd", c.opts.StorePassword)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+validationPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation request: %w", err)
	}

	httpRes, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer httpRes.Body.Close()

	var res ValidationResponse
	if err := json.NewDecoder(httpRes.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode validation response: %w", err)
	}
	return &res, nil
}
