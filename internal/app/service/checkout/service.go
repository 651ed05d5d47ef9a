package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/routina/payments/internal/platform/sslcommerz"
	"github.com/routina/payments/pkg/config"
	"github.com/routina/payments/pkg/logctx"
	"github.com/routina/payments/pkg/metrics"
	"github.com/routina/payments/pkg/tool"
)

var (
	ErrUnknownPlan   = errors.New("unknown plan")
	ErrMissingUserID = errors.New("user id is required")
)

// SessionGateway opens hosted-checkout sessions at the payment gateway.
type SessionGateway interface {
	CreateSession(ctx context.Context, req *sslcommerz.CreateSessionRequest) (*sslcommerz.CreateSessionResponse, error)
}

// Service builds payment sessions. Amount and currency come from the
// configured plan table; the caller only picks a plan, never a price.
type Service struct {
	cfg     *config.Config
	gateway SessionGateway
	log     *zap.SugaredLogger
}

func New(cfg *config.Config, gateway SessionGateway, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, gateway: gateway, log: log}
}

type InitiateRequest struct {
	UserID    string `json:"user_id"`
	PlanID    string `json:"plan_id"`
	CustName  string `json:"cus_name"`
	CustEmail string `json:"cus_email"`
}

type InitiateResult struct {
	RedirectURL string `json:"redirect_url"`
	TranID      string `json:"tran_id"`
}

// Initiate requests a hosted payment session and returns its redirect URL.
// No side effects beyond the outbound request; the entitlement store is
// untouched until the gateway's validated callback arrives.
func (s *Service) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	if req == nil || req.UserID == "" {
		return nil, ErrMissingUserID
	}
	plan := s.cfg.GetPlanByID(req.PlanID)
	if plan == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, req.PlanID)
	}

	tranID := tool.GenerateTranID()

	successURL, err := s.publicURL("payment", "success")
	if err != nil {
		return nil, err
	}
	failURL, err := s.publicURL("payment", "fail")
	if err != nil {
		return nil, err
	}
	cancelURL, err := s.publicURL("payment", "cancel")
	if err != nil {
		return nil, err
	}
	ipnURL, err := s.publicURL("api", "v1", "payment", "ipn")
	if err != nil {
		return nil, err
	}

	res, err := s.gateway.CreateSession(ctx, &sslcommerz.CreateSessionRequest{
		TranID:      tranID,
		Amount:      plan.AmountString(),
		Currency:    plan.Currency,
		SuccessURL:  successURL,
		FailURL:     failURL,
		CancelURL:   cancelURL,
		IPNURL:      ipnURL,
		ProductName: plan.Name,
		CustName:    req.CustName,
		CustEmail:   req.CustEmail,
		ValueA:      req.UserID,
		ValueB:      plan.ID,
	})
	if err != nil {
		metrics.CheckoutSessionsCreated.WithLabelValues(plan.ID, "error").Inc()
		logctx.FromCtx(ctx, s.log).Errorw("checkout_session_failed",
			"user_id", req.UserID,
			"plan_id", plan.ID,
			"tran_id", tranID,
			"error", err.Error(),
		)
		return nil, err
	}

	metrics.CheckoutSessionsCreated.WithLabelValues(plan.ID, "ok").Inc()
	logctx.FromCtx(ctx, s.log).Infow("checkout_session_created",
		"user_id", req.UserID,
		"plan_id", plan.ID,
		"tran_id", tranID,
	)

	return &InitiateResult{RedirectURL: res.GatewayPageURL, TranID: tranID}, nil
}

// publicURL joins path segments onto the configured public base URL.
// The gateway calls these URLs from outside, so the base must be absolute.
func (s *Service) publicURL(elem ...string) (string, error) {
	base, err := url.Parse(s.cfg.PublicBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid public base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("public base url must be absolute: %q", s.cfg.PublicBaseURL)
	}
	return base.JoinPath(elem...).String(), nil
}
