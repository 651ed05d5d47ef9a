package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/routina/payments/internal/app/service/entitlement"
	"github.com/routina/payments/internal/models"
	"github.com/routina/payments/internal/platform/sslcommerz"
	"github.com/routina/payments/pkg/config"
	"github.com/routina/payments/pkg/logctx"
	"github.com/routina/payments/pkg/metrics"
	"github.com/routina/payments/pkg/types"
)

// GatewayValidator is the outbound half of the trust decision: a second,
// server-to-server check keyed by val_id using server-held credentials.
type GatewayValidator interface {
	ValidateTransaction(ctx context.Context, valID string) (*sslcommerz.ValidationResponse, error)
}

// EntitlementStore is the durable write path for validated payments.
type EntitlementStore interface {
	Apply(ctx context.Context, req *entitlement.GrantRequest) (*entitlement.ApplyResult, error)
}

// CallbackRecorder persists callback logs; recording never fails the handler.
type CallbackRecorder interface {
	Save(ctx context.Context, row *models.CallbackLog)
}

// Service converts unauthenticated, internet-facing IPN callbacks into
// durable entitlement changes. This is the single trust boundary of the
// payment workflow; the callback payload itself is never trusted.
type Service struct {
	cfg     *config.Config
	gateway GatewayValidator
	store   EntitlementStore
	logs    CallbackRecorder
	Logger  *zap.SugaredLogger
}

func New(cfg *config.Config, gateway GatewayValidator, store EntitlementStore, logs CallbackRecorder, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, gateway: gateway, store: store, logs: logs, Logger: log}
}

type HandleResult struct {
	UserID       string    `json:"user_id"`
	PlanID       string    `json:"plan_id"`
	TranID       string    `json:"tran_id"`
	ValidUntil   time.Time `json:"valid_until"`
	Deduplicated bool      `json:"deduplicated"`
}

// HandleCallback runs the callback state machine:
// parse → self-reported status filter → gateway validation → entitlement write.
// Any failure terminates without a write; the gateway redelivers on non-2xx,
// so the whole path is safe to invoke more than once per transaction.
func (s *Service) HandleCallback(ctx context.Context, form url.Values) (res *HandleResult, resErr error) {
	log := logctx.FromCtx(ctx, s.Logger)

	payload, err := ParseCallback(form)
	if err != nil {
		metrics.IPNCallbacks.WithLabelValues("malformed").Inc()
		return nil, err
	}

	traceID, _ := ctx.Value("traceID").(string)
	payloadBytes, _ := json.Marshal(payload)

	s.record(ctx, payload, traceID, nil, models.CallbackLogStatusReceived, payloadBytes)

	defer func() {
		status := models.CallbackLogStatusHandled
		if resErr != nil {
			status = models.CallbackLogStatusRejected
			if errors.Is(resErr, ErrStoreWriteFailed) {
				status = models.CallbackLogStatusWriteFailed
			}
		}
		resMap := map[string]any{"result": res}
		if resErr != nil {
			resMap["error"] = resErr.Error()
		}
		resBytes, _ := json.Marshal(resMap)
		var userID *string
		if res != nil && res.UserID != "" {
			userID = lo.ToPtr(res.UserID)
		}
		s.recordFinal(ctx, payload, traceID, userID, status, payloadBytes, resBytes)
		metrics.IPNCallbacks.WithLabelValues(outcomeLabel(res, resErr)).Inc()
	}()

	// Cheap filter: a payload that does not even claim success is dropped
	// before spending a gateway round-trip on it.
	if payload.Status != sslcommerz.StatusValid {
		log.Infow("ipn_rejected_self_reported", "status", payload.Status, "tran_id", payload.TranID)
		resErr = fmt.Errorf("%w: %s", ErrSelfReportedStatusInvalid, payload.Status)
		return nil, resErr
	}

	// The trust decision. Credentials live server-side; the validator response
	// supersedes every field of the original payload.
	validated, err := s.gateway.ValidateTransaction(ctx, payload.ValID)
	if err != nil {
		log.Errorw("ipn_validation_unreachable", "val_id", payload.ValID, "error", err.Error())
		resErr = err
		return nil, resErr
	}
	if !validated.Confirmed() {
		// Either a forged callback or a gateway-side reversal. Worth a look.
		log.Warnw("ipn_validation_refused",
			"val_id", payload.ValID,
			"validator_status", validated.Status,
			"risk_level", validated.RiskLevel,
		)
		resErr = fmt.Errorf("%w: validator returned %s", ErrServerValidationFailed, validated.Status)
		return nil, resErr
	}

	userID := validated.ValueA
	if userID == "" {
		log.Errorw("ipn_missing_subject", "val_id", payload.ValID, "tran_id", validated.TranID)
		resErr = ErrMissingSubjectIdentifier
		return nil, resErr
	}

	planID := validated.ValueB
	months, known := s.resolvePlanDuration(planID)
	if !known {
		metrics.UnknownPlanValues.Inc()
		log.Warnw("ipn_unknown_plan", "plan_id", planID, "fallback_months", months)
	}

	processedAt := time.Now()
	applied, err := s.store.Apply(ctx, &entitlement.GrantRequest{
		UserID:         userID,
		PlanID:         planID,
		DurationMonths: months,
		TransactionID:  validated.TranID,
		Provider:       types.PaymentProviderSSLCommerz,
		AmountCents:    parseAmountCents(validated.Amount),
		Currency:       validated.Currency,
		Reason:         types.EntitlementChangeReasonPayment,
		ProcessedAt:    processedAt,
	})
	if err != nil {
		metrics.EntitlementWriteFailures.Inc()
		// Payment confirmed, entitlement not granted. Needs manual reconciliation;
		// the admin grant API is the repair path.
		log.Errorw("ipn_entitlement_write_failed",
			"user_id", userID,
			"tran_id", validated.TranID,
			"val_id", payload.ValID,
			"error", err.Error(),
		)
		resErr = fmt.Errorf("%w: %v", ErrStoreWriteFailed, err)
		return nil, resErr
	}

	res = &HandleResult{
		UserID:       userID,
		PlanID:       planID,
		TranID:       validated.TranID,
		Deduplicated: applied.Deduplicated,
	}
	if applied.Entitlement != nil && applied.Entitlement.ValidUntil != nil {
		res.ValidUntil = *applied.Entitlement.ValidUntil
	}

	log.Infow("ipn_entitlement_applied",
		"user_id", userID,
		"plan_id", planID,
		"tran_id", validated.TranID,
		"valid_until", res.ValidUntil,
		"deduplicated", res.Deduplicated,
	)
	return res, nil
}

// resolvePlanDuration maps a validated plan identifier to months of validity.
// Identifiers outside the configured set keep the legacy behavior (yearly is
// twelve months, everything else one month) but are counted and logged.
func (s *Service) resolvePlanDuration(planID string) (months int, known bool) {
	if p := s.cfg.GetPlanByID(planID); p != nil && p.DurationMonths > 0 {
		return p.DurationMonths, true
	}
	if planID == types.PlanYearly {
		return 12, false
	}
	return 1, false
}

func (s *Service) record(ctx context.Context, p *CallbackPayload, traceID string, userID *string, status models.CallbackLogStatus, payload []byte) {
	if s.logs == nil {
		return
	}
	s.logs.Save(ctx, &models.CallbackLog{
		ProviderID:    string(types.PaymentProviderSSLCommerz),
		UserID:        userID,
		TraceID:       traceID,
		TransactionID: p.TranID,
		ValID:         p.ValID,
		ReceivedAt:    time.Now(),
		Payload:       datatypes.JSON(payload),
		Status:        status,
	})
}

func (s *Service) recordFinal(ctx context.Context, p *CallbackPayload, traceID string, userID *string, status models.CallbackLogStatus, payload, result []byte) {
	if s.logs == nil {
		return
	}
	res := datatypes.JSON(result)
	s.logs.Save(ctx, &models.CallbackLog{
		ProviderID:    string(types.PaymentProviderSSLCommerz),
		UserID:        userID,
		TraceID:       traceID,
		TransactionID: p.TranID,
		ValID:         p.ValID,
		ReceivedAt:    time.Now(),
		Payload:       datatypes.JSON(payload),
		Result:        &res,
		Status:        status,
	})
}

func outcomeLabel(res *HandleResult, err error) string {
	switch {
	case err == nil && res != nil && res.Deduplicated:
		return "dedup"
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSelfReportedStatusInvalid):
		return "self_reported_invalid"
	case errors.Is(err, ErrServerValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrMissingSubjectIdentifier):
		return "missing_subject"
	case errors.Is(err, sslcommerz.ErrGatewayUnreachable):
		return "gateway_unreachable"
	case errors.Is(err, ErrStoreWriteFailed):
		return "store_write_failed"
	default:
		return "error"
	}
}

// parseAmountCents converts the gateway's decimal amount string to minor
// units; unparsable values degrade to zero since the amount is audit data,
// not part of the trust decision.
func parseAmountCents(amount string) int64 {
	if amount == "" {
		return 0
	}
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * 100))
}
