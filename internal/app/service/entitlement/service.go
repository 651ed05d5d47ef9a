package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/routina/payments/internal/models"
	"github.com/routina/payments/pkg/logctx"
	"github.com/routina/payments/pkg/tool"
	"github.com/routina/payments/pkg/types"
)

// Service owns the entitlement write path. Only the IPN notifier and the
// authenticated admin grant go through it; nothing else writes the table.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// GrantRequest describes one validated payment (or manual grant) to apply.
type GrantRequest struct {
	UserID         string
	PlanID         string
	DurationMonths int
	TransactionID  string
	Provider       types.PaymentProvider
	AmountCents    int64
	Currency       string
	OperatorID     string
	Reason         types.EntitlementChangeReason
	// ProcessedAt is the base for ValidUntil; callers pass time.Now() outside tests.
	ProcessedAt time.Time
}

type ApplyResult struct {
	Entitlement *models.Entitlement
	// Deduplicated is true when the transaction id matched the last applied
	// one and the record was left untouched. Redelivered callbacks must not
	// extend validity twice.
	Deduplicated bool
}

// Get returns the user's entitlement record, or nil when none exists.
func (s *Service) Get(ctx context.Context, userID string) (*models.Entitlement, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is required")
	}
	var row models.Entitlement
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	return &row, nil
}

// Apply overwrites the user's entitlement record for a validated payment.
// The row is locked for the duration of the transaction, so concurrent
// callbacks for the same user serialize here; a transaction id matching the
// last applied one is dropped without touching the record.
func (s *Service) Apply(ctx context.Context, req *GrantRequest) (*ApplyResult, error) {
	if req == nil || req.UserID == "" {
		return nil, fmt.Errorf("invalid grant request: userID is required")
	}
	if req.DurationMonths <= 0 {
		return nil, fmt.Errorf("invalid grant request: duration must be positive")
	}
	if req.ProcessedAt.IsZero() {
		req.ProcessedAt = time.Now()
	}

	var result ApplyResult
	var before *models.Entitlement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original models.Entitlement
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", req.UserID).
			First(&original).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load entitlement: %w", err)
		}

		var existing *models.Entitlement
		if original.ID != "" {
			cp := original
			existing = &cp
		}

		row, deduplicated := resolveGrant(existing, req)
		if deduplicated {
			result.Entitlement = row
			result.Deduplicated = true
			return nil
		}
		before = existing

		if err := tx.Save(row).Error; err != nil {
			return fmt.Errorf("failed to upsert entitlement: %w", err)
		}
		result.Entitlement = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	reason := req.Reason
	if result.Deduplicated {
		reason = types.EntitlementChangeReasonRedelivery
	}
	s.appendLog(ctx, before, result.Entitlement, req, reason)

	return &result, nil
}

// resolveGrant decides what a validated payment does to the user's record.
// A transaction id matching the last applied one leaves the record untouched,
// so a redelivered callback cannot extend validity twice. Anything else
// overwrites the record with a fresh validity window of ProcessedAt plus the
// plan duration; id and creation time survive the overwrite.
func resolveGrant(existing *models.Entitlement, req *GrantRequest) (row *models.Entitlement, deduplicated bool) {
	if existing != nil && req.TransactionID != "" && existing.LastTransactionID == req.TransactionID {
		return existing, true
	}

	validUntil := req.ProcessedAt.AddDate(0, req.DurationMonths, 0)
	txnAt := req.ProcessedAt

	row = &models.Entitlement{
		UserID:            req.UserID,
		IsPremiumActive:   true,
		PlanID:            req.PlanID,
		ValidUntil:        &validUntil,
		LastTransactionID: req.TransactionID,
		LastTransactionAt: &txnAt,
		PaymentProvider:   req.Provider,
		Extra: datatypes.NewJSONType(&models.EntitlementExtra{
			OperatorID:  req.OperatorID,
			AmountCents: req.AmountCents,
			Currency:    req.Currency,
		}),
	}

	if existing != nil {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	} else {
		row.ID = tool.GenerateUUIDV7()
	}
	return row, false
}

// appendLog writes the audit row asynchronously; failures are logged, not returned.
func (s *Service) appendLog(ctx context.Context, before, after *models.Entitlement, req *GrantRequest, reason types.EntitlementChangeReason) {
	go func() {
		row := &models.EntitlementLog{
			ID:            tool.GenerateUUIDV7(),
			UserID:        req.UserID,
			TransactionID: req.TransactionID,
			Reason:        reason,
			Before:        datatypes.NewJSONType(before),
			After:         datatypes.NewJSONType(after),
			Extra: datatypes.JSONMap{
				"amount_cents": req.AmountCents,
				"currency":     req.Currency,
				"plan_id":      req.PlanID,
			},
		}
		if err := s.db.Save(row).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save entitlement log: %v", err)
		}
	}()
}
