package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/routina/payments/pkg/types"
)

// EntitlementExtra stores auxiliary JSON data on the entitlement row.
type EntitlementExtra struct {
	// OperatorID is set when the entitlement was granted manually.
	OperatorID string `json:"operator_id,omitempty"`
	// AmountCents/Currency snapshot the validated payment amount.
	AmountCents int64  `json:"amount_cents,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// Entitlement is the single durable record of a user's paid access.
// One row per user, overwritten on renewal. Written only by the IPN path and
// the authenticated admin grant; feature gating elsewhere only reads it.
type Entitlement struct {
	ID              string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID          string `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex" json:"user_id"`
	IsPremiumActive bool   `gorm:"column:is_premium_active;not null;default:false" json:"is_premium_active"`
	PlanID          string `gorm:"column:plan_id;type:varchar(64);not null" json:"plan_id"`
	// ValidUntil is grant time plus the plan duration. Expiry enforcement is a
	// separate sweep; this row only records the write path's view.
	ValidUntil *time.Time `gorm:"column:valid_until;default:null" json:"valid_until"`

	// Audit trail of the most recent successful payment.
	LastTransactionID string                `gorm:"column:last_transaction_id;type:varchar(128);index" json:"last_transaction_id"`
	LastTransactionAt *time.Time            `gorm:"column:last_transaction_at;default:null" json:"last_transaction_at"`
	PaymentProvider   types.PaymentProvider `gorm:"column:payment_provider;type:varchar(64);not null" json:"payment_provider"`

	Extra     datatypes.JSONType[*EntitlementExtra] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                             `json:"created_at"`
	UpdatedAt time.Time                             `json:"updated_at"`
}

func (Entitlement) TableName() string {
	return "entitlement"
}

func (e *Entitlement) Valid() bool {
	return e != nil &&
		e.IsPremiumActive &&
		e.ValidUntil != nil &&
		e.ValidUntil.After(time.Now())
}
