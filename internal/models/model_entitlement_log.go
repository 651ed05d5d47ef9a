package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/routina/payments/pkg/types"
)

// EntitlementLog records every mutation of an entitlement row with
// before/after snapshots.
type EntitlementLog struct {
	ID            string                             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID        string                             `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	TransactionID string                             `gorm:"column:transaction_id;type:varchar(128)" json:"transaction_id"`
	Reason        types.EntitlementChangeReason      `gorm:"column:reason;type:varchar(64);not null" json:"reason"`
	Before        datatypes.JSONType[*Entitlement]   `gorm:"column:before;type:jsonb" json:"before"`
	After         datatypes.JSONType[*Entitlement]   `gorm:"column:after;type:jsonb" json:"after"`
	Extra         datatypes.JSONMap                  `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt     time.Time                          `json:"created_at"`
}

func (EntitlementLog) TableName() string {
	return "entitlement_log"
}
