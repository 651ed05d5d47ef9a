package models

import (
	"time"

	"gorm.io/datatypes"
)

type CallbackLogStatus string

const (
	CallbackLogStatusReceived CallbackLogStatus = "received"
	CallbackLogStatusHandled  CallbackLogStatus = "handled"
	CallbackLogStatusRejected CallbackLogStatus = "rejected"
	// CallbackLogStatusWriteFailed marks callbacks that validated but whose
	// entitlement write did not land. These rows drive manual reconciliation.
	CallbackLogStatusWriteFailed CallbackLogStatus = "write_failed"
)

// CallbackLog keeps every inbound IPN callback with its terminal outcome.
type CallbackLog struct {
	ID            string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID    string            `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	UserID        *string           `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	TraceID       string            `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	TransactionID string            `gorm:"column:transaction_id;type:varchar(128);index" json:"transaction_id"`
	ValID         string            `gorm:"column:val_id;type:varchar(128)" json:"val_id"`
	ReceivedAt    time.Time         `gorm:"column:received_at" json:"received_at"`
	Payload       datatypes.JSON    `gorm:"column:payload;type:jsonb" json:"payload"`
	Result        *datatypes.JSON   `gorm:"column:result;type:jsonb" json:"result"`
	Status        CallbackLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (CallbackLog) TableName() string {
	return "callback_log"
}
