package handlers

import (
	"github.com/routina/payments/internal/app/service/checkout"
	"github.com/routina/payments/internal/app/service/statistics"
	"github.com/routina/payments/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespCheckout wraps the checkout result in the standard envelope.
type RespCheckout struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkout.InitiateResult  `json:"data"`
}

// RespEntitlement wraps an entitlement view in the standard envelope.
type RespEntitlement struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    EntitlementView          `json:"data"`
}

// RespListCallbackLogs wraps ListCallbackLogsResponse in the standard envelope.
type RespListCallbackLogs struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListCallbackLogsResponse `json:"data"`
}

// RespPaymentStatistic wraps PaymentStatisticResponse in the standard envelope.
type RespPaymentStatistic struct {
	Code    response.APIResponseCode            `json:"code"`
	Message string                              `json:"message"`
	Data    statistics.PaymentStatisticResponse `json:"data"`
}

// RespIPNAck is the gateway-facing acknowledgment body.
type RespIPNAck struct {
	Status       string `json:"status"`
	TranID       string `json:"tran_id"`
	Deduplicated bool   `json:"deduplicated"`
}

// RespIPNError is the gateway-facing diagnostic body.
type RespIPNError struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
