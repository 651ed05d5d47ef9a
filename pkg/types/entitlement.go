package types

type EntitlementChangeReason string

const (
	EntitlementChangeReasonPayment     EntitlementChangeReason = "payment"
	EntitlementChangeReasonRedelivery  EntitlementChangeReason = "redelivery"
	EntitlementChangeReasonManualGrant EntitlementChangeReason = "manualGrant"
)
