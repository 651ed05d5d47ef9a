package notifier

import "errors"

// Terminal failure classes of the callback state machine. Every one of them
// means "no entitlement write happened"; the HTTP layer maps them to statuses.
var (
	// ErrMalformedCallback: required fields (status, val_id) absent from the payload.
	ErrMalformedCallback = errors.New("malformed callback payload")
	// ErrSelfReportedStatusInvalid: the payload's own status field is not VALID.
	// Cheap filter only; passing it decides nothing.
	ErrSelfReportedStatusInvalid = errors.New("callback self-reported status is not valid")
	// ErrServerValidationFailed: the gateway's validator did not confirm the
	// transaction. Logged as a potential fraud signal.
	ErrServerValidationFailed = errors.New("gateway validation did not confirm transaction")
	// ErrMissingSubjectIdentifier: the validated response carries no user id.
	ErrMissingSubjectIdentifier = errors.New("validated response carries no user id")
	// ErrStoreWriteFailed: payment validated but the entitlement write failed.
	// The most severe case; the payer is paid but unentitled until reconciled.
	ErrStoreWriteFailed = errors.New("entitlement write failed after successful validation")
)
