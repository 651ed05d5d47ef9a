package notifier

import (
	"fmt"
	"net/url"
)

// CallbackPayload is the strongly-typed form of the gateway's loose
// form-encoded callback. Only status and val_id are required; everything else
// is advisory since the validator response is the source of truth.
type CallbackPayload struct {
	Status   string `json:"status"`
	ValID    string `json:"val_id"`
	TranID   string `json:"tran_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func ParseCallback(form url.Values) (*CallbackPayload, error) {
	p := &CallbackPayload{
		Status:   form.Get("status"),
		ValID:    form.Get("val_id"),
		TranID:   form.Get("tran_id"),
		Amount:   form.Get("amount"),
		Currency: form.Get("currency"),
	}
	if p.Status == "" {
		return nil, fmt.Errorf("%w: missing status", ErrMalformedCallback)
	}
	if p.ValID == "" {
		return nil, fmt.Errorf("%w: missing val_id", ErrMalformedCallback)
	}
	return p, nil
}
