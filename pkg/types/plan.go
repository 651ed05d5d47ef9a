package types

import "fmt"

type PaymentProvider string

const (
	PaymentProviderSSLCommerz PaymentProvider = "sslcommerz"
	// PaymentProviderInner marks entitlements granted by an operator instead of a gateway.
	PaymentProviderInner PaymentProvider = "inner"
)

const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// Plan is a purchasable subscription plan. Amounts are minor currency units;
// the gateway wire format wants a two-decimal string, see AmountString.
type Plan struct {
	ID             string `json:"id" mapstructure:"id"`
	Name           string `json:"name" mapstructure:"name"`
	AmountCents    int64  `json:"amount_cents" mapstructure:"amount_cents"`
	Currency       string `json:"currency" mapstructure:"currency"`
	DurationMonths int    `json:"duration_months" mapstructure:"duration_months"`
}

func (p *Plan) AmountString() string {
	return fmt.Sprintf("%d.%02d", p.AmountCents/100, p.AmountCents%100)
}
