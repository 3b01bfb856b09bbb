package payments

import (
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// IntentCreator abstracts processor intent creation for testability.
type IntentCreator interface {
	Create(amountCents int64, currency string, metadata map[string]string, idempotencyKey string) (*IntentResult, error)
}

type IntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// StripeIntentCreator uses the Stripe Go SDK. The idempotency key is the
// receipt number, so retrying a failed open never double-charges.
type StripeIntentCreator struct {
	SecretKey string
}

func (r *StripeIntentCreator) Create(amountCents int64, currency string, metadata map[string]string, idempotencyKey string) (*IntentResult, error) {
	if r.SecretKey == "" {
		return nil, ErrProcessorUnavailable
	}
	stripe.Key = r.SecretKey
	// Stripe wants lowercase ISO codes; the ledger stores uppercase.
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(strings.ToLower(currency)),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.SetIdempotencyKey(idempotencyKey)
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, classifyStripeErr(err)
	}
	return &IntentResult{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// classifyStripeErr folds the SDK error surface into the adapter's taxonomy:
// card and request errors are declines, everything else (network, 5xx) is a
// transient outage.
func classifyStripeErr(err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		switch sErr.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			return ErrPaymentDeclined
		}
	}
	return ErrProcessorUnavailable
}
