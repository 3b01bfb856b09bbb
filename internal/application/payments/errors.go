package payments

import "errors"

var (
	// ErrPaymentDeclined: the processor refused the charge. The transaction is
	// marked failed; the user may retry with another method.
	ErrPaymentDeclined = errors.New("Payment declined by processor")
	// ErrProcessorUnavailable: transient processor outage. The transaction
	// stays pending so the caller can retry with backoff.
	ErrProcessorUnavailable = errors.New("Payment processor unavailable")
	// ErrUnknownIntent: a confirmation referenced an intent we never opened.
	// Fatal for that confirmation; logged, never retried.
	ErrUnknownIntent = errors.New("Unknown payment intent")
)
