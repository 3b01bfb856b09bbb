package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"brickshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service is the boundary to the external payment processor. It creates the
// pending Transaction row (with its unique receipt number) before any call
// leaves the process, so every processor intent is traceable to a row here.
type Service struct {
	DB       *gorm.DB
	Creator  IntentCreator
	Currency string
}

type OpenIntentInput struct {
	UserID     uuid.UUID
	PropertyID *uuid.UUID
	Amount     float64
	Kind       string // domain.TransactionType*
	// Shares and PricePerShare are set for investment intents; settlement
	// reads them back from the transaction row.
	Shares        int
	PricePerShare float64
	Metadata      map[string]string
}

type OpenIntentResult struct {
	TransactionID   uuid.UUID `json:"transaction_id"`
	ReceiptNumber   string    `json:"receipt_number"`
	PaymentIntentID string    `json:"payment_intent_id"`
	ClientSecret    string    `json:"client_secret"`
}

// OpenIntent creates the pending transaction, then the processor intent.
// A declined charge flips the transaction to failed; an unreachable processor
// leaves it pending for retry.
func (s *Service) OpenIntent(ctx context.Context, in OpenIntentInput) (*OpenIntentResult, error) {
	if in.Amount <= 0 {
		return nil, ErrPaymentDeclined
	}

	txn := &domain.Transaction{
		UserID:        in.UserID,
		PropertyID:    in.PropertyID,
		Type:          in.Kind,
		Amount:        roundCents(in.Amount),
		Shares:        in.Shares,
		PricePerShare: in.PricePerShare,
		Currency:      s.Currency,
		Status:        domain.TransactionStatusPending,
		ReceiptNumber: NewReceiptNumber(),
	}
	if err := s.DB.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"transaction_id": txn.TransactionID.String(),
		"receipt_number": txn.ReceiptNumber,
		"user_id":        in.UserID.String(),
	}
	for k, v := range in.Metadata {
		metadata[k] = v
	}

	amountCents := int64(math.Round(in.Amount * 100))
	intent, err := s.Creator.Create(amountCents, s.Currency, metadata, txn.ReceiptNumber)
	if err != nil {
		if errors.Is(err, ErrPaymentDeclined) {
			// Terminal for this attempt.
			s.DB.WithContext(ctx).Model(txn).Update("status", domain.TransactionStatusFailed)
		}
		// Transient outages leave the row pending for a retried open with the
		// same idempotency key.
		log.Warn().Err(err).Str("transaction_id", txn.TransactionID.String()).Msg("payment intent open failed")
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(txn).
		Update("stripe_payment_intent_id", intent.ID).Error; err != nil {
		return nil, err
	}

	return &OpenIntentResult{
		TransactionID:   txn.TransactionID,
		ReceiptNumber:   txn.ReceiptNumber,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}, nil
}

// FindByIntentID loads the transaction opened for a processor intent.
func FindByIntentID(tx *gorm.DB, intentID string) (*domain.Transaction, error) {
	var txn domain.Transaction
	if err := tx.Where("stripe_payment_intent_id = ?", intentID).First(&txn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUnknownIntent
		}
		return nil, err
	}
	return &txn, nil
}

// NewReceiptNumber generates the unique, human-traceable receipt identifier.
func NewReceiptNumber() string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("RCPT-%d-%s", time.Now().UnixMilli(), suffix)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
