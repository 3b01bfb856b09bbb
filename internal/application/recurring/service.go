// Package recurring re-drives the settlement pipeline for standing orders.
// The job is periodic, not user-triggered; due orders are claimed in Redis
// before processing so an invocation overlapping the tail of the previous one
// never double-charges the same order.
package recurring

import (
	"context"
	"fmt"
	"math"
	"time"

	"brickshare-backend/internal/application/payments"
	"brickshare-backend/internal/application/settlement"
	"brickshare-backend/internal/domain"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Gateway opens off-session payment intents for standing orders.
type Gateway interface {
	OpenIntent(ctx context.Context, in payments.OpenIntentInput) (*payments.OpenIntentResult, error)
}

// Settler drives a confirmed intent to settlement.
type Settler interface {
	Settle(ctx context.Context, intentID string, rawEvent []byte) (*settlement.Result, error)
}

type Service struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Gateway  Gateway
	Settler  Settler
	ClaimTTL time.Duration
	// PlatformFeeMultiplier converts the order's currency amount into shares
	// at checkout price.
	PlatformFeeMultiplier float64
}

// Create registers a standing order starting one interval from now.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, propertyID *uuid.UUID, amount float64, frequency string) (*domain.RecurringInvestment, error) {
	if propertyID == nil {
		return nil, ErrPropertyRequired
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	switch frequency {
	case domain.FrequencyWeekly, domain.FrequencyMonthly, domain.FrequencyQuarterly:
	default:
		return nil, ErrInvalidFrequency
	}
	order := &domain.RecurringInvestment{
		UserID:     userID,
		PropertyID: propertyID,
		Amount:     amount,
		Frequency:  frequency,
		Active:     true,
	}
	order.NextRunAt = time.Now().Add(order.NextInterval())
	if err := s.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// List returns the user's standing orders.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]domain.RecurringInvestment, error) {
	var orders []domain.RecurringInvestment
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(`"createdAt" DESC`).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Deactivate turns a standing order off; only the owner may do it.
func (s *Service) Deactivate(ctx context.Context, userID, recurringID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&domain.RecurringInvestment{}).
		Where("recurring_id = ? AND user_id = ?", recurringID, userID).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// StartScheduler runs ProcessDue every interval with gocron.
func (s *Service) StartScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.ProcessDue(context.Background()); err != nil {
				log.Error().Err(err).Msg("recurring sweep failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	sched.Start()
	return sched, nil
}

// ProcessDue charges every due, claimable order once.
func (s *Service) ProcessDue(ctx context.Context) error {
	var due []domain.RecurringInvestment
	if err := s.DB.WithContext(ctx).
		Where("active = ? AND next_run_at <= ?", true, time.Now()).
		Find(&due).Error; err != nil {
		return err
	}

	for _, order := range due {
		if !s.claim(ctx, order.RecurringID) {
			continue
		}
		if err := s.processOrder(ctx, order); err != nil {
			log.Warn().Err(err).Str("recurring_id", order.RecurringID.String()).Msg("recurring charge failed")
			s.recordFailure(ctx, order)
			continue
		}
		s.recordSuccess(ctx, order)
	}
	return nil
}

// claim marks the order as taken for this sweep. SETNX with a TTL: a
// concurrent or overlapping sweep that loses the claim skips the order.
func (s *Service) claim(ctx context.Context, recurringID uuid.UUID) bool {
	key := fmt.Sprintf("recurring:claim:%s", recurringID)
	ok, err := s.Rdb.SetNX(ctx, key, "1", s.ClaimTTL).Result()
	if err != nil {
		log.Warn().Err(err).Str("recurring_id", recurringID.String()).Msg("recurring claim failed")
		return false
	}
	return ok
}

func (s *Service) processOrder(ctx context.Context, order domain.RecurringInvestment) error {
	// Creation rejects property-less orders; guard pre-existing rows anyway.
	if order.PropertyID == nil {
		return ErrPropertyRequired
	}

	var property domain.Property
	if err := s.DB.WithContext(ctx).Where("property_id = ?", order.PropertyID).First(&property).Error; err != nil {
		return err
	}

	price := property.TokenPrice * s.PlatformFeeMultiplier
	shares := int(math.Floor(order.Amount / price))
	if shares <= 0 {
		return ErrAmountBelowSharePrice
	}
	charge := math.Round(float64(shares)*price*100) / 100

	intent, err := s.Gateway.OpenIntent(ctx, payments.OpenIntentInput{
		UserID:        order.UserID,
		PropertyID:    order.PropertyID,
		Amount:        charge,
		Kind:          domain.TransactionTypeRecurring,
		Shares:        shares,
		PricePerShare: math.Round(price*100) / 100,
		Metadata: map[string]string{
			"recurring_id": order.RecurringID.String(),
		},
	})
	if err != nil {
		return err
	}

	// Off-session charges confirm synchronously; the webhook replay of the
	// same intent is a no-op because settlement is idempotent.
	_, err = s.Settler.Settle(ctx, intent.PaymentIntentID, nil)
	return err
}

func (s *Service) recordFailure(ctx context.Context, order domain.RecurringInvestment) {
	failures := order.ConsecutiveFailures + 1
	updates := map[string]interface{}{
		"consecutive_failures": failures,
		"next_run_at":          time.Now().Add(order.NextInterval()),
	}
	if failures >= domain.MaxConsecutiveFailures {
		updates["active"] = false
		log.Warn().Str("recurring_id", order.RecurringID.String()).
			Int("failures", failures).Msg("standing order deactivated after consecutive failures")
	}
	if err := s.DB.WithContext(ctx).Model(&domain.RecurringInvestment{}).
		Where("recurring_id = ?", order.RecurringID).
		Updates(updates).Error; err != nil {
		log.Error().Err(err).Str("recurring_id", order.RecurringID.String()).Msg("failed to record recurring failure")
	}
}

func (s *Service) recordSuccess(ctx context.Context, order domain.RecurringInvestment) {
	if err := s.DB.WithContext(ctx).Model(&domain.RecurringInvestment{}).
		Where("recurring_id = ?", order.RecurringID).
		Updates(map[string]interface{}{
			"consecutive_failures": 0,
			"next_run_at":          time.Now().Add(order.NextInterval()),
		}).Error; err != nil {
		log.Error().Err(err).Str("recurring_id", order.RecurringID.String()).Msg("failed to advance recurring order")
	}
}
