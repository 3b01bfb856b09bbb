package properties

import (
	"context"

	"brickshare-backend/internal/domain"
	"brickshare-backend/internal/tokenomics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service owns property records and is the sole writer of current_shares.
type Service struct {
	DB *gorm.DB
	// OwnershipCapFraction is the compliance ceiling passed to the tokenomics
	// calculator at listing time.
	OwnershipCapFraction float64
}

type CreatePropertyInput struct {
	OwnerID       uuid.UUID
	Title         string
	Address       string
	City          string
	Country       string
	Valuation     float64
	SquareFootage int
	// PendingFee creates the listing in pending status; it goes active when
	// the listing-fee payment settles.
	PendingFee bool
}

// CreateProperty derives the token model and persists the listing. The owner's
// eligibility is verified upstream; this validates the economics.
func (s *Service) CreateProperty(ctx context.Context, in CreatePropertyInput) (*domain.Property, error) {
	eco, err := tokenomics.Calculate(in.Valuation, in.SquareFootage, s.OwnershipCapFraction)
	if err != nil {
		return nil, err
	}

	status := domain.PropertyStatusActive
	if in.PendingFee {
		status = domain.PropertyStatusPending
	}
	property := &domain.Property{
		OwnerID:       in.OwnerID,
		Title:         in.Title,
		Address:       in.Address,
		City:          in.City,
		Country:       in.Country,
		Valuation:     in.Valuation,
		SquareFootage: in.SquareFootage,
		TokenPrice:    eco.TokenPrice,
		MaxShares:     eco.TokenSupply,
		CurrentShares: 0,
		Status:        status,
	}
	if err := s.DB.WithContext(ctx).Create(property).Error; err != nil {
		return nil, err
	}
	return property, nil
}

// ActivatePropertyTx flips a pending listing to active once its listing fee
// has settled. Activating an already-active property is a no-op.
func ActivatePropertyTx(tx *gorm.DB, propertyID uuid.UUID) error {
	res := tx.Model(&domain.Property{}).
		Where("property_id = ? AND status = ?", propertyID, domain.PropertyStatusPending).
		UpdateColumn("status", domain.PropertyStatusActive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var property domain.Property
		if err := tx.Where("property_id = ?", propertyID).First(&property).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPropertyNotFound
			}
			return err
		}
	}
	return nil
}

// Get returns a live (not cached) snapshot of the property.
func (s *Service) Get(ctx context.Context, propertyID uuid.UUID) (*domain.Property, error) {
	var property domain.Property
	if err := s.DB.WithContext(ctx).Where("property_id = ?", propertyID).First(&property).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

// List returns active listings, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Property, error) {
	var props []domain.Property
	if err := s.DB.WithContext(ctx).
		Where("status = ?", domain.PropertyStatusActive).
		Order(`"createdAt" DESC`).
		Find(&props).Error; err != nil {
		return nil, err
	}
	return props, nil
}

// ReserveShares atomically reserves count shares against the cap.
func (s *Service) ReserveShares(ctx context.Context, propertyID uuid.UUID, count int) error {
	return ReserveSharesTx(s.DB.WithContext(ctx), propertyID, count)
}

// ReserveSharesTx increments current_shares by count only if the result stays
// within max_shares, as a single conditional UPDATE. Concurrent investors
// racing on the same property are linearized by the store, never by
// application-side read-then-write. Callable inside an enclosing transaction.
func ReserveSharesTx(tx *gorm.DB, propertyID uuid.UUID, count int) error {
	if count <= 0 {
		return ErrInsufficientShares
	}
	res := tx.Model(&domain.Property{}).
		Where("property_id = ? AND status = ? AND current_shares + ? <= max_shares",
			propertyID, domain.PropertyStatusActive, count).
		UpdateColumn("current_shares", gorm.Expr("current_shares + ?", count))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the cap would be exceeded, the property is not active, or it
		// does not exist. Disambiguate for the caller.
		var property domain.Property
		if err := tx.Where("property_id = ?", propertyID).First(&property).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPropertyNotFound
			}
			return err
		}
		if property.Status != domain.PropertyStatusActive {
			return ErrPropertyInactive
		}
		return ErrInsufficientShares
	}
	return nil
}

// ReleaseSharesTx is the administrative reversal used only by the refund path.
// It never runs in the normal investment flow.
func ReleaseSharesTx(tx *gorm.DB, propertyID uuid.UUID, count int) error {
	if count <= 0 {
		return nil
	}
	res := tx.Model(&domain.Property{}).
		Where("property_id = ? AND current_shares >= ?", propertyID, count).
		UpdateColumn("current_shares", gorm.Expr("current_shares - ?", count))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Warn().Str("property_id", propertyID.String()).Int("count", count).
			Msg("share release skipped: would drive current_shares negative")
		return ErrPropertyNotFound
	}
	return nil
}
