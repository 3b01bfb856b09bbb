package admission

import (
	"context"
	"testing"

	"brickshare-backend/internal/application/properties"
	"brickshare-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAdmissionTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Property{}))
	propSvc := &properties.Service{DB: db, OwnershipCapFraction: 0.49}
	return &Service{
		Properties:            propSvc,
		MinInvestmentFraction: 0.05,
		PlatformFeeMultiplier: 1.05,
	}, db
}

func seedActiveProperty(t *testing.T, db *gorm.DB, maxShares, currentShares int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&domain.Property{
		PropertyID: id, OwnerID: uuid.New(), Title: "Test",
		Valuation: 400000, SquareFootage: 2000, TokenPrice: 200,
		MaxShares: maxShares, CurrentShares: currentShares,
		Status: domain.PropertyStatusActive,
	}).Error)
	return id
}

func TestAdmit_Accepts(t *testing.T) {
	svc, db := setupAdmissionTest(t)
	propertyID := seedActiveProperty(t, db, 980, 100)

	d, err := svc.Admit(context.Background(), propertyID, 100)
	require.NoError(t, err)
	// Checkout price carries the platform fee; $200 × 1.05 = $210.
	assert.Equal(t, 210.0, d.PricePerShare)
	assert.Equal(t, 21000.0, d.TotalCost)
	assert.Equal(t, 880, d.AvailableShares)
	assert.Equal(t, 49, d.MinimumShares)
}

func TestAdmit_BelowMinimum(t *testing.T) {
	svc, db := setupAdmissionTest(t)
	propertyID := seedActiveProperty(t, db, 980, 0)

	d, err := svc.Admit(context.Background(), propertyID, 48)
	assert.ErrorIs(t, err, ErrBelowMinimumInvestment)
	// The rejection still carries the numbers the client needs to explain it.
	require.NotNil(t, d)
	assert.Equal(t, 49, d.MinimumShares)
}

func TestAdmit_InsufficientShares(t *testing.T) {
	svc, db := setupAdmissionTest(t)
	propertyID := seedActiveProperty(t, db, 980, 931)

	d, err := svc.Admit(context.Background(), propertyID, 50)
	assert.ErrorIs(t, err, properties.ErrInsufficientShares)
	require.NotNil(t, d)
	assert.Equal(t, 49, d.AvailableShares)
}

func TestAdmit_InvalidShares(t *testing.T) {
	svc, db := setupAdmissionTest(t)
	propertyID := seedActiveProperty(t, db, 980, 0)

	_, err := svc.Admit(context.Background(), propertyID, 0)
	assert.ErrorIs(t, err, ErrInvalidShareCount)
	_, err = svc.Admit(context.Background(), propertyID, -3)
	assert.ErrorIs(t, err, ErrInvalidShareCount)
}

func TestAdmit_UnknownOrInactiveProperty(t *testing.T) {
	svc, db := setupAdmissionTest(t)

	_, err := svc.Admit(context.Background(), uuid.New(), 50)
	assert.ErrorIs(t, err, properties.ErrPropertyNotFound)

	draftID := uuid.New()
	require.NoError(t, db.Create(&domain.Property{
		PropertyID: draftID, OwnerID: uuid.New(),
		Valuation: 400000, SquareFootage: 2000, TokenPrice: 200,
		MaxShares: 980, Status: domain.PropertyStatusDraft,
	}).Error)
	_, err = svc.Admit(context.Background(), draftID, 50)
	assert.ErrorIs(t, err, properties.ErrPropertyInactive)
}
