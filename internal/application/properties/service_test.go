package properties

import (
	"context"
	"sync"
	"testing"

	"brickshare-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPropertiesTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// Single connection so concurrent reservations serialize at the store, as
	// Postgres row locking does in production.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Property{}))
	return &Service{DB: db, OwnershipCapFraction: 0.49}, db
}

func TestCreateProperty_DerivesTokenModel(t *testing.T) {
	svc, _ := setupPropertiesTest(t)

	p, err := svc.CreateProperty(context.Background(), CreatePropertyInput{
		OwnerID:       uuid.New(),
		Title:         "Maple Row Duplex",
		Address:       "14 Maple Row",
		City:          "Austin",
		Country:       "US",
		Valuation:     400000,
		SquareFootage: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, 200.0, p.TokenPrice)
	assert.Equal(t, 980, p.MaxShares)
	assert.Equal(t, 0, p.CurrentShares)
	assert.Equal(t, domain.PropertyStatusActive, p.Status)
}

func TestCreateProperty_PendingFeeThenActivate(t *testing.T) {
	svc, db := setupPropertiesTest(t)

	p, err := svc.CreateProperty(context.Background(), CreatePropertyInput{
		OwnerID:       uuid.New(),
		Title:         "Fee Pending",
		Valuation:     400000,
		SquareFootage: 2000,
		PendingFee:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyStatusPending, p.Status)

	// Pending listings take no reservations.
	err = svc.ReserveShares(context.Background(), p.PropertyID, 49)
	assert.ErrorIs(t, err, ErrPropertyInactive)

	require.NoError(t, ActivatePropertyTx(db, p.PropertyID))
	require.NoError(t, svc.ReserveShares(context.Background(), p.PropertyID, 49))

	// Re-activation of an active property is a no-op, not an error.
	require.NoError(t, ActivatePropertyTx(db, p.PropertyID))
	assert.ErrorIs(t, ActivatePropertyTx(db, uuid.New()), ErrPropertyNotFound)
}

func TestCreateProperty_RejectsBadEconomics(t *testing.T) {
	svc, _ := setupPropertiesTest(t)

	_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{
		OwnerID:       uuid.New(),
		Valuation:     400000,
		SquareFootage: 0,
	})
	assert.Error(t, err)
}

func TestReserveShares_WithinCap(t *testing.T) {
	svc, db := setupPropertiesTest(t)
	propertyID := seedProperty(t, db, 980, 0)

	require.NoError(t, svc.ReserveShares(context.Background(), propertyID, 100))

	var p domain.Property
	require.NoError(t, db.First(&p, "property_id = ?", propertyID).Error)
	assert.Equal(t, 100, p.CurrentShares)
}

func TestReserveShares_CapExceeded(t *testing.T) {
	svc, db := setupPropertiesTest(t)
	propertyID := seedProperty(t, db, 980, 975)

	err := svc.ReserveShares(context.Background(), propertyID, 6)
	assert.ErrorIs(t, err, ErrInsufficientShares)

	var p domain.Property
	require.NoError(t, db.First(&p, "property_id = ?", propertyID).Error)
	assert.Equal(t, 975, p.CurrentShares, "failed reservation must not move the counter")
}

func TestReserveShares_InactiveProperty(t *testing.T) {
	svc, db := setupPropertiesTest(t)
	propertyID := uuid.New()
	require.NoError(t, db.Create(&domain.Property{
		PropertyID: propertyID, OwnerID: uuid.New(),
		Valuation: 400000, SquareFootage: 2000, TokenPrice: 200,
		MaxShares: 980, CurrentShares: 0, Status: domain.PropertyStatusDraft,
	}).Error)

	err := svc.ReserveShares(context.Background(), propertyID, 10)
	assert.ErrorIs(t, err, ErrPropertyInactive)
}

func TestReserveShares_UnknownProperty(t *testing.T) {
	svc, _ := setupPropertiesTest(t)
	err := svc.ReserveShares(context.Background(), uuid.New(), 10)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

// Two competing reservations for 8 and 5 shares against 10 available: exactly
// one succeeds, the counter lands on 978 or 975, never 983.
func TestReserveShares_ConcurrentRace(t *testing.T) {
	svc, db := setupPropertiesTest(t)
	propertyID := seedProperty(t, db, 980, 970)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	counts := []int{8, 5}
	for i, n := range counts {
		wg.Add(1)
		go func(i, n int) {
			defer wg.Done()
			errs[i] = svc.ReserveShares(context.Background(), propertyID, n)
		}(i, n)
	}
	wg.Wait()

	succeeded := 0
	reserved := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			reserved += counts[i]
		} else {
			assert.ErrorIs(t, err, ErrInsufficientShares)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one of the competing requests fits")

	var p domain.Property
	require.NoError(t, db.First(&p, "property_id = ?", propertyID).Error)
	assert.Equal(t, 970+reserved, p.CurrentShares)
	assert.LessOrEqual(t, p.CurrentShares, p.MaxShares)
}

// Many concurrent single-share reservations against a small remainder: the
// prefix that fits wins, the rest fail, and the cap invariant holds.
func TestReserveShares_ConcurrentSaturation(t *testing.T) {
	svc, db := setupPropertiesTest(t)
	propertyID := seedProperty(t, db, 100, 90)

	const attempts = 25
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.ReserveShares(context.Background(), propertyID, 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 10, succeeded)

	var p domain.Property
	require.NoError(t, db.First(&p, "property_id = ?", propertyID).Error)
	assert.Equal(t, 100, p.CurrentShares)
}

func TestReleaseShares_RefundPathOnly(t *testing.T) {
	_, db := setupPropertiesTest(t)
	propertyID := seedProperty(t, db, 980, 50)

	require.NoError(t, ReleaseSharesTx(db, propertyID, 20))

	var p domain.Property
	require.NoError(t, db.First(&p, "property_id = ?", propertyID).Error)
	assert.Equal(t, 30, p.CurrentShares)

	// Releasing more than reserved is refused rather than going negative.
	assert.Error(t, ReleaseSharesTx(db, propertyID, 31))
}

func seedProperty(t *testing.T, db *gorm.DB, maxShares, currentShares int) uuid.UUID {
	t.Helper()
	propertyID := uuid.New()
	require.NoError(t, db.Create(&domain.Property{
		PropertyID:    propertyID,
		OwnerID:       uuid.New(),
		Title:         "Test Property",
		Valuation:     400000,
		SquareFootage: 2000,
		TokenPrice:    200,
		MaxShares:     maxShares,
		CurrentShares: currentShares,
		Status:        domain.PropertyStatusActive,
	}).Error)
	return propertyID
}
