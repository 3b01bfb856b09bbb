package recurring

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	recsvc "brickshare-backend/internal/application/recurring"
	"brickshare-backend/internal/domain"
	"brickshare-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRecurringHandlerTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.RecurringInvestment{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := &recsvc.Service{
		DB:                    db,
		Rdb:                   rdb,
		ClaimTTL:              time.Minute,
		PlatformFeeMultiplier: 1.05,
	}
	return &Handlers{Service: svc}, db
}

func recurringApp(h *Handlers) *fiber.App {
	app := fiber.New()
	g := app.Group("/recurring", middleware.RequireUser())
	g.Post("/", h.CreateOrder)
	g.Get("/", h.ListOrders)
	g.Delete("/:id", h.DeactivateOrder)
	return app
}

func TestCreateOrder_Valid(t *testing.T) {
	h, db := setupRecurringHandlerTest(t)
	app := recurringApp(h)
	userID := uuid.New()

	body, _ := json.Marshal(map[string]interface{}{
		"property_id": uuid.New().String(),
		"amount":      500,
		"frequency":   "monthly",
	})
	req := httptest.NewRequest("POST", "/recurring/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID.String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var order domain.RecurringInvestment
	require.NoError(t, db.Where("user_id = ?", userID).First(&order).Error)
	assert.True(t, order.Active)
	assert.Equal(t, domain.FrequencyMonthly, order.Frequency)
}

func TestCreateOrder_InvalidFrequency(t *testing.T) {
	h, _ := setupRecurringHandlerTest(t)
	app := recurringApp(h)

	body, _ := json.Marshal(map[string]interface{}{
		"property_id": uuid.New().String(),
		"amount":      500,
		"frequency":   "daily",
	})
	req := httptest.NewRequest("POST", "/recurring/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", uuid.New().String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListOrders_OwnOnly(t *testing.T) {
	h, db := setupRecurringHandlerTest(t)
	app := recurringApp(h)
	userID := uuid.New()
	otherID := uuid.New()
	propertyID := uuid.New()

	for _, uid := range []uuid.UUID{userID, otherID} {
		require.NoError(t, db.Create(&domain.RecurringInvestment{
			UserID: uid, PropertyID: &propertyID, Amount: 500,
			Frequency: domain.FrequencyMonthly,
			NextRunAt: time.Now().Add(time.Hour), Active: true,
		}).Error)
	}

	req := httptest.NewRequest("GET", "/recurring/", nil)
	req.Header.Set("X-User-ID", userID.String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data, _ := result["data"].([]interface{})
	assert.Len(t, data, 1)
}

func TestDeactivateOrder_OwnerOnly(t *testing.T) {
	h, db := setupRecurringHandlerTest(t)
	app := recurringApp(h)
	userID := uuid.New()
	propertyID := uuid.New()

	order := &domain.RecurringInvestment{
		UserID: userID, PropertyID: &propertyID, Amount: 500,
		Frequency: domain.FrequencyMonthly,
		NextRunAt: time.Now().Add(time.Hour), Active: true,
	}
	require.NoError(t, db.Create(order).Error)

	// A stranger cannot deactivate it.
	req := httptest.NewRequest("DELETE", "/recurring/"+order.RecurringID.String(), nil)
	req.Header.Set("X-User-ID", uuid.New().String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/recurring/"+order.RecurringID.String(), nil)
	req.Header.Set("X-User-ID", userID.String())
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var updated domain.RecurringInvestment
	require.NoError(t, db.First(&updated, "recurring_id = ?", order.RecurringID).Error)
	assert.False(t, updated.Active)
}
