package wallets

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	walletsvc "brickshare-backend/internal/application/wallets"
	"brickshare-backend/internal/domain"
	"brickshare-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWalletsTest(t *testing.T) (*Handlers, *walletsvc.Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Wallet{}, &domain.WalletTransaction{}, &domain.Transaction{},
	))
	svc := &walletsvc.Service{DB: db, Currency: "USD"}
	return &Handlers{Service: svc}, svc, db
}

func walletsApp(h *Handlers) *fiber.App {
	app := fiber.New()
	g := app.Group("/wallets", middleware.RequireUser())
	g.Get("/me", h.ViewWallet)
	g.Get("/me/transactions", h.ViewHistory)
	g.Post("/withdraw", h.Withdraw)
	return app
}

func TestViewWallet_CreatesOnFirstRead(t *testing.T) {
	h, _, db := setupWalletsTest(t)
	app := walletsApp(h)
	userID := uuid.New()

	req := httptest.NewRequest("GET", "/wallets/me", nil)
	req.Header.Set("X-User-ID", userID.String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["balance"])

	var count int64
	db.Model(&domain.Wallet{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestViewWallet_RequiresUser(t *testing.T) {
	h, _, _ := setupWalletsTest(t)
	app := walletsApp(h)

	req := httptest.NewRequest("GET", "/wallets/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestWithdraw_DebitsBalance(t *testing.T) {
	h, svc, _ := setupWalletsTest(t)
	app := walletsApp(h)
	userID := uuid.New()

	_, err := svc.Credit(context.Background(), userID, 500, "sale_proceeds", nil)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]interface{}{"amount": 120})
	req := httptest.NewRequest("POST", "/wallets/withdraw", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID.String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, "withdrawal", data["type"])
	assert.Equal(t, "completed", data["status"])
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	h, _, _ := setupWalletsTest(t)
	app := walletsApp(h)

	body, _ := json.Marshal(map[string]interface{}{"amount": 50})
	req := httptest.NewRequest("POST", "/wallets/withdraw", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", uuid.New().String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestViewHistory_NewestFirst(t *testing.T) {
	h, svc, _ := setupWalletsTest(t)
	app := walletsApp(h)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.Credit(ctx, userID, 100, "deposit", nil)
	require.NoError(t, err)
	_, err = svc.Debit(ctx, userID, 40, "withdrawal", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/wallets/me/transactions", nil)
	req.Header.Set("X-User-ID", userID.String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data, _ := result["data"].([]interface{})
	assert.Len(t, data, 2)
}
