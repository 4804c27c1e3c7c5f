package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finledger/internal/models"
	"finledger/internal/repository/memory"
	"finledger/internal/service"
	"finledger/pkg/middleware"
)

type handlerFixture struct {
	app     *fiber.App
	user    *models.User
	account *models.Account
	cat     *models.Category
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	ctx := context.Background()
	stores := memory.NewStores()
	logger := zap.NewNop()

	txService := service.NewTransactionService(stores.Users, stores.Accounts, stores.Categories, stores.Transactions, logger)
	debtService := service.NewDebtService(stores.Transactions, stores.Accounts, stores.Persons, stores.DebtShares, stores.DebtPayments, logger)
	settlementService := service.NewSettlementService(debtService, stores.DebtShares, stores.DebtPayments, logger)

	app := fiber.New()
	v1 := app.Group("/api/v1", middleware.RequireUser(logger))
	v1.Post("/transactions", NewTransactionHandler(txService, logger).Create)
	v1.Post("/settlements/settle-up", NewSettlementHandler(settlementService, logger).SettleUp)

	now := time.Now().UTC()
	user := &models.User{ID: uuid.New(), Username: "demo", Email: "demo@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, stores.Users.Create(ctx, user))

	// A time-based (version 1) id, as minted by systems this service
	// does not control. Requests carrying it must still be accepted.
	account := &models.Account{
		ID:           uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		UserID:       user.ID,
		Name:         "Checking",
		Type:         models.AccountChecking,
		BalanceMinor: 100_000,
		Currency:     "EUR",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, stores.Accounts.Create(ctx, account))

	cat := &models.Category{ID: uuid.New(), UserID: user.ID, Name: "Groceries", Type: models.CategoryExpense, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, stores.Categories.Create(ctx, cat))

	return &handlerFixture{app: app, user: user, account: account, cat: cat}
}

func (f *handlerFixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", f.user.ID.String())
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCreateTransactionHandler_AcceptsAnyUUIDVersion(t *testing.T) {
	f := newHandlerFixture(t)
	date := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)

	body := fmt.Sprintf(`{"account_id":%q,"date":%q,"amount_minor":2500,"type":"expense","category_id":%q}`,
		f.account.ID, date, f.cat.ID)
	resp := f.post(t, "/api/v1/transactions", body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateTransactionHandler_MalformedIDs(t *testing.T) {
	f := newHandlerFixture(t)
	date := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)

	t.Run("account_id", func(t *testing.T) {
		body := fmt.Sprintf(`{"account_id":"not-a-uuid","date":%q,"amount_minor":2500,"type":"expense","category_id":%q}`,
			date, f.cat.ID)
		resp := f.post(t, "/api/v1/transactions", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("category_id", func(t *testing.T) {
		body := fmt.Sprintf(`{"account_id":%q,"date":%q,"amount_minor":2500,"type":"expense","category_id":"not-a-uuid"}`,
			f.account.ID, date)
		resp := f.post(t, "/api/v1/transactions", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSettleUpHandler_MalformedPersonID(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.post(t, "/api/v1/settlements/settle-up", `{"person_id":"nope","amount_minor":1000}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequireUserHeader(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
