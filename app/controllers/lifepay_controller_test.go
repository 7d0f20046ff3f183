package controllers

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfox/shopfox/app/models"
	"github.com/shopfox/shopfox/internal/pkg/constants"
	"github.com/shopfox/shopfox/internal/pkg/lifepay"
)

type notifyBackend struct {
	order    *models.Order
	payments int
	comments []string
}

func (b *notifyBackend) LoadOrder(number string) (*models.Order, error) {
	if b.order == nil || b.order.Number != number {
		return nil, lifepay.ErrOrderNotFound
	}
	return b.order, nil
}

func (b *notifyBackend) SetOrderStatus(order *models.Order, status string) error {
	order.Status = status
	return nil
}

func (b *notifyBackend) RecordPayment(orderID uint, method string, amount decimal.Decimal, userID uint, comment string) error {
	b.payments++
	return nil
}

func (b *notifyBackend) AppendOrderComment(orderID uint, authorID uint, text string) error {
	b.comments = append(b.comments, text)
	return nil
}

func notifyApp(t *testing.T, backend *notifyBackend) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Post(constants.LifepayNotifyRoute, HandleLifepayNotify)

	cfg := lifepay.Config{
		Scheme:         lifepay.SchemeIPNv2,
		APIKey:         "sekret",
		StatusAfterPay: "processing",
	}
	prev := lifepayService
	lifepayService = func(c *fiber.Ctx) (*lifepay.Service, error) {
		notifyURL := c.BaseURL() + constants.LifepayNotifyRoute
		return lifepay.NewService(cfg, backend, backend, backend, notifyURL), nil
	}
	t.Cleanup(func() { lifepayService = prev })

	return app
}

func notifyOrder() *models.Order {
	return &models.Order{
		ID:       7,
		Number:   "12",
		UserID:   3,
		Currency: "RUB",
		Total:    decimal.RequireFromString("100.00"),
		Status:   models.OrderStatusPending,
	}
}

func signedNotifyForm(t *testing.T) url.Values {
	t.Helper()
	params := map[string]string{
		"tid":        "18061386",
		"service_id": "167",
		"order_id":   "12",
		"cost":       "100.00",
	}
	// httptest requests carry host example.com, so the canonical string is
	// computed over that base URL.
	check, err := lifepay.SignCanonical("POST", "http://example.com"+constants.LifepayNotifyRoute, params, "sekret")
	require.NoError(t, err)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("check", check)
	return form
}

func postNotify(t *testing.T, app *fiber.App, form url.Values) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest("POST", constants.LifepayNotifyRoute, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func TestHandleLifepayNotifyAcceptedBody(t *testing.T) {
	backend := &notifyBackend{order: notifyOrder()}
	app := notifyApp(t, backend)

	status, _, body := postNotify(t, app, signedNotifyForm(t))

	// The gateway retries delivery until it reads this literal body.
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "success", body)
	assert.Equal(t, 1, backend.payments)
	assert.Equal(t, "processing", backend.order.Status)
}

func TestHandleLifepayNotifyRedeliveryBody(t *testing.T) {
	backend := &notifyBackend{order: notifyOrder()}
	app := notifyApp(t, backend)
	form := signedNotifyForm(t)

	postNotify(t, app, form)
	status, _, body := postNotify(t, app, form)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "success", body)
	assert.Equal(t, 1, backend.payments, "redelivery must not add ledger entries")
}

func TestHandleLifepayNotifyTamperedCheckRedirects(t *testing.T) {
	backend := &notifyBackend{order: notifyOrder()}
	app := notifyApp(t, backend)

	form := signedNotifyForm(t)
	form.Set("check", "wrong")
	status, location, _ := postNotify(t, app, form)

	assert.Equal(t, fiber.StatusFound, status)
	assert.Equal(t, constants.CheckoutRoute, location)
	assert.Equal(t, 0, backend.payments)
	assert.Equal(t, models.OrderStatusPending, backend.order.Status)
}

func TestHandleLifepayNotifyUnreadableRedirects(t *testing.T) {
	backend := &notifyBackend{order: notifyOrder()}
	app := notifyApp(t, backend)

	form := url.Values{}
	form.Set("cost", "100.00")
	status, location, _ := postNotify(t, app, form)

	assert.Equal(t, fiber.StatusFound, status)
	assert.Equal(t, constants.PublicRoute, location)
	assert.Equal(t, 0, backend.payments)
}
