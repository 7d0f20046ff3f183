package lifepay

import (
	"strings"
	"testing"

	"github.com/shopfox/shopfox/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNotifyURL = "https://shop.example.com/payment/lifepay/notify"

type fakeBackend struct {
	order    *models.Order
	ops      []string
	comments []string
	payments []models.Payment
}

func (f *fakeBackend) LoadOrder(number string) (*models.Order, error) {
	if f.order == nil || f.order.Number != number {
		return nil, ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeBackend) SetOrderStatus(order *models.Order, status string) error {
	order.Status = status
	f.ops = append(f.ops, "status")
	return nil
}

func (f *fakeBackend) RecordPayment(orderID uint, method string, amount decimal.Decimal, userID uint, comment string) error {
	f.ops = append(f.ops, "ledger")
	f.payments = append(f.payments, models.Payment{OrderID: orderID, Method: method, Amount: amount, UserID: userID, Comment: comment})
	return nil
}

func (f *fakeBackend) AppendOrderComment(orderID uint, authorID uint, text string) error {
	f.ops = append(f.ops, "comment")
	f.comments = append(f.comments, text)
	return nil
}

func reconcilerConfig() Config {
	return Config{
		Scheme:         SchemeIPNv2,
		MerchantLogin:  "shop1",
		Secret:         "sekret",
		ServiceID:      "167",
		APIKey:         "sekret",
		StatusAfterPay: "processing",
		UseServerList:  true,
		ServerList:     "10.0.0.1",
	}
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:       7,
		Number:   "12",
		UserID:   3,
		Currency: "RUB",
		Total:    decimal.RequireFromString("100.00"),
		Status:   models.OrderStatusPending,
	}
}

func signedNotification(t *testing.T, key string) Notification {
	t.Helper()
	n := Notification{
		"tid":        "18061386",
		"service_id": "167",
		"order_id":   "12",
		"cost":       "100.00",
	}
	check, err := SignCanonical("POST", testNotifyURL, map[string]string(n), key)
	require.NoError(t, err)
	n["check"] = check
	return n
}

func TestHandleNotificationAccepted(t *testing.T) {
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(reconcilerConfig(), backend, backend, backend, testNotifyURL)

	res, err := svc.HandleNotification(signedNotification(t, "sekret"), "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, OutcomeAccepted, res.Outcome)
	assert.Equal(t, "processing", backend.order.Status)
	assert.Equal(t, "processing", res.Order.Status)

	// Audit comment precedes the ledger entry, which precedes the status
	// transition.
	assert.Equal(t, []string{"comment", "ledger", "status"}, backend.ops)

	require.Len(t, backend.payments, 1)
	assert.Equal(t, "lifepay", backend.payments[0].Method)
	assert.Equal(t, "100.00", FormatAmount(backend.payments[0].Amount))
	assert.Equal(t, uint(3), backend.payments[0].UserID)

	require.Len(t, backend.comments, 1)
	assert.Contains(t, backend.comments[0], "transaction 18061386")
	assert.Contains(t, backend.comments[0], "order_id=12")
}

func TestHandleNotificationIdempotentRedelivery(t *testing.T) {
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(reconcilerConfig(), backend, backend, backend, testNotifyURL)

	n := signedNotification(t, "sekret")

	res, err := svc.HandleNotification(n, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, res.Outcome)

	res, err = svc.HandleNotification(n, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)

	// Exactly one ledger entry total and no further side effects.
	assert.Len(t, backend.payments, 1)
	assert.Equal(t, []string{"comment", "ledger", "status"}, backend.ops)
}

func TestHandleNotificationTamperedCheck(t *testing.T) {
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(reconcilerConfig(), backend, backend, backend, testNotifyURL)

	n := signedNotification(t, "sekret")
	n["check"] = "wrong"

	res, err := svc.HandleNotification(n, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, OutcomeDeclined, res.Outcome)
	assert.Equal(t, models.OrderStatusPending, backend.order.Status)
	assert.Empty(t, backend.payments)
	assert.Equal(t, []string{"comment"}, backend.ops)
	assert.Contains(t, backend.comments[0], "declined")
}

func TestHandleNotificationKeyedWithWrongSecret(t *testing.T) {
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(reconcilerConfig(), backend, backend, backend, testNotifyURL)

	res, err := svc.HandleNotification(signedNotification(t, "other-key"), "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, OutcomeDeclined, res.Outcome)
	assert.Empty(t, backend.payments)
}

func TestHandleNotificationIPGate(t *testing.T) {
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(reconcilerConfig(), backend, backend, backend, testNotifyURL)

	// Valid signature from a source that is not allow-listed.
	res, err := svc.HandleNotification(signedNotification(t, "sekret"), "10.0.0.2")
	require.NoError(t, err)

	assert.Equal(t, OutcomeDeclined, res.Outcome)
	assert.Equal(t, models.OrderStatusPending, backend.order.Status)
	assert.Empty(t, backend.payments)
}

func TestHandleNotificationIPGateDisabled(t *testing.T) {
	cfg := reconcilerConfig()
	cfg.UseServerList = false
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(cfg, backend, backend, backend, testNotifyURL)

	res, err := svc.HandleNotification(signedNotification(t, "sekret"), "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, res.Outcome)
}

func TestHandleNotificationUnreadable(t *testing.T) {
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(reconcilerConfig(), backend, backend, backend, testNotifyURL)

	res, err := svc.HandleNotification(Notification{"cost": "100.00"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnreadable, res.Outcome)
	assert.Empty(t, backend.ops)

	res, err = svc.HandleNotification(Notification{"order_id": "999"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnreadable, res.Outcome)
	assert.Empty(t, backend.ops)
}

func TestHandleNotificationLegacyIPN(t *testing.T) {
	cfg := reconcilerConfig()
	cfg.Scheme = SchemeIPNv1
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(cfg, backend, backend, backend, testNotifyURL)

	n := Notification{
		"tid":        "18061386",
		"service_id": "167",
		"order_id":   "12",
		"cost":       "100.00",
		"version":    "1.0",
	}
	n["check"] = SignLegacy(n.WithoutCheck(), "sekret")

	res, err := svc.HandleNotification(n, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, res.Outcome)
	assert.Equal(t, "processing", backend.order.Status)
}

func TestHandleNotificationOffsiteRelay(t *testing.T) {
	cfg := reconcilerConfig()
	cfg.Scheme = SchemeOffsite
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(cfg, backend, backend, backend, testNotifyURL)

	n := Notification{
		"x_invoice_num": "12",
		"x_trans_id":    "18061386",
		"x_amount":      "100.00",
		"x_MD5_Hash":    strings.ToUpper(OffsiteHash("sekret", "shop1", "18061386", "100.00")),
	}

	res, err := svc.HandleNotification(n, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, res.Outcome)

	backend = &fakeBackend{order: pendingOrder()}
	svc = NewService(cfg, backend, backend, backend, testNotifyURL)
	n["x_MD5_Hash"] = "00000000000000000000000000000000"

	res, err = svc.HandleNotification(n, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, res.Outcome)
	assert.Equal(t, models.OrderStatusPending, backend.order.Status)
}

func TestHandleCancel(t *testing.T) {
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(reconcilerConfig(), backend, backend, backend, testNotifyURL)

	res, err := svc.HandleCancel(Notification{"order_id": "12", "reason": "user abort"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeDeclined, res.Outcome)
	assert.Equal(t, models.OrderStatusPending, backend.order.Status)
	assert.Equal(t, []string{"comment"}, backend.ops)
	assert.Contains(t, backend.comments[0], "reason=user abort")
}

func TestHandleReturn(t *testing.T) {
	backend := &fakeBackend{order: pendingOrder()}
	svc := NewService(reconcilerConfig(), backend, backend, backend, testNotifyURL)

	res, err := svc.HandleReturn(Notification{"order_id": "12"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
	assert.Equal(t, "12", res.Order.Number)

	res, err = svc.HandleReturn(Notification{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnreadable, res.Outcome)
}
