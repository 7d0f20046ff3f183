package lifepay

import (
	"sort"
	"strings"

	"github.com/shopfox/shopfox/app/models"
	"github.com/shopspring/decimal"
)

// Scheme selects the gateway API generation and with it the signing
// algorithm and field layout. The three variants share one reconciler and
// one builder skeleton.
type Scheme string

const (
	// SchemeOffsite is the legacy MD5-signed form redirect flow.
	SchemeOffsite Scheme = "offsite"
	// SchemeIPNv1 is the IPN flow signed with the concatenation MD5 hash.
	SchemeIPNv1 Scheme = "1.0"
	// SchemeIPNv2 is the IPN flow signed with the canonical-request HMAC.
	SchemeIPNv2 Scheme = "2.0"
)

// Config is the immutable per-request snapshot of the gateway settings.
// The reconciler and builder never mutate it and never reach back into the
// settings store.
type Config struct {
	Scheme            Scheme
	MerchantLogin     string
	Secret            string
	ServiceID         string
	APIKey            string
	DescriptionPrefix string
	StatusAfterPay    string
	UseServerList     bool
	ServerList        string
	VATProducts       map[string]string
	VATShipping       string
	UnitCode          string
	PaymentObject     string
	PaymentMethodCode string
	AttachEmail       bool
}

// ConfigFromModel builds the snapshot from the stored settings row.
func ConfigFromModel(m *models.PaymentConfig) Config {
	return Config{
		Scheme:            Scheme(m.APIVersion),
		MerchantLogin:     m.MerchantLogin,
		Secret:            m.Secret,
		ServiceID:         m.ServiceID,
		APIKey:            m.APIKey,
		DescriptionPrefix: m.DescriptionPrefix,
		StatusAfterPay:    m.StatusAfterPay,
		UseServerList:     m.UseServerList,
		ServerList:        m.ServerList,
		VATProducts:       m.VATProducts,
		VATShipping:       m.VATShipping,
		UnitCode:          m.UnitCode,
		PaymentObject:     m.PaymentObject,
		PaymentMethodCode: m.PaymentMethodCode,
		AttachEmail:       m.AttachEmail,
	}
}

// AllowedServers parses the newline-separated IP allow-list.
func (c Config) AllowedServers() []string {
	var out []string
	for _, line := range strings.Split(c.ServerList, "\n") {
		ip := strings.TrimSpace(line)
		if ip != "" {
			out = append(out, ip)
		}
	}
	return out
}

// IPAllowed reports whether the client IP is on the configured allow-list.
func (c Config) IPAllowed(ip string) bool {
	for _, allowed := range c.AllowedServers() {
		if allowed == ip {
			return true
		}
	}
	return false
}

// VATForProduct returns the configured VAT code for a product type, falling
// back to "N" the way the settings form defaults each type.
func (c Config) VATForProduct(productType string) string {
	if v, ok := c.VATProducts[productType]; ok && v != "" {
		return v
	}
	return "N"
}

// Notification is the raw field set posted back by the gateway. The field
// names vary by scheme (x_* for the offsite flow, tid/order_id/check for
// the IPN flows).
type Notification map[string]string

// OrderNumber resolves the order reference from either field layout.
func (n Notification) OrderNumber() string {
	if v := n["order_id"]; v != "" {
		return v
	}
	return n["x_invoice_num"]
}

// TransactionID resolves the gateway transaction id from either layout.
func (n Notification) TransactionID() string {
	if v := n["tid"]; v != "" {
		return v
	}
	return n["x_trans_id"]
}

// Check returns the posted signature field for the IPN flows.
func (n Notification) Check() string {
	return n["check"]
}

// WithoutCheck returns a copy with the signature field removed, the shape
// the canonical signature is computed over.
func (n Notification) WithoutCheck() map[string]string {
	out := make(map[string]string, len(n))
	for k, v := range n {
		if k == "check" {
			continue
		}
		out[k] = v
	}
	return out
}

// Dump renders the raw payload as sorted key=value lines for audit comments.
func (n Notification) Dump() string {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(n[k])
		b.WriteString("; ")
	}
	return strings.TrimSuffix(b.String(), "; ")
}

// OrderStore is the narrow order persistence surface the reconciler needs.
type OrderStore interface {
	LoadOrder(number string) (*models.Order, error)
	SetOrderStatus(order *models.Order, status string) error
}

// Ledger appends immutable payment-received records.
type Ledger interface {
	RecordPayment(orderID uint, method string, amount decimal.Decimal, userID uint, comment string) error
}

// CommentLog appends audit comments to an order.
type CommentLog interface {
	AppendOrderComment(orderID uint, authorID uint, text string) error
}
