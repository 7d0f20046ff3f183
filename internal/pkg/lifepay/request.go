package lifepay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopfox/shopfox/app/models"
	"github.com/shopspring/decimal"
)

// Fixed gateway endpoints per API generation.
const (
	OffsiteGatewayURL = "https://lifepay.com/ru/pay/AuthorizeNet"
	InvoiceGatewayURL = "https://partner.life-pay.ru/alba/input/"
)

const (
	lineItemSeparator  = "<|>"
	lineItemTerminator = "0<|>\n"
)

var (
	ErrMissingTotal    = errors.New("lifepay: order total is missing or not positive")
	ErrMissingCurrency = errors.New("lifepay: order currency is missing")
)

// Request is the flat key→value payload posted to the gateway, including the
// computed signature field for the configured scheme.
type Request struct {
	URL    string
	Fields map[string]string
}

// LineItem is a normalized product or shipping entry embedded in the invoice
// payload of the 1.0/2.0 flows.
type LineItem struct {
	Code          string `json:"code,omitempty"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Quantity      int    `json:"quantity"`
	Sum           string `json:"sum"`
	Unit          string `json:"unit,omitempty"`
	VAT           string `json:"vat,omitempty"`
	PaymentObject string `json:"payment_object,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// Builder assembles outbound payment requests for one configuration
// snapshot. It is stateless apart from the injected clock.
type Builder struct {
	cfg Config
	now func() time.Time
}

// NewBuilder creates a builder. A nil clock defaults to time.Now.
func NewBuilder(cfg Config, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{cfg: cfg, now: now}
}

// Build produces the redirect payload for the order. relayURL is the absolute
// URL of the notification endpoint the gateway posts back to.
func (b *Builder) Build(order *models.Order, relayURL string) (*Request, error) {
	if !order.Total.IsPositive() {
		return nil, ErrMissingTotal
	}
	if order.Currency == "" {
		return nil, ErrMissingCurrency
	}

	if b.cfg.Scheme == SchemeOffsite {
		return b.buildOffsite(order, relayURL), nil
	}
	return b.buildInvoice(order)
}

func (b *Builder) buildOffsite(order *models.Order, relayURL string) *Request {
	amount := FormatAmount(order.Total)
	now := strconv.FormatInt(b.now().Unix(), 10)

	fields := map[string]string{
		"x_description":    b.cfg.DescriptionPrefix + order.Number,
		"x_login":          b.cfg.MerchantLogin,
		"x_amount":         amount,
		"x_currency_code":  order.Currency,
		"x_fp_sequence":    order.Number,
		"x_fp_timestamp":   now,
		"x_fp_hash":        OutboundHash(b.cfg.MerchantLogin, order.Number, now, amount, order.Currency, b.cfg.Secret),
		"x_invoice_num":    order.Number,
		"x_relay_response": "TRUE",
		"x_relay_url":      relayURL,
	}
	if order.Email != "" && b.cfg.AttachEmail {
		fields["x_email"] = order.Email
	}
	fields["x_line_item"] = b.offsiteLineItems(order)

	return &Request{URL: OffsiteGatewayURL, Fields: fields}
}

// offsiteLineItems serializes order lines into the pipe-delimited text block
// the legacy gateway expects: fixed field order, position prefix, trailing
// literal tag per line.
func (b *Builder) offsiteLineItems(order *models.Order) string {
	var block string
	pos := 1

	for _, p := range order.Products {
		fields := []string{
			fmt.Sprintf("№%d ", pos),
			truncate(p.SKU, 30),
			truncate(p.Title, 254),
			strconv.Itoa(p.Quantity),
			FormatAmount(p.Price),
			b.cfg.VATForProduct(p.ProductType),
		}
		block += joinLineItem(fields)
		pos++
	}

	if order.HasShipping() {
		fields := []string{
			fmt.Sprintf("№%d ", pos),
			"shipping",
			truncate(order.ShippingTitle, 254),
			"1",
			FormatAmount(order.ShippingAmount),
			b.cfg.VATShipping,
		}
		block += joinLineItem(fields)
	}

	return block
}

// buildInvoice assembles the 1.0/2.0 payload. The API key only feeds the
// signature; it is never a field of the payload itself.
func (b *Builder) buildInvoice(order *models.Order) (*Request, error) {
	amount := FormatAmount(order.Total)

	fields := map[string]string{
		"service_id":  b.cfg.ServiceID,
		"order_id":    order.Number,
		"cost":        amount,
		"description": b.cfg.DescriptionPrefix + order.Number,
		"version":     string(b.cfg.Scheme),
	}
	if order.Email != "" && b.cfg.AttachEmail {
		fields["customer_email"] = order.Email
	}

	items, err := json.Marshal(b.invoiceLineItems(order))
	if err != nil {
		return nil, err
	}
	fields["items"] = string(items)

	check, err := SignCanonical("POST", InvoiceGatewayURL, fields, b.cfg.APIKey)
	if err != nil {
		return nil, err
	}
	fields["check"] = check

	return &Request{URL: InvoiceGatewayURL, Fields: fields}, nil
}

func (b *Builder) invoiceLineItems(order *models.Order) []LineItem {
	items := make([]LineItem, 0, len(order.Products)+1)

	for _, p := range order.Products {
		price := FormatAmount(p.Price)
		sum := FormatAmount(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
		items = append(items, LineItem{
			Code:          p.SKU,
			Name:          truncate(p.Title, 254),
			Price:         price,
			Quantity:      p.Quantity,
			Sum:           sum,
			Unit:          b.cfg.UnitCode,
			VAT:           b.cfg.VATForProduct(p.ProductType),
			PaymentObject: b.cfg.PaymentObject,
			PaymentMethod: b.cfg.PaymentMethodCode,
		})
	}

	if order.HasShipping() {
		amount := FormatAmount(order.ShippingAmount)
		items = append(items, LineItem{
			Code:          "shipping",
			Name:          truncate(order.ShippingTitle, 254),
			Price:         amount,
			Quantity:      1,
			Sum:           amount,
			Unit:          b.cfg.UnitCode,
			VAT:           b.cfg.VATShipping,
			PaymentObject: "service",
			PaymentMethod: b.cfg.PaymentMethodCode,
		})
	}

	return items
}

// FormatAmount renders a money value the way the gateway expects it: fixed
// two decimals, dot separator, no thousands grouping.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func joinLineItem(fields []string) string {
	line := ""
	for i, f := range fields {
		if i > 0 {
			line += lineItemSeparator
		}
		line += f
	}
	return line + lineItemTerminator
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
