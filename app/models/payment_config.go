package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// StringMap is a JSON-encoded map column (per-product-type VAT codes).
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *StringMap) Scan(src interface{}) error {
	if src == nil {
		*m = StringMap{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for StringMap")
	}
}

// PaymentConfig stores per-method gateway settings. The reconciler and the
// request builder only ever see an immutable snapshot derived from this row,
// loaded once per request.
type PaymentConfig struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	MethodID          string    `gorm:"uniqueIndex;type:varchar(50);not null" json:"method_id" validate:"required"`
	APIVersion        string    `gorm:"type:varchar(10);not null;default:'offsite'" json:"api_version" validate:"required,oneof=offsite 1.0 2.0"`
	MerchantLogin     string    `gorm:"type:varchar(100)" json:"merchant_login"`
	Secret            string    `gorm:"type:varchar(100)" json:"secret"`
	ServiceID         string    `gorm:"type:varchar(50)" json:"service_id"`
	APIKey            string    `gorm:"type:varchar(200)" json:"api_key"`
	DescriptionPrefix string    `gorm:"type:varchar(255);default:'Payment for order #'" json:"description_prefix" validate:"required"`
	StatusAfterPay    string    `gorm:"type:varchar(50);not null;default:'processing'" json:"status_after_pay" validate:"required"`
	UseServerList     bool      `gorm:"default:true" json:"use_server_list"`
	ServerList        string    `gorm:"type:text" json:"server_list"`
	VATProducts       StringMap `gorm:"type:text" json:"vat_products"`
	VATShipping       string    `gorm:"type:varchar(5);default:'N'" json:"vat_shipping" validate:"oneof=Y N"`
	UnitCode          string    `gorm:"type:varchar(20)" json:"unit_code"`
	PaymentObject     string    `gorm:"type:varchar(50)" json:"payment_object"`
	PaymentMethodCode string    `gorm:"type:varchar(50)" json:"payment_method_code"`
	AttachEmail       bool      `gorm:"default:true" json:"attach_email"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *PaymentConfig) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
