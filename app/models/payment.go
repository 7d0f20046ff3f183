package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment method tags recorded in the ledger.
const (
	PaymentMethodLifepay = "lifepay"
)

// Payment is an immutable ledger entry recording money received for an order.
// Exactly one entry is written per successful gateway reconciliation.
type Payment struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Reference  string          `gorm:"type:varchar(36);uniqueIndex" json:"reference"`
	OrderID    uint            `gorm:"index;not null" json:"order_id"`
	Method     string          `gorm:"type:varchar(20);not null;index" json:"method"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	UserID     uint            `gorm:"index" json:"user_id"`
	Comment    string          `gorm:"type:text" json:"comment"`
	ReceivedAt time.Time       `gorm:"autoCreateTime;index" json:"received_at"`
}

// BeforeCreate assigns the public payment reference.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.Reference == "" {
		p.Reference = uuid.NewString()
	}
	return nil
}
