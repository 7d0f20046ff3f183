package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses. StatusProcessing is the usual post-payment status, but the
// payment method configuration decides which status a paid order ends up in.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCanceled   = "canceled"
)

type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Number         string          `gorm:"uniqueIndex;type:varchar(64);not null" json:"number"`
	UserID         uint            `gorm:"index" json:"user_id"`
	User           User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Email          string          `gorm:"type:varchar(200)" json:"email"`
	Currency       string          `gorm:"type:varchar(3);not null" json:"currency"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status         string          `gorm:"type:varchar(50);default:'pending';index" json:"status"`
	Products       []OrderProduct  `gorm:"foreignKey:OrderID" json:"products,omitempty"`
	ShippingTitle  string          `gorm:"type:varchar(255)" json:"shipping_title"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"shipping_amount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

type OrderProduct struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	SKU         string          `gorm:"type:varchar(100)" json:"sku"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	ProductType string          `gorm:"type:varchar(50);default:'product'" json:"product_type"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// HasShipping reports whether the order carries a shipping line item.
func (o *Order) HasShipping() bool {
	return o.ShippingTitle != "" && o.ShippingAmount.IsPositive()
}
