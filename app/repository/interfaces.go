package repository

import (
	"github.com/shopfox/shopfox/app/models"
)

// OrderRepository defines the interface for order-related database operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByNumber(number string) (*models.Order, error)
	Update(order *models.Order) error
	ListByUserID(userID uint, offset, limit int) ([]models.Order, error)
	CountByStatus(status string) (int64, error)
}

// PaymentRepository defines read access to the payment ledger
type PaymentRepository interface {
	ListByOrderID(orderID uint) ([]models.Payment, error)
	CountByOrderID(orderID uint) (int64, error)
}

// CommentRepository defines read access to the order audit trail
type CommentRepository interface {
	ListByOrderID(orderID uint) ([]models.OrderComment, error)
}

// PaymentConfigRepository defines storage for gateway settings
type PaymentConfigRepository interface {
	GetByMethodID(methodID string) (*models.PaymentConfig, error)
	Save(cfg *models.PaymentConfig) error
}
