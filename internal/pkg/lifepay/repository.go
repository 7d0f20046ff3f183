package lifepay

import (
	"errors"

	"github.com/shopfox/shopfox/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the GORM-backed implementation of the reconciler collaborators.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store from a GORM DB handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) LoadOrder(number string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Products").Where("number = ?", number).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *Store) SetOrderStatus(order *models.Order, status string) error {
	order.Status = status
	return s.db.Model(order).Update("status", status).Error
}

func (s *Store) RecordPayment(orderID uint, method string, amount decimal.Decimal, userID uint, comment string) error {
	entry := &models.Payment{
		OrderID: orderID,
		Method:  method,
		Amount:  amount,
		UserID:  userID,
		Comment: comment,
	}
	return s.db.Create(entry).Error
}

func (s *Store) AppendOrderComment(orderID uint, authorID uint, text string) error {
	comment := &models.OrderComment{
		OrderID:  orderID,
		AuthorID: authorID,
		Content:  text,
	}
	return s.db.Create(comment).Error
}
