package repository

import (
	"github.com/shopfox/shopfox/app/models"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment ledger repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ListByOrderID(orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("order_id = ?", orderID).Order("received_at ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CountByOrderID(orderID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new order comment repository instance
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByOrderID(orderID uint) ([]models.OrderComment, error) {
	var comments []models.OrderComment
	err := r.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}
