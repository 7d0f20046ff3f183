package models

import "time"

// SystemAuthorID marks order comments written by the application itself
// (payment callbacks, status changes) rather than by a staff user.
const SystemAuthorID uint = 0

// OrderComment is the append-only audit trail attached to an order.
type OrderComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"index;not null" json:"order_id"`
	AuthorID  uint      `gorm:"not null;default:0" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
