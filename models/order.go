package models

import "time"

// Order is created only by checkout, atomically with its items. After
// creation only DeliveryCrewID and Status may change, and only under the
// role rules enforced by the order controller.
type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UserID         uint        `gorm:"not null;index" json:"user_id"`
	User           User        `gorm:"foreignKey:UserID" json:"-"`
	DeliveryCrewID *uint       `gorm:"index" json:"delivery_crew_id"`
	DeliveryCrew   *User       `gorm:"foreignKey:DeliveryCrewID" json:"delivery_crew,omitempty"`
	Status         bool        `gorm:"not null;default:false" json:"status"`
	Total          Amount      `gorm:"type:decimal(10,2);not null" json:"total"`
	Date           time.Time   `gorm:"not null" json:"date"`
	OrderItems     []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}
