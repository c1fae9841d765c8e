package models

import "time"

// OrderItem is a frozen copy of a cart line at checkout time. It is never
// mutated and only disappears when its parent order is deleted.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order from JSON to avoid recursive nesting
	Order      Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint      `gorm:"not null" json:"menuitem_id"`
	MenuItem   MenuItem  `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menuitem"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  Amount    `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Price      Amount    `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
