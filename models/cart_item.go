package models

import "time"

// CartItem is one line of a customer's cart. A user holds at most one line
// per menu item; repeated adds accumulate into the existing line.
// Price is always Quantity * UnitPrice rounded to 2 decimal places.
type CartItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_cart_user_menu_item" json:"user_id"`
	MenuItemID uint      `gorm:"not null;uniqueIndex:idx_cart_user_menu_item" json:"menuitem_id"`
	MenuItem   MenuItem  `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menuitem"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  Amount    `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Price      Amount    `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
