package models

import "time"

type MenuItem struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Title      string       `gorm:"type:varchar(255);not null" json:"title"`
	Price      Amount       `gorm:"type:decimal(10,2);not null" json:"price"`
	Featured   bool         `gorm:"not null;default:false" json:"featured"`
	CategoryID uint         `gorm:"not null" json:"category_id"`
	Category   MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
}
