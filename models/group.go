package models

import "time"

// Group membership is administrative: users are placed into "Manager" or
// "Delivery Crew" out of band. Everyone else is a plain customer.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);unique;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery Crew"
)
