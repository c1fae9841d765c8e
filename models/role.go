package models

import "gorm.io/gorm"

type Role string

const (
	RoleManager      Role = "manager"
	RoleDeliveryCrew Role = "delivery_crew"
	RoleCustomer     Role = "customer"
)

// ResolveRole maps a user to exactly one role from group membership.
// It is evaluated fresh on every request and has no side effects.
// Membership in both groups is a configuration error; Manager wins here
// so a misconfigured account never silently loses access.
func ResolveRole(db *gorm.DB, userID uint) (Role, error) {
	var user User
	if err := db.Preload("Groups").First(&user, userID).Error; err != nil {
		return "", err
	}
	for _, g := range user.Groups {
		if g.Name == GroupManager {
			return RoleManager, nil
		}
	}
	for _, g := range user.Groups {
		if g.Name == GroupDeliveryCrew {
			return RoleDeliveryCrew, nil
		}
	}
	return RoleCustomer, nil
}
