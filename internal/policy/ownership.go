// Package policy enforces tenant isolation: every client and invoice query
// is narrowed to the signed-in owner.
package policy

import "gorm.io/gorm"

// Ownable is an interface for resources that have an owner.
// Implement this on your models to enable ownership-based authorization.
type Ownable interface {
	GetUserID() uint
}

// OwnedBy is a GORM scope restricting a query on an owned table to userID.
// A zero userID matches nothing.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", userID)
	}
}

// Owns reports whether userID owns resource. Nil resources and resources
// with no owner are never owned.
func Owns(userID uint, resource Ownable) bool {
	if userID == 0 || resource == nil {
		return false
	}
	return resource.GetUserID() == userID
}
