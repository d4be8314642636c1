package models

import "gorm.io/gorm"

// School is the tenant boundary. Every catalog, progress and webhook row
// carries the school id; middleware resolves the school from the request host
// or the X-School-Slug header before any handler runs.
type School struct {
	gorm.Model
	Name         string `json:"name" gorm:"not null"`
	Slug         string `json:"slug" gorm:"unique;not null"`
	ContactEmail string `json:"contact_email"`
	Address      string `json:"address"`
	City         string `json:"city"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	IsDeleted    bool   `gorm:"default:false"`
}
