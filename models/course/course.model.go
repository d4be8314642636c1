package course

import "gorm.io/gorm"

// Course represents a training course owned by one school
type Course struct {
	gorm.Model
	SchoolID    uint   `json:"school_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	CreatedBy   uint   `json:"created_by"`
	IsDeleted   bool   `gorm:"default:false"`
}
