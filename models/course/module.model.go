package course

import "gorm.io/gorm"

// Module represents a section/module within a course. Modules unlock in
// strict order: a teacher reaches module N+1 only after completing module N.
// Ordering key everywhere is (order_index, created_at).
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Module order in course
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsDeleted   bool   `gorm:"default:false"`
}
