package course

import "gorm.io/gorm"

// Announcement is a school-wide or course-scoped message posted by an admin
type Announcement struct {
	gorm.Model
	SchoolID  uint   `json:"school_id" gorm:"index;not null"`
	CourseID  *uint  `json:"course_id" gorm:"index"` // nil for school-wide announcements
	Title     string `json:"title"`
	Body      string `json:"body" gorm:"type:text"`
	PostedBy  uint   `json:"posted_by"`
	IsDeleted bool   `gorm:"default:false"`
}
