package course

import "gorm.io/gorm"

// CourseReview is a teacher's one-time rating of a completed course
type CourseReview struct {
	gorm.Model
	SchoolID  uint   `json:"school_id" gorm:"index;not null"`
	CourseID  uint   `json:"course_id" gorm:"uniqueIndex:idx_course_reviewer;not null"`
	TeacherID uint   `json:"teacher_id" gorm:"uniqueIndex:idx_course_reviewer;not null"`
	Rating    int    `json:"rating"` // 1-5
	Comment   string `json:"comment" gorm:"type:text"`
	IsDeleted bool   `gorm:"default:false"`
}
