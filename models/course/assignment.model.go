package course

import (
	"time"

	"gorm.io/gorm"
)

// CourseAssignment links a teacher to a course they must complete. It carries
// no derived progress fields; completion state is always computed fresh from
// ContentProgress rows.
type CourseAssignment struct {
	gorm.Model
	SchoolID       uint       `json:"school_id" gorm:"index;not null"`
	CourseID       uint       `json:"course_id" gorm:"uniqueIndex:idx_course_teacher;not null"`
	TeacherID      uint       `json:"teacher_id" gorm:"uniqueIndex:idx_course_teacher;not null"`
	AssignedBy     uint       `json:"assigned_by"`
	DueAt          *time.Time `json:"due_at"`
	LastReminderAt *time.Time `json:"last_reminder_at"`
	IsDeleted      bool       `gorm:"default:false"`
}
