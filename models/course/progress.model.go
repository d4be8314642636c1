package course

import (
	"time"

	"gorm.io/gorm"
)

// Progress status
const (
	ProgressNotStarted = "NOT_STARTED"
	ProgressInProgress = "IN_PROGRESS"
	ProgressCompleted  = "COMPLETED"
)

// ContentProgress is the per-teacher, per-content progress record: created on
// first interaction, updated on every subsequent one, never deleted by the
// progress layer. At most one row exists per (teacher, content) pair.
type ContentProgress struct {
	gorm.Model
	TeacherID          uint       `json:"teacher_id" gorm:"uniqueIndex:idx_teacher_content;not null"`
	ContentID          uint       `json:"content_id" gorm:"uniqueIndex:idx_teacher_content;not null"`
	CourseID           uint       `json:"course_id" gorm:"index;not null"`
	SchoolID           uint       `json:"school_id" gorm:"index;not null"`
	Status             string     `json:"status" gorm:"default:'NOT_STARTED'"` // NOT_STARTED, IN_PROGRESS, COMPLETED
	ProgressPercentage float64    `json:"progress_percentage" gorm:"default:0"`
	CompletedAt        *time.Time `json:"completed_at"`
	IsDeleted          bool       `gorm:"default:false"`
}
