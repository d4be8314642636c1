package course

import "gorm.io/gorm"

// Content types
const (
	ContentVideo      = "VIDEO"
	ContentText       = "TEXT"
	ContentQuiz       = "QUIZ"
	ContentReflection = "REFLECTION"
)

// Content source
const (
	SourceAuthored  = "AUTHORED"  // created by a school admin
	SourceGenerated = "GENERATED" // produced by the video ingest pipeline
)

// Content represents a single lesson within a module. Only active content
// under active modules participates in sequence locking and progress totals.
type Content struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // VIDEO, TEXT, QUIZ, REFLECTION
	Body        string `json:"body" gorm:"type:text"`              // lesson text / reflection prompt
	VideoID     *uint  `json:"video_id" gorm:"index"`              // set for VIDEO and generated items
	OrderIndex  int    `json:"order_index" gorm:"default:0"`       // Order within module
	Source      string `json:"source" gorm:"default:'AUTHORED'"`   // AUTHORED, GENERATED
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsDeleted   bool   `gorm:"default:false"`
}
