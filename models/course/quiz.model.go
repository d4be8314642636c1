package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question source
const (
	QuestionGenerated = "GENERATED" // built from the video transcript
	QuestionManual    = "MANUAL"    // authored by a school admin
)

// QuizQuestion belongs to a QUIZ content item
type QuizQuestion struct {
	gorm.Model
	ContentID   uint   `json:"content_id" gorm:"index;not null"`
	Prompt      string `json:"prompt" gorm:"type:text"`
	Explanation string `json:"explanation" gorm:"type:text"`
	Source      string `json:"source" gorm:"default:'MANUAL'"` // GENERATED, MANUAL
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false"`
}

// QuizOption is one answer option for a question
type QuizOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// QuizAttempt records a teacher's attempt at a quiz content item.
// SelectedOptions is a JSON map of question id to chosen option ids.
type QuizAttempt struct {
	gorm.Model
	TeacherID       uint           `json:"teacher_id" gorm:"index;not null"`
	ContentID       uint           `json:"content_id" gorm:"index;not null"`
	SelectedOptions datatypes.JSON `json:"selected_options"`
	Score           int            `json:"score"`
	MaxScore        int            `json:"max_score"`
	Passed          bool           `json:"passed" gorm:"default:false"`
	AttemptNumber   int            `json:"attempt_number" gorm:"default:1"`
	IsDeleted       bool           `gorm:"default:false"`
}
