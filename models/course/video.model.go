package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Video ingest status
const (
	VideoUploaded   = "UPLOADED"
	VideoValidating = "VALIDATING"
	VideoReady      = "READY"
	VideoFailed     = "FAILED"
)

// Video is an uploaded lesson video tracked through the ingest pipeline.
// Probe holds the validation metadata (size, extension, transcript stats)
// recorded during the VALIDATING step.
type Video struct {
	gorm.Model
	SchoolID       uint           `json:"school_id" gorm:"index;not null"`
	CourseID       uint           `json:"course_id" gorm:"index;not null"`
	ModuleID       uint           `json:"module_id" gorm:"index;not null"`
	ContentID      uint           `json:"content_id" gorm:"index"`
	UploadedBy     uint           `json:"uploaded_by"`
	OriginalName   string         `json:"original_name"`
	StoragePath    string         `json:"storage_path"`
	TranscriptPath string         `json:"transcript_path"`
	SizeBytes      int64          `json:"size_bytes"`
	Status         string         `json:"status" gorm:"default:'UPLOADED'"` // UPLOADED, VALIDATING, READY, FAILED
	FailReason     string         `json:"fail_reason"`
	Probe          datatypes.JSON `json:"probe"`
	IngestedAt     *time.Time     `json:"ingested_at"`
	IngestAttempts int            `json:"ingest_attempts" gorm:"default:0"`
	IsDeleted      bool           `gorm:"default:false"`
}
