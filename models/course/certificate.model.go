package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate request status
const (
	CertPending  = "PENDING"
	CertApproved = "APPROVED"
	CertRejected = "REJECTED"
)

// CertificateRequest represents a teacher's request for a course completion
// certificate. Requests are only accepted while the computed snapshot for
// the (course, teacher) pair is COMPLETED.
type CertificateRequest struct {
	gorm.Model
	SchoolID        uint       `json:"school_id" gorm:"index;not null"`
	TeacherID       uint       `json:"teacher_id" gorm:"index;not null"`
	CourseID        uint       `json:"course_id" gorm:"index;not null"`
	Status          string     `json:"status" gorm:"default:'PENDING'"` // PENDING, APPROVED, REJECTED
	RequestedAt     time.Time  `json:"requested_at"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovedBy      *uint      `json:"approved_by"`
	RejectionReason string     `json:"rejection_reason"`
	IsDeleted       bool       `gorm:"default:false"`
}

// Certificate represents an issued certificate for course completion
type Certificate struct {
	gorm.Model
	SchoolID          uint      `json:"school_id" gorm:"index;not null"`
	TeacherID         uint      `json:"teacher_id" gorm:"index;not null"`
	CourseID          uint      `json:"course_id" gorm:"index;not null"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `gorm:"default:false"`
}
