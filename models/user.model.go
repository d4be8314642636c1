package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles
const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleSchoolAdmin = "SCHOOL_ADMIN"
	RoleTeacher     = "TEACHER"
)

type User struct {
	gorm.Model
	ProfileImage        string     `gorm:"default:''"`
	Name                string     `gorm:"default:''"`
	Email               string     `gorm:"unique;not null"`
	Role                string     `gorm:"default:'TEACHER'"` // SUPER_ADMIN, SCHOOL_ADMIN, TEACHER
	Password            string     `gorm:"not null"`
	SchoolID            *uint      `gorm:"index"` // nil only for SUPER_ADMIN
	Subject             string     `gorm:"default:''"` // subject the teacher teaches
	IsEmailVerified     bool       `gorm:"default:false"`
	LastLogin           time.Time  `gorm:"default:NULL"`
	FailedLoginAttempts int        `gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"last_failed_login"`
	IsBlocked           bool       `gorm:"default:false"`
	BlockedUntil        *time.Time `json:"blocked_until"`
	IsDeleted           bool       `gorm:"default:false"`
}
