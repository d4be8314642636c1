package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	otp := ""
	for i := 0; i < 6; i++ {
		otp += fmt.Sprintf("%d", rng.Intn(10))
	}
	return otp
}

// GenerateTempPassword returns a random starter password for invited teachers
func GenerateTempPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// GenerateCertificateNumber builds a unique certificate number
func GenerateCertificateNumber() string {
	return "CERT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
