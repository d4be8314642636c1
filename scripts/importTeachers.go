package main

import (
	"encoding/csv"
	"log"
	"os"
	"strings"

	"lms/config"
	"lms/database"
	"lms/models"
	"lms/utils"

	"golang.org/x/crypto/bcrypt"
)

// Bulk-imports teachers for one school from a CSV with the columns
// name, email, subject. Usage:
//
//	go run scripts/importTeachers.go <school-slug> <teachers.csv>
//
// Existing emails are skipped. Every created teacher gets a temp password
// and a welcome email.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: importTeachers <school-slug> <teachers.csv>")
	}
	slug := os.Args[1]
	csvPath := os.Args[2]

	config.LoadConfig()
	database.ConnectDb()

	var school models.School
	if err := database.Database.Db.Where("slug = ? AND is_deleted = ?", slug, false).First(&school).Error; err != nil {
		log.Fatalf("School %q not found: %v", slug, err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	header := records[0]
	log.Printf("CSV Headers: %v", header)
	log.Printf("Total rows to import: %d", len(records)-1)

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	inserted := 0
	skipped := 0

	for i, row := range records[1:] {
		name := strings.TrimSpace(getField(row, headerIndex, "name"))
		email := strings.ToLower(strings.TrimSpace(getField(row, headerIndex, "email")))
		subject := strings.TrimSpace(getField(row, headerIndex, "subject"))

		if name == "" || email == "" {
			log.Printf("Row %d: missing name or email, skipping", i+2)
			skipped++
			continue
		}

		var existing models.User
		if err := database.Database.Db.Where("email = ?", email).First(&existing).Error; err == nil {
			skipped++
			continue
		}

		tempPassword := utils.GenerateTempPassword()
		hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Row %d: failed to hash password: %v", i+2, err)
			skipped++
			continue
		}

		teacher := models.User{
			Name:            name,
			Email:           email,
			Password:        string(hashed),
			Role:            models.RoleTeacher,
			SchoolID:        &school.ID,
			Subject:         subject,
			IsEmailVerified: true,
		}
		if err := database.Database.Db.Create(&teacher).Error; err != nil {
			log.Printf("Row %d: failed to create teacher %s: %v", i+2, email, err)
			skipped++
			continue
		}

		utils.SendTeacherWelcomeEmail(email, name, school.Name, tempPassword)
		inserted++
	}

	log.Printf("Import finished: %d inserted, %d skipped", inserted, skipped)
}

func getField(row []string, headerIndex map[string]int, name string) string {
	idx, ok := headerIndex[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
