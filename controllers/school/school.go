package schoolController

import (
	"log"
	"strings"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// ============ Platform management (SUPER_ADMIN) ============

func CreateSchool(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSchool").(*struct {
		Name         string `json:"name" validate:"required,min=3"`
		Slug         string `json:"slug" validate:"required,min=3,max=40"`
		ContactEmail string `json:"contact_email" validate:"required,email"`
		Address      string `json:"address"`
		City         string `json:"city"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.Where("slug = ?", reqData.Slug).First(&models.School{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "School slug is already taken!", nil)
	}

	school := models.School{
		Name:         reqData.Name,
		Slug:         strings.ToLower(reqData.Slug),
		ContactEmail: reqData.ContactEmail,
		Address:      reqData.Address,
		City:         reqData.City,
		IsActive:     true,
	}

	if err := db.Create(&school).Error; err != nil {
		log.Printf("Error creating school: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create school!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "School created successfully!", school)
}

func ListSchools(c *fiber.Ctx) error {
	var schools []models.School
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("created_at desc").Find(&schools).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch schools!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Schools fetched successfully!", schools)
}

func UpdateSchool(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolParamID").(int)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid school ID!", nil)
	}

	var school models.School
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", schoolID, false).First(&school).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "School not found!", nil)
	}

	reqData := new(struct {
		Name         string `json:"name"`
		ContactEmail string `json:"contact_email"`
		Address      string `json:"address"`
		City         string `json:"city"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Name != "" {
		school.Name = reqData.Name
	}
	if reqData.ContactEmail != "" {
		school.ContactEmail = reqData.ContactEmail
	}
	if reqData.Address != "" {
		school.Address = reqData.Address
	}
	if reqData.City != "" {
		school.City = reqData.City
	}

	if err := database.Database.Db.Save(&school).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update school!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "School updated successfully!", school)
}

func DeactivateSchool(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolParamID").(int)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid school ID!", nil)
	}

	var school models.School
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", schoolID, false).First(&school).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "School not found!", nil)
	}

	if err := database.Database.Db.Model(&school).Update("is_active", false).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to deactivate school!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "School deactivated successfully!", nil)
}

// ============ School profile & membership (SCHOOL_ADMIN) ============

func GetSchoolProfile(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	var school models.School
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", schoolID, false).First(&school).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "School not found!", nil)
	}

	var teacherCount int64
	database.Database.Db.Model(&models.User{}).
		Where("school_id = ? AND role = ? AND is_deleted = ?", schoolID, models.RoleTeacher, false).
		Count(&teacherCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "School profile fetched successfully!", fiber.Map{
		"school":        school,
		"teacher_count": teacherCount,
	})
}

// AddTeacher creates a TEACHER account in the admin's school and emails the
// new teacher a temporary password.
func AddTeacher(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	reqData, ok := c.Locals("validatedTeacher").(*struct {
		Name    string `json:"name" validate:"required,min=3"`
		Email   string `json:"email" validate:"required,email"`
		Subject string `json:"subject"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	var school models.School
	if err := db.Where("id = ?", schoolID).First(&school).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "School not found!", nil)
	}

	tempPassword := utils.GenerateTempPassword()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tempPassword), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	teacher := models.User{
		Name:            reqData.Name,
		Email:           reqData.Email,
		Role:            models.RoleTeacher,
		Password:        string(hashedPassword),
		SchoolID:        &schoolID,
		Subject:         reqData.Subject,
		IsEmailVerified: true, // account created by the school, no self-serve OTP
	}

	if err := db.Create(&teacher).Error; err != nil {
		log.Printf("Error creating teacher: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add teacher!", nil)
	}

	utils.SendTeacherWelcomeEmail(teacher.Email, teacher.Name, school.Name, tempPassword)

	teacher.Password = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Teacher added successfully!", teacher)
}

func ListTeachers(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	reqData, _ := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := 1
	limit := 20
	if reqData != nil && reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.User{}).
		Where("school_id = ? AND role = ? AND is_deleted = ?", schoolID, models.RoleTeacher, false)

	var total int64
	db.Count(&total)

	var teachers []models.User
	if err := db.Offset(offset).Limit(limit).Order("name asc").Find(&teachers).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch teachers!", nil)
	}

	for i := range teachers {
		teachers[i].Password = ""
	}

	response := map[string]interface{}{
		"teachers": teachers,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Teachers fetched successfully!", response)
}

func DeactivateTeacher(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	teacherID, ok := c.Locals("teacherParamID").(int)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid teacher ID!", nil)
	}

	var teacher models.User
	if err := database.Database.Db.Where(
		"id = ? AND school_id = ? AND role = ? AND is_deleted = ?",
		teacherID, schoolID, models.RoleTeacher, false,
	).First(&teacher).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Teacher not found!", nil)
	}

	if err := database.Database.Db.Model(&teacher).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to deactivate teacher!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Teacher removed successfully!", nil)
}
