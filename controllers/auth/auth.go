package authController

import (
	"log"
	"strings"
	"time"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterSchool bootstraps a new school together with its first
// SCHOOL_ADMIN account. This is the only self-service registration path;
// teachers are added by their school admin afterwards.
func RegisterSchool(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSchoolRegistration").(*struct {
		SchoolName   string `json:"school_name" validate:"required,min=3"`
		Slug         string `json:"slug" validate:"required,min=3,max=40,lowercase,alphanum"`
		ContactEmail string `json:"contact_email" validate:"required,email"`
		AdminName    string `json:"admin_name" validate:"required,min=3"`
		AdminEmail   string `json:"admin_email" validate:"required,email"`
		Password     string `json:"password" validate:"required,min=8"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check slug and email uniqueness
	if err := db.Where("slug = ?", reqData.Slug).First(&models.School{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "School slug is already taken!", nil)
	}
	if err := db.Where("email = ?", reqData.AdminEmail).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	school := models.School{
		Name:         reqData.SchoolName,
		Slug:         strings.ToLower(reqData.Slug),
		ContactEmail: reqData.ContactEmail,
		IsActive:     true,
	}

	tx := db.Begin()
	if err := tx.Create(&school).Error; err != nil {
		tx.Rollback()
		log.Printf("Error creating school: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register school!", nil)
	}

	admin := models.User{
		Name:     reqData.AdminName,
		Email:    reqData.AdminEmail,
		Role:     models.RoleSchoolAdmin,
		Password: string(hashedPassword),
		SchoolID: &school.ID,
	}
	if err := tx.Create(&admin).Error; err != nil {
		tx.Rollback()
		log.Printf("Error creating school admin: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register school!", nil)
	}
	tx.Commit()

	// Email verification code
	otp := utils.GenerateOTP()
	db.Create(&models.OTP{
		UserID:      admin.ID,
		Email:       admin.Email,
		Code:        otp,
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		Description: "EMAIL_VERIFICATION",
	})
	go utils.SendOTPEmail(otp, admin.Email)

	admin.Password = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "School registered successfully. Please verify your email.", fiber.Map{
		"school": school,
		"admin":  admin,
	})
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if !user.IsEmailVerified {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Email not verified!", nil)
	}

	// Check if the user is blocked
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if user.LastFailedLogin != nil && time.Since(*user.LastFailedLogin) > 15*time.Minute {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
		database.Database.Db.Save(&user)
	}

	// Validate password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		now := time.Now()
		user.LastFailedLogin = &now

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts >= 3 {
			user.IsBlocked = true
			unblockTime := now.Add(15 * time.Minute)
			user.BlockedUntil = &unblockTime
		}

		if err := database.Database.Db.Save(&user).Error; err != nil {
			log.Printf("Error saving failed login state: %v", err)
		}

		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Wrong Password", nil)
	}

	// Update last login time
	user.LastLogin = time.Now()
	user.FailedLoginAttempts = 0
	user.IsBlocked = false
	if err := database.Database.Db.Save(&user).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}
	userAgent := c.Get("User-Agent")

	// Capture login tracking details
	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		SchoolID:  user.SchoolID,
		IPAddress: ip,
		Device:    userAgent,
		Timestamp: time.Now(),
	}
	if err := database.Database.Db.Create(&loginTracking).Error; err != nil {
		log.Printf("Error saving login tracking details: %v", err)
	}

	utils.SendLoginAlertEmail(user.Email, user.Name, ip, userAgent)

	// Generate JWT token
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email, user.SchoolID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Profile returns the authenticated user's account
func Profile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

func SendOTP(c *fiber.Ctx) error {
	reqData := new(struct {
		Email string `json:"email"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email!", nil)
	}
	if user.IsEmailVerified {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email already verified!", nil)
	}

	otp := utils.GenerateOTP()
	if err := database.Database.Db.Create(&models.OTP{
		UserID:      user.ID,
		Email:       user.Email,
		Code:        otp,
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		Description: "EMAIL_VERIFICATION",
	}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create OTP!", nil)
	}

	if err := utils.SendOTPEmail(otp, user.Email); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send OTP!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP sent successfully.", nil)
}

func VerifyOTP(c *fiber.Ctx) error {
	reqData := new(struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email!", nil)
	}

	var otp models.OTP
	if err := database.Database.Db.Where(
		"user_id = ? AND code = ? AND is_used = ? AND is_deleted = ? AND expires_at > ?",
		user.ID, reqData.Code, false, false, time.Now(),
	).Order("created_at desc").First(&otp).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired OTP!", nil)
	}

	database.Database.Db.Model(&otp).Update("is_used", true)
	database.Database.Db.Model(&user).Update("is_email_verified", true)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified successfully.", nil)
}

func ForgotPassword(c *fiber.Ctx) error {
	reqData := new(struct {
		Email string `json:"email"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		// Do not leak which emails exist
		return middleware.JsonResponse(c, fiber.StatusOK, true, "If the email is registered, a reset code has been sent.", nil)
	}

	otp := utils.GenerateOTP()
	database.Database.Db.Create(&models.OTP{
		UserID:      user.ID,
		Email:       user.Email,
		Code:        otp,
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		Description: "PASSWORD_RESET",
	})
	go utils.SendOTPEmail(otp, user.Email)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "If the email is registered, a reset code has been sent.", nil)
}

func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email!", nil)
	}

	var otp models.OTP
	if err := database.Database.Db.Where(
		"user_id = ? AND code = ? AND description = ? AND is_used = ? AND is_deleted = ? AND expires_at > ?",
		user.ID, reqData.Code, "PASSWORD_RESET", false, false, time.Now(),
	).Order("created_at desc").First(&otp).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired OTP!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	database.Database.Db.Model(&otp).Update("is_used", true)
	database.Database.Db.Model(&user).Updates(map[string]interface{}{
		"password":              string(hashedPassword),
		"failed_login_attempts": 0,
		"is_blocked":            false,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully.", nil)
}

func ChangePassword(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedChangePassword").(*struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.OldPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Old password is incorrect!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := database.Database.Db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to change password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}

// LoginHistoryList returns the authenticated user's recent logins
func LoginHistoryList(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedLoginHistory").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (*reqData.Page - 1) * (*reqData.Limit)

	var loginTracking []models.LoginTracking
	var total int64

	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").
		Offset(offset).
		Limit(*reqData.Limit).
		Find(&loginTracking).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", userID, false).Count(&total)

	response := map[string]interface{}{
		"logins": loginTracking,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  *reqData.Page,
			"limit": *reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login history fetched successfully!", response)
}

// currentUser is a shared helper for handlers that need the full user row
func currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
