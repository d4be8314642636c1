package controllers

import (
	"fmt"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/progress"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequestCertificate opens a certificate request for a completed course.
// The completion gate is the computed snapshot, never a stored flag, so a
// course whose content grew since the teacher finished goes back to
// IN_PROGRESS and the request is refused.
func RequestCertificate(c *fiber.Ctx) error {
	teacherID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	course := assignedCourse(schoolID, teacherID, courseID)
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	snapshots, err := progress.BuildTeacherCourseSnapshots(database.Database.Db, []uint{course.ID}, []uint{teacherID})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}
	snapshot := snapshots[progress.SnapshotKey{CourseID: course.ID, TeacherID: teacherID}]
	if snapshot.Status != courseModels.ProgressCompleted {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Course is not completed yet!", nil)
	}

	var existing courseModels.CertificateRequest
	err = database.Database.Db.Where("teacher_id = ? AND course_id = ? AND status IN ? AND is_deleted = ?",
		teacherID, course.ID, []string{courseModels.CertPending, courseModels.CertApproved}, false).
		First(&existing).Error
	if err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A certificate request already exists!", existing)
	}
	if err != gorm.ErrRecordNotFound {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check requests!", nil)
	}

	request := courseModels.CertificateRequest{
		SchoolID:    schoolID,
		TeacherID:   teacherID,
		CourseID:    course.ID,
		Status:      courseModels.CertPending,
		RequestedAt: time.Now(),
	}
	if err := database.Database.Db.Create(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate requested.", request)
}

// ApproveCertificate approves a pending request and issues the certificate.
func ApproveCertificate(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	requestID := c.Locals("requestID").(int)

	var request courseModels.CertificateRequest
	err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?",
		requestID, schoolID, false).First(&request).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Request not found!", nil)
	}
	if request.Status != courseModels.CertPending {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Request is not pending!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", request.CourseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	now := time.Now()
	certificate := courseModels.Certificate{
		SchoolID:          schoolID,
		TeacherID:         request.TeacherID,
		CourseID:          request.CourseID,
		CertificateNumber: utils.GenerateCertificateNumber(),
		IssuedAt:          now,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&certificate).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}
	request.Status = courseModels.CertApproved
	request.ApprovedAt = &now
	request.ApprovedBy = &adminID
	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update request!", nil)
	}
	tx.Commit()

	utils.PushNotification(database.Database.Db, schoolID, request.TeacherID,
		models.NotificationCertificate, "Certificate issued",
		fmt.Sprintf("Your certificate for %q has been issued.", course.Title),
		map[string]interface{}{"certificate_number": certificate.CertificateNumber})

	var teacher models.User
	if err := database.Database.Db.Where("id = ?", request.TeacherID).First(&teacher).Error; err == nil {
		go utils.SendCertificateIssuedEmail(teacher.Email, teacher.Name, course.Title, certificate.CertificateNumber)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued.", certificate)
}

func RejectCertificate(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	requestID := c.Locals("requestID").(int)

	reqData, ok := c.Locals("validatedRejection").(*struct {
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var request courseModels.CertificateRequest
	err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?",
		requestID, schoolID, false).First(&request).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Request not found!", nil)
	}
	if request.Status != courseModels.CertPending {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Request is not pending!", nil)
	}

	request.Status = courseModels.CertRejected
	request.RejectionReason = reqData.Reason
	if err := database.Database.Db.Save(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Request rejected.", request)
}

// ListMyCertificates returns the teacher's issued certificates and any open
// requests.
func ListMyCertificates(c *fiber.Ctx) error {
	teacherID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	var certificates []courseModels.Certificate
	database.Database.Db.Where("school_id = ? AND teacher_id = ? AND is_deleted = ?", schoolID, teacherID, false).
		Order("issued_at desc").Find(&certificates)

	var requests []courseModels.CertificateRequest
	database.Database.Db.Where("school_id = ? AND teacher_id = ? AND is_deleted = ?", schoolID, teacherID, false).
		Order("created_at desc").Find(&requests)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"requests":     requests,
	})
}

// AdminListCertificateRequests lists requests by status (default PENDING).
func AdminListCertificateRequests(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	status := c.Query("status", courseModels.CertPending)

	var requests []courseModels.CertificateRequest
	database.Database.Db.Where("school_id = ? AND status = ? AND is_deleted = ?", schoolID, status, false).
		Order("created_at asc").Find(&requests)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Requests fetched successfully!", requests)
}
