package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// PostAnnouncement creates a school-wide or course-scoped announcement and
// fans a notification out to the affected teachers.
func PostAnnouncement(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	reqData, ok := c.Locals("validatedAnnouncement").(*struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		CourseID *uint  `json:"course_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.CourseID != nil {
		if courseInSchool(schoolID, int(*reqData.CourseID)) == nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
	}

	announcement := courseModels.Announcement{
		SchoolID: schoolID,
		CourseID: reqData.CourseID,
		Title:    reqData.Title,
		Body:     reqData.Body,
		PostedBy: adminID,
	}
	if err := database.Database.Db.Create(&announcement).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to post announcement!", nil)
	}

	go fanOutAnnouncement(announcement)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Announcement posted.", announcement)
}

// fanOutAnnouncement notifies every teacher in scope: the whole school, or
// only the course's assigned teachers for a course-scoped post.
func fanOutAnnouncement(a courseModels.Announcement) {
	var teacherIDs []uint
	if a.CourseID != nil {
		database.Database.Db.Model(&courseModels.CourseAssignment{}).
			Where("course_id = ? AND is_deleted = ?", *a.CourseID, false).
			Pluck("teacher_id", &teacherIDs)
	} else {
		database.Database.Db.Model(&models.User{}).
			Where("school_id = ? AND role = ? AND is_deleted = ?", a.SchoolID, models.RoleTeacher, false).
			Pluck("id", &teacherIDs)
	}

	data := map[string]interface{}{"announcement_id": a.ID}
	if a.CourseID != nil {
		data["course_id"] = *a.CourseID
	}
	for _, teacherID := range teacherIDs {
		utils.PushNotification(database.Database.Db, a.SchoolID, teacherID,
			models.NotificationAnnounce, a.Title, a.Body, data)
	}
}

// ListAnnouncements returns the school-wide announcements plus those scoped
// to courses the teacher is assigned to. Admins see everything.
func ListAnnouncements(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	role, _ := c.Locals("role").(string)

	query := database.Database.Db.Where("school_id = ? AND is_deleted = ?", schoolID, false)
	if role == models.RoleTeacher {
		var courseIDs []uint
		database.Database.Db.Model(&courseModels.CourseAssignment{}).
			Where("teacher_id = ? AND is_deleted = ?", userID, false).
			Pluck("course_id", &courseIDs)
		if len(courseIDs) > 0 {
			query = query.Where("course_id IS NULL OR course_id IN ?", courseIDs)
		} else {
			query = query.Where("course_id IS NULL")
		}
	}

	var announcements []courseModels.Announcement
	query.Order("created_at desc").Find(&announcements)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcements fetched successfully!", announcements)
}
