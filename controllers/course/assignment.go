package controllers

import (
	"fmt"
	"log"
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

// AssignCourse assigns a course to one or more teachers of the school.
// Teachers already assigned are skipped, not errored, so the call can be
// retried with the same id list. Each new assignment fires the
// teacher.assigned event plus a notification and an email.
func AssignCourse(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	course := courseInSchool(schoolID, courseID)
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedAssignment").(*struct {
		TeacherIDs []uint     `json:"teacher_ids"`
		DueAt      *time.Time `json:"due_at"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	assigned := make([]courseModels.CourseAssignment, 0, len(reqData.TeacherIDs))
	skipped := make([]uint, 0)

	for _, teacherID := range reqData.TeacherIDs {
		var teacher models.User
		err := database.Database.Db.Where("id = ? AND school_id = ? AND role = ? AND is_deleted = ?",
			teacherID, schoolID, models.RoleTeacher, false).First(&teacher).Error
		if err != nil {
			skipped = append(skipped, teacherID)
			continue
		}

		var existing courseModels.CourseAssignment
		err = database.Database.Db.Where("course_id = ? AND teacher_id = ? AND is_deleted = ?",
			course.ID, teacherID, false).First(&existing).Error
		if err == nil {
			skipped = append(skipped, teacherID)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Println("[ASSIGN] lookup failed:", err)
			skipped = append(skipped, teacherID)
			continue
		}

		assignment := courseModels.CourseAssignment{
			SchoolID:   schoolID,
			CourseID:   course.ID,
			TeacherID:  teacherID,
			AssignedBy: adminID,
			DueAt:      reqData.DueAt,
		}
		if err := database.Database.Db.Create(&assignment).Error; err != nil {
			log.Println("[ASSIGN] create failed:", err)
			skipped = append(skipped, teacherID)
			continue
		}
		assigned = append(assigned, assignment)

		utils.PushNotification(database.Database.Db, schoolID, teacherID,
			models.NotificationAssignment, "New course assigned",
			fmt.Sprintf("You have been assigned the course %q.", course.Title),
			map[string]interface{}{"course_id": course.ID})

		utils.DispatchEvent(database.Database.Db, schoolID, models.EventTeacherAssigned, map[string]interface{}{
			"course_id":    course.ID,
			"course_title": course.Title,
			"teacher_id":   teacherID,
			"assigned_by":  adminID,
		})

		go utils.SendCourseAssignedEmail(teacher.Email, teacher.Name, course.Title, reqData.DueAt)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course assigned.", fiber.Map{
		"assigned": assigned,
		"skipped":  skipped,
	})
}

// Unassign soft-deletes a teacher's assignment. Progress rows are kept;
// re-assigning later resumes where the teacher left off.
func Unassign(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	teacherID := c.Locals("teacherParamID").(int)

	var assignment courseModels.CourseAssignment
	err := database.Database.Db.Where("school_id = ? AND course_id = ? AND teacher_id = ? AND is_deleted = ?",
		schoolID, courseID, teacherID, false).First(&assignment).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	assignment.IsDeleted = true
	if err := database.Database.Db.Save(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment removed.", nil)
}

// ListMyAssignments returns the logged-in teacher's assigned courses with a
// fresh completion snapshot for each.
func ListMyAssignments(c *fiber.Ctx) error {
	teacherID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	var assignments []courseModels.CourseAssignment
	database.Database.Db.Where("school_id = ? AND teacher_id = ? AND is_deleted = ?", schoolID, teacherID, false).
		Order("created_at desc").Find(&assignments)

	courseIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		courseIDs = append(courseIDs, a.CourseID)
	}

	snapshots, err := progress.BuildTeacherCourseSnapshots(database.Database.Db, courseIDs, []uint{teacherID})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	out := make([]fiber.Map, 0, len(assignments))
	for _, a := range assignments {
		var course courseModels.Course
		if err := database.Database.Db.Where("id = ? AND is_active = ? AND is_published = ? AND is_deleted = ?",
			a.CourseID, true, true, false).First(&course).Error; err != nil {
			continue
		}
		out = append(out, fiber.Map{
			"assignment": a,
			"course":     course,
			"snapshot":   snapshots[progress.SnapshotKey{CourseID: a.CourseID, TeacherID: teacherID}],
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignments fetched successfully!", out)
}

// AdminListAssignments lists a course's assignments with per-teacher
// snapshots, for the school admin view.
func AdminListAssignments(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	course := courseInSchool(schoolID, courseID)
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var assignments []courseModels.CourseAssignment
	database.Database.Db.Where("school_id = ? AND course_id = ? AND is_deleted = ?", schoolID, course.ID, false).
		Order("created_at asc").Find(&assignments)

	teacherIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		teacherIDs = append(teacherIDs, a.TeacherID)
	}

	snapshots, err := progress.BuildTeacherCourseSnapshots(database.Database.Db, []uint{course.ID}, teacherIDs)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	out := make([]fiber.Map, 0, len(assignments))
	for _, a := range assignments {
		var teacher models.User
		database.Database.Db.Select("id, name, email, subject").Where("id = ?", a.TeacherID).First(&teacher)
		out = append(out, fiber.Map{
			"assignment": a,
			"teacher": fiber.Map{
				"id":      teacher.ID,
				"name":    teacher.Name,
				"email":   teacher.Email,
				"subject": teacher.Subject,
			},
			"snapshot": snapshots[progress.SnapshotKey{CourseID: course.ID, TeacherID: a.TeacherID}],
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignments fetched successfully!", out)
}
