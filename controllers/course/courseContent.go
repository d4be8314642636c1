package controllers

import (
	"fmt"
	"log"
	"math"
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

// assignedCourse loads the course only when the teacher holds an active
// assignment for it and the course is published. Teachers never see
// unassigned or draft courses.
func assignedCourse(schoolID, teacherID uint, courseID int) *courseModels.Course {
	var assignment courseModels.CourseAssignment
	err := database.Database.Db.Where("school_id = ? AND course_id = ? AND teacher_id = ? AND is_deleted = ?",
		schoolID, courseID, teacherID, false).First(&assignment).Error
	if err != nil {
		return nil
	}

	var course courseModels.Course
	err = database.Database.Db.Where("id = ? AND school_id = ? AND is_active = ? AND is_published = ? AND is_deleted = ?",
		courseID, schoolID, true, true, false).First(&course).Error
	if err != nil {
		return nil
	}
	return &course
}

// GetCourseDetail returns the full learning view of one course for the
// logged-in teacher: ordered modules and lessons annotated with lock state,
// per-lesson progress and the overall completion snapshot. Everything here
// is derived fresh; nothing is persisted.
func GetCourseDetail(c *fiber.Ctx) error {
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

	outline, err := progress.LoadCourseOutline(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load course!", nil)
	}

	moduleStates, contentStates, err := progress.ComputeCourseSequenceState(database.Database.Db, outline, teacherID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute course state!", nil)
	}

	var progressRows []courseModels.ContentProgress
	database.Database.Db.Where("teacher_id = ? AND course_id = ? AND is_deleted = ?", teacherID, course.ID, false).
		Find(&progressRows)
	progressByID := make(map[uint]courseModels.ContentProgress, len(progressRows))
	for _, row := range progressRows {
		progressByID[row.ContentID] = row
	}

	modules := make([]fiber.Map, 0, len(outline.Modules))
	for _, mo := range outline.Modules {
		contents := make([]fiber.Map, 0, len(mo.Contents))
		for _, item := range mo.Contents {
			entry := fiber.Map{
				"content": item,
				"state":   contentStates[item.ID],
			}
			if row, found := progressByID[item.ID]; found {
				entry["progress"] = row
			}
			contents = append(contents, entry)
		}
		modules = append(modules, fiber.Map{
			"module":   mo.Module,
			"state":    moduleStates[mo.Module.ID],
			"contents": contents,
		})
	}

	snapshots, err := progress.BuildTeacherCourseSnapshots(database.Database.Db, []uint{course.ID}, []uint{teacherID})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute course snapshot!", nil)
	}
	snapshot := snapshots[progress.SnapshotKey{CourseID: course.ID, TeacherID: teacherID}]

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":   course,
		"modules":  modules,
		"snapshot": snapshot,
	})
}

// GetContent returns one lesson for consumption. A locked lesson is refused
// with the lock reason; lock state is recomputed on every call, never cached.
func GetContent(c *fiber.Ctx) error {
	teacherID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	contentID := c.Locals("contentID").(int)

	course := assignedCourse(schoolID, teacherID, courseID)
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var content courseModels.Content
	err := database.Database.Db.Where("id = ? AND course_id = ? AND is_active = ? AND is_deleted = ?",
		contentID, courseID, true, false).First(&content).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	outline, err := progress.LoadCourseOutline(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load course!", nil)
	}

	state, err := progress.ContentLockState(database.Database.Db, outline, content.ID, teacherID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute lesson state!", nil)
	}
	if state.IsLocked {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, state.LockReason, nil)
	}

	response := fiber.Map{"content": content}

	if content.ContentType == courseModels.ContentVideo && content.VideoID != nil {
		var video courseModels.Video
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", *content.VideoID, false).First(&video).Error; err == nil {
			response["video"] = fiber.Map{
				"id":     video.ID,
				"status": video.Status,
				"url":    utils.GetFileURL(video.StoragePath),
			}
		}
	}

	var row courseModels.ContentProgress
	if err := database.Database.Db.Where("teacher_id = ? AND content_id = ? AND is_deleted = ?",
		teacherID, content.ID, false).First(&row).Error; err == nil {
		response["progress"] = row
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", response)
}

// UpdateProgress records partial progress on an unlocked lesson (e.g. video
// watch percentage). It upserts the single (teacher, lesson) progress row
// and never downgrades a COMPLETED lesson.
func UpdateProgress(c *fiber.Ctx) error {
	teacherID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	contentID := c.Locals("contentID").(int)

	reqData, ok := c.Locals("validatedProgress").(*struct {
		ProgressPercentage float64 `json:"progress_percentage"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := assignedCourse(schoolID, teacherID, courseID)
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var content courseModels.Content
	err := database.Database.Db.Where("id = ? AND course_id = ? AND is_active = ? AND is_deleted = ?",
		contentID, courseID, true, false).First(&content).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	outline, err := progress.LoadCourseOutline(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load course!", nil)
	}
	state, err := progress.ContentLockState(database.Database.Db, outline, content.ID, teacherID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute lesson state!", nil)
	}
	if state.IsLocked {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, state.LockReason, nil)
	}

	pct := math.Min(math.Max(reqData.ProgressPercentage, 0), 100)

	var row courseModels.ContentProgress
	err = database.Database.Db.Where("teacher_id = ? AND content_id = ?", teacherID, content.ID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		row = courseModels.ContentProgress{
			TeacherID:          teacherID,
			ContentID:          content.ID,
			CourseID:           course.ID,
			SchoolID:           schoolID,
			Status:             courseModels.ProgressInProgress,
			ProgressPercentage: pct,
		}
		if err := database.Database.Db.Create(&row).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save progress!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved.", row)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save progress!", nil)
	}

	if row.Status == courseModels.ProgressCompleted {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson already completed.", row)
	}

	row.Status = courseModels.ProgressInProgress
	row.ProgressPercentage = pct
	if err := database.Database.Db.Save(&row).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved.", row)
}

// CompleteContent marks an unlocked lesson COMPLETED for the teacher.
// Completing an already-completed lesson is a no-op. When this completion
// makes the whole course COMPLETED the course.completed event fires exactly
// on that transition.
func CompleteContent(c *fiber.Ctx) error {
	teacherID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	contentID := c.Locals("contentID").(int)

	course := assignedCourse(schoolID, teacherID, courseID)
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var content courseModels.Content
	err := database.Database.Db.Where("id = ? AND course_id = ? AND is_active = ? AND is_deleted = ?",
		contentID, courseID, true, false).First(&content).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	outline, err := progress.LoadCourseOutline(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load course!", nil)
	}
	state, err := progress.ContentLockState(database.Database.Db, outline, content.ID, teacherID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute lesson state!", nil)
	}
	if state.IsLocked {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, state.LockReason, nil)
	}

	now := time.Now()
	var row courseModels.ContentProgress
	err = database.Database.Db.Where("teacher_id = ? AND content_id = ?", teacherID, content.ID).First(&row).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		row = courseModels.ContentProgress{
			TeacherID:          teacherID,
			ContentID:          content.ID,
			CourseID:           course.ID,
			SchoolID:           schoolID,
			Status:             courseModels.ProgressCompleted,
			ProgressPercentage: 100,
			CompletedAt:        &now,
		}
		if err := database.Database.Db.Create(&row).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save progress!", nil)
		}
	case err != nil:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save progress!", nil)
	case row.Status == courseModels.ProgressCompleted:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson already completed.", row)
	default:
		row.Status = courseModels.ProgressCompleted
		row.ProgressPercentage = 100
		row.CompletedAt = &now
		if err := database.Database.Db.Save(&row).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save progress!", nil)
		}
	}

	// This call changed a lesson from not-completed to completed, so if the
	// course snapshot reads COMPLETED now, this was the transition.
	snapshots, err := progress.BuildTeacherCourseSnapshots(database.Database.Db, []uint{course.ID}, []uint{teacherID})
	if err != nil {
		log.Println("[PROGRESS] snapshot after completion failed:", err)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed.", row)
	}
	snapshot := snapshots[progress.SnapshotKey{CourseID: course.ID, TeacherID: teacherID}]

	if snapshot.Status == courseModels.ProgressCompleted {
		notifyCourseCompleted(schoolID, teacherID, course)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed.", fiber.Map{
		"progress": row,
		"snapshot": snapshot,
	})
}

func notifyCourseCompleted(schoolID, teacherID uint, course *courseModels.Course) {
	utils.PushNotification(database.Database.Db, schoolID, teacherID,
		models.NotificationCompleted, "Course completed",
		fmt.Sprintf("You have completed the course %q. Well done!", course.Title),
		map[string]interface{}{"course_id": course.ID})

	utils.DispatchEvent(database.Database.Db, schoolID, models.EventCourseCompleted, map[string]interface{}{
		"course_id":    course.ID,
		"course_title": course.Title,
		"teacher_id":   teacherID,
		"completed_at": time.Now().UTC().Format(time.RFC3339),
	})

	var teacher models.User
	if err := database.Database.Db.Where("id = ?", teacherID).First(&teacher).Error; err == nil {
		go utils.SendCourseCompletedEmail(teacher.Email, teacher.Name, course.Title)
	}
}
