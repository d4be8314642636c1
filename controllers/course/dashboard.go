package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/progress"

	"github.com/gofiber/fiber/v2"
)

// SchoolDashboard summarizes the school for the admin: headline counts and a
// per-course completion table. Snapshots are requested with the explicit
// teacher id list so teachers who never opened a course still show up as
// NOT_STARTED.
func SchoolDashboard(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	var teacherCount, courseCount, assignmentCount int64
	database.Database.Db.Model(&models.User{}).
		Where("school_id = ? AND role = ? AND is_deleted = ?", schoolID, models.RoleTeacher, false).
		Count(&teacherCount)
	database.Database.Db.Model(&courseModels.Course{}).
		Where("school_id = ? AND is_deleted = ?", schoolID, false).
		Count(&courseCount)
	database.Database.Db.Model(&courseModels.CourseAssignment{}).
		Where("school_id = ? AND is_deleted = ?", schoolID, false).
		Count(&assignmentCount)

	var courses []courseModels.Course
	database.Database.Db.Where("school_id = ? AND is_deleted = ?", schoolID, false).
		Order("order_index asc, created_at asc").Find(&courses)

	completedTotal := 0
	table := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		var assignments []courseModels.CourseAssignment
		database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).Find(&assignments)

		teacherIDs := make([]uint, 0, len(assignments))
		for _, a := range assignments {
			teacherIDs = append(teacherIDs, a.TeacherID)
		}

		snapshots, err := progress.BuildTeacherCourseSnapshots(database.Database.Db, []uint{course.ID}, teacherIDs)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
		}

		completed, inProgress, notStarted := 0, 0, 0
		for _, teacherID := range teacherIDs {
			switch snapshots[progress.SnapshotKey{CourseID: course.ID, TeacherID: teacherID}].Status {
			case courseModels.ProgressCompleted:
				completed++
			case courseModels.ProgressInProgress:
				inProgress++
			default:
				notStarted++
			}
		}
		completedTotal += completed

		table = append(table, fiber.Map{
			"course_id":   course.ID,
			"title":       course.Title,
			"is_active":   course.IsActive,
			"assigned":    len(teacherIDs),
			"completed":   completed,
			"in_progress": inProgress,
			"not_started": notStarted,
		})
	}

	// Recent activity: latest completions across the school
	var recent []courseModels.ContentProgress
	database.Database.Db.Where("school_id = ? AND status = ? AND is_deleted = ?",
		schoolID, courseModels.ProgressCompleted, false).
		Order("completed_at desc").Limit(10).Find(&recent)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"teachers":        teacherCount,
		"courses":         courseCount,
		"assignments":     assignmentCount,
		"completions":     completedTotal,
		"course_table":    table,
		"recent_activity": recent,
	})
}

// TeacherDashboard gives the teacher their snapshots plus a resume pointer:
// the first unlocked, not-completed lesson of each unfinished course.
func TeacherDashboard(c *fiber.Ctx) error {
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
		Order("created_at asc").Find(&assignments)

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

		snapshot := snapshots[progress.SnapshotKey{CourseID: a.CourseID, TeacherID: teacherID}]
		entry := fiber.Map{
			"course":   course,
			"snapshot": snapshot,
			"due_at":   a.DueAt,
		}

		if snapshot.Status != courseModels.ProgressCompleted {
			if resume := resumeContent(a.CourseID, teacherID); resume != nil {
				entry["resume"] = fiber.Map{
					"content_id":   resume.ID,
					"module_id":    resume.ModuleID,
					"title":        resume.Title,
					"content_type": resume.ContentType,
				}
			}
		}
		out = append(out, entry)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"courses": out,
	})
}

// resumeContent walks the ordered outline and returns the first lesson that
// is unlocked and not yet completed, or nil when there is none.
func resumeContent(courseID, teacherID uint) *courseModels.Content {
	outline, err := progress.LoadCourseOutline(database.Database.Db, courseID)
	if err != nil {
		return nil
	}
	_, contentStates, err := progress.ComputeCourseSequenceState(database.Database.Db, outline, teacherID)
	if err != nil {
		return nil
	}

	var rows []courseModels.ContentProgress
	database.Database.Db.Where("teacher_id = ? AND course_id = ? AND status = ? AND is_deleted = ?",
		teacherID, courseID, courseModels.ProgressCompleted, false).Find(&rows)
	completed := make(map[uint]bool, len(rows))
	for _, row := range rows {
		completed[row.ContentID] = true
	}

	for _, mo := range outline.Modules {
		for i := range mo.Contents {
			item := mo.Contents[i]
			if contentStates[item.ID].IsLocked || completed[item.ID] {
				continue
			}
			return &item
		}
	}
	return nil
}

// CompletedTeachersReport lists the teachers who finished a course, in
// assignment order.
func CompletedTeachersReport(c *fiber.Ctx) error {
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
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("created_at asc").Find(&assignments)

	teacherIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		teacherIDs = append(teacherIDs, a.TeacherID)
	}

	completedIDs, err := progress.CompletedTeacherIDsForCourse(database.Database.Db, course.ID, teacherIDs)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute report!", nil)
	}

	teachers := make([]fiber.Map, 0, len(completedIDs))
	for _, id := range completedIDs {
		var teacher models.User
		if err := database.Database.Db.Where("id = ?", id).First(&teacher).Error; err != nil {
			continue
		}
		teachers = append(teachers, fiber.Map{
			"id":      teacher.ID,
			"name":    teacher.Name,
			"email":   teacher.Email,
			"subject": teacher.Subject,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Report fetched successfully!", fiber.Map{
		"course_id": course.ID,
		"completed": teachers,
		"total":     len(teacherIDs),
	})
}
