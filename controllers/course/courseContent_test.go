package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/progress"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// swapTestDB points the global DB at an isolated in-memory one for the
// duration of the test.
func swapTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTest()
	require.NoError(t, err)
	previous := database.Database
	database.Database = database.DbInstance{Db: db}
	t.Cleanup(func() { database.Database = previous })
	return db
}

// newLearnApp builds a minimal app with the complete endpoint mounted behind
// stub auth Locals.
func newLearnApp(t *testing.T, teacherID, schoolID uint) *fiber.App {
	t.Helper()
	swapTestDB(t)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", teacherID)
		c.Locals("schoolId", schoolID)
		c.Locals("role", models.RoleTeacher)
		return c.Next()
	})
	app.Post("/course/:id/content/:contentId/complete", func(c *fiber.Ctx) error {
		courseID, _ := strconv.Atoi(c.Params("id"))
		contentID, _ := strconv.Atoi(c.Params("contentId"))
		c.Locals("courseID", courseID)
		c.Locals("contentID", contentID)
		return c.Next()
	}, CompleteContent)
	return app
}

// seedLearnCourse builds one published course with a single two-lesson module
// and assigns it to the teacher.
func seedLearnCourse(t *testing.T, db *gorm.DB, teacherID, schoolID uint) (courseModels.Course, []courseModels.Content) {
	t.Helper()

	teacher := models.User{Name: "Priya Nair", Email: "priya@school.test", Password: "x", Role: models.RoleTeacher, SchoolID: &schoolID}
	teacher.ID = teacherID
	require.NoError(t, db.Create(&teacher).Error)

	course := courseModels.Course{SchoolID: schoolID, Title: "Lesson Planning", IsActive: true, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Title: "Foundations", OrderIndex: 1, IsActive: true}
	require.NoError(t, db.Create(&module).Error)

	var lessons []courseModels.Content
	for i := 1; i <= 2; i++ {
		lesson := courseModels.Content{CourseID: course.ID, ModuleID: module.ID, Title: "Lesson", OrderIndex: i, IsActive: true}
		require.NoError(t, db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}

	assignment := courseModels.CourseAssignment{SchoolID: schoolID, CourseID: course.ID, TeacherID: teacherID}
	require.NoError(t, db.Create(&assignment).Error)
	return course, lessons
}

func completeLesson(t *testing.T, app *fiber.App, courseID, contentID uint) (int, apiEnvelope) {
	t.Helper()
	target := "/course/" + strconv.FormatUint(uint64(courseID), 10) +
		"/content/" + strconv.FormatUint(uint64(contentID), 10) + "/complete"
	resp, err := app.Test(httptest.NewRequest("POST", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return resp.StatusCode, envelope
}

func TestCompleteContentRefusesLockedLesson(t *testing.T) {
	teacherID, schoolID := uint(501), uint(1)
	app := newLearnApp(t, teacherID, schoolID)
	course, lessons := seedLearnCourse(t, database.Database.Db, teacherID, schoolID)

	// Lesson 2 is locked while lesson 1 is incomplete
	code, envelope := completeLesson(t, app, course.ID, lessons[1].ID)
	require.Equal(t, fiber.StatusForbidden, code)
	require.False(t, envelope.Status)
	require.Equal(t, progress.LockReasonContent, envelope.Message)

	// Nothing was persisted for the locked lesson
	var count int64
	database.Database.Db.Model(&courseModels.ContentProgress{}).
		Where("teacher_id = ? AND content_id = ?", teacherID, lessons[1].ID).Count(&count)
	require.Zero(t, count)
}

func TestCompleteContentUnlocksInOrderAndFiresCompletion(t *testing.T) {
	teacherID, schoolID := uint(502), uint(1)
	app := newLearnApp(t, teacherID, schoolID)
	course, lessons := seedLearnCourse(t, database.Database.Db, teacherID, schoolID)

	code, _ := completeLesson(t, app, course.ID, lessons[0].ID)
	require.Equal(t, fiber.StatusOK, code)

	// Completing the last lesson flips the course snapshot to COMPLETED
	code, envelope := completeLesson(t, app, course.ID, lessons[1].ID)
	require.Equal(t, fiber.StatusOK, code)

	var payload struct {
		Snapshot progress.TeacherCourseSnapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	require.Equal(t, courseModels.ProgressCompleted, payload.Snapshot.Status)
	require.Equal(t, 2, payload.Snapshot.CompletedContentCount)

	var notifications int64
	database.Database.Db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", teacherID, models.NotificationCompleted).Count(&notifications)
	require.EqualValues(t, 1, notifications)
}

func TestCompleteContentIdempotent(t *testing.T) {
	teacherID, schoolID := uint(503), uint(1)
	app := newLearnApp(t, teacherID, schoolID)
	course, lessons := seedLearnCourse(t, database.Database.Db, teacherID, schoolID)

	code, _ := completeLesson(t, app, course.ID, lessons[0].ID)
	require.Equal(t, fiber.StatusOK, code)

	code, envelope := completeLesson(t, app, course.ID, lessons[0].ID)
	require.Equal(t, fiber.StatusOK, code)
	require.Equal(t, "Lesson already completed.", envelope.Message)

	var count int64
	database.Database.Db.Model(&courseModels.ContentProgress{}).
		Where("teacher_id = ? AND content_id = ?", teacherID, lessons[0].ID).Count(&count)
	require.EqualValues(t, 1, count)
}
