package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newCertificateApp(t *testing.T, teacherID, schoolID uint) *fiber.App {
	t.Helper()
	swapTestDB(t)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", teacherID)
		c.Locals("schoolId", schoolID)
		c.Locals("role", models.RoleTeacher)
		return c.Next()
	})
	app.Post("/course/:id/certificate-request", func(c *fiber.Ctx) error {
		courseID, _ := strconv.Atoi(c.Params("id"))
		c.Locals("courseID", courseID)
		return c.Next()
	}, RequestCertificate)
	return app
}

func requestCertificate(t *testing.T, app *fiber.App, courseID uint) (int, apiEnvelope) {
	t.Helper()
	target := "/course/" + strconv.FormatUint(uint64(courseID), 10) + "/certificate-request"
	resp, err := app.Test(httptest.NewRequest("POST", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp.StatusCode, envelope
}

func TestRequestCertificateRefusedWhileIncomplete(t *testing.T) {
	teacherID, schoolID := uint(701), uint(1)
	app := newCertificateApp(t, teacherID, schoolID)
	course, lessons := seedLearnCourse(t, database.Database.Db, teacherID, schoolID)

	// Nothing completed yet
	code, envelope := requestCertificate(t, app, course.ID)
	require.Equal(t, fiber.StatusUnprocessableEntity, code)
	require.False(t, envelope.Status)
	require.Equal(t, "Course is not completed yet!", envelope.Message)

	// Halfway through is still refused; the gate is the computed snapshot
	completedAt := time.Now()
	row := courseModels.ContentProgress{
		TeacherID:          teacherID,
		ContentID:          lessons[0].ID,
		CourseID:           course.ID,
		SchoolID:           schoolID,
		Status:             courseModels.ProgressCompleted,
		ProgressPercentage: 100,
		CompletedAt:        &completedAt,
	}
	require.NoError(t, database.Database.Db.Create(&row).Error)

	code, _ = requestCertificate(t, app, course.ID)
	require.Equal(t, fiber.StatusUnprocessableEntity, code)

	var requests int64
	database.Database.Db.Model(&courseModels.CertificateRequest{}).
		Where("teacher_id = ? AND course_id = ?", teacherID, course.ID).Count(&requests)
	require.Zero(t, requests)
}

func TestRequestCertificateAfterCompletion(t *testing.T) {
	teacherID, schoolID := uint(702), uint(1)
	app := newCertificateApp(t, teacherID, schoolID)
	course, lessons := seedLearnCourse(t, database.Database.Db, teacherID, schoolID)

	completedAt := time.Now()
	for _, lesson := range lessons {
		row := courseModels.ContentProgress{
			TeacherID:          teacherID,
			ContentID:          lesson.ID,
			CourseID:           course.ID,
			SchoolID:           schoolID,
			Status:             courseModels.ProgressCompleted,
			ProgressPercentage: 100,
			CompletedAt:        &completedAt,
		}
		require.NoError(t, database.Database.Db.Create(&row).Error)
	}

	code, _ := requestCertificate(t, app, course.ID)
	require.Equal(t, fiber.StatusCreated, code)

	var request courseModels.CertificateRequest
	require.NoError(t, database.Database.Db.Where("teacher_id = ? AND course_id = ?", teacherID, course.ID).
		First(&request).Error)
	require.Equal(t, courseModels.CertPending, request.Status)

	// A second request while one is pending is a conflict
	code, envelope := requestCertificate(t, app, course.ID)
	require.Equal(t, fiber.StatusConflict, code)
	require.Equal(t, "A certificate request already exists!", envelope.Message)
}
