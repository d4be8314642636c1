package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newQuizApp mounts the attempt endpoint behind stub auth Locals, with the
// body parsed into the validated answers shape the handler expects.
func newQuizApp(t *testing.T, teacherID, schoolID uint) *fiber.App {
	t.Helper()
	swapTestDB(t)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", teacherID)
		c.Locals("schoolId", schoolID)
		c.Locals("role", models.RoleTeacher)
		return c.Next()
	})
	app.Post("/course/:id/content/:contentId/quiz/attempts", func(c *fiber.Ctx) error {
		courseID, _ := strconv.Atoi(c.Params("id"))
		contentID, _ := strconv.Atoi(c.Params("contentId"))
		c.Locals("courseID", courseID)
		c.Locals("contentID", contentID)

		reqData := new(struct {
			Answers map[string][]uint `json:"answers"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		c.Locals("validatedQuizAttempt", reqData)
		return c.Next()
	}, SubmitQuizAttempt)
	return app
}

// seedQuizCourse builds an assigned, published course whose first lesson is a
// quiz with one question and the given correct/wrong option split. It returns
// the quiz content and the created option ids keyed by option text.
func seedQuizCourse(t *testing.T, db *gorm.DB, teacherID, schoolID uint) (courseModels.Content, map[string]uint) {
	t.Helper()

	teacher := models.User{Name: "Omar Haddad", Email: "omar@school.test", Password: "x", Role: models.RoleTeacher, SchoolID: &schoolID}
	teacher.ID = teacherID
	require.NoError(t, db.Create(&teacher).Error)

	course := courseModels.Course{SchoolID: schoolID, Title: "Formative Assessment", IsActive: true, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Title: "Checks for Understanding", OrderIndex: 1, IsActive: true}
	require.NoError(t, db.Create(&module).Error)

	quiz := courseModels.Content{
		CourseID:    course.ID,
		ModuleID:    module.ID,
		Title:       "Module quiz",
		ContentType: courseModels.ContentQuiz,
		OrderIndex:  1,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&quiz).Error)

	question := courseModels.QuizQuestion{ContentID: quiz.ID, Prompt: "Which techniques check understanding?", Source: courseModels.QuestionManual, OrderIndex: 1}
	require.NoError(t, db.Create(&question).Error)

	optionIDs := make(map[string]uint)
	options := []struct {
		text    string
		correct bool
	}{
		{"exit tickets", true},
		{"cold calling", true},
		{"seating charts", false},
	}
	for i, o := range options {
		option := courseModels.QuizOption{QuestionID: question.ID, OptionText: o.text, IsCorrect: o.correct, OrderIndex: i + 1}
		require.NoError(t, db.Create(&option).Error)
		optionIDs[o.text] = option.ID
	}

	assignment := courseModels.CourseAssignment{SchoolID: schoolID, CourseID: course.ID, TeacherID: teacherID}
	require.NoError(t, db.Create(&assignment).Error)
	return quiz, optionIDs
}

func submitAttempt(t *testing.T, app *fiber.App, quiz courseModels.Content, selected []uint) (int, apiEnvelope) {
	t.Helper()
	questionKey := func() string {
		var question courseModels.QuizQuestion
		require.NoError(t, database.Database.Db.Where("content_id = ?", quiz.ID).First(&question).Error)
		return strconv.FormatUint(uint64(question.ID), 10)
	}()

	body, err := json.Marshal(fiber.Map{"answers": map[string][]uint{questionKey: selected}})
	require.NoError(t, err)

	target := "/course/" + strconv.FormatUint(uint64(quiz.CourseID), 10) +
		"/content/" + strconv.FormatUint(uint64(quiz.ID), 10) + "/quiz/attempts"
	req := httptest.NewRequest("POST", target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp.StatusCode, envelope
}

func latestAttempt(t *testing.T, teacherID uint, contentID uint) courseModels.QuizAttempt {
	t.Helper()
	var attempt courseModels.QuizAttempt
	require.NoError(t, database.Database.Db.Where("teacher_id = ? AND content_id = ?", teacherID, contentID).
		Order("attempt_number desc").First(&attempt).Error)
	return attempt
}

func TestSubmitQuizAttemptExactMatchGrading(t *testing.T) {
	teacherID, schoolID := uint(601), uint(1)
	app := newQuizApp(t, teacherID, schoolID)
	quiz, optionIDs := seedQuizCourse(t, database.Database.Db, teacherID, schoolID)

	// Both correct options and nothing else scores the question
	code, _ := submitAttempt(t, app, quiz, []uint{optionIDs["exit tickets"], optionIDs["cold calling"]})
	require.Equal(t, fiber.StatusOK, code)

	attempt := latestAttempt(t, teacherID, quiz.ID)
	require.Equal(t, 1, attempt.Score)
	require.Equal(t, 1, attempt.MaxScore)
	require.True(t, attempt.Passed)

	// Passing completed the quiz lesson
	var row courseModels.ContentProgress
	require.NoError(t, database.Database.Db.Where("teacher_id = ? AND content_id = ?", teacherID, quiz.ID).First(&row).Error)
	require.Equal(t, courseModels.ProgressCompleted, row.Status)
}

func TestSubmitQuizAttemptRejectsSubsetAnswer(t *testing.T) {
	teacherID, schoolID := uint(602), uint(1)
	app := newQuizApp(t, teacherID, schoolID)
	quiz, optionIDs := seedQuizCourse(t, database.Database.Db, teacherID, schoolID)

	// One of two correct options is not an exact match
	code, _ := submitAttempt(t, app, quiz, []uint{optionIDs["exit tickets"]})
	require.Equal(t, fiber.StatusOK, code)

	attempt := latestAttempt(t, teacherID, quiz.ID)
	require.Zero(t, attempt.Score)
	require.False(t, attempt.Passed)
}

func TestSubmitQuizAttemptDuplicateIDsDoNotPadTheAnswer(t *testing.T) {
	teacherID, schoolID := uint(603), uint(1)
	app := newQuizApp(t, teacherID, schoolID)
	quiz, optionIDs := seedQuizCourse(t, database.Database.Db, teacherID, schoolID)

	// The same correct id twice is still only one distinct answer
	code, _ := submitAttempt(t, app, quiz, []uint{optionIDs["exit tickets"], optionIDs["exit tickets"]})
	require.Equal(t, fiber.StatusOK, code)

	attempt := latestAttempt(t, teacherID, quiz.ID)
	require.Zero(t, attempt.Score)
	require.False(t, attempt.Passed)

	// A failed attempt never completes the lesson
	var count int64
	database.Database.Db.Model(&courseModels.ContentProgress{}).
		Where("teacher_id = ? AND content_id = ?", teacherID, quiz.ID).Count(&count)
	require.Zero(t, count)
}

func TestSubmitQuizAttemptWrongOptionFails(t *testing.T) {
	teacherID, schoolID := uint(604), uint(1)
	app := newQuizApp(t, teacherID, schoolID)
	quiz, optionIDs := seedQuizCourse(t, database.Database.Db, teacherID, schoolID)

	code, _ := submitAttempt(t, app, quiz, []uint{optionIDs["exit tickets"], optionIDs["seating charts"]})
	require.Equal(t, fiber.StatusOK, code)

	attempt := latestAttempt(t, teacherID, quiz.ID)
	require.Zero(t, attempt.Score)
	require.False(t, attempt.Passed)
}

func TestSubmitQuizAttemptNumbersAttempts(t *testing.T) {
	teacherID, schoolID := uint(605), uint(1)
	app := newQuizApp(t, teacherID, schoolID)
	quiz, optionIDs := seedQuizCourse(t, database.Database.Db, teacherID, schoolID)

	submitAttempt(t, app, quiz, []uint{optionIDs["seating charts"]})
	submitAttempt(t, app, quiz, []uint{optionIDs["exit tickets"], optionIDs["cold calling"]})

	attempt := latestAttempt(t, teacherID, quiz.ID)
	require.Equal(t, 2, attempt.AttemptNumber)
	require.True(t, attempt.Passed)
}
