package controllers

import (
	"encoding/json"
	"strconv"
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/progress"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// A quiz passes when at least this share of questions is fully correct.
const quizPassPercent = 70

func quizContent(schoolID uint, courseID, contentID int) *courseModels.Content {
	if courseInSchool(schoolID, courseID) == nil {
		return nil
	}
	var content courseModels.Content
	err := database.Database.Db.Where("id = ? AND course_id = ? AND content_type = ? AND is_deleted = ?",
		contentID, courseID, courseModels.ContentQuiz, false).First(&content).Error
	if err != nil {
		return nil
	}
	return &content
}

func loadQuestions(contentID uint) ([]courseModels.QuizQuestion, map[uint][]courseModels.QuizOption) {
	var questions []courseModels.QuizQuestion
	database.Database.Db.Where("content_id = ? AND is_deleted = ?", contentID, false).
		Order("order_index asc, created_at asc").Find(&questions)

	optionsByQuestion := make(map[uint][]courseModels.QuizOption)
	for _, q := range questions {
		var options []courseModels.QuizOption
		database.Database.Db.Where("question_id = ? AND is_deleted = ?", q.ID, false).
			Order("order_index asc, created_at asc").Find(&options)
		optionsByQuestion[q.ID] = options
	}
	return questions, optionsByQuestion
}

// GetQuiz returns the quiz for a teacher to take. Correct-answer flags and
// explanations are stripped; they come back only in the attempt result.
func GetQuiz(c *fiber.Ctx) error {
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

	if assignedCourse(schoolID, teacherID, courseID) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	content := quizContent(schoolID, courseID, contentID)
	if content == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	outline, err := progress.LoadCourseOutline(database.Database.Db, uint(courseID))
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

	questions, optionsByQuestion := loadQuestions(content.ID)

	out := make([]fiber.Map, 0, len(questions))
	for _, q := range questions {
		options := make([]fiber.Map, 0, len(optionsByQuestion[q.ID]))
		for _, o := range optionsByQuestion[q.ID] {
			options = append(options, fiber.Map{
				"id":          o.ID,
				"option_text": o.OptionText,
				"order_index": o.OrderIndex,
			})
		}
		out = append(out, fiber.Map{
			"id":          q.ID,
			"prompt":      q.Prompt,
			"order_index": q.OrderIndex,
			"options":     options,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"content":   content,
		"questions": out,
	})
}

// SubmitQuizAttempt grades an answer set against the stored correct options.
// A question scores only when the selected set matches the correct set
// exactly. Passing marks the quiz content COMPLETED through the normal
// completion path semantics.
func SubmitQuizAttempt(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedQuizAttempt").(*struct {
		Answers map[string][]uint `json:"answers"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := assignedCourse(schoolID, teacherID, courseID)
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	content := quizContent(schoolID, courseID, contentID)
	if content == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
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

	questions, optionsByQuestion := loadQuestions(content.ID)
	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Quiz has no questions!", nil)
	}

	score := 0
	results := make([]fiber.Map, 0, len(questions))
	for _, q := range questions {
		correct := make(map[uint]bool)
		for _, o := range optionsByQuestion[q.ID] {
			if o.IsCorrect {
				correct[o.ID] = true
			}
		}

		// Dedup before comparing so repeated ids can't pad the size check
		selected := make(map[uint]bool)
		for _, id := range reqData.Answers[strconv.FormatUint(uint64(q.ID), 10)] {
			selected[id] = true
		}
		matched := len(selected) == len(correct)
		if matched {
			for id := range selected {
				if !correct[id] {
					matched = false
					break
				}
			}
		}
		if matched {
			score++
		}
		results = append(results, fiber.Map{
			"question_id": q.ID,
			"correct":     matched,
			"explanation": q.Explanation,
		})
	}

	passed := score*100 >= quizPassPercent*len(questions)

	var attemptCount int64
	database.Database.Db.Model(&courseModels.QuizAttempt{}).
		Where("teacher_id = ? AND content_id = ? AND is_deleted = ?", teacherID, content.ID, false).
		Count(&attemptCount)

	selectedJSON, _ := json.Marshal(reqData.Answers)
	attempt := courseModels.QuizAttempt{
		TeacherID:       teacherID,
		ContentID:       content.ID,
		SelectedOptions: datatypes.JSON(selectedJSON),
		Score:           score,
		MaxScore:        len(questions),
		Passed:          passed,
		AttemptNumber:   int(attemptCount) + 1,
	}
	if err := database.Database.Db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save attempt!", nil)
	}

	response := fiber.Map{
		"attempt": attempt,
		"results": results,
	}

	if passed {
		if snapshot := completeQuizContent(schoolID, teacherID, course, content); snapshot != nil {
			response["snapshot"] = *snapshot
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt recorded.", response)
}

// completeQuizContent applies a passing attempt to the progress row and
// fires the course-completed flow when this was the final lesson.
func completeQuizContent(schoolID, teacherID uint, course *courseModels.Course, content *courseModels.Content) *progress.TeacherCourseSnapshot {
	now := time.Now()
	var row courseModels.ContentProgress
	err := database.Database.Db.Where("teacher_id = ? AND content_id = ?", teacherID, content.ID).First(&row).Error
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
		database.Database.Db.Create(&row)
	case err != nil:
		return nil
	case row.Status == courseModels.ProgressCompleted:
		return nil
	default:
		row.Status = courseModels.ProgressCompleted
		row.ProgressPercentage = 100
		row.CompletedAt = &now
		database.Database.Db.Save(&row)
	}

	snapshots, err := progress.BuildTeacherCourseSnapshots(database.Database.Db, []uint{course.ID}, []uint{teacherID})
	if err != nil {
		return nil
	}
	snapshot := snapshots[progress.SnapshotKey{CourseID: course.ID, TeacherID: teacherID}]
	if snapshot.Status == courseModels.ProgressCompleted {
		notifyCourseCompleted(schoolID, teacherID, course)
	}
	return &snapshot
}

// AdminAddQuestion creates a MANUAL question with its options on a quiz
// content item.
func AdminAddQuestion(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	contentID := c.Locals("contentID").(int)

	content := quizContent(schoolID, courseID, contentID)
	if content == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuestion").(*struct {
		Prompt      string `json:"prompt"`
		Explanation string `json:"explanation"`
		Options     []struct {
			OptionText string `json:"option_text"`
			IsCorrect  bool   `json:"is_correct"`
		} `json:"options"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var nextOrder int
	database.Database.Db.Model(&courseModels.QuizQuestion{}).
		Select("COALESCE(MAX(order_index), 0) + 1").
		Where("content_id = ? AND is_deleted = ?", content.ID, false).
		Scan(&nextOrder)

	question := courseModels.QuizQuestion{
		ContentID:   content.ID,
		Prompt:      reqData.Prompt,
		Explanation: reqData.Explanation,
		Source:      courseModels.QuestionManual,
		OrderIndex:  nextOrder,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}
	for i, opt := range reqData.Options {
		option := courseModels.QuizOption{
			QuestionID: question.ID,
			OptionText: opt.OptionText,
			IsCorrect:  opt.IsCorrect,
			OrderIndex: i + 1,
		}
		if err := tx.Create(&option).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create options!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", question)
}

func AdminDeleteQuestion(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	contentID := c.Locals("contentID").(int)
	questionID := c.Locals("questionID").(int)

	content := quizContent(schoolID, courseID, contentID)
	if content == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var question courseModels.QuizQuestion
	err := database.Database.Db.Where("id = ? AND content_id = ? AND is_deleted = ?",
		questionID, content.ID, false).First(&question).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	question.IsDeleted = true
	if err := database.Database.Db.Save(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}
	database.Database.Db.Model(&courseModels.QuizOption{}).
		Where("question_id = ?", question.ID).Update("is_deleted", true)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

// ListQuizAttempts returns the teacher's own attempt history for a quiz.
func ListQuizAttempts(c *fiber.Ctx) error {
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

	content := quizContent(schoolID, courseID, contentID)
	if content == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var attempts []courseModels.QuizAttempt
	database.Database.Db.Where("teacher_id = ? AND content_id = ? AND is_deleted = ?",
		teacherID, content.ID, false).
		Order("attempt_number desc").Find(&attempts)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}
