package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/progress"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SubmitReview records or updates the teacher's rating of a course. Only a
// completed course (per the computed snapshot) may be reviewed, and a
// teacher holds at most one review per course.
func SubmitReview(c *fiber.Ctx) error {
	teacherID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)

	reqData, ok := c.Locals("validatedReview").(*struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

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
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Complete the course before reviewing it!", nil)
	}

	var review courseModels.CourseReview
	err = database.Database.Db.Where("course_id = ? AND teacher_id = ? AND is_deleted = ?",
		course.ID, teacherID, false).First(&review).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		review = courseModels.CourseReview{
			SchoolID:  schoolID,
			CourseID:  course.ID,
			TeacherID: teacherID,
			Rating:    reqData.Rating,
			Comment:   reqData.Comment,
		}
		if err := database.Database.Db.Create(&review).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save review!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review submitted.", review)
	case err != nil:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save review!", nil)
	default:
		review.Rating = reqData.Rating
		review.Comment = reqData.Comment
		if err := database.Database.Db.Save(&review).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save review!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Review updated.", review)
	}
}

// ListCourseReviews lists a course's reviews with the average rating.
func ListCourseReviews(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	course := courseInSchool(schoolID, courseID)
	if course == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var reviews []courseModels.CourseReview
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("created_at desc").Find(&reviews)

	var average float64
	database.Database.Db.Model(&courseModels.CourseReview{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Scan(&average)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews":        reviews,
		"average_rating": average,
		"count":          len(reviews),
	})
}
