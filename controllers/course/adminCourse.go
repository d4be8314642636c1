package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// tenantID pulls the tenant id resolved by the school middleware
func tenantID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("schoolId").(uint)
	return id, ok
}

func AdminCreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Next position within the school's course list
	var nextOrder int
	database.Database.Db.Model(&courseModels.Course{}).
		Select("COALESCE(MAX(order_index), 0) + 1").
		Where("school_id = ? AND is_deleted = ?", schoolID, false).
		Scan(&nextOrder)

	course := courseModels.Course{
		SchoolID:    schoolID,
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  nextOrder,
		IsActive:    true,
		CreatedBy:   userID,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func AdminUpdateCourse(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?", courseID, schoolID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		IsActive    *bool  `json:"is_active"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.IsActive != nil {
		course.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

func AdminDeleteCourse(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?", courseID, schoolID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if err := database.Database.Db.Model(&course).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

func AdminListCourses(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	reqData, _ := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := 1
	limit := 20
	if reqData != nil && reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).Where("school_id = ? AND is_deleted = ?", schoolID, false)

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("order_index asc, created_at asc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

func AdminGetCourseDetails(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?", courseID, schoolID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, created_at asc").Find(&modules)

	var contents []courseModels.Content
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, created_at asc").Find(&contents)

	var assignmentCount int64
	database.Database.Db.Model(&courseModels.CourseAssignment{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&assignmentCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":           course,
		"modules":          modules,
		"contents":         contents,
		"assignment_count": assignmentCount,
	})
}

// AdminPublishCourse toggles publication. Unpublished courses stay invisible
// to teachers but keep their progress rows.
func AdminPublishCourse(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)

	reqData := new(struct {
		IsPublished *bool `json:"is_published"`
	})
	if err := c.BodyParser(reqData); err != nil || reqData.IsPublished == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "is_published is required!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?", courseID, schoolID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if err := database.Database.Db.Model(&course).Update("is_published", *reqData.IsPublished).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course publication updated successfully!", course)
}
