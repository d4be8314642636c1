package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

func AdminCreateContent(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	if courseInSchool(schoolID, courseID) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := c.Locals("validatedContent").(*struct {
		Title       string `json:"title"`
		ContentType string `json:"content_type"`
		Body        string `json:"body"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var nextOrder int
	database.Database.Db.Model(&courseModels.Content{}).
		Select("COALESCE(MAX(order_index), 0) + 1").
		Where("module_id = ? AND is_deleted = ?", moduleID, false).
		Scan(&nextOrder)

	content := courseModels.Content{
		CourseID:    uint(courseID),
		ModuleID:    uint(moduleID),
		Title:       reqData.Title,
		ContentType: reqData.ContentType,
		Body:        reqData.Body,
		OrderIndex:  nextOrder,
		Source:      courseModels.SourceAuthored,
		IsActive:    true,
	}

	if err := database.Database.Db.Create(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content created successfully!", content)
}

func AdminUpdateContent(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	contentID := c.Locals("contentID").(int)

	var content courseModels.Content
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", contentID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}
	if courseInSchool(schoolID, int(content.CourseID)) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	reqData, ok := c.Locals("validatedContentUpdate").(*struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		IsActive *bool  `json:"is_active"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		content.Title = reqData.Title
	}
	if reqData.Body != "" {
		content.Body = reqData.Body
	}
	if reqData.IsActive != nil {
		content.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Save(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content updated successfully!", content)
}

func AdminDeleteContent(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	contentID := c.Locals("contentID").(int)

	var content courseModels.Content
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", contentID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}
	if courseInSchool(schoolID, int(content.CourseID)) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	if err := database.Database.Db.Model(&content).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully!", nil)
}

func AdminListModuleContent(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	if courseInSchool(schoolID, courseID) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var contents []courseModels.Content
	if err := database.Database.Db.Where("module_id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).
		Order("order_index asc, created_at asc").Find(&contents).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content fetched successfully!", contents)
}

// AdminReorderContent rewrites the order_index of content within one module
func AdminReorderContent(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	if courseInSchool(schoolID, courseID) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData := new(struct {
		ContentIDs []uint `json:"content_ids"`
	})
	if err := c.BodyParser(reqData); err != nil || len(reqData.ContentIDs) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "content_ids is required!", nil)
	}

	tx := database.Database.Db.Begin()
	for position, contentID := range reqData.ContentIDs {
		if err := tx.Model(&courseModels.Content{}).
			Where("id = ? AND module_id = ? AND is_deleted = ?", contentID, moduleID, false).
			Update("order_index", position+1).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder content!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content reordered successfully!", nil)
}
