package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// courseInSchool fetches a course scoped to the tenant, or nil
func courseInSchool(schoolID uint, courseID int) *courseModels.Course {
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?", courseID, schoolID, false).First(&course).Error; err != nil {
		return nil
	}
	return &course
}

func AdminCreateModule(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	if courseInSchool(schoolID, courseID) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedModule").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var nextOrder int
	database.Database.Db.Model(&courseModels.Module{}).
		Select("COALESCE(MAX(order_index), 0) + 1").
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Scan(&nextOrder)

	module := courseModels.Module{
		CourseID:    uint(courseID),
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  nextOrder,
		IsActive:    true,
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func AdminUpdateModule(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedModuleUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		IsActive    *bool  `json:"is_active"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		module.Title = reqData.Title
	}
	if reqData.Description != "" {
		module.Description = reqData.Description
	}
	if reqData.IsActive != nil {
		module.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

func AdminDeleteModule(c *fiber.Ctx) error {
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

	if err := database.Database.Db.Model(&module).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

func AdminListModules(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	if courseInSchool(schoolID, courseID) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var modules []courseModels.Module
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, created_at asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", modules)
}

// AdminReorderModules rewrites the order_index of every module in the course
// from the supplied id list. Ids not in the list keep their position after
// the reordered ones.
func AdminReorderModules(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	courseID := c.Locals("courseID").(int)
	if courseInSchool(schoolID, courseID) == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData := new(struct {
		ModuleIDs []uint `json:"module_ids"`
	})
	if err := c.BodyParser(reqData); err != nil || len(reqData.ModuleIDs) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "module_ids is required!", nil)
	}

	tx := database.Database.Db.Begin()
	for position, moduleID := range reqData.ModuleIDs {
		if err := tx.Model(&courseModels.Module{}).
			Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).
			Update("order_index", position+1).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder modules!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules reordered successfully!", nil)
}
