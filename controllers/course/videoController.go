package controllers

import (
	"path/filepath"

	"lms/config"
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/ingest"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// UploadVideo accepts a multipart video upload (field "video") with an
// optional transcript sidecar (field "transcript"), creates the video row
// plus its VIDEO lesson, and kicks off the ingest pipeline in the
// background. Validation, probing and transcript-driven assignment
// generation all happen inside ingest.
func UploadVideo(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

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

	videoFile, err := c.FormFile("video")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Video file is required!", nil)
	}

	title := c.FormValue("title")
	if title == "" {
		title = videoFile.Filename
	}

	uploadDir := filepath.Join(config.AppConfig.UploadDir, "videos")
	storagePath, err := utils.SaveUploadedFile(videoFile, uploadDir)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store video!", nil)
	}

	transcriptPath := ""
	if transcriptFile, err := c.FormFile("transcript"); err == nil {
		transcriptPath, err = utils.SaveUploadedFile(transcriptFile, filepath.Join(config.AppConfig.UploadDir, "transcripts"))
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store transcript!", nil)
		}
	}

	video := courseModels.Video{
		SchoolID:       schoolID,
		CourseID:       uint(courseID),
		ModuleID:       uint(moduleID),
		UploadedBy:     userID,
		OriginalName:   videoFile.Filename,
		StoragePath:    storagePath,
		TranscriptPath: transcriptPath,
		SizeBytes:      videoFile.Size,
		Status:         courseModels.VideoUploaded,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&video).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save video!", nil)
	}

	var nextOrder int
	tx.Model(&courseModels.Content{}).
		Select("COALESCE(MAX(order_index), 0) + 1").
		Where("module_id = ? AND is_deleted = ?", moduleID, false).
		Scan(&nextOrder)

	content := courseModels.Content{
		CourseID:    uint(courseID),
		ModuleID:    uint(moduleID),
		Title:       title,
		ContentType: courseModels.ContentVideo,
		VideoID:     &video.ID,
		OrderIndex:  nextOrder,
		Source:      courseModels.SourceAuthored,
		IsActive:    true,
	}
	if err := tx.Create(&content).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create video lesson!", nil)
	}

	if err := tx.Model(&video).Update("content_id", content.ID).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to link video lesson!", nil)
	}
	tx.Commit()

	ingest.Enqueue(database.Database.Db, video.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Video uploaded, processing started.", fiber.Map{
		"video":   video,
		"content": content,
	})
}

func GetVideoStatus(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	videoID := c.Locals("videoID").(int)

	var video courseModels.Video
	if err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?", videoID, schoolID, false).First(&video).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found!", nil)
	}

	// Generated assignments, if the transcript produced any
	var generated []courseModels.Content
	database.Database.Db.Where("video_id = ? AND source = ? AND is_deleted = ?", video.ID, courseModels.SourceGenerated, false).
		Order("order_index asc").Find(&generated)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video status fetched successfully!", fiber.Map{
		"video":     video,
		"generated": generated,
	})
}

// RerunIngest re-executes the pipeline for a video. force=true reprocesses
// even a READY video; generated assignments are reused, never duplicated.
func RerunIngest(c *fiber.Ctx) error {
	schoolID, ok := tenantID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	videoID := c.Locals("videoID").(int)

	var video courseModels.Video
	if err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?", videoID, schoolID, false).First(&video).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found!", nil)
	}

	force := c.Query("force") == "true"
	if err := ingest.Run(database.Database.Db, video.ID, force); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Ingest failed: "+err.Error(), nil)
	}

	database.Database.Db.Where("id = ?", video.ID).First(&video)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ingest completed.", video)
}
