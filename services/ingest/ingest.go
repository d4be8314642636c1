package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

const maxIngestAttempts = 5

// probeResult is the validation metadata stored on the video row
type probeResult struct {
	SizeBytes       int64  `json:"size_bytes"`
	Extension       string `json:"extension"`
	HasTranscript   bool   `json:"has_transcript"`
	TranscriptWords int    `json:"transcript_words"`
	ProbedAt        string `json:"probed_at"`
}

// Enqueue starts the ingest pipeline for a video in the background.
// Failures are logged; the video row carries the outcome.
func Enqueue(db *gorm.DB, videoID uint) {
	go func() {
		if err := Run(db, videoID, false); err != nil {
			log.Printf("[INGEST] Video %d ingest failed: %v", videoID, err)
		}
	}()
}

// Run executes the ingest pipeline for one video: validate the uploaded
// file, probe it, and when a transcript is present generate the reflection
// and quiz assignments for the video's module.
//
// Run is idempotent: a READY video is a no-op unless force is set, and
// generated content is looked up before being created, so re-running after
// a partial failure never duplicates assignments.
func Run(db *gorm.DB, videoID uint, force bool) error {
	var video courseModels.Video
	if err := db.Where("id = ? AND is_deleted = ?", videoID, false).First(&video).Error; err != nil {
		return err
	}

	if video.Status == courseModels.VideoReady && !force {
		log.Printf("[INGEST] Video %d already READY, skipping", video.ID)
		return nil
	}

	if err := db.Model(&video).Updates(map[string]interface{}{
		"status":          courseModels.VideoValidating,
		"fail_reason":     "",
		"ingest_attempts": gorm.Expr("ingest_attempts + 1"),
	}).Error; err != nil {
		return err
	}

	probe, err := validateFile(&video)
	if err != nil {
		markFailed(db, &video, err.Error())
		return err
	}

	transcript := readTranscript(&video)
	probe.HasTranscript = transcript != ""
	probe.TranscriptWords = len(strings.Fields(transcript))
	probe.ProbedAt = time.Now().UTC().Format(time.RFC3339)

	probeJSON, _ := json.Marshal(probe)
	if err := db.Model(&video).Update("probe", datatypes.JSON(probeJSON)).Error; err != nil {
		return err
	}

	if transcript != "" {
		if err := ensureGeneratedContents(db, &video, transcript); err != nil {
			markFailed(db, &video, "Failed to generate assignments: "+err.Error())
			return err
		}
	}

	now := time.Now()
	if err := db.Model(&video).Updates(map[string]interface{}{
		"status":      courseModels.VideoReady,
		"ingested_at": &now,
	}).Error; err != nil {
		return err
	}

	log.Printf("[INGEST] Video %d READY (transcript words: %d)", video.ID, probe.TranscriptWords)

	utils.PushNotification(db, video.SchoolID, video.UploadedBy, models.NotificationVideoReady,
		"Video ready", fmt.Sprintf("Your video %q has been processed and is now available.", video.OriginalName),
		map[string]interface{}{"video_id": video.ID, "course_id": video.CourseID})
	utils.DispatchEvent(db, video.SchoolID, models.EventVideoReady, map[string]interface{}{
		"video_id":  video.ID,
		"course_id": video.CourseID,
		"module_id": video.ModuleID,
	})

	return nil
}

// validateFile checks the stored upload: it must exist, be non-empty, carry
// an allowed extension and stay under the configured size cap.
func validateFile(video *courseModels.Video) (probeResult, error) {
	probe := probeResult{}

	info, err := os.Stat(video.StoragePath)
	if err != nil {
		return probe, errors.New("uploaded file is missing from storage")
	}
	if info.Size() == 0 {
		return probe, errors.New("uploaded file is empty")
	}

	ext := strings.ToLower(filepath.Ext(video.OriginalName))
	if !allowedExtensions[ext] {
		return probe, fmt.Errorf("unsupported video format %q", ext)
	}

	maxBytes := int64(512) * 1024 * 1024
	if config.AppConfig != nil {
		maxBytes = int64(config.AppConfig.MaxVideoSizeMB) * 1024 * 1024
	}
	if info.Size() > maxBytes {
		return probe, fmt.Errorf("video exceeds the %d MB size limit", maxBytes/1024/1024)
	}

	probe.SizeBytes = info.Size()
	probe.Extension = ext
	return probe, nil
}

// readTranscript returns the sidecar transcript text, or "" when absent
func readTranscript(video *courseModels.Video) string {
	if video.TranscriptPath == "" {
		return ""
	}
	data, err := os.ReadFile(video.TranscriptPath)
	if err != nil {
		log.Printf("[INGEST] Video %d transcript unreadable: %v", video.ID, err)
		return ""
	}
	return string(data)
}

// ensureGeneratedContents creates the transcript-derived REFLECTION and QUIZ
// assignments for the video's module. Existing generated items for the same
// (module, video, type) are reused, never duplicated.
func ensureGeneratedContents(db *gorm.DB, video *courseModels.Video, transcript string) error {
	var reflection courseModels.Content
	err := db.Where("module_id = ? AND video_id = ? AND source = ? AND content_type = ? AND is_deleted = ?",
		video.ModuleID, video.ID, courseModels.SourceGenerated, courseModels.ContentReflection, false).
		First(&reflection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		reflection = courseModels.Content{
			CourseID:    video.CourseID,
			ModuleID:    video.ModuleID,
			Title:       "Reflection: " + strings.TrimSuffix(video.OriginalName, filepath.Ext(video.OriginalName)),
			ContentType: courseModels.ContentReflection,
			Body:        buildReflectionPrompt(transcript),
			VideoID:     &video.ID,
			OrderIndex:  nextOrderIndex(db, video.ModuleID),
			Source:      courseModels.SourceGenerated,
			IsActive:    true,
		}
		if err := db.Create(&reflection).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var quiz courseModels.Content
	err = db.Where("module_id = ? AND video_id = ? AND source = ? AND content_type = ? AND is_deleted = ?",
		video.ModuleID, video.ID, courseModels.SourceGenerated, courseModels.ContentQuiz, false).
		First(&quiz).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	questions := buildQuestions(transcript)
	if len(questions) == 0 {
		// Transcript too thin for a quiz; the reflection alone is fine
		return nil
	}

	quiz = courseModels.Content{
		CourseID:    video.CourseID,
		ModuleID:    video.ModuleID,
		Title:       "Quiz: " + strings.TrimSuffix(video.OriginalName, filepath.Ext(video.OriginalName)),
		ContentType: courseModels.ContentQuiz,
		VideoID:     &video.ID,
		OrderIndex:  nextOrderIndex(db, video.ModuleID),
		Source:      courseModels.SourceGenerated,
		IsActive:    true,
	}
	if err := db.Create(&quiz).Error; err != nil {
		return err
	}

	for i, q := range questions {
		question := courseModels.QuizQuestion{
			ContentID:   quiz.ID,
			Prompt:      q.Prompt,
			Explanation: q.Explanation,
			Source:      courseModels.QuestionGenerated,
			OrderIndex:  i + 1,
		}
		if err := db.Create(&question).Error; err != nil {
			return err
		}

		options := append([]string{q.Correct}, q.Distractors...)
		for j, text := range options {
			option := courseModels.QuizOption{
				QuestionID: question.ID,
				OptionText: text,
				IsCorrect:  j == 0,
				OrderIndex: j + 1,
			}
			if err := db.Create(&option).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// nextOrderIndex returns MAX(order_index)+1 for the module's content
func nextOrderIndex(db *gorm.DB, moduleID uint) int {
	var next int
	db.Model(&courseModels.Content{}).
		Select("COALESCE(MAX(order_index), 0) + 1").
		Where("module_id = ? AND is_deleted = ?", moduleID, false).
		Scan(&next)
	return next
}

// markFailed records the failure and notifies the uploader
func markFailed(db *gorm.DB, video *courseModels.Video, reason string) {
	log.Printf("[INGEST] Video %d FAILED: %s", video.ID, reason)

	if err := db.Model(video).Updates(map[string]interface{}{
		"status":      courseModels.VideoFailed,
		"fail_reason": reason,
	}).Error; err != nil {
		log.Printf("[INGEST] Error recording failure for video %d: %v", video.ID, err)
	}

	utils.PushNotification(db, video.SchoolID, video.UploadedBy, models.NotificationVideoFailed,
		"Video processing failed", fmt.Sprintf("Your video %q could not be processed: %s", video.OriginalName, reason),
		map[string]interface{}{"video_id": video.ID, "course_id": video.CourseID})
	utils.DispatchEvent(db, video.SchoolID, models.EventVideoFailed, map[string]interface{}{
		"video_id":  video.ID,
		"course_id": video.CourseID,
		"reason":    reason,
	})

	var uploader models.User
	if err := db.Where("id = ? AND is_deleted = ?", video.UploadedBy, false).First(&uploader).Error; err == nil {
		utils.SendVideoFailedEmail(uploader.Email, uploader.Name, video.OriginalName, reason)
	}
}

// RequeueStuck re-runs ingest for videos that never made it past UPLOADED or
// VALIDATING, up to the attempt cap. Crash recovery for the fire-and-forget
// ingest goroutine.
func RequeueStuck(db *gorm.DB) {
	cutoff := time.Now().Add(-15 * time.Minute)

	var stuck []courseModels.Video
	if err := db.Where("status IN ? AND updated_at < ? AND ingest_attempts < ? AND is_deleted = ?",
		[]string{courseModels.VideoUploaded, courseModels.VideoValidating}, cutoff, maxIngestAttempts, false).
		Find(&stuck).Error; err != nil {
		log.Printf("[INGEST-SCHEDULER] Error fetching stuck videos: %v", err)
		return
	}

	if len(stuck) == 0 {
		return
	}
	log.Printf("[INGEST-SCHEDULER] Requeueing %d stuck videos", len(stuck))

	for _, video := range stuck {
		if err := Run(db, video.ID, false); err != nil {
			log.Printf("[INGEST-SCHEDULER] Requeue of video %d failed: %v", video.ID, err)
		}
	}
}

// InitializeIngestScheduler starts the periodic requeue of stuck uploads
func InitializeIngestScheduler() {
	log.Println("[INGEST-SCHEDULER] Initializing ingest requeue scheduler...")

	c := cron.New()

	// Every 10 minutes, pick up uploads whose ingest goroutine died
	c.AddFunc("*/10 * * * *", func() {
		RequeueStuck(database.Database.Db)
	})

	c.Start()
	log.Println("[INGEST-SCHEDULER] Ingest requeue scheduler started - runs every 10 minutes")
}
