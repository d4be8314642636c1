package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"lms/database"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const sampleTranscript = `Classroom routines give students a predictable structure for every lesson.
When students know the classroom routines, transitions between activities take less time.
Effective feedback tells a student what they did well and what to improve next.
Teachers who plan feedback in advance give more specific and actionable comments.
A strong routine at the start of the day sets the tone for focused learning.
Positive feedback works best when it names the exact behaviour being praised.`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTest()
	require.NoError(t, err)
	return db
}

// seedVideo creates a video row pointing at a real temp file, with an
// optional transcript sidecar.
func seedVideo(t *testing.T, db *gorm.DB, name string, transcript string) courseModels.Video {
	t.Helper()

	dir := t.TempDir()
	videoPath := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(videoPath, []byte("not really video bytes"), 0o644))

	transcriptPath := ""
	if transcript != "" {
		transcriptPath = filepath.Join(dir, "transcript.txt")
		require.NoError(t, os.WriteFile(transcriptPath, []byte(transcript), 0o644))
	}

	course := courseModels.Course{SchoolID: 1, Title: "Teaching Basics", IsActive: true}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Title: "Week 1", OrderIndex: 1, IsActive: true}
	require.NoError(t, db.Create(&module).Error)

	video := courseModels.Video{
		SchoolID:       1,
		CourseID:       course.ID,
		ModuleID:       module.ID,
		UploadedBy:     42,
		OriginalName:   name,
		StoragePath:    videoPath,
		TranscriptPath: transcriptPath,
		SizeBytes:      22,
		Status:         courseModels.VideoUploaded,
	}
	require.NoError(t, db.Create(&video).Error)
	return video
}

func TestIngestGeneratesAssignmentsExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	video := seedVideo(t, db, "routines.mp4", sampleTranscript)

	require.NoError(t, Run(db, video.ID, false))
	// Second run with force must reuse the generated items
	require.NoError(t, Run(db, video.ID, true))

	var reflections, quizzes int64
	db.Model(&courseModels.Content{}).
		Where("video_id = ? AND source = ? AND content_type = ?", video.ID, courseModels.SourceGenerated, courseModels.ContentReflection).
		Count(&reflections)
	db.Model(&courseModels.Content{}).
		Where("video_id = ? AND source = ? AND content_type = ?", video.ID, courseModels.SourceGenerated, courseModels.ContentQuiz).
		Count(&quizzes)

	require.Equal(t, int64(1), reflections)
	require.Equal(t, int64(1), quizzes)

	var quiz courseModels.Content
	require.NoError(t, db.Where("video_id = ? AND content_type = ?", video.ID, courseModels.ContentQuiz).First(&quiz).Error)

	var questions []courseModels.QuizQuestion
	require.NoError(t, db.Where("content_id = ?", quiz.ID).Find(&questions).Error)
	require.NotEmpty(t, questions)
	require.LessOrEqual(t, len(questions), 3)

	for _, q := range questions {
		require.Equal(t, courseModels.QuestionGenerated, q.Source)

		var options []courseModels.QuizOption
		require.NoError(t, db.Where("question_id = ?", q.ID).Find(&options).Error)
		require.GreaterOrEqual(t, len(options), 2)

		correct := 0
		for _, o := range options {
			if o.IsCorrect {
				correct++
			}
		}
		require.Equal(t, 1, correct)
	}

	var updated courseModels.Video
	require.NoError(t, db.First(&updated, video.ID).Error)
	require.Equal(t, courseModels.VideoReady, updated.Status)
	require.NotNil(t, updated.IngestedAt)
}

func TestIngestWithoutTranscriptStillReady(t *testing.T) {
	db := newTestDB(t)
	video := seedVideo(t, db, "silent.mov", "")

	require.NoError(t, Run(db, video.ID, false))

	var generated int64
	db.Model(&courseModels.Content{}).
		Where("video_id = ? AND source = ?", video.ID, courseModels.SourceGenerated).
		Count(&generated)
	require.Equal(t, int64(0), generated)

	var updated courseModels.Video
	require.NoError(t, db.First(&updated, video.ID).Error)
	require.Equal(t, courseModels.VideoReady, updated.Status)
}

func TestIngestRejectsUnsupportedFormat(t *testing.T) {
	db := newTestDB(t)
	video := seedVideo(t, db, "slides.pdf", "")

	require.Error(t, Run(db, video.ID, false))

	var updated courseModels.Video
	require.NoError(t, db.First(&updated, video.ID).Error)
	require.Equal(t, courseModels.VideoFailed, updated.Status)
	require.Contains(t, updated.FailReason, "unsupported video format")
}

func TestIngestFailsWhenFileMissing(t *testing.T) {
	db := newTestDB(t)
	video := seedVideo(t, db, "gone.mp4", "")
	require.NoError(t, os.Remove(video.StoragePath))

	require.Error(t, Run(db, video.ID, false))

	var updated courseModels.Video
	require.NoError(t, db.First(&updated, video.ID).Error)
	require.Equal(t, courseModels.VideoFailed, updated.Status)
	require.Equal(t, 1, updated.IngestAttempts)
}

func TestIngestReadyVideoIsNoOpWithoutForce(t *testing.T) {
	db := newTestDB(t)
	video := seedVideo(t, db, "done.webm", "")

	require.NoError(t, Run(db, video.ID, false))

	var after courseModels.Video
	require.NoError(t, db.First(&after, video.ID).Error)
	attempts := after.IngestAttempts

	require.NoError(t, Run(db, video.ID, false))
	require.NoError(t, db.First(&after, video.ID).Error)
	require.Equal(t, attempts, after.IngestAttempts)
}
