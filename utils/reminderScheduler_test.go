package utils

import (
	"testing"
	"time"

	"lms/models"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedReminderFixture builds a teacher, a two-lesson course and an assignment
// linking them, and returns all three.
func seedReminderFixture(t *testing.T, db *gorm.DB) (models.User, courseModels.Course, courseModels.CourseAssignment) {
	t.Helper()

	schoolID := uint(1)
	teacher := models.User{Name: "Dana Whitfield", Email: "dana@school.test", Password: "x", Role: models.RoleTeacher, SchoolID: &schoolID}
	require.NoError(t, db.Create(&teacher).Error)

	course := courseModels.Course{SchoolID: schoolID, Title: "Classroom Management", IsActive: true, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Title: "Basics", OrderIndex: 1, IsActive: true}
	require.NoError(t, db.Create(&module).Error)
	for i := 1; i <= 2; i++ {
		lesson := courseModels.Content{CourseID: course.ID, ModuleID: module.ID, Title: "Lesson", OrderIndex: i, IsActive: true}
		require.NoError(t, db.Create(&lesson).Error)
	}

	assignment := courseModels.CourseAssignment{SchoolID: schoolID, CourseID: course.ID, TeacherID: teacher.ID}
	require.NoError(t, db.Create(&assignment).Error)
	return teacher, course, assignment
}

func reminderCount(t *testing.T, db *gorm.DB, teacherID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", teacherID, models.NotificationReminder).
		Count(&count).Error)
	return count
}

func TestRemindersStampOncePerDay(t *testing.T) {
	db := newTestDB(t)
	teacher, _, assignment := seedReminderFixture(t, db)

	// No activity at all counts as stalled
	ProcessAssignmentReminders(db)

	require.NoError(t, db.First(&assignment, assignment.ID).Error)
	require.NotNil(t, assignment.LastReminderAt)
	require.EqualValues(t, 1, reminderCount(t, db, teacher.ID))

	// A second run on the same day must not send again
	ProcessAssignmentReminders(db)
	require.EqualValues(t, 1, reminderCount(t, db, teacher.ID))
}

func TestRemindersResendAfterPreviousDay(t *testing.T) {
	db := newTestDB(t)
	teacher, _, assignment := seedReminderFixture(t, db)

	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(&assignment).Update("last_reminder_at", &yesterday).Error)

	ProcessAssignmentReminders(db)

	require.NoError(t, db.First(&assignment, assignment.ID).Error)
	require.True(t, assignment.LastReminderAt.After(yesterday))
	require.EqualValues(t, 1, reminderCount(t, db, teacher.ID))
}

func TestRemindersSkipCompletedAssignments(t *testing.T) {
	db := newTestDB(t)
	teacher, course, assignment := seedReminderFixture(t, db)

	var lessons []courseModels.Content
	require.NoError(t, db.Where("course_id = ?", course.ID).Find(&lessons).Error)
	completedAt := time.Now()
	for _, lesson := range lessons {
		row := courseModels.ContentProgress{
			TeacherID:          teacher.ID,
			ContentID:          lesson.ID,
			CourseID:           course.ID,
			SchoolID:           1,
			Status:             courseModels.ProgressCompleted,
			ProgressPercentage: 100,
			CompletedAt:        &completedAt,
		}
		require.NoError(t, db.Create(&row).Error)
	}

	ProcessAssignmentReminders(db)

	require.NoError(t, db.First(&assignment, assignment.ID).Error)
	require.Nil(t, assignment.LastReminderAt)
	require.EqualValues(t, 0, reminderCount(t, db, teacher.ID))
}

func TestRemindersSkipRecentlyActiveWithoutDueDate(t *testing.T) {
	db := newTestDB(t)
	teacher, course, assignment := seedReminderFixture(t, db)

	// One lesson finished moments ago: neither stalled nor due soon
	var lesson courseModels.Content
	require.NoError(t, db.Where("course_id = ?", course.ID).Order("order_index asc").First(&lesson).Error)
	completedAt := time.Now()
	row := courseModels.ContentProgress{
		TeacherID:          teacher.ID,
		ContentID:          lesson.ID,
		CourseID:           course.ID,
		SchoolID:           1,
		Status:             courseModels.ProgressCompleted,
		ProgressPercentage: 100,
		CompletedAt:        &completedAt,
	}
	require.NoError(t, db.Create(&row).Error)

	ProcessAssignmentReminders(db)

	require.NoError(t, db.First(&assignment, assignment.ID).Error)
	require.Nil(t, assignment.LastReminderAt)
	require.EqualValues(t, 0, reminderCount(t, db, teacher.ID))
}

func TestRemindersSkipRecentPartialProgress(t *testing.T) {
	db := newTestDB(t)
	teacher, course, assignment := seedReminderFixture(t, db)

	// An IN_PROGRESS update moments ago counts as activity even though
	// nothing was completed
	var lesson courseModels.Content
	require.NoError(t, db.Where("course_id = ?", course.ID).Order("order_index asc").First(&lesson).Error)
	row := courseModels.ContentProgress{
		TeacherID:          teacher.ID,
		ContentID:          lesson.ID,
		CourseID:           course.ID,
		SchoolID:           1,
		Status:             courseModels.ProgressInProgress,
		ProgressPercentage: 40,
	}
	require.NoError(t, db.Create(&row).Error)

	ProcessAssignmentReminders(db)

	require.NoError(t, db.First(&assignment, assignment.ID).Error)
	require.Nil(t, assignment.LastReminderAt)
	require.EqualValues(t, 0, reminderCount(t, db, teacher.ID))
}

func TestRemindersFireOnStalePartialProgress(t *testing.T) {
	db := newTestDB(t)
	teacher, course, assignment := seedReminderFixture(t, db)

	var lesson courseModels.Content
	require.NoError(t, db.Where("course_id = ?", course.ID).Order("order_index asc").First(&lesson).Error)
	row := courseModels.ContentProgress{
		TeacherID:          teacher.ID,
		ContentID:          lesson.ID,
		CourseID:           course.ID,
		SchoolID:           1,
		Status:             courseModels.ProgressInProgress,
		ProgressPercentage: 40,
	}
	require.NoError(t, db.Create(&row).Error)

	// Backdate the row past the inactivity window
	stale := time.Now().AddDate(0, 0, -10)
	require.NoError(t, db.Model(&row).UpdateColumn("updated_at", stale).Error)

	ProcessAssignmentReminders(db)

	require.NoError(t, db.First(&assignment, assignment.ID).Error)
	require.NotNil(t, assignment.LastReminderAt)
	require.EqualValues(t, 1, reminderCount(t, db, teacher.ID))
}

func TestRemindersFireWhenDueSoonDespiteRecentActivity(t *testing.T) {
	db := newTestDB(t)
	teacher, course, assignment := seedReminderFixture(t, db)

	dueAt := time.Now().Add(24 * time.Hour)
	require.NoError(t, db.Model(&assignment).Update("due_at", &dueAt).Error)

	var lesson courseModels.Content
	require.NoError(t, db.Where("course_id = ?", course.ID).Order("order_index asc").First(&lesson).Error)
	completedAt := time.Now()
	row := courseModels.ContentProgress{
		TeacherID:          teacher.ID,
		ContentID:          lesson.ID,
		CourseID:           course.ID,
		SchoolID:           1,
		Status:             courseModels.ProgressCompleted,
		ProgressPercentage: 100,
		CompletedAt:        &completedAt,
	}
	require.NoError(t, db.Create(&row).Error)

	ProcessAssignmentReminders(db)

	require.NoError(t, db.First(&assignment, assignment.ID).Error)
	require.NotNil(t, assignment.LastReminderAt)
	require.EqualValues(t, 1, reminderCount(t, db, teacher.ID))
}
