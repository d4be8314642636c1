package utils

import (
	"log"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/progress"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeReminderScheduler sets up the daily assignment reminder run
func InitializeReminderScheduler() {
	log.Println("[REMINDER-SCHEDULER] Initializing assignment reminder scheduler...")

	c := cron.New()

	// Run daily at 7 AM to nudge teachers with stalled assignments
	c.AddFunc("0 7 * * *", func() {
		log.Println("[REMINDER-SCHEDULER] Running daily assignment reminder check...")
		ProcessAssignmentReminders(database.Database.Db)
	})

	c.Start()
	log.Println("[REMINDER-SCHEDULER] Assignment reminder scheduler started - runs daily at 7 AM")
}

// ProcessAssignmentReminders sends a reminder to every teacher whose
// assignment is not completed and who has either gone quiet for the
// configured number of days or has a due date inside the next 48 hours.
// At most one reminder per assignment per calendar day.
func ProcessAssignmentReminders(db *gorm.DB) {
	inactivityDays := 3
	if config.AppConfig != nil {
		inactivityDays = config.AppConfig.ReminderInactivityDays
	}

	var assignments []courseModels.CourseAssignment
	if err := db.Where("is_deleted = ?", false).Find(&assignments).Error; err != nil {
		log.Printf("[REMINDER-SCHEDULER] Error fetching assignments: %v", err)
		return
	}
	if len(assignments) == 0 {
		return
	}

	// One snapshot pass per course, against the assigned teachers only
	teachersByCourse := make(map[uint][]uint)
	courseIDs := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		if _, seen := teachersByCourse[assignment.CourseID]; !seen {
			courseIDs = append(courseIDs, assignment.CourseID)
		}
		teachersByCourse[assignment.CourseID] = append(teachersByCourse[assignment.CourseID], assignment.TeacherID)
	}

	snapshots := make(map[progress.SnapshotKey]progress.TeacherCourseSnapshot)
	for courseID, teacherIDs := range teachersByCourse {
		courseSnapshots, err := progress.BuildTeacherCourseSnapshots(db, []uint{courseID}, teacherIDs)
		if err != nil {
			log.Printf("[REMINDER-SCHEDULER] Error building snapshots for course %d: %v", courseID, err)
			continue
		}
		for key, snap := range courseSnapshots {
			snapshots[key] = snap
		}
	}

	// Latest progress-row touch per (course, teacher); partial IN_PROGRESS
	// updates count as activity, not only completions
	type activityRow struct {
		CourseID  uint
		TeacherID uint
		LastTouch *time.Time
	}
	var touches []activityRow
	if err := db.Model(&courseModels.ContentProgress{}).
		Select("course_id, teacher_id, MAX(updated_at) AS last_touch").
		Where("course_id IN ? AND is_deleted = ?", courseIDs, false).
		Group("course_id, teacher_id").
		Scan(&touches).Error; err != nil {
		log.Printf("[REMINDER-SCHEDULER] Error fetching activity: %v", err)
		return
	}
	touchByKey := make(map[progress.SnapshotKey]*time.Time, len(touches))
	for _, touch := range touches {
		touchByKey[progress.SnapshotKey{CourseID: touch.CourseID, TeacherID: touch.TeacherID}] = touch.LastTouch
	}

	today := now.BeginningOfDay()
	inactivityCutoff := time.Now().AddDate(0, 0, -inactivityDays)
	dueSoonCutoff := time.Now().Add(48 * time.Hour)
	sent := 0

	for _, assignment := range assignments {
		snap, ok := snapshots[progress.SnapshotKey{CourseID: assignment.CourseID, TeacherID: assignment.TeacherID}]
		if !ok || snap.Status == courseModels.ProgressCompleted {
			continue
		}

		// Once per calendar day per assignment
		if assignment.LastReminderAt != nil && !assignment.LastReminderAt.Before(today) {
			continue
		}

		lastActivity := touchByKey[progress.SnapshotKey{CourseID: assignment.CourseID, TeacherID: assignment.TeacherID}]
		stalled := lastActivity == nil || lastActivity.Before(inactivityCutoff)
		dueSoon := assignment.DueAt != nil && assignment.DueAt.Before(dueSoonCutoff)
		if !stalled && !dueSoon {
			continue
		}

		var teacher models.User
		if err := db.Where("id = ? AND is_deleted = ?", assignment.TeacherID, false).First(&teacher).Error; err != nil {
			continue
		}
		var course courseModels.Course
		if err := db.Where("id = ? AND is_deleted = ?", assignment.CourseID, false).First(&course).Error; err != nil {
			continue
		}

		SendCourseReminderEmail(teacher.Email, teacher.Name, course.Title, snap.ProgressPercentage, assignment.DueAt)
		PushNotification(db, assignment.SchoolID, teacher.ID, models.NotificationReminder,
			"Course reminder", "You have not made progress on \""+course.Title+"\" recently. Pick up where you left off!",
			map[string]interface{}{"course_id": course.ID})

		stamp := time.Now()
		if err := db.Model(&assignment).Update("last_reminder_at", &stamp).Error; err != nil {
			log.Printf("[REMINDER-SCHEDULER] Error stamping reminder for assignment %d: %v", assignment.ID, err)
		}
		sent++
	}

	log.Printf("[REMINDER-SCHEDULER] Sent %d reminders", sent)
}
