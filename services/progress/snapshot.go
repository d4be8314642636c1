package progress

import (
	"math"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// SnapshotKey identifies one (course, teacher) pair
type SnapshotKey struct {
	CourseID  uint
	TeacherID uint
}

// TeacherCourseSnapshot is the derived completion summary for one course and
// one teacher. Never persisted; assembled fresh from progress rows on every
// call.
type TeacherCourseSnapshot struct {
	CourseID              uint       `json:"course_id"`
	TeacherID             uint       `json:"teacher_id"`
	TotalContentCount     int        `json:"total_content_count"`
	CompletedContentCount int        `json:"completed_content_count"`
	ProgressPercentage    float64    `json:"progress_percentage"`
	Status                string     `json:"status"` // NOT_STARTED, IN_PROGRESS, COMPLETED
	HasActivity           bool       `json:"has_activity"`
	LastCompletedAt       *time.Time `json:"last_completed_at"`
}

// progressAggregate is one grouped row of the database-side aggregation
type progressAggregate struct {
	CourseID        uint
	TeacherID       uint
	ActivityCount   int64
	CompletedCount  int64
	ProgressSum     float64
	LastCompletedAt *time.Time
}

// courseTotal is the active-content count for one course
type courseTotal struct {
	CourseID uint
	Total    int64
}

// BuildTeacherCourseSnapshots computes completion snapshots for every
// requested (course, teacher) pair.
//
// When teacherIDs is nil the result contains only pairs with at least one
// progress row (activity-only). When teacherIDs is non-nil — including an
// empty slice — the result is the full cross product of courses and
// teachers, so zero-activity pairs appear with NOT_STARTED snapshots. The
// two shapes are deliberately distinct; dashboard callers rely on both.
//
// Unknown course or teacher ids degrade to zero-valued snapshots rather than
// errors: this is a read-side derivation layer, not the system of record.
func BuildTeacherCourseSnapshots(db *gorm.DB, courseIDs []uint, teacherIDs []uint) (map[SnapshotKey]TeacherCourseSnapshot, error) {
	snapshots := make(map[SnapshotKey]TeacherCourseSnapshot)

	// Dedup course ids keeping first occurrence, for deterministic iteration
	seen := make(map[uint]bool, len(courseIDs))
	uniqueCourseIDs := make([]uint, 0, len(courseIDs))
	for _, id := range courseIDs {
		if !seen[id] {
			seen[id] = true
			uniqueCourseIDs = append(uniqueCourseIDs, id)
		}
	}
	if len(uniqueCourseIDs) == 0 {
		return snapshots, nil
	}

	// Active-content totals per course; courses with no active content under
	// active modules are simply absent and count as 0
	var totals []courseTotal
	if err := db.Model(&courseModels.Content{}).
		Select("contents.course_id AS course_id, COUNT(*) AS total").
		Joins("JOIN modules ON modules.id = contents.module_id AND modules.is_active = ? AND modules.is_deleted = ?", true, false).
		Where("contents.course_id IN ? AND contents.is_active = ? AND contents.is_deleted = ?", uniqueCourseIDs, true, false).
		Group("contents.course_id").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	totalByCourse := make(map[uint]int, len(totals))
	for _, t := range totals {
		totalByCourse[t.CourseID] = int(t.Total)
	}

	// Grouped aggregation over progress rows, restricted to content that is
	// still active; stale rows for deactivated lessons drop out of the sums
	query := db.Model(&courseModels.ContentProgress{}).
		Select(`content_progresses.course_id AS course_id,
			content_progresses.teacher_id AS teacher_id,
			COUNT(*) AS activity_count,
			SUM(CASE WHEN content_progresses.status = ? THEN 1 ELSE 0 END) AS completed_count,
			COALESCE(SUM(content_progresses.progress_percentage), 0) AS progress_sum,
			MAX(CASE WHEN content_progresses.status = ? THEN content_progresses.completed_at END) AS last_completed_at`,
			courseModels.ProgressCompleted, courseModels.ProgressCompleted).
		Joins("JOIN contents ON contents.id = content_progresses.content_id AND contents.is_active = ? AND contents.is_deleted = ?", true, false).
		Joins("JOIN modules ON modules.id = contents.module_id AND modules.is_active = ? AND modules.is_deleted = ?", true, false).
		Where("content_progresses.course_id IN ? AND content_progresses.is_deleted = ?", uniqueCourseIDs, false).
		Group("content_progresses.course_id, content_progresses.teacher_id")
	if teacherIDs != nil {
		query = query.Where("content_progresses.teacher_id IN ?", teacherIDs)
	}

	var aggregates []progressAggregate
	if err := query.Scan(&aggregates).Error; err != nil {
		return nil, err
	}
	aggregateByKey := make(map[SnapshotKey]progressAggregate, len(aggregates))
	for _, agg := range aggregates {
		aggregateByKey[SnapshotKey{CourseID: agg.CourseID, TeacherID: agg.TeacherID}] = agg
	}

	// Decide which keys to emit
	var keys []SnapshotKey
	if teacherIDs != nil {
		for _, courseID := range uniqueCourseIDs {
			for _, teacherID := range teacherIDs {
				keys = append(keys, SnapshotKey{CourseID: courseID, TeacherID: teacherID})
			}
		}
	} else {
		for key := range aggregateByKey {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		total := totalByCourse[key.CourseID]
		agg := aggregateByKey[key] // zero value when the pair has no activity

		completed := int(agg.CompletedCount)
		percentage := 0.0
		if total > 0 {
			percentage = math.Round(agg.ProgressSum/float64(total)*100) / 100
		}

		status := courseModels.ProgressNotStarted
		switch {
		case total > 0 && completed >= total:
			status = courseModels.ProgressCompleted
		case agg.ActivityCount > 0:
			status = courseModels.ProgressInProgress
		}

		snapshots[key] = TeacherCourseSnapshot{
			CourseID:              key.CourseID,
			TeacherID:             key.TeacherID,
			TotalContentCount:     total,
			CompletedContentCount: completed,
			ProgressPercentage:    percentage,
			Status:                status,
			HasActivity:           agg.ActivityCount > 0,
			LastCompletedAt:       agg.LastCompletedAt,
		}
	}

	return snapshots, nil
}

// CompletedTeacherIDsForCourse filters the supplied teacher ids down to
// those whose snapshot for the course is COMPLETED. The returned ids are the
// caller's own values in their original order, looked up through the
// snapshot keys rather than re-derived, so callers can feed them straight
// back into assignment or certificate queries.
func CompletedTeacherIDsForCourse(db *gorm.DB, courseID uint, teacherIDs []uint) ([]uint, error) {
	snapshots, err := BuildTeacherCourseSnapshots(db, []uint{courseID}, teacherIDs)
	if err != nil {
		return nil, err
	}

	completed := make([]uint, 0, len(teacherIDs))
	for _, teacherID := range teacherIDs {
		snap, ok := snapshots[SnapshotKey{CourseID: courseID, TeacherID: teacherID}]
		if ok && snap.Status == courseModels.ProgressCompleted {
			completed = append(completed, teacherID)
		}
	}
	return completed, nil
}
