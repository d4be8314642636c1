package progress

import (
	"testing"
	"time"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedSnapshotCourse builds one course with two modules of two lessons each
// (four active lessons total) and returns the course plus its lessons.
func seedSnapshotCourse(t *testing.T, db *gorm.DB) (courseModels.Course, []courseModels.Content) {
	t.Helper()

	course := courseModels.Course{SchoolID: 1, Title: "Assessment Design", IsActive: true, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	var lessons []courseModels.Content
	for m := 1; m <= 2; m++ {
		module := courseModels.Module{CourseID: course.ID, Title: "Module", OrderIndex: m, IsActive: true}
		require.NoError(t, db.Create(&module).Error)
		for l := 1; l <= 2; l++ {
			lesson := courseModels.Content{CourseID: course.ID, ModuleID: module.ID, Title: "Lesson", OrderIndex: l, IsActive: true}
			require.NoError(t, db.Create(&lesson).Error)
			lessons = append(lessons, lesson)
		}
	}
	return course, lessons
}

func recordProgress(t *testing.T, db *gorm.DB, teacherID uint, content courseModels.Content, status string, pct float64) {
	t.Helper()
	row := courseModels.ContentProgress{
		TeacherID:          teacherID,
		ContentID:          content.ID,
		CourseID:           content.CourseID,
		SchoolID:           1,
		Status:             status,
		ProgressPercentage: pct,
	}
	if status == courseModels.ProgressCompleted {
		now := time.Now()
		row.CompletedAt = &now
	}
	require.NoError(t, db.Create(&row).Error)
}

func TestSnapshotStatusDerivation(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedSnapshotCourse(t, db)

	teacherA := uint(101) // everything done
	teacherB := uint(102) // never touched the course
	teacherC := uint(103) // half done

	for _, lesson := range lessons {
		recordProgress(t, db, teacherA, lesson, courseModels.ProgressCompleted, 100)
	}
	recordProgress(t, db, teacherC, lessons[0], courseModels.ProgressCompleted, 100)
	recordProgress(t, db, teacherC, lessons[1], courseModels.ProgressCompleted, 100)

	snapshots, err := BuildTeacherCourseSnapshots(db, []uint{course.ID}, []uint{teacherA, teacherB, teacherC})
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	a := snapshots[SnapshotKey{CourseID: course.ID, TeacherID: teacherA}]
	require.Equal(t, courseModels.ProgressCompleted, a.Status)
	require.Equal(t, 100.0, a.ProgressPercentage)
	require.Equal(t, 4, a.TotalContentCount)
	require.Equal(t, 4, a.CompletedContentCount)
	require.True(t, a.HasActivity)
	require.NotNil(t, a.LastCompletedAt)

	b := snapshots[SnapshotKey{CourseID: course.ID, TeacherID: teacherB}]
	require.Equal(t, courseModels.ProgressNotStarted, b.Status)
	require.Equal(t, 0.0, b.ProgressPercentage)
	require.False(t, b.HasActivity)
	require.Nil(t, b.LastCompletedAt)

	c := snapshots[SnapshotKey{CourseID: course.ID, TeacherID: teacherC}]
	require.Equal(t, courseModels.ProgressInProgress, c.Status)
	require.Equal(t, 50.0, c.ProgressPercentage)
	require.Equal(t, 2, c.CompletedContentCount)
}

func TestSnapshotActivityOnlyWhenTeachersOmitted(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedSnapshotCourse(t, db)

	recordProgress(t, db, 101, lessons[0], courseModels.ProgressInProgress, 40)

	// nil teacher ids: only pairs with at least one progress row appear
	snapshots, err := BuildTeacherCourseSnapshots(db, []uint{course.ID}, nil)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Contains(t, snapshots, SnapshotKey{CourseID: course.ID, TeacherID: 101})

	// an explicit list yields the full cross product, idle teachers included
	snapshots, err = BuildTeacherCourseSnapshots(db, []uint{course.ID}, []uint{101, 102})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	// an explicit empty list is not the same as nil: no keys are requested
	snapshots, err = BuildTeacherCourseSnapshots(db, []uint{course.ID}, []uint{})
	require.NoError(t, err)
	require.Empty(t, snapshots)
}

func TestSnapshotIdempotent(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedSnapshotCourse(t, db)

	recordProgress(t, db, 101, lessons[0], courseModels.ProgressCompleted, 100)
	recordProgress(t, db, 101, lessons[1], courseModels.ProgressInProgress, 30)

	first, err := BuildTeacherCourseSnapshots(db, []uint{course.ID}, []uint{101})
	require.NoError(t, err)
	second, err := BuildTeacherCourseSnapshots(db, []uint{course.ID}, []uint{101})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSnapshotDuplicateCourseIDsDeduplicated(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedSnapshotCourse(t, db)

	recordProgress(t, db, 101, lessons[0], courseModels.ProgressInProgress, 10)

	snapshots, err := BuildTeacherCourseSnapshots(db, []uint{course.ID, course.ID, course.ID}, []uint{101})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
}

func TestSnapshotIgnoresInactiveContent(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedSnapshotCourse(t, db)

	teacherID := uint(101)
	for _, lesson := range lessons {
		recordProgress(t, db, teacherID, lesson, courseModels.ProgressCompleted, 100)
	}

	// Deactivating a lesson removes it from totals and from the aggregates,
	// stale progress rows included
	require.NoError(t, db.Model(&lessons[3]).Update("is_active", false).Error)

	snapshots, err := BuildTeacherCourseSnapshots(db, []uint{course.ID}, []uint{teacherID})
	require.NoError(t, err)

	snap := snapshots[SnapshotKey{CourseID: course.ID, TeacherID: teacherID}]
	require.Equal(t, 3, snap.TotalContentCount)
	require.Equal(t, 3, snap.CompletedContentCount)
	require.Equal(t, courseModels.ProgressCompleted, snap.Status)
	require.Equal(t, 100.0, snap.ProgressPercentage)
}

func TestSnapshotUnknownCourseDegradesToZero(t *testing.T) {
	db := newTestDB(t)

	snapshots, err := BuildTeacherCourseSnapshots(db, []uint{4242}, []uint{101})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	snap := snapshots[SnapshotKey{CourseID: 4242, TeacherID: 101}]
	require.Equal(t, courseModels.ProgressNotStarted, snap.Status)
	require.Equal(t, 0, snap.TotalContentCount)
	require.Equal(t, 0.0, snap.ProgressPercentage)
}

func TestCompletedTeacherIDsForCourse(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedSnapshotCourse(t, db)

	done := uint(101)
	halfway := uint(103)
	for _, lesson := range lessons {
		recordProgress(t, db, done, lesson, courseModels.ProgressCompleted, 100)
	}
	recordProgress(t, db, halfway, lessons[0], courseModels.ProgressCompleted, 100)

	ids, err := CompletedTeacherIDsForCourse(db, course.ID, []uint{102, done, halfway})
	require.NoError(t, err)
	require.Equal(t, []uint{done}, ids)
}
