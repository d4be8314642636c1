package progress

import (
	"testing"
	"time"

	"lms/database"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTest()
	require.NoError(t, err)
	return db
}

type sequenceFixture struct {
	course courseModels.Course
	m1     courseModels.Module
	m2     courseModels.Module
	l1     courseModels.Content // module 1, first lesson
	l2     courseModels.Content // module 1, second lesson
	l3     courseModels.Content // module 2, only lesson
}

// seedSequenceFixture builds a course with two modules: M1 with two lessons,
// M2 with one.
func seedSequenceFixture(t *testing.T, db *gorm.DB) sequenceFixture {
	t.Helper()

	f := sequenceFixture{}
	f.course = courseModels.Course{SchoolID: 1, Title: "Classroom Management", IsActive: true, IsPublished: true}
	require.NoError(t, db.Create(&f.course).Error)

	f.m1 = courseModels.Module{CourseID: f.course.ID, Title: "Foundations", OrderIndex: 1, IsActive: true}
	f.m2 = courseModels.Module{CourseID: f.course.ID, Title: "Practice", OrderIndex: 2, IsActive: true}
	require.NoError(t, db.Create(&f.m1).Error)
	require.NoError(t, db.Create(&f.m2).Error)

	f.l1 = courseModels.Content{CourseID: f.course.ID, ModuleID: f.m1.ID, Title: "Lesson 1", OrderIndex: 1, IsActive: true}
	f.l2 = courseModels.Content{CourseID: f.course.ID, ModuleID: f.m1.ID, Title: "Lesson 2", OrderIndex: 2, IsActive: true}
	f.l3 = courseModels.Content{CourseID: f.course.ID, ModuleID: f.m2.ID, Title: "Lesson 3", OrderIndex: 1, IsActive: true}
	require.NoError(t, db.Create(&f.l1).Error)
	require.NoError(t, db.Create(&f.l2).Error)
	require.NoError(t, db.Create(&f.l3).Error)

	return f
}

func completeContent(t *testing.T, db *gorm.DB, teacherID uint, content courseModels.Content) {
	t.Helper()
	now := time.Now()
	row := courseModels.ContentProgress{
		TeacherID:          teacherID,
		ContentID:          content.ID,
		CourseID:           content.CourseID,
		SchoolID:           1,
		Status:             courseModels.ProgressCompleted,
		ProgressPercentage: 100,
		CompletedAt:        &now,
	}
	require.NoError(t, db.Create(&row).Error)
}

func TestSequenceFirstModuleFullyCompleted(t *testing.T) {
	db := newTestDB(t)
	f := seedSequenceFixture(t, db)
	teacherID := uint(10)

	completeContent(t, db, teacherID, f.l1)
	completeContent(t, db, teacherID, f.l2)

	outline, err := LoadCourseOutline(db, f.course.ID)
	require.NoError(t, err)

	moduleStates, contentStates, err := ComputeCourseSequenceState(db, outline, teacherID)
	require.NoError(t, err)

	m1 := moduleStates[f.m1.ID]
	require.False(t, m1.IsLocked)
	require.True(t, m1.IsCompleted)
	require.Equal(t, 2, m1.CompletedContentCount)
	require.Equal(t, 100.0, m1.CompletionPercentage)

	m2 := moduleStates[f.m2.ID]
	require.False(t, m2.IsLocked)
	require.Empty(t, m2.LockReason)
	require.False(t, contentStates[f.l3.ID].IsLocked)
}

func TestSequenceSecondModuleLockedUntilFirstDone(t *testing.T) {
	db := newTestDB(t)
	f := seedSequenceFixture(t, db)
	teacherID := uint(10)

	completeContent(t, db, teacherID, f.l1)

	outline, err := LoadCourseOutline(db, f.course.ID)
	require.NoError(t, err)

	moduleStates, contentStates, err := ComputeCourseSequenceState(db, outline, teacherID)
	require.NoError(t, err)

	m1 := moduleStates[f.m1.ID]
	require.False(t, m1.IsLocked)
	require.False(t, m1.IsCompleted)
	require.Equal(t, 50.0, m1.CompletionPercentage)

	m2 := moduleStates[f.m2.ID]
	require.True(t, m2.IsLocked)
	require.Equal(t, LockReasonModule, m2.LockReason)

	// Lesson 2 follows a completed lesson, so it is reachable
	require.False(t, contentStates[f.l2.ID].IsLocked)
	// Lessons of a locked module inherit the module lock
	l3 := contentStates[f.l3.ID]
	require.True(t, l3.IsLocked)
	require.Equal(t, LockReasonModule, l3.LockReason)
}

func TestSequenceSkippedLessonLocksEverythingAfterIt(t *testing.T) {
	db := newTestDB(t)
	f := seedSequenceFixture(t, db)
	teacherID := uint(10)

	// Completing lesson 2 without lesson 1 must not open anything up
	completeContent(t, db, teacherID, f.l2)

	outline, err := LoadCourseOutline(db, f.course.ID)
	require.NoError(t, err)

	_, contentStates, err := ComputeCourseSequenceState(db, outline, teacherID)
	require.NoError(t, err)

	require.False(t, contentStates[f.l1.ID].IsLocked)
	l2 := contentStates[f.l2.ID]
	require.True(t, l2.IsLocked)
	require.Equal(t, LockReasonContent, l2.LockReason)
	require.True(t, contentStates[f.l3.ID].IsLocked)
}

func TestSequenceEmptyModuleIsVacuouslyComplete(t *testing.T) {
	db := newTestDB(t)

	course := courseModels.Course{SchoolID: 1, Title: "Safeguarding", IsActive: true, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	empty := courseModels.Module{CourseID: course.ID, Title: "Intro", OrderIndex: 1, IsActive: true}
	second := courseModels.Module{CourseID: course.ID, Title: "Main", OrderIndex: 2, IsActive: true}
	require.NoError(t, db.Create(&empty).Error)
	require.NoError(t, db.Create(&second).Error)

	lesson := courseModels.Content{CourseID: course.ID, ModuleID: second.ID, Title: "Lesson", OrderIndex: 1, IsActive: true}
	require.NoError(t, db.Create(&lesson).Error)

	outline, err := LoadCourseOutline(db, course.ID)
	require.NoError(t, err)

	moduleStates, contentStates, err := ComputeCourseSequenceState(db, outline, 10)
	require.NoError(t, err)

	emptyState := moduleStates[empty.ID]
	require.True(t, emptyState.IsCompleted)
	require.False(t, emptyState.IsLocked)
	require.Equal(t, 100.0, emptyState.CompletionPercentage)
	require.Equal(t, 0, emptyState.TotalContentCount)

	// The empty module never blocks the next one
	require.False(t, moduleStates[second.ID].IsLocked)
	require.False(t, contentStates[lesson.ID].IsLocked)
}

func TestSequenceCourseWithoutModulesYieldsEmptyMaps(t *testing.T) {
	db := newTestDB(t)

	course := courseModels.Course{SchoolID: 1, Title: "Empty", IsActive: true}
	require.NoError(t, db.Create(&course).Error)

	outline, err := LoadCourseOutline(db, course.ID)
	require.NoError(t, err)

	moduleStates, contentStates, err := ComputeCourseSequenceState(db, outline, 10)
	require.NoError(t, err)
	require.Empty(t, moduleStates)
	require.Empty(t, contentStates)
}

func TestSequenceInactiveContentIgnored(t *testing.T) {
	db := newTestDB(t)
	f := seedSequenceFixture(t, db)
	teacherID := uint(10)

	// Deactivate lesson 2: module 1 then only needs lesson 1
	require.NoError(t, db.Model(&f.l2).Update("is_active", false).Error)
	completeContent(t, db, teacherID, f.l1)

	outline, err := LoadCourseOutline(db, f.course.ID)
	require.NoError(t, err)

	moduleStates, _, err := ComputeCourseSequenceState(db, outline, teacherID)
	require.NoError(t, err)

	m1 := moduleStates[f.m1.ID]
	require.True(t, m1.IsCompleted)
	require.Equal(t, 1, m1.TotalContentCount)
	require.False(t, moduleStates[f.m2.ID].IsLocked)
}

func TestContentLockStateSingleLookup(t *testing.T) {
	db := newTestDB(t)
	f := seedSequenceFixture(t, db)
	teacherID := uint(10)

	outline, err := LoadCourseOutline(db, f.course.ID)
	require.NoError(t, err)

	state, err := ContentLockState(db, outline, f.l3.ID, teacherID)
	require.NoError(t, err)
	require.True(t, state.IsLocked)
	require.Equal(t, LockReasonModule, state.LockReason)

	// Unknown ids come back unlocked, not as an error
	unknown, err := ContentLockState(db, outline, 99999, teacherID)
	require.NoError(t, err)
	require.False(t, unknown.IsLocked)
}
