package progress

import (
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// Lock reasons returned to the presentation layer
const (
	LockReasonModule  = "Complete the previous module to unlock this module."
	LockReasonContent = "Complete the previous lesson to unlock this lesson."
)

// ModuleSequenceState is the derived unlock/completion state of one module
// for one teacher. Never persisted; computed fresh on every call.
type ModuleSequenceState struct {
	CompletedContentCount int     `json:"completed_content_count"`
	TotalContentCount     int     `json:"total_content_count"`
	CompletionPercentage  float64 `json:"completion_percentage"`
	IsCompleted           bool    `json:"is_completed"`
	IsLocked              bool    `json:"is_locked"`
	LockReason            string  `json:"lock_reason"`
}

// ContentSequenceState is the derived lock state of one content item
type ContentSequenceState struct {
	IsLocked   bool   `json:"is_locked"`
	LockReason string `json:"lock_reason"`
}

// ComputeCourseSequenceState walks the course outline in order and derives,
// for the given teacher, which modules and lessons are unlocked.
//
// Modules unlock strictly in sequence: module N+1 stays locked until every
// active lesson in module N is completed. A module with zero active lessons
// is vacuously complete and never blocks the next one. Within an unlocked
// module the same rule applies lesson by lesson, and a single incomplete
// lesson locks everything after it in that module. Lessons of a locked
// module inherit the module's lock reason.
//
// The function is a pure read: it never writes, keeps no state between
// calls, and relies on the database for read consistency. A concurrent
// progress update may be observed before or after; that only affects
// staleness of the single read, not internal correctness.
func ComputeCourseSequenceState(db *gorm.DB, outline *CourseOutline, teacherID uint) (map[uint]ModuleSequenceState, map[uint]ContentSequenceState, error) {
	moduleStates := make(map[uint]ModuleSequenceState)
	contentStates := make(map[uint]ContentSequenceState)

	if outline == nil || len(outline.Modules) == 0 {
		return moduleStates, contentStates, nil
	}

	statuses, err := progressByContent(db, teacherID, outline.Course.ID)
	if err != nil {
		return nil, nil, err
	}

	// The first module is always eligible
	previousModuleCompleted := true

	for _, mod := range outline.Modules {
		totalCount := len(mod.Contents)
		completedCount := 0
		for _, item := range mod.Contents {
			if statuses[item.ID] == courseModels.ProgressCompleted {
				completedCount++
			}
		}

		// A module with no active lessons is vacuously complete
		completionPercentage := 100.0
		if totalCount > 0 {
			completionPercentage = float64(completedCount) / float64(totalCount) * 100.0
		}
		isModuleCompleted := totalCount == 0 || completedCount >= totalCount

		isModuleLocked := !previousModuleCompleted
		moduleLockReason := ""
		if isModuleLocked {
			moduleLockReason = LockReasonModule
		}

		moduleStates[mod.Module.ID] = ModuleSequenceState{
			CompletedContentCount: completedCount,
			TotalContentCount:     totalCount,
			CompletionPercentage:  completionPercentage,
			IsCompleted:           isModuleCompleted,
			IsLocked:              isModuleLocked,
			LockReason:            moduleLockReason,
		}

		previousContentCompleted := true
		for i, item := range mod.Contents {
			state := ContentSequenceState{}
			switch {
			case isModuleLocked:
				state.IsLocked = true
				state.LockReason = moduleLockReason
			case i > 0 && !previousContentCompleted:
				state.IsLocked = true
				state.LockReason = LockReasonContent
			}
			contentStates[item.ID] = state

			// One incomplete lesson locks every later lesson in the module
			if statuses[item.ID] != courseModels.ProgressCompleted {
				previousContentCompleted = false
			}
		}

		previousModuleCompleted = isModuleCompleted
	}

	return moduleStates, contentStates, nil
}

// ContentLockState recomputes the full course state and returns the lock
// state of a single content item. There is no per-item shortcut: locking is
// sequential and cumulative, so correctness requires the full traversal.
// Unknown content ids come back unlocked with no reason, matching the
// degrade-to-zero contract of the read layer.
func ContentLockState(db *gorm.DB, outline *CourseOutline, contentID, teacherID uint) (ContentSequenceState, error) {
	_, contentStates, err := ComputeCourseSequenceState(db, outline, teacherID)
	if err != nil {
		return ContentSequenceState{}, err
	}
	return contentStates[contentID], nil
}
