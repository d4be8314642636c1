package progress

import (
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// ModuleOutline is one active module with its active content, both in
// sequence order.
type ModuleOutline struct {
	Module   courseModels.Module
	Contents []courseModels.Content
}

// CourseOutline is the read-only catalog view the sequence engine walks:
// active modules ordered by (order_index, created_at), each with its active
// content ordered by the same key.
type CourseOutline struct {
	Course  courseModels.Course
	Modules []ModuleOutline
}

// LoadCourseOutline fetches the ordered active outline for one course.
// Inactive and soft-deleted modules/content are excluded entirely; they do
// not participate in locking or totals.
func LoadCourseOutline(db *gorm.DB, courseID uint) (*CourseOutline, error) {
	var c courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		return nil, err
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).
		Order("order_index asc, created_at asc").Find(&modules).Error; err != nil {
		return nil, err
	}

	var contents []courseModels.Content
	if err := db.Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).
		Order("order_index asc, created_at asc").Find(&contents).Error; err != nil {
		return nil, err
	}

	contentsByModule := make(map[uint][]courseModels.Content)
	for _, item := range contents {
		contentsByModule[item.ModuleID] = append(contentsByModule[item.ModuleID], item)
	}

	outline := &CourseOutline{Course: c}
	for _, m := range modules {
		outline.Modules = append(outline.Modules, ModuleOutline{
			Module:   m,
			Contents: contentsByModule[m.ID],
		})
	}

	return outline, nil
}

// progressByContent fetches the teacher's progress status for every content
// item under the course, keyed by content id. Items without a row are simply
// absent and count as NOT_STARTED.
func progressByContent(db *gorm.DB, teacherID, courseID uint) (map[uint]string, error) {
	var rows []courseModels.ContentProgress
	if err := db.Where("teacher_id = ? AND course_id = ? AND is_deleted = ?", teacherID, courseID, false).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	statuses := make(map[uint]string, len(rows))
	for _, row := range rows {
		statuses[row.ContentID] = row.Status
	}
	return statuses, nil
}
