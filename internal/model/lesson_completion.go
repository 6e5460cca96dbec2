package model

import "time"

// LessonCompletion records that one student finished one lesson. At most
// one row per (student, lesson); a replayed completion is absorbed by the
// unique index. Rows are immutable once written.
// swagger:model LessonCompletion
type LessonCompletion struct {
	BaseModel
	StudentID   uint      `gorm:"index:idx_student_lesson,unique;not null" json:"studentId"`
	LessonID    uint      `gorm:"index:idx_student_lesson,unique;not null" json:"lessonId"`
	ModuleID    uint      `gorm:"index;not null" json:"moduleId"`
	CourseID    uint      `gorm:"index;not null" json:"courseId"`
	CompletedAt time.Time `gorm:"not null" json:"completedAt"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}
