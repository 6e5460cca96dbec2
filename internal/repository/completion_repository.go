package repository

import (
	"course_market_backend/internal/model"
	"course_market_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

func (r *CompletionRepository) FindByStudentAndLesson(studentID, lessonID uint) (*model.LessonCompletion, error) {
	var completion model.LessonCompletion
	err := r.DB.Where("student_id = ? AND lesson_id = ?", studentID, lessonID).First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

// Create inserts the completion row. Same contract as enrollment creation:
// the unique (student_id, lesson_id) index closes the replay race and
// callers recover from gorm.ErrDuplicatedKey by re-reading.
func (r *CompletionRepository) Create(completion *model.LessonCompletion) error {
	if err := r.DB.Create(completion).Error; err != nil {
		return err
	}
	monitoring.StoreWrites.WithLabelValues("lesson_completion").Inc()
	return nil
}

func (r *CompletionRepository) ListByStudentAndCourse(studentID, courseID uint) ([]model.LessonCompletion, error) {
	var completions []model.LessonCompletion
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		Find(&completions).Error
	return completions, err
}
