package repository

import (
	"time"

	"course_market_backend/internal/model"
	"course_market_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) FindByPaymentID(paymentID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("payment_id = ?", paymentID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create inserts the enrollment. The unique (student_id, course_id) index
// makes the insert itself the serialization point under concurrent webhook
// deliveries; callers must treat gorm.ErrDuplicatedKey as "already
// enrolled" and re-read the surviving row.
func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	if err := r.DB.Create(enrollment).Error; err != nil {
		return err
	}
	monitoring.StoreWrites.WithLabelValues("enrollment").Inc()
	return nil
}

func (r *EnrollmentRepository) ListByStudent(studentID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("student_id = ?", studentID).
		Preload("Course").
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) TouchLastAccessed(studentID, courseID uint, at time.Time) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Update("last_accessed_at", at).Error
}

// MarkCompleted flips an active enrollment to completed. A no-op if the
// enrollment is already completed or dropped.
func (r *EnrollmentRepository) MarkCompleted(studentID, courseID uint, at time.Time) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, model.EnrollmentActive).
		Updates(map[string]interface{}{
			"status":       model.EnrollmentCompleted,
			"completed_at": at,
		}).Error
}
