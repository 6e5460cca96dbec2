package service

import (
	"errors"
	"strconv"
	"time"

	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StudentStore is the read shape the payment path needs from student
// storage. Small interfaces keep the services testable against fakes.
type StudentStore interface {
	FindByAuthSubject(subject string) (*model.Student, error)
}

type EnrollmentStore interface {
	FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error)
	Create(enrollment *model.Enrollment) error
}

// EnrollmentService turns a verified checkout-completed session into a
// durable enrollment, exactly once per (student, course) no matter how many
// times the provider delivers the event.
type EnrollmentService struct {
	Students        StudentStore
	Enrollments     EnrollmentStore
	MinorUnitFactor int64
}

func NewEnrollmentService(students StudentStore, enrollments EnrollmentStore, minorUnitFactor int64) *EnrollmentService {
	if minorUnitFactor <= 0 {
		minorUnitFactor = 100
	}
	return &EnrollmentService{
		Students:        students,
		Enrollments:     enrollments,
		MinorUnitFactor: minorUnitFactor,
	}
}

// Enroll processes one checkout-completed session. Missing metadata and
// unknown students are permanent defects for this event: the customer has
// paid, so both are logged with the payment id for manual reconciliation
// and reported to the caller as client errors, never retried here.
func (s *EnrollmentService) Enroll(session *payment.CheckoutSession) (*model.Enrollment, error) {
	if session.Metadata.CourseID == "" || session.Metadata.UserID == "" {
		logger.Log.Error("checkout session missing metadata, manual reconciliation required",
			zap.String("paymentId", session.ID),
			zap.String("courseId", session.Metadata.CourseID),
			zap.String("userId", session.Metadata.UserID))
		return nil, util.ErrMissingMetadata
	}

	courseID64, err := strconv.ParseUint(session.Metadata.CourseID, 10, 32)
	if err != nil {
		logger.Log.Error("checkout session carries unparsable courseId",
			zap.String("paymentId", session.ID),
			zap.String("courseId", session.Metadata.CourseID))
		return nil, util.ErrMissingMetadata
	}
	courseID := uint(courseID64)

	student, err := s.Students.FindByAuthSubject(session.Metadata.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error("paid checkout for unknown student, manual reconciliation required",
				zap.String("paymentId", session.ID),
				zap.String("userId", session.Metadata.UserID))
			return nil, util.ErrStudentNotFound
		}
		return nil, err
	}

	// Fast path for redelivered events. Correctness does not depend on this
	// check: two concurrent deliveries can both miss here and race to the
	// insert below, where the unique index decides.
	existing, err := s.Enrollments.FindByStudentAndCourse(student.ID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &model.Enrollment{
		StudentID:  student.ID,
		CourseID:   courseID,
		PaymentID:  session.ID,
		Amount:     float64(session.AmountTotal) / float64(s.MinorUnitFactor),
		Status:     model.EnrollmentActive,
		EnrolledAt: time.Now(),
	}

	if err := s.Enrollments.Create(enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the insert race to a concurrent delivery; the surviving
			// row is the enrollment.
			return s.Enrollments.FindByStudentAndCourse(student.ID, courseID)
		}
		return nil, err
	}

	logger.Log.Info("enrollment created",
		zap.Uint("studentId", student.ID),
		zap.Uint("courseId", courseID),
		zap.String("paymentId", session.ID),
		zap.Float64("amount", enrollment.Amount))

	return enrollment, nil
}
