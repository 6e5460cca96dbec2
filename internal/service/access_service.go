package service

import (
	"errors"

	"course_market_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccessService answers "may this student view this course". It gates UI
// display and is called for anonymous and pre-signup visitors, so it never
// returns an error: unknown auth subject, missing student row and missing
// enrollment all read as not enrolled. Store failures are logged and fail
// closed.
type AccessService struct {
	Students    StudentStore
	Enrollments EnrollmentStore
}

func NewAccessService(students StudentStore, enrollments EnrollmentStore) *AccessService {
	return &AccessService{Students: students, Enrollments: enrollments}
}

func (s *AccessService) IsEnrolled(authSubjectID string, courseID uint) bool {
	if authSubjectID == "" {
		return false
	}

	student, err := s.Students.FindByAuthSubject(authSubjectID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error("access check failed to resolve student",
				zap.String("authSubjectId", authSubjectID), zap.Error(err))
		}
		return false
	}

	_, err = s.Enrollments.FindByStudentAndCourse(student.ID, courseID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error("access check failed to resolve enrollment",
				zap.Uint("studentId", student.ID), zap.Uint("courseId", courseID), zap.Error(err))
		}
		return false
	}
	return true
}
