package service

import (
	"errors"

	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StudentService keeps the local student mirror in sync with the external
// identity provider. The row is created on first login and profile fields
// are refreshed on subsequent syncs; the auth subject id never changes.
type StudentService struct {
	Students *repository.StudentRepository
}

func NewStudentService(students *repository.StudentRepository) *StudentService {
	return &StudentService{Students: students}
}

func (s *StudentService) FindByAuthSubject(subject string) (*model.Student, error) {
	return s.Students.FindByAuthSubject(subject)
}

func (s *StudentService) SyncFromClaims(claims *util.Claims) (*model.Student, error) {
	student, err := s.Students.FindByAuthSubject(claims.Subject)
	if err == nil {
		changed := false
		if claims.Email != "" && student.Email != claims.Email {
			student.Email = claims.Email
			changed = true
		}
		if claims.FirstName != "" && student.FirstName != claims.FirstName {
			student.FirstName = claims.FirstName
			changed = true
		}
		if claims.LastName != "" && student.LastName != claims.LastName {
			student.LastName = claims.LastName
			changed = true
		}
		if claims.ImageURL != "" && student.ImageURL != claims.ImageURL {
			student.ImageURL = claims.ImageURL
			changed = true
		}
		if changed {
			if err := s.Students.Update(student); err != nil {
				return nil, err
			}
		}
		return student, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student = &model.Student{
		AuthSubjectID: claims.Subject,
		Email:         claims.Email,
		FirstName:     claims.FirstName,
		LastName:      claims.LastName,
		ImageURL:      claims.ImageURL,
	}
	if err := s.Students.Create(student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Two first-login syncs raced; the unique index on the auth
			// subject keeps a single row.
			return s.Students.FindByAuthSubject(claims.Subject)
		}
		return nil, err
	}

	logger.Log.Info("student synced from identity provider",
		zap.Uint("studentId", student.ID),
		zap.String("authSubjectId", student.AuthSubjectID))

	return student, nil
}
