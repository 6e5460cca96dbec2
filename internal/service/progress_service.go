package service

import (
	"context"
	"errors"
	"time"

	"course_market_backend/internal/model"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseCatalog is the structure read the aggregator joins against. The
// structure side is mostly static and may be served from cache; the
// completion side never is.
type CourseCatalog interface {
	CourseStructure(ctx context.Context, courseID uint) (*model.Course, error)
	LessonByID(lessonID uint) (*model.Lesson, error)
	ModuleInCourse(courseID, moduleID uint) (bool, error)
}

type CompletionStore interface {
	FindByStudentAndLesson(studentID, lessonID uint) (*model.LessonCompletion, error)
	Create(completion *model.LessonCompletion) error
	ListByStudentAndCourse(studentID, courseID uint) ([]model.LessonCompletion, error)
}

// EnrollmentProgressStore extends the enrollment reads with the status
// touches the progress path performs.
type EnrollmentProgressStore interface {
	EnrollmentStore
	TouchLastAccessed(studentID, courseID uint, at time.Time) error
	MarkCompleted(studentID, courseID uint, at time.Time) error
}

type ModuleProgress struct {
	ModuleID       uint   `json:"moduleId"`
	Title          string `json:"title"`
	CompletedCount int    `json:"completedCount"`
	TotalCount     int    `json:"totalCount"`
}

// CourseProgress is derived on every read from completion rows and course
// structure; no persisted copy is authoritative.
type CourseProgress struct {
	CourseID       uint             `json:"courseId"`
	CompletedCount int              `json:"completedCount"`
	TotalCount     int              `json:"totalCount"`
	Percentage     float64          `json:"percentage"`
	Modules        []ModuleProgress `json:"moduleBreakdown"`
}

type ProgressService struct {
	Catalog     CourseCatalog
	Completions CompletionStore
	Enrollments EnrollmentProgressStore
}

func NewProgressService(catalog CourseCatalog, completions CompletionStore, enrollments EnrollmentProgressStore) *ProgressService {
	return &ProgressService{
		Catalog:     catalog,
		Completions: completions,
		Enrollments: enrollments,
	}
}

// MarkLessonComplete records a completion. Recording for an unentitled
// student is refused outright; re-marking an already finished lesson is a
// normal UI replay and returns the prior record.
func (s *ProgressService) MarkLessonComplete(studentID, courseID, lessonID uint) (*model.LessonCompletion, error) {
	if _, err := s.Enrollments.FindByStudentAndCourse(studentID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	lesson, err := s.Catalog.LessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	inCourse, err := s.Catalog.ModuleInCourse(courseID, lesson.ModuleID)
	if err != nil {
		return nil, err
	}
	if !inCourse {
		return nil, util.ErrLessonNotInCourse
	}

	if existing, err := s.Completions.FindByStudentAndLesson(studentID, lessonID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	completion := &model.LessonCompletion{
		StudentID:   studentID,
		LessonID:    lessonID,
		ModuleID:    lesson.ModuleID,
		CourseID:    courseID,
		CompletedAt: time.Now(),
	}

	if err := s.Completions.Create(completion); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.Completions.FindByStudentAndLesson(studentID, lessonID)
		}
		return nil, err
	}
	return completion, nil
}

// CourseProgress joins the course structure and the student's completions
// in memory, keyed by lesson id. Aggregation treats lessons as a set;
// the breakdown keeps module order because the curriculum UI depends on it.
func (s *ProgressService) CourseProgress(ctx context.Context, studentID, courseID uint) (*CourseProgress, error) {
	course, err := s.Catalog.CourseStructure(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	completions, err := s.Completions.ListByStudentAndCourse(studentID, courseID)
	if err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(completions))
	for _, c := range completions {
		completed[c.LessonID] = true
	}

	progress := &CourseProgress{
		CourseID: courseID,
		Modules:  make([]ModuleProgress, 0, len(course.Modules)),
	}

	for _, cm := range course.Modules {
		if cm.Module == nil {
			continue
		}
		mp := ModuleProgress{
			ModuleID: cm.ModuleID,
			Title:    cm.Module.Title,
		}
		for _, lesson := range cm.Module.Lessons {
			mp.TotalCount++
			if completed[lesson.ID] {
				mp.CompletedCount++
			}
		}
		progress.TotalCount += mp.TotalCount
		progress.CompletedCount += mp.CompletedCount
		progress.Modules = append(progress.Modules, mp)
	}

	// Ratio in [0, 1]. A course with no lessons is never complete.
	if progress.TotalCount > 0 {
		progress.Percentage = float64(progress.CompletedCount) / float64(progress.TotalCount)
	}

	s.touchEnrollment(studentID, courseID, progress)

	return progress, nil
}

// touchEnrollment updates the enrollment's bookkeeping fields. Best effort:
// progress itself is derived, so a failed touch must not fail the read.
func (s *ProgressService) touchEnrollment(studentID, courseID uint, progress *CourseProgress) {
	now := time.Now()
	if err := s.Enrollments.TouchLastAccessed(studentID, courseID, now); err != nil {
		logger.Log.Warn("failed to touch enrollment access time",
			zap.Uint("studentId", studentID), zap.Uint("courseId", courseID), zap.Error(err))
	}
	if progress.TotalCount > 0 && progress.CompletedCount == progress.TotalCount {
		if err := s.Enrollments.MarkCompleted(studentID, courseID, now); err != nil {
			logger.Log.Warn("failed to mark enrollment completed",
				zap.Uint("studentId", studentID), zap.Uint("courseId", courseID), zap.Error(err))
		}
	}
}
