package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const courseStructureTTL = 10 * time.Minute

// CatalogService serves catalog reads. Course structure changes only when
// editors publish, so it is cached in redis with a short TTL; everything
// per-student bypasses this service.
type CatalogService struct {
	Courses *repository.CourseRepository
	Redis   *redis.Client
}

func NewCatalogService(courses *repository.CourseRepository, rdb *redis.Client) *CatalogService {
	return &CatalogService{Courses: courses, Redis: rdb}
}

func (s *CatalogService) ListCourses() ([]model.Course, error) {
	return s.Courses.List()
}

func (s *CatalogService) CourseStructure(ctx context.Context, courseID uint) (*model.Course, error) {
	key := fmt.Sprintf("course:structure:%d", courseID)

	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, key).Result()
		if err == nil {
			var course model.Course
			if err := json.Unmarshal([]byte(cached), &course); err == nil {
				return &course, nil
			}
			// Poisoned cache entry; fall through to the store.
			s.Redis.Del(ctx, key)
		}
	}

	course, err := s.Courses.StructureByID(courseID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if encoded, err := json.Marshal(course); err == nil {
			if err := s.Redis.Set(ctx, key, encoded, courseStructureTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache course structure",
					zap.Uint("courseId", courseID), zap.Error(err))
			}
		}
	}

	return course, nil
}

func (s *CatalogService) LessonByID(lessonID uint) (*model.Lesson, error) {
	return s.Courses.LessonByID(lessonID)
}

func (s *CatalogService) ModuleInCourse(courseID, moduleID uint) (bool, error) {
	return s.Courses.ModuleInCourse(courseID, moduleID)
}
