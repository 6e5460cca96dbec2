package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) List() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.
		Preload("Category").
		Preload("Instructor").
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// StructureByID loads a course with its full curriculum: modules in course
// order, each with its lessons in lesson order. This is the static read the
// progress aggregator joins against; it carries no per-student state.
func (r *CourseRepository) StructureByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Category").
		Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_modules.position ASC")
		}).
		Preload("Modules.Module").
		Preload("Modules.Module.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.position ASC")
		}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) LessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ModuleInCourse reports whether the module is part of the course's
// curriculum.
func (r *CourseRepository) ModuleInCourse(courseID, moduleID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CourseModule{}).
		Where("course_id = ? AND module_id = ?", courseID, moduleID).
		Count(&count).Error
	return count > 0, err
}
