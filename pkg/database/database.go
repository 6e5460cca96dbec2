package database

import (
	"fmt"
	"log"

	"course_market_backend/internal/config"
	"course_market_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	// TranslateError surfaces duplicate-key violations as
	// gorm.ErrDuplicatedKey; the enrollment and completion writers depend
	// on that to recover from concurrent inserts.
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.Student{},
		&model.Instructor{},
		&model.Category{},
		&model.Course{},
		&model.Module{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.LessonCompletion{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// Seed a minimal category set so a fresh install has a browsable catalog.
	var count int64
	db.Model(&model.Category{}).Count(&count)
	if count == 0 {
		defaultCategories := []model.Category{
			{Name: "Programming", Slug: "programming", Description: "Software development courses"},
			{Name: "Design", Slug: "design", Description: "Design and UX courses"},
			{Name: "Business", Slug: "business", Description: "Business and marketing courses"},
		}
		for _, c := range defaultCategories {
			db.Create(&c)
		}
	}

	return db, nil
}
