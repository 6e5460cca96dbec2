package controller

import (
	"errors"
	"strconv"

	"course_market_backend/internal/service"
	"course_market_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CourseController struct {
	Catalog  *service.CatalogService
	Access   *service.AccessService
	Students *service.StudentService
	Storage  *service.StorageService
}

func NewCourseController(catalog *service.CatalogService, access *service.AccessService, students *service.StudentService, storage *service.StorageService) *CourseController {
	return &CourseController{Catalog: catalog, Access: access, Students: students, Storage: storage}
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// @Summary List catalog courses
// @Tags catalog
// @Produce json
// @Success 200 {object} util.Response
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.Catalog.ListCourses()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary Course detail with module and lesson structure
// @Tags catalog
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	course, err := c.Catalog.CourseStructure(ctx.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Check course access
// @Description Whether the caller holds an enrollment. Safe for anonymous
// @Description visitors; never errors, only answers false.
// @Tags catalog
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/access [get]
func (c *CourseController) GetAccess(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	enrolled := false
	if claims := util.GetClaimsFromContext(ctx); claims != nil {
		enrolled = c.Access.IsEnrolled(claims.Subject, courseID)
	}
	util.Success(ctx, gin.H{"enrolled": enrolled})
}

// @Summary Lesson content for enrolled students
// @Tags catalog
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/lessons/{lessonId} [get]
func (c *CourseController) GetLesson(ctx *gin.Context) {
	claims := util.GetClaimsFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(ctx, "lessonId")
	if !ok {
		return
	}

	if !c.Access.IsEnrolled(claims.Subject, courseID) {
		util.Forbidden(ctx)
		return
	}

	lesson, err := c.Catalog.LessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	inCourse, err := c.Catalog.ModuleInCourse(courseID, lesson.ModuleID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !inCourse {
		util.NotFound(ctx)
		return
	}

	videoURL, err := c.Storage.LessonVideoURL(ctx.Request.Context(), lesson)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"lesson":   lesson,
		"videoUrl": videoURL,
	})
}
