package controller

import (
	"errors"

	"course_market_backend/internal/service"
	"course_market_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProgressController struct {
	Progress *service.ProgressService
	Students *service.StudentService
}

func NewProgressController(progress *service.ProgressService, students *service.StudentService) *ProgressController {
	return &ProgressController{Progress: progress, Students: students}
}

// resolveStudent maps the token's auth subject onto the local student row.
// A valid token without a synced student means the client skipped the
// first-login sync.
func (c *ProgressController) resolveStudent(ctx *gin.Context) (uint, bool) {
	claims := util.GetClaimsFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}

	student, err := c.Students.FindByAuthSubject(claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.BadRequest(ctx, "student profile not synced")
			return 0, false
		}
		util.LogInternalError(ctx, err)
		return 0, false
	}
	return student.ID, true
}

// @Summary Course completion progress
// @Description Completed and total lesson counts with a per-module
// @Description breakdown in curriculum order.
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/progress [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	studentID, ok := c.resolveStudent(ctx)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	progress, err := c.Progress.CourseProgress(ctx.Request.Context(), studentID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Mark a lesson complete
// @Description Idempotent: re-marking a finished lesson returns the prior
// @Description record.
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/lessons/{lessonId}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	studentID, ok := c.resolveStudent(ctx)
	if !ok {
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

	completion, err := c.Progress.MarkLessonComplete(studentID, courseID, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrLessonNotInCourse):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, completion)
}
