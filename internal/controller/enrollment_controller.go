package controller

import (
	"errors"

	"course_market_backend/internal/repository"
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	Enrollments *repository.EnrollmentRepository
	Students    *service.StudentService
}

func NewEnrollmentController(enrollments *repository.EnrollmentRepository, students *service.StudentService) *EnrollmentController {
	return &EnrollmentController{Enrollments: enrollments, Students: students}
}

// @Summary List the caller's enrollments
// @Tags enrollments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /enrollments [get]
func (c *EnrollmentController) ListMine(ctx *gin.Context) {
	claims := util.GetClaimsFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	student, err := c.Students.FindByAuthSubject(claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not synced yet means not enrolled anywhere.
			util.Success(ctx, []interface{}{})
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	enrollments, err := c.Enrollments.ListByStudent(student.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}
