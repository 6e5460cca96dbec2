package controller

import (
	"errors"

	"course_market_backend/internal/service"
	"course_market_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StudentController struct {
	Students *service.StudentService
}

func NewStudentController(students *service.StudentService) *StudentController {
	return &StudentController{Students: students}
}

// @Summary Sync the caller's student profile
// @Description Creates the local student record on first login and
// @Description refreshes profile fields afterwards.
// @Tags students
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /auth/sync [post]
func (c *StudentController) Sync(ctx *gin.Context) {
	claims := util.GetClaimsFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	student, err := c.Students.SyncFromClaims(claims)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// @Summary Caller's student profile
// @Tags students
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /profile [get]
func (c *StudentController) GetProfile(ctx *gin.Context) {
	claims := util.GetClaimsFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	student, err := c.Students.FindByAuthSubject(claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, student)
}
