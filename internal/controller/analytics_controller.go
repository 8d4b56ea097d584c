package controller

import (
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	UserService      *service.UserService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService, userService *service.UserService) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService: analyticsService,
		UserService:      userService,
	}
}

// Dashboard godoc
// @Summary Role-specific dashboard figures
// @Description Students get attempt stats, faculty their exam stats, admin platform totals
// @Tags analytics
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/analytics/dashboard [get]
func (c *AnalyticsController) Dashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.UserService.Get(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	var stats interface{}
	switch user.Role {
	case model.Student:
		stats, err = c.AnalyticsService.StudentStats(user)
	case model.Faculty:
		stats, err = c.AnalyticsService.FacultyStats(user)
	default:
		stats, err = c.AnalyticsService.AdminStats()
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
