package controller

import (
	"errors"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// ListNotifications godoc
// @Summary The caller's notifications
// @Description Paginated inbox with unread count; filter by read state via ?read=
// @Tags notifications
// @Produce  json
// @Security ApiKeyAuth
// @Param   read query bool false "filter by read state"
// @Param   page query int false "page number"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=object}
// @Router /api/notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	var isRead *bool
	if raw := ctx.Query("read"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			util.BadRequest(ctx, "invalid read filter")
			return
		}
		isRead = &parsed
	}

	notifications, total, unread, err := c.NotificationService.List(claims.UserID, isRead, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"list":   notifications,
		"total":  total,
		"unread": unread,
		"page":   page,
		"limit":  limit,
	})
}

// MarkRead godoc
// @Summary Mark one notification read
// @Tags notifications
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "notification id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid notification id")
		return
	}

	claims := util.GetUserFromContext(ctx)

	if err := c.NotificationService.MarkRead(claims.UserID, uint(id)); err != nil {
		switch {
		case errors.Is(err, util.ErrNotificationNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// MarkAllRead godoc
// @Summary Mark every notification of the caller read
// @Tags notifications
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/notifications/read-all [put]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	if err := c.NotificationService.MarkAllRead(claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
