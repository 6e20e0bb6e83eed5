package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/app/services"
	"github.com/okan/urcp/internal/middleware"
)

// NotificationController handles notification inbox endpoints
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetNotifications handles listing the caller's notifications
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse}
// @Router /notifications [get]
func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}

	page, pageSize := parsePageParams(ctx)
	response, err := c.notificationService.GetAll(ctx, a, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetUnreadCount handles retrieving the unread notification count
// @Summary Get unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Router /notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}

	count, err := c.notificationService.UnreadCount(ctx, a)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnreadCountResponse{Count: count}))
}

// MarkRead handles marking a single notification as read
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx, a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Notification marked as read"))
}

// MarkAllRead handles marking every notification as read
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Router /notifications/read-all [put]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}

	if err := c.notificationService.MarkAllRead(ctx, a); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("All notifications marked as read"))
}
