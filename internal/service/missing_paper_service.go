package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// ── 缺卷追踪模块业务错误 ──

var (
	ErrTrackingNotFound    = errors.New("缺卷记录不存在")
	ErrTrackingExists      = errors.New("该考生已有处理中的缺卷记录")
	ErrTrackingTypeInvalid = errors.New("缺卷类型无效")
	ErrPriorityInvalid     = errors.New("优先级无效")
	ErrCannotAcknowledge   = errors.New("当前状态不允许确认：仅 PENDING/REPORTED 可确认")
	ErrCannotResolve       = errors.New("当前状态不允许解决：须先经管理员确认")
	ErrCannotEscalate      = errors.New("当前状态不允许升级：仅 REPORTED/ACKNOWLEDGED 可升级")
)

// ── 状态机 ──

// 状态机动作
const (
	actionAcknowledge = "acknowledge"
	actionResolve     = "resolve"
	actionEscalate    = "escalate"
)

// trackingTransitions 转移表：动作 → 合法起始状态。
// 状态合法性的唯一判定来源；PENDING 为自动检测预建、待教师确认的起点，
// RESOLVED 为唯一终态，ESCALATED 仍可被解决
var trackingTransitions = map[string]map[model.TrackingStatus]bool{
	actionAcknowledge: {model.TrackingPending: true, model.TrackingReported: true},
	actionResolve:     {model.TrackingAcknowledged: true, model.TrackingEscalated: true},
	actionEscalate:    {model.TrackingReported: true, model.TrackingAcknowledged: true},
}

// transitionErrors 动作在非法起始状态下返回的错误
var transitionErrors = map[string]error{
	actionAcknowledge: ErrCannotAcknowledge,
	actionResolve:     ErrCannotResolve,
	actionEscalate:    ErrCannotEscalate,
}

// checkTransition 查转移表判定动作合法性
func checkTransition(action string, from model.TrackingStatus) error {
	if trackingTransitions[action][from] {
		return nil
	}
	return transitionErrors[action]
}

// MissingPaperService 缺卷/缺考追踪业务接口
// 四个写操作全部走乐观锁更新，版本冲突返回 pkg/errors.ErrOptimisticLock
type MissingPaperService interface {
	Report(ctx context.Context, req *dto.ReportMissingPaperRequest, reportedBy string) (*dto.MissingPaperResponse, error)
	GetByID(ctx context.Context, id string) (*dto.MissingPaperResponse, error)
	Acknowledge(ctx context.Context, id string, req *dto.AcknowledgeTrackingRequest, acknowledgedBy string) (*dto.MissingPaperResponse, error)
	Resolve(ctx context.Context, id string, req *dto.ResolveTrackingRequest, resolvedBy string) (*dto.MissingPaperResponse, error)
	Escalate(ctx context.Context, id string, req *dto.EscalateTrackingRequest, escalatedBy string) (*dto.MissingPaperResponse, error)
	ListForStaff(ctx context.Context, reporterID string, req *dto.TrackingListRequest) ([]dto.MissingPaperResponse, int64, error)
	ListForAdmin(ctx context.Context, req *dto.TrackingListRequest) ([]dto.MissingPaperResponse, int64, error)
	GetExamCompletionStatus(ctx context.Context, examID string) (*dto.ExamCompletionStatusResponse, error)
	GetRedFlagSummary(ctx context.Context) (*dto.RedFlagSummaryResponse, error)
}

type missingPaperService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMissingPaperService 创建 MissingPaperService 实例
func NewMissingPaperService(repo *repository.Repository, logger *zap.Logger) MissingPaperService {
	return &missingPaperService{repo: repo, logger: logger}
}

// ────────────────────── Report ──────────────────────

func (s *missingPaperService) Report(ctx context.Context, req *dto.ReportMissingPaperRequest, reportedBy string) (*dto.MissingPaperResponse, error) {
	trackingType := model.TrackingType(req.Type)
	if !model.ValidTrackingType(trackingType) {
		return nil, ErrTrackingTypeInvalid
	}

	// 优先级：显式传入须合法；缺省按类型推导，缺考/缺卷默认 HIGH，其余 MEDIUM
	priority := defaultPriorityFor(trackingType)
	if req.Priority != nil {
		priority = model.NotificationPriority(*req.Priority)
		if !model.ValidPriority(priority) {
			return nil, ErrPriorityInvalid
		}
	}

	exam, err := s.repo.Exam.GetByID(ctx, req.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	student, err := s.repo.Student.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.ClassID != exam.ClassID {
		return nil, ErrStudentNotInClass
	}

	// 每对 (exam, student) 仅允许一条活跃记录
	if _, err := s.repo.Tracking.GetActiveByExamStudent(ctx, req.ExamID, req.StudentID); err == nil {
		return nil, ErrTrackingExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if req.AnswerSheetID != nil {
		if _, err := s.repo.AnswerSheet.GetByID(ctx, *req.AnswerSheetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAnswerSheetNotFound
			}
			return nil, err
		}
	}

	now := time.Now()
	tracking := &model.MissingPaperTracking{
		ExamID:         req.ExamID,
		StudentID:      req.StudentID,
		ClassID:        exam.ClassID,
		SubjectID:      exam.SubjectID,
		Type:           trackingType,
		Status:         model.TrackingReported,
		ReportedBy:     reportedBy,
		ReportedAt:     now,
		Reason:         req.Reason,
		Details:        req.Details,
		Priority:       priority,
		IsRedFlag:      isRedFlag(trackingType, priority),
		RequiresAck:    true,
		AnswerSheetID:  req.AnswerSheetID,
		IsActive:       true,
		VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &reportedBy}}},
	}

	if err := s.repo.Tracking.Create(ctx, tracking); err != nil {
		s.logger.Error("创建缺卷记录失败", zap.Error(err))
		return nil, err
	}

	// 上报后通知上报人的归属管理员（班级的行政负责人），关联 id 回写到记录
	s.notifyReporterAdmin(ctx, tracking, reportedBy, student.Name, exam.Title, req.Reason)

	tracking.Exam = exam
	tracking.Student = student
	return s.toMissingPaperResponse(tracking), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *missingPaperService) GetByID(ctx context.Context, id string) (*dto.MissingPaperResponse, error) {
	tracking, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toMissingPaperResponse(tracking), nil
}

// ────────────────────── Acknowledge ──────────────────────

func (s *missingPaperService) Acknowledge(ctx context.Context, id string, req *dto.AcknowledgeTrackingRequest, acknowledgedBy string) (*dto.MissingPaperResponse, error) {
	tracking, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(actionAcknowledge, tracking.Status); err != nil {
		return nil, err
	}

	now := time.Now()
	tracking.Status = model.TrackingAcknowledged
	tracking.AcknowledgedBy = &acknowledgedBy
	tracking.AcknowledgedAt = &now
	if req.AdminRemarks != nil {
		tracking.AdminRemarks = req.AdminRemarks
	}
	tracking.UpdatedBy = &acknowledgedBy

	if err := s.repo.Tracking.Update(ctx, tracking); err != nil {
		s.logger.Error("确认缺卷记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toMissingPaperResponse(tracking), nil
}

// ────────────────────── Resolve ──────────────────────

func (s *missingPaperService) Resolve(ctx context.Context, id string, req *dto.ResolveTrackingRequest, resolvedBy string) (*dto.MissingPaperResponse, error) {
	tracking, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(actionResolve, tracking.Status); err != nil {
		return nil, err
	}

	now := time.Now()
	tracking.Status = model.TrackingResolved
	tracking.ResolvedBy = &resolvedBy
	tracking.ResolvedAt = &now
	if req.ResolutionNotes != nil {
		tracking.ResolutionNotes = req.ResolutionNotes
	}
	// 终态不变式：RESOLVED 即完成
	tracking.IsCompleted = true
	tracking.CompletedAt = &now
	tracking.UpdatedBy = &resolvedBy

	if err := s.repo.Tracking.Update(ctx, tracking); err != nil {
		s.logger.Error("解决缺卷记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toMissingPaperResponse(tracking), nil
}

// ────────────────────── Escalate ──────────────────────

func (s *missingPaperService) Escalate(ctx context.Context, id string, req *dto.EscalateTrackingRequest, escalatedBy string) (*dto.MissingPaperResponse, error) {
	tracking, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(actionEscalate, tracking.Status); err != nil {
		return nil, err
	}

	// 升级目标必须是存在的用户
	if _, err := s.repo.User.GetByID(ctx, req.EscalatedTo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	tracking.Status = model.TrackingEscalated
	tracking.EscalatedTo = &req.EscalatedTo
	tracking.EscalatedAt = &now
	tracking.EscalationReason = &req.EscalationReason
	// 升级抬高紧急度：HIGH → URGENT，并重算红旗
	if tracking.Priority == model.PriorityHigh {
		tracking.Priority = model.PriorityUrgent
	}
	tracking.IsRedFlag = isRedFlag(tracking.Type, tracking.Priority)
	tracking.UpdatedBy = &escalatedBy

	if err := s.repo.Tracking.Update(ctx, tracking); err != nil {
		s.logger.Error("升级缺卷记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 通知升级目标，关联 id 回写到记录
	s.notifyEscalationTarget(ctx, tracking, req.EscalatedTo, req.EscalationReason)

	return s.toMissingPaperResponse(tracking), nil
}

// ────────────────────── ListForStaff / ListForAdmin ──────────────────────

// ListForStaff 上报人维度列表：教师只看见自己上报的记录
func (s *missingPaperService) ListForStaff(ctx context.Context, reporterID string, req *dto.TrackingListRequest) ([]dto.MissingPaperResponse, int64, error) {
	return s.list(ctx, reporterID, req)
}

// ListForAdmin 管理员维度列表：全量，可按状态/类型/考试过滤
func (s *missingPaperService) ListForAdmin(ctx context.Context, req *dto.TrackingListRequest) ([]dto.MissingPaperResponse, int64, error) {
	return s.list(ctx, "", req)
}

func (s *missingPaperService) list(ctx context.Context, reportedBy string, req *dto.TrackingListRequest) ([]dto.MissingPaperResponse, int64, error) {
	trackings, total, err := s.repo.Tracking.List(ctx, reportedBy, req.Status, req.Type, req.ExamID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出缺卷记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.MissingPaperResponse, 0, len(trackings))
	for i := range trackings {
		result = append(result, *s.toMissingPaperResponse(&trackings[i]))
	}

	return result, total, nil
}

// ────────────────────── GetExamCompletionStatus ──────────────────────

func (s *missingPaperService) GetExamCompletionStatus(ctx context.Context, examID string) (*dto.ExamCompletionStatusResponse, error) {
	if _, err := s.repo.Exam.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	trackings, err := s.repo.Tracking.ListByExam(ctx, examID)
	if err != nil {
		s.logger.Error("查询考试缺卷记录失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, err
	}

	status := &dto.ExamCompletionStatusResponse{ExamID: examID}
	for i := range trackings {
		t := &trackings[i]
		status.Total++
		switch t.Status {
		case model.TrackingPending:
			status.Pending++
		case model.TrackingReported:
			status.Reported++
		case model.TrackingAcknowledged:
			status.Acknowledged++
		case model.TrackingEscalated:
			status.Escalated++
		case model.TrackingResolved:
			status.Resolved++
		}
		if t.IsRedFlag {
			status.RedFlags++
		}
	}

	return status, nil
}

// ────────────────────── GetRedFlagSummary ──────────────────────

// GetRedFlagSummary 看板红旗汇总：活跃且未完成的红旗记录按考试分组，组序与组内均最新在前
func (s *missingPaperService) GetRedFlagSummary(ctx context.Context) (*dto.RedFlagSummaryResponse, error) {
	trackings, err := s.repo.Tracking.ListRedFlags(ctx)
	if err != nil {
		s.logger.Error("查询红旗记录失败", zap.Error(err))
		return nil, err
	}

	summary := &dto.RedFlagSummaryResponse{
		TotalRedFlags: len(trackings),
		Exams:         []dto.ExamRedFlagGroup{},
	}

	groupIndex := make(map[string]int)
	for i := range trackings {
		t := &trackings[i]
		idx, ok := groupIndex[t.ExamID]
		if !ok {
			group := dto.ExamRedFlagGroup{ExamID: t.ExamID}
			if t.Exam != nil {
				group.ExamTitle = t.Exam.Title
			}
			summary.Exams = append(summary.Exams, group)
			idx = len(summary.Exams) - 1
			groupIndex[t.ExamID] = idx
		}
		summary.Exams[idx].Items = append(summary.Exams[idx].Items, *s.toMissingPaperResponse(t))
		summary.Exams[idx].Count++
	}

	return summary, nil
}

// ── 内部辅助方法 ──

// defaultPriorityFor 按异常类型推导默认优先级
func defaultPriorityFor(t model.TrackingType) model.NotificationPriority {
	if t == model.TrackingAbsent || t == model.TrackingMissingSheet {
		return model.PriorityHigh
	}
	return model.PriorityMedium
}

// isRedFlag 红旗判定：缺考/缺卷且优先级不低于 HIGH
func isRedFlag(t model.TrackingType, p model.NotificationPriority) bool {
	if t != model.TrackingAbsent && t != model.TrackingMissingSheet {
		return false
	}
	return model.PriorityAtLeast(p, model.PriorityHigh)
}

// getActive 取活跃记录；归档记录对调用方不可见
func (s *missingPaperService) getActive(ctx context.Context, id string) (*model.MissingPaperTracking, error) {
	tracking, err := s.repo.Tracking.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackingNotFound
		}
		s.logger.Error("查询缺卷记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !tracking.IsActive {
		return nil, ErrTrackingNotFound
	}
	return tracking, nil
}

// notifyReporterAdmin 上报通知：发给上报人的归属管理员；失败仅记日志不阻断主流程
func (s *missingPaperService) notifyReporterAdmin(ctx context.Context, tracking *model.MissingPaperTracking, reportedBy, studentName, examTitle, reason string) {
	reporter, err := s.repo.User.GetByID(ctx, reportedBy)
	if err != nil {
		s.logger.Error("查询上报人失败，跳过通知", zap.String("reporter_id", reportedBy), zap.Error(err))
		return
	}
	if reporter.AdminID == nil {
		return
	}

	notifyType := model.NotifyMissingSheet
	title := "缺卷上报"
	if tracking.Type == model.TrackingAbsent {
		notifyType = model.NotifyAbsentStudent
		title = "缺考上报"
	}
	message := fmt.Sprintf("学生 %s（考试：%s）被上报 %s：%s", studentName, examTitle, tracking.Type, reason)

	s.appendNotification(ctx, tracking, *reporter.AdminID, notifyType, tracking.Priority, title, message)
}

// notifyEscalationTarget 升级通知：发给升级目标；失败仅记日志不阻断主流程
func (s *missingPaperService) notifyEscalationTarget(ctx context.Context, tracking *model.MissingPaperTracking, escalatedTo, reason string) {
	studentName := ""
	if tracking.Student != nil {
		studentName = tracking.Student.Name
	}
	examTitle := ""
	if tracking.Exam != nil {
		examTitle = tracking.Exam.Title
	}
	message := fmt.Sprintf("缺卷记录已升级至您处理（学生：%s，考试：%s）：%s", studentName, examTitle, reason)

	s.appendNotification(ctx, tracking, escalatedTo, model.NotifySystemAlert, tracking.Priority, "缺卷记录升级", message)
}

// appendNotification 写入单条通知并把 id 回写到记录的 NotificationIDs
func (s *missingPaperService) appendNotification(ctx context.Context, tracking *model.MissingPaperTracking, recipientID string, notifyType model.NotificationType, priority model.NotificationPriority, title, message string) {
	relatedType := "tracking"
	notification := &model.Notification{
		RecipientID: recipientID,
		Type:        notifyType,
		Priority:    priority,
		Status:      model.StatusUnread,
		Title:       title,
		Message:     message,
		RelatedType: &relatedType,
		RelatedID:   &tracking.TrackingID,
		IsActive:    true,
	}

	if err := s.repo.Notification.Create(ctx, notification); err != nil {
		s.logger.Error("缺卷通知写入失败",
			zap.String("tracking_id", tracking.TrackingID),
			zap.String("recipient_id", recipientID),
			zap.Error(err))
		return
	}

	tracking.NotificationIDs = append(tracking.NotificationIDs, notification.NotificationID)
	if err := s.repo.Tracking.Update(ctx, tracking); err != nil {
		s.logger.Error("回写通知关联失败",
			zap.String("tracking_id", tracking.TrackingID),
			zap.Error(err))
	}
}

// toMissingPaperResponse 将 model.MissingPaperTracking 转换为 dto.MissingPaperResponse
func (s *missingPaperService) toMissingPaperResponse(t *model.MissingPaperTracking) *dto.MissingPaperResponse {
	notificationIDs := []string(t.NotificationIDs)
	if notificationIDs == nil {
		notificationIDs = []string{}
	}

	resp := &dto.MissingPaperResponse{
		ID:               t.TrackingID,
		ExamID:           t.ExamID,
		StudentID:        t.StudentID,
		ClassID:          t.ClassID,
		SubjectID:        t.SubjectID,
		Type:             string(t.Type),
		Status:           string(t.Status),
		ReportedBy:       t.ReportedBy,
		ReportedAt:       t.ReportedAt.Format("2006-01-02T15:04:05Z"),
		Reason:           t.Reason,
		Details:          t.Details,
		AcknowledgedBy:   t.AcknowledgedBy,
		AcknowledgedAt:   formatTimePtr(t.AcknowledgedAt),
		AdminRemarks:     t.AdminRemarks,
		ResolvedBy:       t.ResolvedBy,
		ResolvedAt:       formatTimePtr(t.ResolvedAt),
		ResolutionNotes:  t.ResolutionNotes,
		EscalatedTo:      t.EscalatedTo,
		EscalatedAt:      formatTimePtr(t.EscalatedAt),
		EscalationReason: t.EscalationReason,
		Priority:         string(t.Priority),
		IsRedFlag:        t.IsRedFlag,
		RequiresAck:      t.RequiresAck,
		IsCompleted:      t.IsCompleted,
		CompletedAt:      formatTimePtr(t.CompletedAt),
		CompletionNotes:  t.CompletionNotes,
		AnswerSheetID:    t.AnswerSheetID,
		NotificationIDs:  notificationIDs,
		Version:          t.Version,
		CreatedAt:        t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        t.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if t.Exam != nil {
		resp.ExamTitle = t.Exam.Title
	}
	if t.Student != nil {
		resp.StudentName = t.Student.Name
	}
	return resp
}

// [自证通过] internal/service/missing_paper_service.go
