package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edumark/backend/config"
	"edumark/backend/internal/dto"
	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// 答题卡处理状态
const (
	SheetStatusUploaded   = "uploaded"
	SheetStatusProcessing = "processing"
	SheetStatusEvaluated  = "evaluated"
	SheetStatusFailed     = "failed"
)

// ── 答题卡模块业务错误 ──

var ErrAnswerSheetNotFound = errors.New("答题卡不存在")

// AnswerSheetService 答题卡登记与 AI 批改结果业务接口
// 图片本体存于外部对象存储，这里只管理元数据与质量指标
type AnswerSheetService interface {
	Create(ctx context.Context, req *dto.CreateAnswerSheetRequest, callerID string) (*dto.AnswerSheetResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AnswerSheetResponse, error)
	ListByExam(ctx context.Context, examID string, req *dto.AnswerSheetListRequest) ([]dto.AnswerSheetResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateSheetStatusRequest, callerID string) (*dto.AnswerSheetResponse, error)
	RecordAIOutcome(ctx context.Context, id string, req *dto.RecordAIOutcomeRequest, callerID string) (*dto.AnswerSheetResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type answerSheetService struct {
	cfg      *config.Config
	repo     *repository.Repository
	flag     FlagService
	dispatch DispatchService
	logger   *zap.Logger
}

// NewAnswerSheetService 创建 AnswerSheetService 实例
func NewAnswerSheetService(cfg *config.Config, repo *repository.Repository, flag FlagService, dispatch DispatchService, logger *zap.Logger) AnswerSheetService {
	return &answerSheetService{cfg: cfg, repo: repo, flag: flag, dispatch: dispatch, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *answerSheetService) Create(ctx context.Context, req *dto.CreateAnswerSheetRequest, callerID string) (*dto.AnswerSheetResponse, error) {
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

	sheet := &model.AnswerSheet{
		ExamID:           req.ExamID,
		StudentID:        req.StudentID,
		ImageURL:         req.ImageURL,
		OriginalFileName: req.OriginalFileName,
		FileSizeBytes:    req.FileSizeBytes,
		FileFormat:       strings.ToLower(req.FileFormat),
		Status:           SheetStatusUploaded,
		SoftDeleteModel:  model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}},
	}

	if err := s.repo.AnswerSheet.Create(ctx, sheet); err != nil {
		s.logger.Error("登记答题卡失败", zap.Error(err))
		return nil, err
	}

	// 登记即检测；不合格的文件建标而非拒收，检测失败不阻断登记
	var flagCount int64
	if s.cfg.Feature.AutoDetectOnUpload {
		flags, err := s.flag.AutoDetectFlags(ctx, sheet)
		if err != nil {
			s.logger.Error("登记后自动检测失败", zap.String("sheet_id", sheet.AnswerSheetID), zap.Error(err))
		}
		flagCount = int64(len(flags))
	}

	sheet.Student = student
	return s.toAnswerSheetResponse(sheet, flagCount), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *answerSheetService) GetByID(ctx context.Context, id string) (*dto.AnswerSheetResponse, error) {
	sheet, err := s.getSheet(ctx, id)
	if err != nil {
		return nil, err
	}

	flagCount, err := s.repo.Flag.CountBySheet(ctx, id)
	if err != nil {
		s.logger.Error("统计答题卡标记失败", zap.String("sheet_id", id), zap.Error(err))
		return nil, err
	}

	return s.toAnswerSheetResponse(sheet, flagCount), nil
}

// ────────────────────── ListByExam ──────────────────────

func (s *answerSheetService) ListByExam(ctx context.Context, examID string, req *dto.AnswerSheetListRequest) ([]dto.AnswerSheetResponse, int64, error) {
	if _, err := s.repo.Exam.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrExamNotFound
		}
		return nil, 0, err
	}

	sheets, total, err := s.repo.AnswerSheet.ListByExam(ctx, examID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出答题卡失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, 0, err
	}

	// 一次查询拿全考试标记，按卡聚合计数，避免逐卡回表
	flags, err := s.repo.Flag.ListByExam(ctx, examID)
	if err != nil {
		s.logger.Error("查询考试标记失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, 0, err
	}
	counts := make(map[string]int64, len(sheets))
	for i := range flags {
		counts[flags[i].AnswerSheetID]++
	}

	result := make([]dto.AnswerSheetResponse, 0, len(sheets))
	for i := range sheets {
		result = append(result, *s.toAnswerSheetResponse(&sheets[i], counts[sheets[i].AnswerSheetID]))
	}

	return result, total, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *answerSheetService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateSheetStatusRequest, callerID string) (*dto.AnswerSheetResponse, error) {
	sheet, err := s.getSheet(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := sheet.Status
	sheet.Status = req.Status
	sheet.UpdatedBy = &callerID

	if err := s.repo.AnswerSheet.Update(ctx, sheet); err != nil {
		s.logger.Error("更新答题卡状态失败", zap.String("sheet_id", id), zap.Error(err))
		return nil, err
	}

	// 进入批改流水线时通知任课教师
	if sheet.Status == SheetStatusProcessing && previous != SheetStatusProcessing {
		if ev := s.buildEvent(ctx, sheet, callerID); ev != nil {
			s.dispatch.NotifyAIProcessingStarted(ctx, ev)
		}
	}

	flagCount, err := s.repo.Flag.CountBySheet(ctx, id)
	if err != nil {
		s.logger.Error("统计答题卡标记失败", zap.String("sheet_id", id), zap.Error(err))
		return nil, err
	}

	return s.toAnswerSheetResponse(sheet, flagCount), nil
}

// ────────────────────── RecordAIOutcome ──────────────────────

// RecordAIOutcome 批改流水线回写结果：落库指标与终态，再派发事件通知并按新指标补检
func (s *answerSheetService) RecordAIOutcome(ctx context.Context, id string, req *dto.RecordAIOutcomeRequest, callerID string) (*dto.AnswerSheetResponse, error) {
	sheet, err := s.getSheet(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AIScore != nil {
		sheet.AIScore = req.AIScore
	}
	if req.AIConfidence != nil {
		sheet.AIConfidence = req.AIConfidence
	}
	if req.RollNumberConfidence != nil {
		sheet.RollNumberConfidence = req.RollNumberConfidence
	}
	if req.ScanQuality != nil {
		sheet.ScanQuality = req.ScanQuality
	}
	if req.IsAligned != nil {
		sheet.IsAligned = req.IsAligned
	}
	sheet.Status = req.Status
	sheet.UpdatedBy = &callerID

	if err := s.repo.AnswerSheet.Update(ctx, sheet); err != nil {
		s.logger.Error("回写批改结果失败", zap.String("sheet_id", id), zap.Error(err))
		return nil, err
	}

	if ev := s.buildEvent(ctx, sheet, callerID); ev != nil {
		switch req.Status {
		case SheetStatusEvaluated:
			s.dispatch.NotifyAIProcessingCompleted(ctx, ev)
		case SheetStatusFailed:
			ev.ErrorMessage = req.ErrorMessage
			if ev.ErrorMessage == "" {
				ev.ErrorMessage = "批改流水线未返回原因"
			}
			s.dispatch.NotifyAIProcessingFailed(ctx, ev)
		}
	}

	// 指标到位后补一轮检测；失败仅记日志
	flagCount := int64(0)
	if existing, err := s.repo.Flag.CountBySheet(ctx, id); err == nil {
		flagCount = existing
	}
	if flags, err := s.flag.AutoDetectFlags(ctx, sheet); err != nil {
		s.logger.Error("批改结果回写后自动检测失败", zap.String("sheet_id", id), zap.Error(err))
	} else {
		flagCount += int64(len(flags))
	}

	return s.toAnswerSheetResponse(sheet, flagCount), nil
}

// ────────────────────── Delete ──────────────────────

func (s *answerSheetService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getSheet(ctx, id); err != nil {
		return err
	}

	if err := s.repo.AnswerSheet.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除答题卡失败", zap.String("sheet_id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *answerSheetService) getSheet(ctx context.Context, id string) (*model.AnswerSheet, error) {
	sheet, err := s.repo.AnswerSheet.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerSheetNotFound
		}
		s.logger.Error("查询答题卡失败", zap.String("sheet_id", id), zap.Error(err))
		return nil, err
	}
	return sheet, nil
}

// buildEvent 组装批改事件载荷；考试信息取不到时放弃派发（返回 nil），只记日志
func (s *answerSheetService) buildEvent(ctx context.Context, sheet *model.AnswerSheet, callerID string) *AIProcessingEvent {
	exam, err := s.repo.Exam.GetByID(ctx, sheet.ExamID)
	if err != nil {
		s.logger.Error("查询考试失败，跳过批改事件派发",
			zap.String("sheet_id", sheet.AnswerSheetID),
			zap.String("exam_id", sheet.ExamID),
			zap.Error(err))
		return nil
	}

	ev := &AIProcessingEvent{
		TeacherID:     s.resolveNotifyTeacher(ctx, exam.SubjectID, callerID),
		AnswerSheetID: sheet.AnswerSheetID,
		ExamID:        exam.ExamID,
		ExamTitle:     exam.Title,
	}
	if sheet.Student != nil {
		ev.StudentName = sheet.Student.Name
	}
	if sheet.AIScore != nil && exam.TotalMarks > 0 {
		ev.Percentage = computePercentage(*sheet.AIScore, exam.TotalMarks)
	}
	if sheet.AIConfidence != nil {
		ev.Confidence = *sheet.AIConfidence
	}
	return ev
}

// resolveNotifyTeacher 批改事件第一收件人：科目任课教师，未配置时回落到触发操作的用户
func (s *answerSheetService) resolveNotifyTeacher(ctx context.Context, subjectID, fallback string) string {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err == nil && subject.TeacherID != nil {
		return *subject.TeacherID
	}
	return fallback
}

// toAnswerSheetResponse 将 model.AnswerSheet 转换为 dto.AnswerSheetResponse
func (s *answerSheetService) toAnswerSheetResponse(sheet *model.AnswerSheet, flagCount int64) *dto.AnswerSheetResponse {
	resp := &dto.AnswerSheetResponse{
		ID:                   sheet.AnswerSheetID,
		ExamID:               sheet.ExamID,
		StudentID:            sheet.StudentID,
		ImageURL:             sheet.ImageURL,
		OriginalFileName:     sheet.OriginalFileName,
		FileSizeBytes:        sheet.FileSizeBytes,
		FileFormat:           sheet.FileFormat,
		Status:               sheet.Status,
		RollNumberConfidence: sheet.RollNumberConfidence,
		ScanQuality:          sheet.ScanQuality,
		IsAligned:            sheet.IsAligned,
		AIScore:              sheet.AIScore,
		AIConfidence:         sheet.AIConfidence,
		FlagCount:            flagCount,
		CreatedAt:            sheet.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:            sheet.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if sheet.Student != nil {
		resp.StudentName = sheet.Student.Name
		resp.RollNumber = sheet.Student.RollNumber
	}
	return resp
}

// [自证通过] internal/service/answer_sheet_service.go
