package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edumark/backend/config"
	"edumark/backend/internal/dto"
	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// systemActor 自动检测与自动解除写入的操作者标识
const systemActor = "system"

// ── 标记模块业务错误 ──

var (
	ErrFlagNotFound        = errors.New("标记不存在或序号越界")
	ErrFlagTypeInvalid     = errors.New("标记类型无效")
	ErrFlagSeverityInvalid = errors.New("标记严重级别无效")
)

// FlagService 答题卡质量标记业务接口
// 标记只追加、只解除、永不物理删除；(answer_sheet_id, flag_index) 定位单条
type FlagService interface {
	AddFlag(ctx context.Context, sheetID string, req *dto.AddFlagRequest, detectedBy string) (*dto.FlagResponse, error)
	GetAnswerSheetFlags(ctx context.Context, sheetID string) ([]dto.FlagResponse, error)
	ResolveFlag(ctx context.Context, sheetID string, flagIndex int, req *dto.ResolveFlagRequest, resolvedBy string) (*dto.ResolveFlagResponse, error)
	ResolveAllFlags(ctx context.Context, sheetID string, req *dto.ResolveAllFlagsRequest, resolvedBy string) (*dto.ResolveAllFlagsResponse, error)
	AutoDetectFlags(ctx context.Context, sheet *model.AnswerSheet) ([]dto.FlagResponse, error)
	AutoDetectByID(ctx context.Context, sheetID string) ([]dto.FlagResponse, error)
	ListExamFlags(ctx context.Context, examID string) ([]dto.FlagResponse, error)
	GetFlagStatistics(ctx context.Context, examID string) (*dto.FlagStatisticsResponse, error)
	BulkResolveFlags(ctx context.Context, req *dto.BulkResolveFlagsRequest, resolvedBy string) (*dto.BulkResolveFlagsResponse, error)
}

type flagService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewFlagService 创建 FlagService 实例
func NewFlagService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) FlagService {
	return &flagService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── AddFlag ──────────────────────

func (s *flagService) AddFlag(ctx context.Context, sheetID string, req *dto.AddFlagRequest, detectedBy string) (*dto.FlagResponse, error) {
	if !model.ValidFlagType(model.FlagType(req.Type)) {
		return nil, ErrFlagTypeInvalid
	}
	if !model.ValidFlagSeverity(model.FlagSeverity(req.Severity)) {
		return nil, ErrFlagSeverityInvalid
	}

	if _, err := s.repo.AnswerSheet.GetByID(ctx, sheetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerSheetNotFound
		}
		return nil, err
	}

	// 卡内序号从 0 递增；标记永不删除，计数即下一序号
	count, err := s.repo.Flag.CountBySheet(ctx, sheetID)
	if err != nil {
		s.logger.Error("统计答题卡标记失败", zap.String("sheet_id", sheetID), zap.Error(err))
		return nil, err
	}

	flag := &model.AnswerSheetFlag{
		AnswerSheetID: sheetID,
		FlagIndex:     int(count),
		Type:          model.FlagType(req.Type),
		Severity:      model.FlagSeverity(req.Severity),
		Description:   req.Description,
		DetectedBy:    detectedBy,
		AutoDetected:  false,
	}

	if err := s.repo.Flag.Create(ctx, flag); err != nil {
		s.logger.Error("创建标记失败", zap.String("sheet_id", sheetID), zap.Error(err))
		return nil, err
	}

	return s.toFlagResponse(flag), nil
}

// ────────────────────── GetAnswerSheetFlags ──────────────────────

func (s *flagService) GetAnswerSheetFlags(ctx context.Context, sheetID string) ([]dto.FlagResponse, error) {
	if _, err := s.repo.AnswerSheet.GetByID(ctx, sheetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerSheetNotFound
		}
		return nil, err
	}

	flags, err := s.repo.Flag.ListBySheet(ctx, sheetID)
	if err != nil {
		s.logger.Error("查询答题卡标记失败", zap.String("sheet_id", sheetID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.FlagResponse, 0, len(flags))
	for i := range flags {
		result = append(result, *s.toFlagResponse(&flags[i]))
	}

	return result, nil
}

// ────────────────────── ResolveFlag ──────────────────────

// ResolveFlag 幂等解除：对已解除标记重复调用返回 already_resolved 而非报错。
// 落库走条件更新（WHERE resolved = false），并发双解除只会有一方真正写入。
func (s *flagService) ResolveFlag(ctx context.Context, sheetID string, flagIndex int, req *dto.ResolveFlagRequest, resolvedBy string) (*dto.ResolveFlagResponse, error) {
	if _, err := s.repo.AnswerSheet.GetByID(ctx, sheetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerSheetNotFound
		}
		return nil, err
	}

	flag, err := s.repo.Flag.GetBySheetAndIndex(ctx, sheetID, flagIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlagNotFound
		}
		s.logger.Error("查询标记失败", zap.String("sheet_id", sheetID), zap.Int("flag_index", flagIndex), zap.Error(err))
		return nil, err
	}

	if flag.Resolved {
		return &dto.ResolveFlagResponse{Flag: *s.toFlagResponse(flag), AlreadyResolved: true}, nil
	}

	var notes *string
	if req.ResolutionNotes != "" {
		notes = &req.ResolutionNotes
	}
	autoResolved := resolvedBy == systemActor
	now := time.Now()

	affected, err := s.repo.Flag.Resolve(ctx, sheetID, flagIndex, resolvedBy, notes, autoResolved, now)
	if err != nil {
		s.logger.Error("解除标记失败", zap.String("sheet_id", sheetID), zap.Int("flag_index", flagIndex), zap.Error(err))
		return nil, err
	}
	if affected == 0 {
		// 并发竞争中他人已先解除，重读后按已解除返回
		reloaded, err := s.repo.Flag.GetBySheetAndIndex(ctx, sheetID, flagIndex)
		if err != nil {
			return nil, err
		}
		return &dto.ResolveFlagResponse{Flag: *s.toFlagResponse(reloaded), AlreadyResolved: true}, nil
	}

	flag.Resolved = true
	flag.ResolvedBy = &resolvedBy
	flag.ResolvedAt = &now
	flag.ResolutionNotes = notes
	flag.AutoResolved = autoResolved

	return &dto.ResolveFlagResponse{Flag: *s.toFlagResponse(flag), AlreadyResolved: false}, nil
}

// ────────────────────── ResolveAllFlags ──────────────────────

func (s *flagService) ResolveAllFlags(ctx context.Context, sheetID string, req *dto.ResolveAllFlagsRequest, resolvedBy string) (*dto.ResolveAllFlagsResponse, error) {
	if _, err := s.repo.AnswerSheet.GetByID(ctx, sheetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerSheetNotFound
		}
		return nil, err
	}

	var notes *string
	if req.ResolutionNotes != "" {
		notes = &req.ResolutionNotes
	}

	count, err := s.repo.Flag.ResolveAllBySheet(ctx, sheetID, resolvedBy, notes, resolvedBy == systemActor, time.Now())
	if err != nil {
		s.logger.Error("全量解除标记失败", zap.String("sheet_id", sheetID), zap.Error(err))
		return nil, err
	}

	return &dto.ResolveAllFlagsResponse{ResolvedCount: count}, nil
}

// ────────────────────── AutoDetectFlags ──────────────────────

// AutoDetectFlags 按配置阈值对答题卡质量指标执行启发式检测，返回新建标记。
// 不做去重：对已解除问题重复检测会再次建标，由人工复核闭环。
func (s *flagService) AutoDetectFlags(ctx context.Context, sheet *model.AnswerSheet) ([]dto.FlagResponse, error) {
	det := s.cfg.Detection

	type candidate struct {
		flagType    model.FlagType
		severity    model.FlagSeverity
		description string
	}
	var candidates []candidate

	if sheet.RollNumberConfidence != nil {
		switch conf := *sheet.RollNumberConfidence; {
		case conf < det.RollConfidenceHigh:
			candidates = append(candidates, candidate{
				flagType: model.FlagLowConfidenceRollNumber,
				severity: model.SeverityHigh,
				description: fmt.Sprintf("学号识别置信度 %.2f，低于高风险阈值 %.2f，须人工核对学号",
					conf, det.RollConfidenceHigh),
			})
		case conf < det.RollConfidenceMedium:
			candidates = append(candidates, candidate{
				flagType: model.FlagLowConfidenceRollNumber,
				severity: model.SeverityMedium,
				description: fmt.Sprintf("学号识别置信度 %.2f，低于复核阈值 %.2f",
					conf, det.RollConfidenceMedium),
			})
		}
	}

	if sheet.ScanQuality != nil && *sheet.ScanQuality < det.ScanQualityMin {
		candidates = append(candidates, candidate{
			flagType: model.FlagPoorScanQuality,
			severity: model.SeverityHigh,
			description: fmt.Sprintf("扫描质量评分 %.2f，低于下限 %.2f，建议重新扫描",
				*sheet.ScanQuality, det.ScanQualityMin),
		})
	}

	if sheet.IsAligned != nil && !*sheet.IsAligned {
		candidates = append(candidates, candidate{
			flagType:    model.FlagMisalignment,
			severity:    model.SeverityHigh,
			description: "定位点未对齐，无法可靠切分答题区域",
		})
	}

	if sheet.FileSizeBytes > 0 && sheet.FileSizeBytes < det.FileSizeMinBytes {
		candidates = append(candidates, candidate{
			flagType: model.FlagQualityIssue,
			severity: model.SeverityMedium,
			description: fmt.Sprintf("文件大小 %d 字节，低于下限 %d，疑似截断",
				sheet.FileSizeBytes, det.FileSizeMinBytes),
		})
	} else if sheet.FileSizeBytes > det.FileSizeMaxBytes {
		candidates = append(candidates, candidate{
			flagType: model.FlagQualityIssue,
			severity: model.SeverityMedium,
			description: fmt.Sprintf("文件大小 %d 字节，超过上限 %d",
				sheet.FileSizeBytes, det.FileSizeMaxBytes),
		})
	}

	if sheet.FileFormat != "" && !formatAllowed(sheet.FileFormat, det.AllowedFormats) {
		candidates = append(candidates, candidate{
			flagType:    model.FlagQualityIssue,
			severity:    model.SeverityMedium,
			description: fmt.Sprintf("文件格式 %q 不在允许列表内", sheet.FileFormat),
		})
	}

	if len(candidates) == 0 {
		return []dto.FlagResponse{}, nil
	}

	count, err := s.repo.Flag.CountBySheet(ctx, sheet.AnswerSheetID)
	if err != nil {
		s.logger.Error("统计答题卡标记失败", zap.String("sheet_id", sheet.AnswerSheetID), zap.Error(err))
		return nil, err
	}

	created := make([]dto.FlagResponse, 0, len(candidates))
	for i, c := range candidates {
		flag := &model.AnswerSheetFlag{
			AnswerSheetID: sheet.AnswerSheetID,
			FlagIndex:     int(count) + i,
			Type:          c.flagType,
			Severity:      c.severity,
			Description:   c.description,
			DetectedBy:    systemActor,
			AutoDetected:  true,
		}
		if err := s.repo.Flag.Create(ctx, flag); err != nil {
			s.logger.Error("写入自动检测标记失败",
				zap.String("sheet_id", sheet.AnswerSheetID),
				zap.String("type", string(c.flagType)),
				zap.Error(err))
			return created, err
		}
		created = append(created, *s.toFlagResponse(flag))
	}

	return created, nil
}

// ────────────────────── AutoDetectByID ──────────────────────

// AutoDetectByID 手动触发指定答题卡的质量检测，检测依据为卡上已登记的质量指标
func (s *flagService) AutoDetectByID(ctx context.Context, sheetID string) ([]dto.FlagResponse, error) {
	sheet, err := s.repo.AnswerSheet.GetByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerSheetNotFound
		}
		return nil, err
	}
	return s.AutoDetectFlags(ctx, sheet)
}

// ────────────────────── ListExamFlags ──────────────────────

// ListExamFlags 列出某场考试全部答题卡的标记，供看板按卡定位问题
func (s *flagService) ListExamFlags(ctx context.Context, examID string) ([]dto.FlagResponse, error) {
	if _, err := s.repo.Exam.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	flags, err := s.repo.Flag.ListByExam(ctx, examID)
	if err != nil {
		s.logger.Error("查询考试标记失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.FlagResponse, 0, len(flags))
	for i := range flags {
		result = append(result, *s.toFlagResponse(&flags[i]))
	}

	return result, nil
}

// ────────────────────── GetFlagStatistics ──────────────────────

// GetFlagStatistics 考试维度聚合：在内存中遍历该考试全部标记统计。
// resolved + unresolved == total 恒成立；resolution_rate = resolved/total，total=0 时为 0
func (s *flagService) GetFlagStatistics(ctx context.Context, examID string) (*dto.FlagStatisticsResponse, error) {
	if _, err := s.repo.Exam.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	flags, err := s.repo.Flag.ListByExam(ctx, examID)
	if err != nil {
		s.logger.Error("查询考试标记失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, err
	}

	stats := &dto.FlagStatisticsResponse{
		ExamID:     examID,
		ByType:     make(map[string]int64),
		BySeverity: make(map[string]int64),
	}

	var resolutionSecondsSum float64
	for i := range flags {
		f := &flags[i]
		stats.Total++
		stats.ByType[string(f.Type)]++
		stats.BySeverity[string(f.Severity)]++
		if f.Severity == model.SeverityCritical {
			stats.Critical++
		}
		if f.Resolved {
			stats.Resolved++
			if f.ResolvedAt != nil {
				resolutionSecondsSum += f.ResolvedAt.Sub(f.CreatedAt).Seconds()
			}
		}
	}

	stats.Unresolved = stats.Total - stats.Resolved
	if stats.Resolved > 0 {
		stats.AvgResolutionSeconds = resolutionSecondsSum / float64(stats.Resolved)
	}
	if stats.Total > 0 {
		stats.ResolutionRate = float64(stats.Resolved) / float64(stats.Total)
	}

	return stats, nil
}

// ────────────────────── BulkResolveFlags ──────────────────────

// BulkResolveFlags 跨多张答题卡批量解除：单项失败不中断批次，逐项收集结果
func (s *flagService) BulkResolveFlags(ctx context.Context, req *dto.BulkResolveFlagsRequest, resolvedBy string) (*dto.BulkResolveFlagsResponse, error) {
	var notes *string
	if req.ResolutionNotes != "" {
		notes = &req.ResolutionNotes
	}
	autoResolved := resolvedBy == systemActor

	resp := &dto.BulkResolveFlagsResponse{
		Results: make([]dto.BulkResolveItemResult, 0, len(req.AnswerSheetIDs)),
	}

	for _, sheetID := range req.AnswerSheetIDs {
		item := dto.BulkResolveItemResult{AnswerSheetID: sheetID}

		if _, err := s.repo.AnswerSheet.GetByID(ctx, sheetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				item.Error = ErrAnswerSheetNotFound.Error()
			} else {
				item.Error = err.Error()
			}
			resp.FailureCount++
			resp.Results = append(resp.Results, item)
			continue
		}

		count, err := s.repo.Flag.ResolveAllBySheet(ctx, sheetID, resolvedBy, notes, autoResolved, time.Now())
		if err != nil {
			s.logger.Error("批量解除标记单项失败", zap.String("sheet_id", sheetID), zap.Error(err))
			item.Error = err.Error()
			resp.FailureCount++
			resp.Results = append(resp.Results, item)
			continue
		}

		item.OK = true
		item.ResolvedCount = count
		resp.SuccessCount++
		resp.Results = append(resp.Results, item)
	}

	return resp, nil
}

// ── 内部辅助方法 ──

// formatAllowed 文件格式白名单判定
func formatAllowed(format string, allowed []string) bool {
	for _, a := range allowed {
		if a == format {
			return true
		}
	}
	return false
}

// toFlagResponse 将 model.AnswerSheetFlag 转换为 dto.FlagResponse
func (s *flagService) toFlagResponse(f *model.AnswerSheetFlag) *dto.FlagResponse {
	return &dto.FlagResponse{
		ID:              f.FlagID,
		AnswerSheetID:   f.AnswerSheetID,
		FlagIndex:       f.FlagIndex,
		Type:            string(f.Type),
		Severity:        string(f.Severity),
		Description:     f.Description,
		DetectedBy:      f.DetectedBy,
		AutoDetected:    f.AutoDetected,
		Resolved:        f.Resolved,
		ResolvedBy:      f.ResolvedBy,
		ResolvedAt:      formatTimePtr(f.ResolvedAt),
		ResolutionNotes: f.ResolutionNotes,
		AutoResolved:    f.AutoResolved,
		CreatedAt:       f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// [自证通过] internal/service/flag_service.go
