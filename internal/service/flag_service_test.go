package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"edumark/backend/config"
	"edumark/backend/internal/dto"
	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestFlagService() (FlagService, *sheetTestMocks) {
	cfg := &config.Config{
		Detection: config.DetectionConfig{
			RollConfidenceMedium: 0.85,
			RollConfidenceHigh:   0.60,
			ScanQualityMin:       0.70,
			FileSizeMinBytes:     51200,
			FileSizeMaxBytes:     20971520,
			AllowedFormats:       []string{"jpg", "jpeg", "png", "pdf"},
		},
	}
	mocks := &sheetTestMocks{
		user:         newMockUserRepo(),
		subject:      newMockSubjectRepo(),
		student:      newMockStudentRepo(),
		exam:         newMockExamRepo(),
		sheet:        newMockAnswerSheetRepo(),
		flag:         newMockFlagRepo(),
		notification: newMockNotificationRepo(),
	}
	repo := &repository.Repository{
		User:         mocks.user,
		Subject:      mocks.subject,
		Student:      mocks.student,
		Exam:         mocks.exam,
		AnswerSheet:  mocks.sheet,
		Flag:         mocks.flag,
		Notification: mocks.notification,
	}
	return NewFlagService(cfg, repo, zap.NewNop()), mocks
}

func seedFlagSheet(mocks *sheetTestMocks, sheetID string) {
	mocks.sheet.sheets[sheetID] = &model.AnswerSheet{
		AnswerSheetID: sheetID, ExamID: "exam-001", StudentID: "stu-001",
		ImageURL: "https://cdn.example.com/sheets/" + sheetID + ".jpg",
		OriginalFileName: sheetID + ".jpg",
		FileSizeBytes:    204800, FileFormat: "jpg", Status: SheetStatusUploaded,
	}
	mocks.flag.sheetExam[sheetID] = "exam-001"
}

// ── AddFlag 测试 ──

func TestFlagService_AddFlag_IndexAssignment(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")

	first, err := svc.AddFlag(context.Background(), "sheet-001",
		&dto.AddFlagRequest{Type: "MANUAL_REVIEW", Severity: "MEDIUM", Description: "字迹潦草"}, "teacher-001")
	if err != nil {
		t.Fatalf("AddFlag 应成功: %v", err)
	}
	if first.FlagIndex != 0 {
		t.Errorf("首条标记序号应为 0，实际=%d", first.FlagIndex)
	}
	if first.AutoDetected {
		t.Error("人工标记不应标记为自动检测")
	}
	if first.DetectedBy != "teacher-001" {
		t.Errorf("期望检出者=teacher-001，实际=%s", first.DetectedBy)
	}

	second, err := svc.AddFlag(context.Background(), "sheet-001",
		&dto.AddFlagRequest{Type: "QUALITY_ISSUE", Severity: "LOW"}, "teacher-001")
	if err != nil {
		t.Fatalf("AddFlag 应成功: %v", err)
	}
	if second.FlagIndex != 1 {
		t.Errorf("第二条标记序号应为 1，实际=%d", second.FlagIndex)
	}
}

func TestFlagService_AddFlag_InvalidType(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")

	_, err := svc.AddFlag(context.Background(), "sheet-001",
		&dto.AddFlagRequest{Type: "NOT_A_TYPE", Severity: "HIGH"}, "teacher-001")
	if !errors.Is(err, ErrFlagTypeInvalid) {
		t.Errorf("期望 ErrFlagTypeInvalid，实际: %v", err)
	}
}

func TestFlagService_AddFlag_InvalidSeverity(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")

	_, err := svc.AddFlag(context.Background(), "sheet-001",
		&dto.AddFlagRequest{Type: "MANUAL_REVIEW", Severity: "EXTREME"}, "teacher-001")
	if !errors.Is(err, ErrFlagSeverityInvalid) {
		t.Errorf("期望 ErrFlagSeverityInvalid，实际: %v", err)
	}
}

func TestFlagService_AddFlag_SheetNotFound(t *testing.T) {
	svc, _ := setupTestFlagService()

	_, err := svc.AddFlag(context.Background(), "no-such-sheet",
		&dto.AddFlagRequest{Type: "MANUAL_REVIEW", Severity: "HIGH"}, "teacher-001")
	if !errors.Is(err, ErrAnswerSheetNotFound) {
		t.Errorf("期望 ErrAnswerSheetNotFound，实际: %v", err)
	}
}

// ── ResolveFlag 测试 ──

func TestFlagService_ResolveFlag_Success(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")
	if _, err := svc.AddFlag(context.Background(), "sheet-001",
		&dto.AddFlagRequest{Type: "POOR_SCAN_QUALITY", Severity: "HIGH"}, "teacher-001"); err != nil {
		t.Fatalf("AddFlag 应成功: %v", err)
	}

	resp, err := svc.ResolveFlag(context.Background(), "sheet-001", 0,
		&dto.ResolveFlagRequest{ResolutionNotes: "已重新扫描"}, "teacher-002")
	if err != nil {
		t.Fatalf("ResolveFlag 应成功: %v", err)
	}
	if resp.AlreadyResolved {
		t.Error("首次解除不应返回 already_resolved")
	}
	if !resp.Flag.Resolved {
		t.Error("标记应已解除")
	}
	if resp.Flag.ResolvedBy == nil || *resp.Flag.ResolvedBy != "teacher-002" {
		t.Errorf("期望解除者=teacher-002，实际=%v", resp.Flag.ResolvedBy)
	}
	if resp.Flag.AutoResolved {
		t.Error("人工解除不应标记为自动解除")
	}
	if resp.Flag.ResolutionNotes == nil || *resp.Flag.ResolutionNotes != "已重新扫描" {
		t.Errorf("解除备注未落库，实际=%v", resp.Flag.ResolutionNotes)
	}
}

func TestFlagService_ResolveFlag_Idempotent(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")
	if _, err := svc.AddFlag(context.Background(), "sheet-001",
		&dto.AddFlagRequest{Type: "MISALIGNMENT", Severity: "HIGH"}, "teacher-001"); err != nil {
		t.Fatalf("AddFlag 应成功: %v", err)
	}
	if _, err := svc.ResolveFlag(context.Background(), "sheet-001", 0,
		&dto.ResolveFlagRequest{}, "teacher-001"); err != nil {
		t.Fatalf("首次 ResolveFlag 应成功: %v", err)
	}

	// 重复解除幂等返回，且不改写首次解除者
	resp, err := svc.ResolveFlag(context.Background(), "sheet-001", 0,
		&dto.ResolveFlagRequest{}, "teacher-002")
	if err != nil {
		t.Fatalf("重复 ResolveFlag 应成功: %v", err)
	}
	if !resp.AlreadyResolved {
		t.Error("重复解除应返回 already_resolved")
	}
	if resp.Flag.ResolvedBy == nil || *resp.Flag.ResolvedBy != "teacher-001" {
		t.Errorf("首次解除者不应被改写，实际=%v", resp.Flag.ResolvedBy)
	}
}

func TestFlagService_ResolveFlag_IndexOutOfRange(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")

	_, err := svc.ResolveFlag(context.Background(), "sheet-001", 5,
		&dto.ResolveFlagRequest{}, "teacher-001")
	if !errors.Is(err, ErrFlagNotFound) {
		t.Errorf("期望 ErrFlagNotFound，实际: %v", err)
	}
}

// ── ResolveAllFlags 测试 ──

func TestFlagService_ResolveAllFlags_SkipsResolved(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")
	for _, ft := range []string{"POOR_SCAN_QUALITY", "MISALIGNMENT", "QUALITY_ISSUE"} {
		if _, err := svc.AddFlag(context.Background(), "sheet-001",
			&dto.AddFlagRequest{Type: ft, Severity: "MEDIUM"}, "teacher-001"); err != nil {
			t.Fatalf("AddFlag 应成功: %v", err)
		}
	}
	if _, err := svc.ResolveFlag(context.Background(), "sheet-001", 0,
		&dto.ResolveFlagRequest{}, "teacher-001"); err != nil {
		t.Fatalf("ResolveFlag 应成功: %v", err)
	}

	resp, err := svc.ResolveAllFlags(context.Background(), "sheet-001",
		&dto.ResolveAllFlagsRequest{ResolutionNotes: "批量复核完毕"}, "teacher-002")
	if err != nil {
		t.Fatalf("ResolveAllFlags 应成功: %v", err)
	}
	if resp.ResolvedCount != 2 {
		t.Errorf("已解除标记不应重复计数，期望=2，实际=%d", resp.ResolvedCount)
	}
}

// ── AutoDetectFlags 测试 ──

func TestFlagService_AutoDetect_RollConfidenceThresholds(t *testing.T) {
	cases := []struct {
		name         string
		rollConf     float64
		wantFlags    int
		wantSeverity model.FlagSeverity
	}{
		{"等于复核阈值不建标", 0.85, 0, ""},
		{"低于复核阈值建中危标", 0.84, 1, model.SeverityMedium},
		{"等于高风险阈值仍为中危", 0.60, 1, model.SeverityMedium},
		{"低于高风险阈值建高危标", 0.59, 1, model.SeverityHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mocks := setupTestFlagService()
			seedFlagSheet(mocks, "sheet-001")

			conf := tc.rollConf
			aligned := true
			quality := 0.90
			sheet := mocks.sheet.sheets["sheet-001"]
			sheet.RollNumberConfidence = &conf
			sheet.ScanQuality = &quality
			sheet.IsAligned = &aligned

			flags, err := svc.AutoDetectFlags(context.Background(), sheet)
			if err != nil {
				t.Fatalf("AutoDetectFlags 应成功: %v", err)
			}
			if len(flags) != tc.wantFlags {
				t.Fatalf("期望建标数=%d，实际=%d", tc.wantFlags, len(flags))
			}
			if tc.wantFlags > 0 {
				if flags[0].Type != string(model.FlagLowConfidenceRollNumber) {
					t.Errorf("期望标记类型=%s，实际=%s", model.FlagLowConfidenceRollNumber, flags[0].Type)
				}
				if flags[0].Severity != string(tc.wantSeverity) {
					t.Errorf("期望严重级别=%s，实际=%s", tc.wantSeverity, flags[0].Severity)
				}
			}
		})
	}
}

func TestFlagService_AutoDetect_CleanSheetNoFlags(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")

	conf := 0.98
	quality := 0.95
	aligned := true
	sheet := mocks.sheet.sheets["sheet-001"]
	sheet.RollNumberConfidence = &conf
	sheet.ScanQuality = &quality
	sheet.IsAligned = &aligned

	flags, err := svc.AutoDetectFlags(context.Background(), sheet)
	if err != nil {
		t.Fatalf("AutoDetectFlags 应成功: %v", err)
	}
	if len(flags) != 0 {
		t.Errorf("指标全部合格不应建标，实际=%d", len(flags))
	}
	if len(mocks.flag.flags) != 0 {
		t.Errorf("仓储中不应有标记，实际=%d", len(mocks.flag.flags))
	}
}

func TestFlagService_AutoDetect_OversizedAndBadFormat(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")

	sheet := mocks.sheet.sheets["sheet-001"]
	sheet.FileSizeBytes = 30 << 20 // 超过 20MB 上限
	sheet.FileFormat = "bmp"

	flags, err := svc.AutoDetectFlags(context.Background(), sheet)
	if err != nil {
		t.Fatalf("AutoDetectFlags 应成功: %v", err)
	}
	if len(flags) != 2 {
		t.Fatalf("超大文件与非法格式各建 1 标，期望=2，实际=%d", len(flags))
	}
	for _, f := range flags {
		if f.Type != string(model.FlagQualityIssue) {
			t.Errorf("期望标记类型=%s，实际=%s", model.FlagQualityIssue, f.Type)
		}
	}
}

func TestFlagService_AutoDetect_AppendsAfterExisting(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")
	if _, err := svc.AddFlag(context.Background(), "sheet-001",
		&dto.AddFlagRequest{Type: "MANUAL_REVIEW", Severity: "LOW"}, "teacher-001"); err != nil {
		t.Fatalf("AddFlag 应成功: %v", err)
	}

	aligned := false
	sheet := mocks.sheet.sheets["sheet-001"]
	sheet.IsAligned = &aligned

	flags, err := svc.AutoDetectFlags(context.Background(), sheet)
	if err != nil {
		t.Fatalf("AutoDetectFlags 应成功: %v", err)
	}
	if len(flags) != 1 {
		t.Fatalf("期望建标数=1，实际=%d", len(flags))
	}
	// 序号接在已有标记之后
	if flags[0].FlagIndex != 1 {
		t.Errorf("期望新标记序号=1，实际=%d", flags[0].FlagIndex)
	}
}

func TestFlagService_AutoDetectByID_UsesStoredMetrics(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")

	conf := 0.75
	mocks.sheet.sheets["sheet-001"].RollNumberConfidence = &conf

	flags, err := svc.AutoDetectByID(context.Background(), "sheet-001")
	if err != nil {
		t.Fatalf("AutoDetectByID 应成功: %v", err)
	}
	if len(flags) != 1 {
		t.Fatalf("期望建标数=1，实际=%d", len(flags))
	}
	if flags[0].Severity != string(model.SeverityMedium) {
		t.Errorf("期望严重级别=MEDIUM，实际=%s", flags[0].Severity)
	}
}

func TestFlagService_AutoDetectByID_SheetNotFound(t *testing.T) {
	svc, _ := setupTestFlagService()

	_, err := svc.AutoDetectByID(context.Background(), "no-such-sheet")
	if !errors.Is(err, ErrAnswerSheetNotFound) {
		t.Errorf("期望 ErrAnswerSheetNotFound，实际: %v", err)
	}
}

// ── GetFlagStatistics 测试 ──

func TestFlagService_GetFlagStatistics(t *testing.T) {
	svc, mocks := setupTestFlagService()
	mocks.exam.exams["exam-001"] = &model.Exam{
		ExamID: "exam-001", Title: "期中考试", SubjectID: "subj-001", ClassID: "class-001",
		Status: "completed", TotalMarks: 100,
	}
	seedFlagSheet(mocks, "sheet-001")
	seedFlagSheet(mocks, "sheet-002")

	created := time.Date(2026, 11, 10, 12, 0, 0, 0, time.UTC)
	resolvedAt := created.Add(2 * time.Hour)
	resolver := "teacher-001"
	mocks.flag.flags = append(mocks.flag.flags,
		model.AnswerSheetFlag{
			FlagID: "flag-1", AnswerSheetID: "sheet-001", FlagIndex: 0,
			Type: model.FlagPoorScanQuality, Severity: model.SeverityHigh,
			Resolved: true, ResolvedBy: &resolver, ResolvedAt: &resolvedAt,
			BaseModel: model.BaseModel{CreatedAt: created},
		},
		model.AnswerSheetFlag{
			FlagID: "flag-2", AnswerSheetID: "sheet-001", FlagIndex: 1,
			Type: model.FlagMisalignment, Severity: model.SeverityCritical,
			BaseModel: model.BaseModel{CreatedAt: created},
		},
		model.AnswerSheetFlag{
			FlagID: "flag-3", AnswerSheetID: "sheet-002", FlagIndex: 0,
			Type: model.FlagPoorScanQuality, Severity: model.SeverityMedium,
			BaseModel: model.BaseModel{CreatedAt: created},
		},
		model.AnswerSheetFlag{
			FlagID: "flag-4", AnswerSheetID: "sheet-002", FlagIndex: 1,
			Type: model.FlagQualityIssue, Severity: model.SeverityLow,
			BaseModel: model.BaseModel{CreatedAt: created},
		},
	)

	stats, err := svc.GetFlagStatistics(context.Background(), "exam-001")
	if err != nil {
		t.Fatalf("GetFlagStatistics 应成功: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("期望total=4，实际=%d", stats.Total)
	}
	if stats.Resolved != 1 || stats.Unresolved != 3 {
		t.Errorf("期望resolved=1/unresolved=3，实际=%d/%d", stats.Resolved, stats.Unresolved)
	}
	if stats.Resolved+stats.Unresolved != stats.Total {
		t.Error("resolved + unresolved 应恒等于 total")
	}
	if stats.Critical != 1 {
		t.Errorf("期望critical=1，实际=%d", stats.Critical)
	}
	if stats.ByType[string(model.FlagPoorScanQuality)] != 2 {
		t.Errorf("期望扫描质量标记=2，实际=%d", stats.ByType[string(model.FlagPoorScanQuality)])
	}
	if stats.BySeverity[string(model.SeverityHigh)] != 1 {
		t.Errorf("期望HIGH=1，实际=%d", stats.BySeverity[string(model.SeverityHigh)])
	}
	if stats.ResolutionRate != 0.25 {
		t.Errorf("期望解除率=0.25，实际=%f", stats.ResolutionRate)
	}
	if stats.AvgResolutionSeconds != 7200 {
		t.Errorf("期望平均解除耗时=7200秒，实际=%f", stats.AvgResolutionSeconds)
	}
}

func TestFlagService_GetFlagStatistics_ExamNotFound(t *testing.T) {
	svc, _ := setupTestFlagService()

	_, err := svc.GetFlagStatistics(context.Background(), "no-such-exam")
	if !errors.Is(err, ErrExamNotFound) {
		t.Errorf("期望 ErrExamNotFound，实际: %v", err)
	}
}

func TestFlagService_ListExamFlags(t *testing.T) {
	svc, mocks := setupTestFlagService()
	mocks.exam.exams["exam-001"] = &model.Exam{
		ExamID: "exam-001", Title: "期中考试", SubjectID: "subj-001", ClassID: "class-001",
		Status: "completed", TotalMarks: 100,
	}
	seedFlagSheet(mocks, "sheet-001")
	seedFlagSheet(mocks, "sheet-002")
	for _, sheetID := range []string{"sheet-001", "sheet-002"} {
		if _, err := svc.AddFlag(context.Background(), sheetID,
			&dto.AddFlagRequest{Type: "POOR_SCAN_QUALITY", Severity: "HIGH"}, "teacher-001"); err != nil {
			t.Fatalf("AddFlag 应成功: %v", err)
		}
	}

	flags, err := svc.ListExamFlags(context.Background(), "exam-001")
	if err != nil {
		t.Fatalf("ListExamFlags 应成功: %v", err)
	}
	if len(flags) != 2 {
		t.Errorf("期望标记数=2，实际=%d", len(flags))
	}

	if _, err := svc.ListExamFlags(context.Background(), "no-such-exam"); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("期望 ErrExamNotFound，实际: %v", err)
	}
}

// ── BulkResolveFlags 测试 ──

func TestFlagService_BulkResolve_PartialFailure(t *testing.T) {
	svc, mocks := setupTestFlagService()
	seedFlagSheet(mocks, "sheet-001")
	if _, err := svc.AddFlag(context.Background(), "sheet-001",
		&dto.AddFlagRequest{Type: "POOR_SCAN_QUALITY", Severity: "HIGH"}, "teacher-001"); err != nil {
		t.Fatalf("AddFlag 应成功: %v", err)
	}

	resp, err := svc.BulkResolveFlags(context.Background(), &dto.BulkResolveFlagsRequest{
		AnswerSheetIDs:  []string{"sheet-001", "no-such-sheet"},
		ResolutionNotes: "批量处理",
	}, "teacher-002")
	if err != nil {
		t.Fatalf("BulkResolveFlags 应成功: %v", err)
	}
	if resp.SuccessCount != 1 || resp.FailureCount != 1 {
		t.Errorf("期望成功=1/失败=1，实际=%d/%d", resp.SuccessCount, resp.FailureCount)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("期望逐项结果=2，实际=%d", len(resp.Results))
	}
	if !resp.Results[0].OK || resp.Results[0].ResolvedCount != 1 {
		t.Errorf("sheet-001 应解除 1 条，实际=%+v", resp.Results[0])
	}
	if resp.Results[1].OK || resp.Results[1].Error == "" {
		t.Errorf("不存在的卡应记失败原因，实际=%+v", resp.Results[1])
	}
}
