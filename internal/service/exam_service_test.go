package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// ── 测试辅助 ──

type examTestMocks struct {
	exam     *mockExamRepo
	subject  *mockSubjectRepo
	class    *mockClassRepo
	question *mockQuestionRepo
	result   *mockResultRepo
	sheet    *mockAnswerSheetRepo
	tracking *mockTrackingRepo
}

func setupTestExamService() (ExamService, *examTestMocks) {
	mocks := &examTestMocks{
		exam:     newMockExamRepo(),
		subject:  newMockSubjectRepo(),
		class:    newMockClassRepo(),
		question: newMockQuestionRepo(),
		result:   newMockResultRepo(),
		sheet:    newMockAnswerSheetRepo(),
		tracking: newMockTrackingRepo(),
	}
	repo := &repository.Repository{
		Exam:        mocks.exam,
		Subject:     mocks.subject,
		Class:       mocks.class,
		Question:    mocks.question,
		Result:      mocks.result,
		AnswerSheet: mocks.sheet,
		Tracking:    mocks.tracking,
	}
	svc := NewExamService(repo, zap.NewNop())
	return svc, mocks
}

func seedExamFixtures(mocks *examTestMocks) {
	mocks.class.classes["class-001"] = &model.Class{
		ClassID: "class-001", Name: "三年级一班", GradeLevel: 3, AcademicYear: "2026-2027",
	}
	mocks.subject.subjects["subj-001"] = &model.Subject{
		SubjectID: "subj-001", Name: "数学", Code: "MATH-301", ClassID: "class-001",
	}
}

// ── Create 测试 ──

func TestExamService_Create_Success(t *testing.T) {
	svc, mocks := setupTestExamService()
	seedExamFixtures(mocks)

	req := &dto.CreateExamRequest{
		Title:      "期中考试",
		SubjectID:  "subj-001",
		ClassID:    "class-001",
		StartAt:    "2026-11-10T09:00:00Z",
		EndAt:      "2026-11-10T11:00:00Z",
		TotalMarks: 100,
	}

	result, err := svc.Create(context.Background(), req, "teacher-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != "draft" {
		t.Errorf("新建考试应为 draft，实际=%s", result.Status)
	}
	if result.StartAt != "2026-11-10T09:00:00Z" {
		t.Errorf("StartAt 往返不一致，实际=%s", result.StartAt)
	}
	if result.TotalMarks != 100 {
		t.Errorf("期望TotalMarks=100，实际=%d", result.TotalMarks)
	}
}

func TestExamService_Create_EndBeforeStart(t *testing.T) {
	svc, mocks := setupTestExamService()
	seedExamFixtures(mocks)

	req := &dto.CreateExamRequest{
		Title:      "期中考试",
		SubjectID:  "subj-001",
		ClassID:    "class-001",
		StartAt:    "2026-11-10T11:00:00Z",
		EndAt:      "2026-11-10T09:00:00Z",
		TotalMarks: 100,
	}

	_, err := svc.Create(context.Background(), req, "teacher-001")
	if !errors.Is(err, ErrExamTimeInvalid) {
		t.Errorf("期望 ErrExamTimeInvalid，实际: %v", err)
	}
}

func TestExamService_Create_BadTimeFormat(t *testing.T) {
	svc, mocks := setupTestExamService()
	seedExamFixtures(mocks)

	req := &dto.CreateExamRequest{
		Title:      "期中考试",
		SubjectID:  "subj-001",
		ClassID:    "class-001",
		StartAt:    "2026-11-10 09:00",
		EndAt:      "2026-11-10T11:00:00Z",
		TotalMarks: 100,
	}

	_, err := svc.Create(context.Background(), req, "teacher-001")
	if !errors.Is(err, ErrExamTimeInvalid) {
		t.Errorf("期望 ErrExamTimeInvalid，实际: %v", err)
	}
}

func TestExamService_Create_SubjectClassMismatch(t *testing.T) {
	svc, mocks := setupTestExamService()
	seedExamFixtures(mocks)
	mocks.class.classes["class-002"] = &model.Class{
		ClassID: "class-002", Name: "三年级二班", GradeLevel: 3, AcademicYear: "2026-2027",
	}

	// subj-001 属于 class-001，却要在 class-002 开考
	req := &dto.CreateExamRequest{
		Title:      "期中考试",
		SubjectID:  "subj-001",
		ClassID:    "class-002",
		StartAt:    "2026-11-10T09:00:00Z",
		EndAt:      "2026-11-10T11:00:00Z",
		TotalMarks: 100,
	}

	_, err := svc.Create(context.Background(), req, "teacher-001")
	if !errors.Is(err, ErrSubjectClassMismatch) {
		t.Errorf("期望 ErrSubjectClassMismatch，实际: %v", err)
	}
}

func TestExamService_Create_SubjectNotFound(t *testing.T) {
	svc, mocks := setupTestExamService()
	seedExamFixtures(mocks)

	req := &dto.CreateExamRequest{
		Title:      "期中考试",
		SubjectID:  "no-such-subject",
		ClassID:    "class-001",
		StartAt:    "2026-11-10T09:00:00Z",
		EndAt:      "2026-11-10T11:00:00Z",
		TotalMarks: 100,
	}

	_, err := svc.Create(context.Background(), req, "teacher-001")
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("期望 ErrSubjectNotFound，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestExamService_Update_RevalidatesTimes(t *testing.T) {
	svc, mocks := setupTestExamService()
	seedExamFixtures(mocks)
	mocks.exam.exams["exam-001"] = &model.Exam{
		ExamID:     "exam-001",
		Title:      "期中考试",
		SubjectID:  "subj-001",
		ClassID:    "class-001",
		StartAt:    time.Date(2026, 11, 10, 9, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2026, 11, 10, 11, 0, 0, 0, time.UTC),
		TotalMarks: 100,
		Status:     "draft",
	}

	// 仅把结束时间改到开始之前
	badEnd := "2026-11-10T08:00:00Z"
	_, err := svc.Update(context.Background(), "exam-001", &dto.UpdateExamRequest{
		EndAt: &badEnd,
	}, "teacher-001")
	if !errors.Is(err, ErrExamTimeInvalid) {
		t.Errorf("期望 ErrExamTimeInvalid，实际: %v", err)
	}
}

func TestExamService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestExamService()

	newTitle := "改名"
	_, err := svc.Update(context.Background(), "no-such-exam", &dto.UpdateExamRequest{
		Title: &newTitle,
	}, "teacher-001")
	if !errors.Is(err, ErrExamNotFound) {
		t.Errorf("期望 ErrExamNotFound，实际: %v", err)
	}
}

// ── Delete 级联测试 ──

func TestExamService_Delete_Cascades(t *testing.T) {
	svc, mocks := setupTestExamService()
	seedExamFixtures(mocks)
	mocks.exam.exams["exam-001"] = &model.Exam{
		ExamID: "exam-001", Title: "期中考试", SubjectID: "subj-001", ClassID: "class-001",
		StartAt: time.Date(2026, 11, 10, 9, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 11, 10, 11, 0, 0, 0, time.UTC),
		Status:  "scheduled", TotalMarks: 100,
	}
	mocks.question.questions["q-001"] = &model.Question{QuestionID: "q-001", ExamID: "exam-001", Number: 1}
	mocks.result.results["res-001"] = &model.Result{ResultID: "res-001", ExamID: "exam-001", StudentID: "stu-001"}
	mocks.sheet.sheets["sheet-001"] = &model.AnswerSheet{AnswerSheetID: "sheet-001", ExamID: "exam-001", StudentID: "stu-001"}
	mocks.tracking.items = append(mocks.tracking.items, model.MissingPaperTracking{
		TrackingID: "trk-001", ExamID: "exam-001", StudentID: "stu-001",
		Type: model.TrackingAbsent, Status: model.TrackingReported, IsActive: true,
		VersionedModel: model.VersionedModel{Version: 1},
	})

	if err := svc.Delete(context.Background(), "exam-001", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	if _, ok := mocks.exam.exams["exam-001"]; ok {
		t.Error("考试应被删除")
	}
	if len(mocks.question.questions) != 0 {
		t.Error("试题应随考试级联删除")
	}
	if len(mocks.result.results) != 0 {
		t.Error("成绩应随考试级联删除")
	}
	if len(mocks.sheet.sheets) != 0 {
		t.Error("答题卡应随考试级联删除")
	}
	// 追踪记录归档而非删除
	if len(mocks.tracking.items) != 1 {
		t.Fatalf("追踪记录不应被物理删除，实际条数=%d", len(mocks.tracking.items))
	}
	if mocks.tracking.items[0].IsActive {
		t.Error("追踪记录应被归档（IsActive=false）")
	}
}

func TestExamService_Delete_NotFound(t *testing.T) {
	svc, _ := setupTestExamService()

	err := svc.Delete(context.Background(), "no-such-exam", "admin-001")
	if !errors.Is(err, ErrExamNotFound) {
		t.Errorf("期望 ErrExamNotFound，实际: %v", err)
	}
}
