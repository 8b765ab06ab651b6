package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestClassService() (ClassService, *mockClassRepo, *mockUserRepo) {
	classRepo := newMockClassRepo()
	userRepo := newMockUserRepo()
	repo := &repository.Repository{
		Class: classRepo,
		User:  userRepo,
	}
	svc := NewClassService(repo, zap.NewNop())
	return svc, classRepo, userRepo
}

// ── Create 测试 ──

func TestClassService_Create_Success(t *testing.T) {
	svc, _, _ := setupTestClassService()

	req := &dto.CreateClassRequest{
		Name:         "三年级一班",
		GradeLevel:   3,
		Section:      "A",
		AcademicYear: "2026-2027",
	}

	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "三年级一班" {
		t.Errorf("期望Name=三年级一班，实际=%s", result.Name)
	}
	if result.GradeLevel != 3 {
		t.Errorf("期望GradeLevel=3，实际=%d", result.GradeLevel)
	}
	if result.AcademicYear != "2026-2027" {
		t.Errorf("期望AcademicYear=2026-2027，实际=%s", result.AcademicYear)
	}
}

func TestClassService_Create_DuplicateNameInYear(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	classRepo.classes["class-001"] = &model.Class{
		ClassID:      "class-001",
		Name:         "三年级一班",
		GradeLevel:   3,
		AcademicYear: "2026-2027",
	}

	req := &dto.CreateClassRequest{
		Name:         "三年级一班",
		GradeLevel:   3,
		AcademicYear: "2026-2027",
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrClassExists) {
		t.Errorf("期望 ErrClassExists，实际: %v", err)
	}
}

func TestClassService_Create_SameNameDifferentYear(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	classRepo.classes["class-001"] = &model.Class{
		ClassID:      "class-001",
		Name:         "三年级一班",
		GradeLevel:   3,
		AcademicYear: "2025-2026",
	}

	// 学年不同，同名合法
	req := &dto.CreateClassRequest{
		Name:         "三年级一班",
		GradeLevel:   3,
		AcademicYear: "2026-2027",
	}

	if _, err := svc.Create(context.Background(), req, "admin-001"); err != nil {
		t.Fatalf("跨学年同名应成功: %v", err)
	}
}

func TestClassService_Create_TeacherNotFound(t *testing.T) {
	svc, _, _ := setupTestClassService()

	missing := "no-such-teacher"
	req := &dto.CreateClassRequest{
		Name:         "三年级一班",
		GradeLevel:   3,
		AcademicYear: "2026-2027",
		TeacherID:    &missing,
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── GetByID 测试 ──

func TestClassService_GetByID_NotFound(t *testing.T) {
	svc, _, _ := setupTestClassService()

	_, err := svc.GetByID(context.Background(), "no-such-class")
	if !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestClassService_Update_Success(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	classRepo.classes["class-001"] = &model.Class{
		ClassID:      "class-001",
		Name:         "三年级一班",
		GradeLevel:   3,
		AcademicYear: "2026-2027",
	}

	newName := "三年级二班"
	result, err := svc.Update(context.Background(), "class-001", &dto.UpdateClassRequest{
		Name: &newName,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Name != "三年级二班" {
		t.Errorf("期望Name=三年级二班，实际=%s", result.Name)
	}
	// 未传字段保持原值
	if result.GradeLevel != 3 {
		t.Errorf("GradeLevel 不应被改动，实际=%d", result.GradeLevel)
	}
}

func TestClassService_Update_RenameToExisting(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	classRepo.classes["class-001"] = &model.Class{
		ClassID: "class-001", Name: "三年级一班", GradeLevel: 3, AcademicYear: "2026-2027",
	}
	classRepo.classes["class-002"] = &model.Class{
		ClassID: "class-002", Name: "三年级二班", GradeLevel: 3, AcademicYear: "2026-2027",
	}

	taken := "三年级二班"
	_, err := svc.Update(context.Background(), "class-001", &dto.UpdateClassRequest{
		Name: &taken,
	}, "admin-001")
	if !errors.Is(err, ErrClassExists) {
		t.Errorf("期望 ErrClassExists，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestClassService_Delete_Success(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	classRepo.classes["class-001"] = &model.Class{
		ClassID: "class-001", Name: "三年级一班", GradeLevel: 3, AcademicYear: "2026-2027",
	}

	if err := svc.Delete(context.Background(), "class-001", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "class-001"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("删除后应不可见，实际: %v", err)
	}
}

func TestClassService_Delete_NotFound(t *testing.T) {
	svc, _, _ := setupTestClassService()

	err := svc.Delete(context.Background(), "no-such-class", "admin-001")
	if !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestClassService_List_FilterByYear(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	classRepo.classes["class-001"] = &model.Class{
		ClassID: "class-001", Name: "三年级一班", GradeLevel: 3, AcademicYear: "2026-2027",
	}
	classRepo.classes["class-002"] = &model.Class{
		ClassID: "class-002", Name: "四年级一班", GradeLevel: 4, AcademicYear: "2025-2026",
	}

	req := &dto.ClassListRequest{AcademicYear: "2026-2027"}
	list, total, err := svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 {
		t.Errorf("期望total=1，实际=%d", total)
	}
	if len(list) != 1 || list[0].AcademicYear != "2026-2027" {
		t.Errorf("过滤结果不符: %+v", list)
	}
}
