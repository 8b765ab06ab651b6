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

func setupTestNotificationService() (NotificationService, *mockUserRepo, *mockNotificationRepo) {
	userRepo := newMockUserRepo()
	notificationRepo := newMockNotificationRepo()
	repo := &repository.Repository{
		User:         userRepo,
		Notification: notificationRepo,
	}
	svc := NewNotificationService(repo, zap.NewNop())

	userRepo.users["user-001"] = &model.User{
		UserID: "user-001", Name: "李老师", Email: "li@school.edu.cn",
		Role: model.RoleTeacher, IsActive: true,
	}
	return svc, userRepo, notificationRepo
}

func mustCreateNotification(t *testing.T, svc NotificationService, recipientID, notifyType, priority string) *dto.NotificationResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		RecipientID: recipientID,
		Type:        notifyType,
		Priority:    priority,
		Title:       "测试通知",
		Message:     "测试内容",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	return resp
}

// ── Create 测试 ──

func TestNotificationService_Create_Success(t *testing.T) {
	svc, _, _ := setupTestNotificationService()

	relatedType := "exam"
	relatedID := "exam-001"
	resp, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		RecipientID: "user-001",
		Type:        "SYSTEM_ALERT",
		Priority:    "HIGH",
		Title:       "系统提醒",
		Message:     "期中考试成绩已发布",
		RelatedType: &relatedType,
		RelatedID:   &relatedID,
		Metadata:    map[string]interface{}{"exam_id": "exam-001"},
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Status != string(model.StatusUnread) {
		t.Errorf("新通知应为 UNREAD，实际=%s", resp.Status)
	}
	if resp.RelatedType == nil || *resp.RelatedType != "exam" {
		t.Errorf("关联类型未落库，实际=%v", resp.RelatedType)
	}
	if resp.Metadata["exam_id"] != "exam-001" {
		t.Errorf("元数据未落库，实际=%v", resp.Metadata)
	}
	if resp.ReadAt != nil {
		t.Error("新通知不应有已读时间")
	}
}

func TestNotificationService_Create_InvalidType(t *testing.T) {
	svc, _, _ := setupTestNotificationService()

	_, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		RecipientID: "user-001", Type: "CARRIER_PIGEON", Priority: "HIGH",
		Title: "测试", Message: "测试",
	}, "admin-001")
	if !errors.Is(err, ErrNotificationTypeInvalid) {
		t.Errorf("期望 ErrNotificationTypeInvalid，实际: %v", err)
	}
}

func TestNotificationService_Create_InvalidPriority(t *testing.T) {
	svc, _, _ := setupTestNotificationService()

	_, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		RecipientID: "user-001", Type: "SYSTEM_ALERT", Priority: "EXTREME",
		Title: "测试", Message: "测试",
	}, "admin-001")
	if !errors.Is(err, ErrNotificationPriorityInvalid) {
		t.Errorf("期望 ErrNotificationPriorityInvalid，实际: %v", err)
	}
}

func TestNotificationService_Create_RecipientNotFound(t *testing.T) {
	svc, _, _ := setupTestNotificationService()

	_, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		RecipientID: "no-such-user", Type: "SYSTEM_ALERT", Priority: "HIGH",
		Title: "测试", Message: "测试",
	}, "admin-001")
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("期望 ErrRecipientNotFound，实际: %v", err)
	}
}

// ── 状态流转测试 ──

func TestNotificationService_StatusTimestampPairing(t *testing.T) {
	svc, _, _ := setupTestNotificationService()
	created := mustCreateNotification(t, svc, "user-001", "SYSTEM_ALERT", "MEDIUM")

	read, err := svc.MarkRead(context.Background(), created.ID, "user-001")
	if err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	if read.Status != string(model.StatusRead) {
		t.Errorf("期望状态=READ，实际=%s", read.Status)
	}
	if read.ReadAt == nil {
		t.Error("READ 应带已读时间戳")
	}
	if read.AcknowledgedAt != nil || read.DismissedAt != nil {
		t.Error("未发生的状态不应有时间戳")
	}

	// 继续确认：已读时间戳不回收
	acked, err := svc.Acknowledge(context.Background(), created.ID, "user-001")
	if err != nil {
		t.Fatalf("Acknowledge 应成功: %v", err)
	}
	if acked.Status != string(model.StatusAcknowledged) {
		t.Errorf("期望状态=ACKNOWLEDGED，实际=%s", acked.Status)
	}
	if acked.AcknowledgedAt == nil {
		t.Error("ACKNOWLEDGED 应带确认时间戳")
	}
	if acked.ReadAt == nil {
		t.Error("此前的已读时间戳不应被回收")
	}
}

func TestNotificationService_Dismiss(t *testing.T) {
	svc, _, _ := setupTestNotificationService()
	created := mustCreateNotification(t, svc, "user-001", "SYSTEM_ALERT", "LOW")

	dismissed, err := svc.Dismiss(context.Background(), created.ID, "user-001")
	if err != nil {
		t.Fatalf("Dismiss 应成功: %v", err)
	}
	if dismissed.Status != string(model.StatusDismissed) {
		t.Errorf("期望状态=DISMISSED，实际=%s", dismissed.Status)
	}
	if dismissed.DismissedAt == nil {
		t.Error("DISMISSED 应带忽略时间戳")
	}
}

func TestNotificationService_MarkRead_WrongRecipient(t *testing.T) {
	svc, userRepo, _ := setupTestNotificationService()
	userRepo.users["user-002"] = &model.User{
		UserID: "user-002", Name: "赵老师", Email: "zhao@school.edu.cn",
		Role: model.RoleTeacher, IsActive: true,
	}
	created := mustCreateNotification(t, svc, "user-001", "SYSTEM_ALERT", "MEDIUM")

	// 他人的通知按不存在处理，不泄露存在性
	_, err := svc.MarkRead(context.Background(), created.ID, "user-002")
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("期望 ErrNotificationNotFound，实际: %v", err)
	}
}

// ── MarkAllRead 测试 ──

func TestNotificationService_MarkAllRead_Idempotent(t *testing.T) {
	svc, userRepo, _ := setupTestNotificationService()
	userRepo.users["user-002"] = &model.User{
		UserID: "user-002", Name: "赵老师", Email: "zhao@school.edu.cn",
		Role: model.RoleTeacher, IsActive: true,
	}
	mustCreateNotification(t, svc, "user-001", "SYSTEM_ALERT", "MEDIUM")
	mustCreateNotification(t, svc, "user-001", "MISSING_SHEET", "HIGH")
	already := mustCreateNotification(t, svc, "user-001", "ABSENT_STUDENT", "HIGH")
	mustCreateNotification(t, svc, "user-002", "SYSTEM_ALERT", "MEDIUM")
	if _, err := svc.MarkRead(context.Background(), already.ID, "user-001"); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}

	resp, err := svc.MarkAllRead(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("MarkAllRead 应成功: %v", err)
	}
	if resp.ModifiedCount != 2 {
		t.Errorf("仅未读记录计入修改数，期望=2，实际=%d", resp.ModifiedCount)
	}

	// 重复调用幂等
	resp, err = svc.MarkAllRead(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("重复 MarkAllRead 应成功: %v", err)
	}
	if resp.ModifiedCount != 0 {
		t.Errorf("重复调用不应再有修改，实际=%d", resp.ModifiedCount)
	}
}

// ── Counts 测试 ──

func TestNotificationService_Counts(t *testing.T) {
	svc, _, _ := setupTestNotificationService()
	mustCreateNotification(t, svc, "user-001", "SYSTEM_ALERT", "URGENT")         // 保持 UNREAD
	n2 := mustCreateNotification(t, svc, "user-001", "MISSING_SHEET", "URGENT")  // → READ
	n3 := mustCreateNotification(t, svc, "user-001", "ABSENT_STUDENT", "URGENT") // → ACKNOWLEDGED
	mustCreateNotification(t, svc, "user-001", "SYSTEM_ALERT", "LOW")            // 保持 UNREAD
	if _, err := svc.MarkRead(context.Background(), n2.ID, "user-001"); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	if _, err := svc.Acknowledge(context.Background(), n3.ID, "user-001"); err != nil {
		t.Fatalf("Acknowledge 应成功: %v", err)
	}

	counts, err := svc.Counts(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("Counts 应成功: %v", err)
	}
	if counts.Total != 4 {
		t.Errorf("期望total=4，实际=%d", counts.Total)
	}
	if counts.Unread != 2 {
		t.Errorf("期望unread=2，实际=%d", counts.Unread)
	}
	// 紧急数只算 UNREAD/READ 的 URGENT：已确认的不再催办
	if counts.Urgent != 2 {
		t.Errorf("期望urgent=2，实际=%d", counts.Urgent)
	}
}

// ── List 测试 ──

func TestNotificationService_List_StatusFilter(t *testing.T) {
	svc, _, _ := setupTestNotificationService()
	mustCreateNotification(t, svc, "user-001", "SYSTEM_ALERT", "MEDIUM")
	read := mustCreateNotification(t, svc, "user-001", "MISSING_SHEET", "HIGH")
	if _, err := svc.MarkRead(context.Background(), read.ID, "user-001"); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}

	result, total, err := svc.List(context.Background(), "user-001",
		&dto.NotificationListRequest{Status: "UNREAD"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Fatalf("期望仅 1 条未读，实际=%d", total)
	}
	if result[0].Status != string(model.StatusUnread) {
		t.Errorf("过滤结果状态错误，实际=%s", result[0].Status)
	}
}

func TestNotificationService_List_BadDateRange(t *testing.T) {
	svc, _, _ := setupTestNotificationService()

	_, _, err := svc.List(context.Background(), "user-001",
		&dto.NotificationListRequest{DateFrom: "2026/11/10"})
	if !errors.Is(err, ErrDateRangeInvalid) {
		t.Errorf("期望 ErrDateRangeInvalid，实际: %v", err)
	}
}

// ── SoftDelete 测试 ──

func TestNotificationService_SoftDelete(t *testing.T) {
	svc, _, _ := setupTestNotificationService()
	created := mustCreateNotification(t, svc, "user-001", "SYSTEM_ALERT", "MEDIUM")

	if err := svc.SoftDelete(context.Background(), created.ID, "user-001"); err != nil {
		t.Fatalf("SoftDelete 应成功: %v", err)
	}

	// 删除后列表不可见
	_, total, err := svc.List(context.Background(), "user-001", &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 0 {
		t.Errorf("删除后不应可见，实际=%d", total)
	}

	// 重复删除按不存在处理
	err = svc.SoftDelete(context.Background(), created.ID, "user-001")
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("期望 ErrNotificationNotFound，实际: %v", err)
	}
}
