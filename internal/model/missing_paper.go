package model

import "time"

// ── 缺卷追踪枚举 ──

// TrackingType 异常类型
type TrackingType string

const (
	TrackingAbsent          TrackingType = "ABSENT"            // 学生缺考
	TrackingMissingSheet    TrackingType = "MISSING_SHEET"     // 到考但答题卡缺失
	TrackingLateSubmission  TrackingType = "LATE_SUBMISSION"   // 迟交
	TrackingQualityIssue    TrackingType = "QUALITY_ISSUE"     // 答题卡质量问题
	TrackingRollNumberIssue TrackingType = "ROLL_NUMBER_ISSUE" // 学号无法识别
)

// ValidTrackingType 校验异常类型枚举成员
func ValidTrackingType(t TrackingType) bool {
	switch t {
	case TrackingAbsent, TrackingMissingSheet, TrackingLateSubmission,
		TrackingQualityIssue, TrackingRollNumberIssue:
		return true
	}
	return false
}

// TrackingStatus 追踪记录生命周期状态
type TrackingStatus string

const (
	TrackingPending      TrackingStatus = "PENDING"      // 自动检测创建，待教师确认
	TrackingReported     TrackingStatus = "REPORTED"     // 已上报
	TrackingAcknowledged TrackingStatus = "ACKNOWLEDGED" // 管理员已确认
	TrackingEscalated    TrackingStatus = "ESCALATED"    // 已升级
	TrackingResolved     TrackingStatus = "RESOLVED"     // 已解决（终态）
)

// NotificationPriority 通知与追踪记录共用的优先级（有序）
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityMedium NotificationPriority = "MEDIUM"
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityUrgent NotificationPriority = "URGENT"
)

// priorityRank 优先级排序权重
var priorityRank = map[NotificationPriority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// ValidPriority 校验优先级枚举成员
func ValidPriority(p NotificationPriority) bool {
	_, ok := priorityRank[p]
	return ok
}

// PriorityAtLeast 比较优先级 p >= min
func PriorityAtLeast(p, min NotificationPriority) bool {
	return priorityRank[p] >= priorityRank[min]
}

// MissingPaperTracking 缺卷/缺考追踪表 — 对应 missing_paper_trackings
// 每对 (exam_id, student_id) 在活跃记录中唯一；归档通过 is_active=false，永不物理删除
// 不变式：IsCompleted=true 蕴含 Status=RESOLVED；IsRedFlag 与状态正交，仅用于看板置顶
type MissingPaperTracking struct {
	TrackingID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tracking_id"`
	ExamID     string         `gorm:"type:uuid;not null;index"                       json:"exam_id"`
	StudentID  string         `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ClassID    string         `gorm:"type:uuid;not null"                             json:"class_id"`
	SubjectID  string         `gorm:"type:uuid;not null"                             json:"subject_id"`
	Type       TrackingType   `gorm:"type:varchar(30);not null"                      json:"type"`
	Status     TrackingStatus `gorm:"type:varchar(20);not null;default:'REPORTED'"   json:"status"`

	ReportedBy string    `gorm:"type:uuid;not null" json:"reported_by"`
	ReportedAt time.Time `gorm:"not null"           json:"reported_at"`
	Reason     string    `gorm:"type:varchar(500);not null" json:"reason"`
	Details    *string   `gorm:"type:text"                  json:"details,omitempty"`

	AcknowledgedBy *string    `gorm:"type:uuid"         json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	AdminRemarks   *string    `gorm:"type:varchar(500)" json:"admin_remarks,omitempty"`

	ResolvedBy      *string    `gorm:"type:uuid"         json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes *string    `gorm:"type:varchar(500)" json:"resolution_notes,omitempty"`

	EscalatedTo      *string    `gorm:"type:uuid"         json:"escalated_to,omitempty"`
	EscalatedAt      *time.Time `json:"escalated_at,omitempty"`
	EscalationReason *string    `gorm:"type:varchar(500)" json:"escalation_reason,omitempty"`

	Priority        NotificationPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	IsRedFlag       bool                 `gorm:"not null;default:false"                     json:"is_red_flag"`
	RequiresAck     bool                 `gorm:"not null;default:true"                      json:"requires_ack"`
	IsCompleted     bool                 `gorm:"not null;default:false"                     json:"is_completed"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	CompletionNotes *string              `gorm:"type:varchar(500)" json:"completion_notes,omitempty"`

	AnswerSheetID   *string     `gorm:"type:uuid"    json:"answer_sheet_id,omitempty"`
	NotificationIDs StringArray `gorm:"type:uuid[]"  json:"notification_ids,omitempty"` // 关联通知，供看板联查
	IsActive        bool        `gorm:"not null;default:true" json:"is_active"`
	VersionedModel

	// 关联
	Exam    *Exam    `gorm:"foreignKey:ExamID;references:ExamID"       json:"exam,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (MissingPaperTracking) TableName() string { return "missing_paper_trackings" }

// [自证通过] internal/model/missing_paper.go
