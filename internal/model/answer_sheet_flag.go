package model

import "time"

// ── 标记类型与严重级别枚举 ──

// FlagType 答题卡质量标记类型
type FlagType string

const (
	FlagLowConfidenceRollNumber FlagType = "LOW_CONFIDENCE_ROLL_NUMBER" // 学号识别置信度不足
	FlagPoorScanQuality         FlagType = "POOR_SCAN_QUALITY"          // 扫描质量差
	FlagMisalignment            FlagType = "MISALIGNMENT"               // 定位点未对齐
	FlagQualityIssue            FlagType = "QUALITY_ISSUE"              // 文件尺寸/格式异常
	FlagManualReview            FlagType = "MANUAL_REVIEW"              // 人工复核请求
	FlagDuplicateSuspect        FlagType = "DUPLICATE_SUSPECT"          // 疑似重复提交
)

// ValidFlagType 校验标记类型枚举成员
func ValidFlagType(t FlagType) bool {
	switch t {
	case FlagLowConfidenceRollNumber, FlagPoorScanQuality, FlagMisalignment,
		FlagQualityIssue, FlagManualReview, FlagDuplicateSuspect:
		return true
	}
	return false
}

// FlagSeverity 标记严重级别（有序）
type FlagSeverity string

const (
	SeverityLow      FlagSeverity = "LOW"
	SeverityMedium   FlagSeverity = "MEDIUM"
	SeverityHigh     FlagSeverity = "HIGH"
	SeverityCritical FlagSeverity = "CRITICAL"
)

// severityRank 严重级别排序权重
var severityRank = map[FlagSeverity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// ValidFlagSeverity 校验严重级别枚举成员
func ValidFlagSeverity(s FlagSeverity) bool {
	_, ok := severityRank[s]
	return ok
}

// SeverityAtLeast 比较严重级别 s >= min
func SeverityAtLeast(s, min FlagSeverity) bool {
	return severityRank[s] >= severityRank[min]
}

// AnswerSheetFlag 答题卡质量标记表 — 对应 answer_sheet_flags
// 一张答题卡可有多条标记；标记只会被置为已解决，永不物理删除
// 不变式：Resolved=true 时 ResolvedBy 与 ResolvedAt 必有值，未解决时两者皆空
type AnswerSheetFlag struct {
	FlagID          string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"flag_id"`
	AnswerSheetID   string       `gorm:"type:uuid;not null;index"                       json:"answer_sheet_id"`
	FlagIndex       int          `gorm:"not null"                                       json:"flag_index"` // 卡内序号，从 0 递增，(answer_sheet_id, flag_index) 唯一
	Type            FlagType     `gorm:"type:varchar(50);not null"                      json:"type"`
	Severity        FlagSeverity `gorm:"type:varchar(10);not null"                      json:"severity"`
	Description     string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	DetectedBy      string       `gorm:"type:varchar(100);not null"                     json:"detected_by"` // 用户 ID 或 "system"
	AutoDetected    bool         `gorm:"not null;default:false"                         json:"auto_detected"`
	Resolved        bool         `gorm:"not null;default:false"                         json:"resolved"`
	ResolvedBy      *string      `gorm:"type:uuid"                                      json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time   `json:"resolved_at,omitempty"`
	ResolutionNotes *string      `gorm:"type:varchar(500)"                              json:"resolution_notes,omitempty"`
	AutoResolved    bool         `gorm:"not null;default:false"                         json:"auto_resolved"`
	BaseModel

	// 关联
	AnswerSheet *AnswerSheet `gorm:"foreignKey:AnswerSheetID;references:AnswerSheetID" json:"answer_sheet,omitempty"`
}

// TableName 指定表名
func (AnswerSheetFlag) TableName() string { return "answer_sheet_flags" }

// [自证通过] internal/model/answer_sheet_flag.go
