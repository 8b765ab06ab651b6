package dto

// ── 答题卡模块 DTO ──

// CreateAnswerSheetRequest 登记答题卡上传请求（仅元数据，图像 URL 视为不透明字符串）
type CreateAnswerSheetRequest struct {
	ExamID           string `json:"exam_id"            binding:"required,uuid"`
	StudentID        string `json:"student_id"         binding:"required,uuid"`
	ImageURL         string `json:"image_url"          binding:"required"`
	OriginalFileName string `json:"original_file_name" binding:"required,max=255"`
	FileSizeBytes    int64  `json:"file_size_bytes"    binding:"required,min=1"`
	FileFormat       string `json:"file_format"        binding:"required,max=10"`
}

// UpdateSheetStatusRequest 更新答题卡处理状态请求
type UpdateSheetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=uploaded processing evaluated failed"`
}

// RecordAIOutcomeRequest 记录 AI 批改结果请求
type RecordAIOutcomeRequest struct {
	Status               string   `json:"status"                 binding:"required,oneof=evaluated failed"`
	AIScore              *float64 `json:"ai_score"               binding:"omitempty,min=0"`
	AIConfidence         *float64 `json:"ai_confidence"          binding:"omitempty,min=0,max=1"`
	RollNumberConfidence *float64 `json:"roll_number_confidence" binding:"omitempty,min=0,max=1"`
	ScanQuality          *float64 `json:"scan_quality"           binding:"omitempty,min=0,max=1"`
	IsAligned            *bool    `json:"is_aligned"`
	ErrorMessage         string   `json:"error_message"          binding:"omitempty,max=500"`
}

// AnswerSheetListRequest 答题卡列表查询参数
type AnswerSheetListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=uploaded processing evaluated failed"`
}

// AnswerSheetResponse 答题卡信息响应
type AnswerSheetResponse struct {
	ID                   string   `json:"id"`
	ExamID               string   `json:"exam_id"`
	StudentID            string   `json:"student_id"`
	StudentName          string   `json:"student_name,omitempty"`
	RollNumber           string   `json:"roll_number,omitempty"`
	ImageURL             string   `json:"image_url"`
	OriginalFileName     string   `json:"original_file_name"`
	FileSizeBytes        int64    `json:"file_size_bytes"`
	FileFormat           string   `json:"file_format"`
	Status               string   `json:"status"`
	RollNumberConfidence *float64 `json:"roll_number_confidence,omitempty"`
	ScanQuality          *float64 `json:"scan_quality,omitempty"`
	IsAligned            *bool    `json:"is_aligned,omitempty"`
	AIScore              *float64 `json:"ai_score,omitempty"`
	AIConfidence         *float64 `json:"ai_confidence,omitempty"`
	FlagCount            int64    `json:"flag_count"`
	CreatedAt            string   `json:"created_at"`
	UpdatedAt            string   `json:"updated_at"`
}

// [自证通过] internal/dto/answer_sheet.go
