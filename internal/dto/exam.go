package dto

// ── 考试模块 DTO ──

// CreateExamRequest 创建考试请求
type CreateExamRequest struct {
	Title      string `json:"title"       binding:"required,min=1,max=200"`
	SubjectID  string `json:"subject_id"  binding:"required,uuid"`
	ClassID    string `json:"class_id"    binding:"required,uuid"`
	StartAt    string `json:"start_at"    binding:"required"` // RFC3339
	EndAt      string `json:"end_at"      binding:"required"`
	TotalMarks int    `json:"total_marks" binding:"required,gt=0"`
}

// UpdateExamRequest 更新考试请求
type UpdateExamRequest struct {
	Title      *string `json:"title"       binding:"omitempty,min=1,max=200"`
	StartAt    *string `json:"start_at"`
	EndAt      *string `json:"end_at"`
	TotalMarks *int    `json:"total_marks" binding:"omitempty,gt=0"`
	Status     *string `json:"status"      binding:"omitempty,oneof=draft scheduled ongoing completed cancelled"`
}

// ExamListRequest 考试列表查询参数
type ExamListRequest struct {
	PaginationRequest
	ClassID   string `form:"class_id"   binding:"omitempty,uuid"`
	SubjectID string `form:"subject_id" binding:"omitempty,uuid"`
	Status    string `form:"status"     binding:"omitempty,oneof=draft scheduled ongoing completed cancelled"`
}

// ExamResponse 考试信息响应
type ExamResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name,omitempty"`
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name,omitempty"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	TotalMarks  int    `json:"total_marks"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
