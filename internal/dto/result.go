package dto

// ── 成绩模块 DTO ──

// CreateResultRequest 录入成绩请求
type CreateResultRequest struct {
	ExamID         string  `json:"exam_id"         binding:"required,uuid"`
	StudentID      string  `json:"student_id"      binding:"required,uuid"`
	ObtainedMarks  float64 `json:"obtained_marks"  binding:"min=0"`
	EvaluationMode string  `json:"evaluation_mode" binding:"required,oneof=ai manual hybrid"`
}

// UpdateResultRequest 更新成绩请求
type UpdateResultRequest struct {
	ObtainedMarks  *float64 `json:"obtained_marks"  binding:"omitempty,min=0"`
	EvaluationMode *string  `json:"evaluation_mode" binding:"omitempty,oneof=ai manual hybrid"`
}

// PublishResultsRequest 发布成绩请求
type PublishResultsRequest struct {
	Published bool `json:"published"`
}

// PublishResultsResponse 发布成绩响应
type PublishResultsResponse struct {
	ModifiedCount int64 `json:"modified_count"`
}

// ResultListRequest 成绩列表查询参数
type ResultListRequest struct {
	PaginationRequest
	ExamID    string `form:"exam_id"    binding:"omitempty,uuid"`
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	Published *bool  `form:"published"`
}

// ResultResponse 成绩信息响应
type ResultResponse struct {
	ID             string  `json:"id"`
	ExamID         string  `json:"exam_id"`
	StudentID      string  `json:"student_id"`
	StudentName    string  `json:"student_name,omitempty"`
	RollNumber     string  `json:"roll_number,omitempty"`
	ObtainedMarks  float64 `json:"obtained_marks"`
	TotalMarks     int     `json:"total_marks"`
	Percentage     float64 `json:"percentage"`
	Grade          string  `json:"grade"`
	EvaluationMode string  `json:"evaluation_mode"`
	IsPublished    bool    `json:"is_published"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}
