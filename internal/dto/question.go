package dto

// ── 试题模块 DTO ──

// CreateQuestionRequest 创建试题请求
type CreateQuestionRequest struct {
	Number      int     `json:"number"       binding:"required,min=1"`
	Text        string  `json:"text"         binding:"required"`
	Marks       float64 `json:"marks"        binding:"required,gt=0"`
	ModelAnswer string  `json:"model_answer"`
	Type        string  `json:"type"         binding:"required,oneof=objective subjective"`
}

// UpdateQuestionRequest 更新试题请求
type UpdateQuestionRequest struct {
	Number      *int     `json:"number"       binding:"omitempty,min=1"`
	Text        *string  `json:"text"`
	Marks       *float64 `json:"marks"        binding:"omitempty,gt=0"`
	ModelAnswer *string  `json:"model_answer"`
	Type        *string  `json:"type"         binding:"omitempty,oneof=objective subjective"`
}

// QuestionResponse 试题信息响应
type QuestionResponse struct {
	ID          string  `json:"id"`
	ExamID      string  `json:"exam_id"`
	Number      int     `json:"number"`
	Text        string  `json:"text"`
	Marks       float64 `json:"marks"`
	ModelAnswer string  `json:"model_answer,omitempty"`
	Type        string  `json:"type"`
	CreatedAt   string  `json:"created_at"`
}
