package dto

// ── 教学大纲模块 DTO ──

// CreateSyllabusRequest 创建大纲请求
type CreateSyllabusRequest struct {
	SubjectID     string  `json:"subject_id"     binding:"required,uuid"`
	AcademicYear  string  `json:"academic_year"  binding:"required"`
	Title         string  `json:"title"          binding:"required,min=1,max=200"`
	Outline       string  `json:"outline"        binding:"required"`
	AttachmentURL *string `json:"attachment_url" binding:"omitempty,url"`
}

// UpdateSyllabusRequest 更新大纲请求
type UpdateSyllabusRequest struct {
	Title         *string `json:"title"          binding:"omitempty,min=1,max=200"`
	Outline       *string `json:"outline"`
	AttachmentURL *string `json:"attachment_url" binding:"omitempty,url"`
}

// SyllabusListRequest 大纲列表查询参数
type SyllabusListRequest struct {
	PaginationRequest
	SubjectID    string `form:"subject_id" binding:"omitempty,uuid"`
	AcademicYear string `form:"academic_year"`
}

// SyllabusResponse 大纲信息响应
type SyllabusResponse struct {
	ID            string  `json:"id"`
	SubjectID     string  `json:"subject_id"`
	AcademicYear  string  `json:"academic_year"`
	Title         string  `json:"title"`
	Outline       string  `json:"outline"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}
