package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name         string  `json:"name"          binding:"required,min=1,max=100"`
	GradeLevel   int     `json:"grade_level"   binding:"required,min=1,max=12"`
	Section      string  `json:"section"       binding:"omitempty,max=10"`
	AcademicYear string  `json:"academic_year" binding:"required"` // "2026-2027"
	TeacherID    *string `json:"teacher_id"    binding:"omitempty,uuid"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=1,max=100"`
	GradeLevel   *int    `json:"grade_level"   binding:"omitempty,min=1,max=12"`
	Section      *string `json:"section"       binding:"omitempty,max=10"`
	AcademicYear *string `json:"academic_year"`
	TeacherID    *string `json:"teacher_id"    binding:"omitempty,uuid"`
}

// ClassListRequest 班级列表查询参数
type ClassListRequest struct {
	PaginationRequest
	AcademicYear string `form:"academic_year"`
	GradeLevel   int    `form:"grade_level" binding:"omitempty,min=1,max=12"`
	Keyword      string `form:"keyword"     binding:"omitempty,max=50"`
}

// ClassResponse 班级信息响应
type ClassResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	GradeLevel   int     `json:"grade_level"`
	Section      string  `json:"section"`
	AcademicYear string  `json:"academic_year"`
	TeacherID    *string `json:"teacher_id,omitempty"`
	TeacherName  string  `json:"teacher_name,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
