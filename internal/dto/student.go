package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	Name          string  `json:"name"           binding:"required,min=1,max=50"`
	RollNumber    string  `json:"roll_number"    binding:"required,min=1,max=20"`
	ClassID       string  `json:"class_id"       binding:"required,uuid"`
	UserID        *string `json:"user_id"        binding:"omitempty,uuid"`
	GuardianName  string  `json:"guardian_name"  binding:"omitempty,max=50"`
	GuardianPhone string  `json:"guardian_phone" binding:"omitempty,max=20"`
}

// UpdateStudentRequest 更新学生请求
type UpdateStudentRequest struct {
	Name          *string `json:"name"           binding:"omitempty,min=1,max=50"`
	RollNumber    *string `json:"roll_number"    binding:"omitempty,min=1,max=20"`
	ClassID       *string `json:"class_id"       binding:"omitempty,uuid"`
	GuardianName  *string `json:"guardian_name"  binding:"omitempty,max=50"`
	GuardianPhone *string `json:"guardian_phone" binding:"omitempty,max=20"`
	IsActive      *bool   `json:"is_active"`
}

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
	Keyword string `form:"keyword"  binding:"omitempty,max=50"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	RollNumber    string `json:"roll_number"`
	ClassID       string `json:"class_id"`
	ClassName     string `json:"class_name,omitempty"`
	GuardianName  string `json:"guardian_name,omitempty"`
	GuardianPhone string `json:"guardian_phone,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}
