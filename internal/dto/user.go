package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求（管理员操作）
type CreateUserRequest struct {
	Name     string  `json:"name"     binding:"required,min=2,max=50"`
	Email    string  `json:"email"    binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8,max=20"`
	Role     string  `json:"role"     binding:"required,oneof=admin teacher student"`
	Phone    string  `json:"phone"    binding:"omitempty,max=20"`
	AdminID  *string `json:"admin_id" binding:"omitempty,uuid"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=50"`
	Email    *string `json:"email"     binding:"omitempty,email"`
	Phone    *string `json:"phone"     binding:"omitempty,max=20"`
	AdminID  *string `json:"admin_id"  binding:"omitempty,uuid"`
	IsActive *bool   `json:"is_active"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin teacher student"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}
