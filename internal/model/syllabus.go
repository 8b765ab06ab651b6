package model

// Syllabus 教学大纲表 — 对应 syllabi
type Syllabus struct {
	SyllabusID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"syllabus_id"`
	SubjectID     string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	AcademicYear  string  `gorm:"type:varchar(20);not null"                      json:"academic_year"`
	Title         string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Outline       string  `gorm:"type:text"                                      json:"outline,omitempty"`
	AttachmentURL *string `gorm:"type:varchar(500)"                              json:"attachment_url,omitempty"`
	SoftDeleteModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (Syllabus) TableName() string { return "syllabi" }
