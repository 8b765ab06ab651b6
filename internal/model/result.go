package model

// Result 成绩表 — 对应 results
// (exam_id, student_id) 唯一，见迁移脚本复合索引
type Result struct {
	ResultID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"result_id"`
	ExamID         string  `gorm:"type:uuid;not null;index"                       json:"exam_id"`
	StudentID      string  `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ObtainedMarks  float64 `gorm:"not null"                                       json:"obtained_marks"`
	TotalMarks     int     `gorm:"not null"                                       json:"total_marks"`
	Percentage     float64 `gorm:"not null"                                       json:"percentage"`
	Grade          string  `gorm:"type:varchar(5)"                                json:"grade,omitempty"` // A+ | A | B | C | D | F
	EvaluationMode string  `gorm:"type:varchar(10);not null;default:'manual'"     json:"evaluation_mode"` // ai | manual | hybrid
	IsPublished    bool    `gorm:"not null;default:false"                         json:"is_published"`
	SoftDeleteModel

	// 关联
	Exam    *Exam    `gorm:"foreignKey:ExamID;references:ExamID"          json:"exam,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID"    json:"student,omitempty"`
}

// TableName 指定表名
func (Result) TableName() string { return "results" }
