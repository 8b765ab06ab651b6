package model

// Question 试题表 — 对应 questions
type Question struct {
	QuestionID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	ExamID      string  `gorm:"type:uuid;not null;index"                       json:"exam_id"`
	Number      int     `gorm:"not null"                                       json:"number"` // 题号，考试内从 1 递增
	Text        string  `gorm:"type:text;not null"                             json:"text"`
	Marks       float64 `gorm:"not null"                                       json:"marks"`
	ModelAnswer string  `gorm:"type:text"                                      json:"model_answer,omitempty"` // AI 批改的参考答案
	Type        string  `gorm:"type:varchar(20);not null;default:'subjective'" json:"type"`                   // objective | subjective
	SoftDeleteModel

	// 关联
	Exam *Exam `gorm:"foreignKey:ExamID;references:ExamID" json:"exam,omitempty"`
}

// TableName 指定表名
func (Question) TableName() string { return "questions" }
