package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/service"
	pkgerrors "edumark/backend/pkg/errors"
	"edumark/backend/pkg/response"
)

// MissingPaperHandler 缺卷追踪模块 HTTP 处理器
type MissingPaperHandler struct {
	trackingSvc service.MissingPaperService
}

// NewMissingPaperHandler 创建 MissingPaperHandler
func NewMissingPaperHandler(trackingSvc service.MissingPaperService) *MissingPaperHandler {
	return &MissingPaperHandler{trackingSvc: trackingSvc}
}

// Report 上报缺卷/缺考
// POST /api/v1/missing-papers
func (h *MissingPaperHandler) Report(c *gin.Context) {
	var req dto.ReportMissingPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tracking, err := h.trackingSvc.Report(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTrackingError(c, err)
		return
	}

	response.Created(c, tracking)
}

// GetTracking 获取缺卷记录详情
// GET /api/v1/missing-papers/:id
func (h *MissingPaperHandler) GetTracking(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	tracking, err := h.trackingSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTrackingError(c, err)
		return
	}

	response.OK(c, tracking)
}

// ListTrackings 获取缺卷记录列表：管理员可见全部，教师仅见本人上报
// GET /api/v1/missing-papers
func (h *MissingPaperHandler) ListTrackings(c *gin.Context) {
	var req dto.TrackingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var (
		trackings []dto.MissingPaperResponse
		total     int64
		err       error
	)
	if role == "admin" {
		trackings, total, err = h.trackingSvc.ListForAdmin(c.Request.Context(), &req)
	} else {
		trackings, total, err = h.trackingSvc.ListForStaff(c.Request.Context(), callerID, &req)
	}
	if err != nil {
		h.handleTrackingError(c, err)
		return
	}

	response.OKPage(c, trackings, total, req.GetPage(), req.GetPageSize())
}

// Acknowledge 管理员确认缺卷记录
// PUT /api/v1/missing-papers/:id/acknowledge
func (h *MissingPaperHandler) Acknowledge(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	var req dto.AcknowledgeTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tracking, err := h.trackingSvc.Acknowledge(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTrackingError(c, err)
		return
	}

	response.OK(c, tracking)
}

// Resolve 解决缺卷记录（终态）
// PUT /api/v1/missing-papers/:id/resolve
func (h *MissingPaperHandler) Resolve(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	var req dto.ResolveTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tracking, err := h.trackingSvc.Resolve(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTrackingError(c, err)
		return
	}

	response.OK(c, tracking)
}

// Escalate 升级缺卷记录并通知升级对象
// PUT /api/v1/missing-papers/:id/escalate
func (h *MissingPaperHandler) Escalate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	var req dto.EscalateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tracking, err := h.trackingSvc.Escalate(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTrackingError(c, err)
		return
	}

	response.OK(c, tracking)
}

// GetExamCompletionStatus 获取考试维度的缺卷处理进度
// GET /api/v1/exams/:id/completion-status
func (h *MissingPaperHandler) GetExamCompletionStatus(c *gin.Context) {
	examID := c.Param("id")
	if examID == "" {
		response.BadRequest(c, 10001, "考试ID不能为空")
		return
	}

	status, err := h.trackingSvc.GetExamCompletionStatus(c.Request.Context(), examID)
	if err != nil {
		h.handleTrackingError(c, err)
		return
	}

	response.OK(c, status)
}

// GetRedFlagSummary 获取红旗记录汇总（按考试分组）
// GET /api/v1/missing-papers/red-flags
func (h *MissingPaperHandler) GetRedFlagSummary(c *gin.Context) {
	summary, err := h.trackingSvc.GetRedFlagSummary(c.Request.Context())
	if err != nil {
		h.handleTrackingError(c, err)
		return
	}

	response.OK(c, summary)
}

// handleTrackingError 统一处理缺卷追踪模块业务错误
func (h *MissingPaperHandler) handleTrackingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTrackingNotFound):
		response.NotFound(c, 22101, "缺卷记录不存在")
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 22102, "考试不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 22103, "学生不存在")
	case errors.Is(err, service.ErrAnswerSheetNotFound):
		response.NotFound(c, 22104, "关联的答题卡不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 22105, "升级对象不存在")
	case errors.Is(err, service.ErrTrackingExists):
		response.Conflict(c, 22201, "该考生已有处理中的缺卷记录")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 22202, "记录已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrTrackingTypeInvalid):
		response.BadRequest(c, 22301, "缺卷类型无效")
	case errors.Is(err, service.ErrPriorityInvalid):
		response.BadRequest(c, 22302, "优先级无效")
	case errors.Is(err, service.ErrCannotAcknowledge):
		response.BadRequest(c, 22303, "当前状态不允许确认")
	case errors.Is(err, service.ErrCannotResolve):
		response.BadRequest(c, 22304, "当前状态不允许解决")
	case errors.Is(err, service.ErrCannotEscalate):
		response.BadRequest(c, 22305, "当前状态不允许升级")
	case errors.Is(err, service.ErrStudentNotInClass):
		response.BadRequest(c, 22306, "学生不属于该考试班级")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/missing_paper_handler.go
