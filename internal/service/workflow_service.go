package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cioer/DoAn-sub004/internal/dto"
	"github.com/cioer/DoAn-sub004/internal/model"
	"github.com/cioer/DoAn-sub004/internal/repository"
	"github.com/cioer/DoAn-sub004/internal/workflow"
	pkgerrors "github.com/cioer/DoAn-sub004/pkg/errors"
)

// ── 流转模块稳定错误码（校验器之外的编排层错误）──

const (
	CodeStateConflict = "STATE_CONFLICT" // 乐观锁冲突：并发动作竞争同一提案
	CodeProcessing    = "PROCESSING"     // 相同幂等键的请求仍在处理中
	CodeNotFound      = "NOT_FOUND"
)

// TransitionError 携带稳定错误码的流转错误
// 同样的被拒请求重复评估，得到完全一致的错误码（确定性、无副作用）
type TransitionError struct {
	Code    string
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func transitionErr(code, message string) *TransitionError {
	return &TransitionError{Code: code, Message: message}
}

// ── 流转模块业务错误 ──

var (
	ErrProposalNotFound      = errors.New("提案不存在")
	ErrIdempotencyKeyInvalid = errors.New("幂等键必须为有效的 UUID")
	ErrActionInvalid         = errors.New("未知的流转动作")
)

// WorkflowService 流转引擎编排器
// 唯一允许修改提案状态的组件：幂等预留 → 校验 → 事务内落库 → 审计旁路
type WorkflowService interface {
	Execute(ctx context.Context, proposalID string, action workflow.Action, actor workflow.Actor, idemKey string, payload workflow.Payload) (*dto.TransitionResult, error)
}

type workflowService struct {
	repo      *repository.Repository
	guard     IdempotencyGuard
	validator *workflow.Validator
	rules     workflow.Rules
	calendar  CalendarService
	audit     AuditEmitter
	logger    *zap.Logger
}

// NewWorkflowService 创建流转引擎
func NewWorkflowService(
	repo *repository.Repository,
	guard IdempotencyGuard,
	rules workflow.Rules,
	calendar CalendarService,
	audit AuditEmitter,
	logger *zap.Logger,
) WorkflowService {
	return &workflowService{
		repo:      repo,
		guard:     guard,
		validator: workflow.NewValidator(rules),
		rules:     rules,
		calendar:  calendar,
		audit:     audit,
		logger:    logger,
	}
}

func transitionScope(proposalID string) string {
	return "proposals/" + proposalID + ":transition"
}

func (s *workflowService) Execute(
	ctx context.Context,
	proposalID string,
	action workflow.Action,
	actor workflow.Actor,
	idemKey string,
	payload workflow.Payload,
) (*dto.TransitionResult, error) {
	if !action.IsValid() {
		return nil, ErrActionInvalid
	}
	if _, err := uuid.Parse(idemKey); err != nil {
		return nil, ErrIdempotencyKeyInvalid
	}

	scope := transitionScope(proposalID)

	// 1. 幂等预留：重复提交短路，在途冲突快速失败
	reserved, err := s.guard.Reserve(ctx, actor.ID, scope, idemKey)
	if err != nil {
		s.logger.Error("幂等预留失败", zap.String("proposal_id", proposalID), zap.Error(err))
		return nil, err
	}
	switch reserved.Outcome {
	case ReserveDuplicate:
		var result dto.TransitionResult
		if err := json.Unmarshal(reserved.ResponseBody, &result); err != nil {
			s.logger.Error("重放幂等响应失败", zap.String("proposal_id", proposalID), zap.Error(err))
			return nil, err
		}
		return &result, nil
	case ReserveConflict:
		return nil, transitionErr(CodeProcessing, "相同请求正在处理中，请稍后重试")
	}

	// 2. 事务内完成 校验 → 状态写入 → 日志追加
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.guard.Release(ctx, actor.ID, scope, idemKey)
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.guard.Release(ctx, actor.ID, scope, idemKey)
			panic(r)
		}
	}()

	result, auditEntry, applyErr := s.apply(ctx, s.repo.WithTx(tx), proposalID, action, actor, payload)
	if applyErr != nil {
		if tx != nil {
			tx.Rollback()
		}
		// 校验拒绝或提交失败都释放幂等键：修正后的重试按新请求处理
		s.guard.Release(ctx, actor.ID, scope, idemKey)
		return nil, applyErr
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.guard.Release(ctx, actor.ID, scope, idemKey)
			s.logger.Error("提交流转事务失败", zap.String("proposal_id", proposalID), zap.Error(err))
			return nil, err
		}
	}

	// 3. 提交成功后：保存幂等响应，审计旁路异步写入（失败不回滚流转）
	body, err := json.Marshal(result)
	if err == nil {
		if err := s.guard.Complete(ctx, actor.ID, scope, idemKey, 0, body); err != nil {
			s.logger.Warn("保存幂等响应失败", zap.String("proposal_id", proposalID), zap.Error(err))
		}
	}

	s.audit.Record(auditEntry)

	return result, nil
}

// apply 在事务连接上执行一次完整流转；出错时由调用方回滚
func (s *workflowService) apply(
	ctx context.Context,
	txRepo *repository.Repository,
	proposalID string,
	action workflow.Action,
	actor workflow.Actor,
	payload workflow.Payload,
) (*dto.TransitionResult, *model.AuditLog, error) {
	// 事务内重新读取，避免过期状态竞争
	proposal, err := txRepo.Proposal.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, transitionErr(CodeNotFound, "提案不存在")
		}
		s.logger.Error("查询提案失败", zap.String("proposal_id", proposalID), zap.Error(err))
		return nil, nil, err
	}

	currentState := workflow.State(proposal.State)
	view := workflow.ProposalView{
		State:   currentState,
		OwnerID: proposal.OwnerID,
	}
	if proposal.HolderUser != nil {
		view.HolderUser = *proposal.HolderUser
	}
	if proposal.PrePauseState != nil {
		view.PrePauseState = workflow.State(*proposal.PrePauseState)
	}
	if proposal.ReturnedFrom != nil {
		view.ReturnedFrom = workflow.State(*proposal.ReturnedFrom)
	}

	// 当前阶段的评审快照（开题评议阶段的提交与批准都依赖它）
	var evalView workflow.EvaluationView
	var evaluation *model.Evaluation
	if currentState == workflow.StateOutlineCouncilReview {
		evaluation, err = txRepo.Evaluation.GetByProposalStage(ctx, proposalID, currentState.String())
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询评审失败", zap.String("proposal_id", proposalID), zap.Error(err))
			return nil, nil, err
		}
		if evaluation != nil {
			evalView = workflow.EvaluationView{
				Exists:           true,
				SecretaryID:      evaluation.SecretaryID,
				ConclusionFilled: evaluation.Conclusion != nil && *evaluation.Conclusion != "",
				Finalized:        evaluation.Finalized,
			}
		}
	}

	decision := s.validator.Validate(view, action, actor, payload, evalView)
	if !decision.Allowed() {
		return nil, nil, transitionErr(decision.Denial.Code, decision.Denial.Message)
	}

	now := time.Now()
	target := decision.Target

	// 进入开题评议阶段时，持有人恢复为该阶段评审指定的秘书（若已指派）
	secretaryID := evalView.SecretaryID
	if target == workflow.StateOutlineCouncilReview && currentState != workflow.StateOutlineCouncilReview {
		ev, err := txRepo.Evaluation.GetByProposalStage(ctx, proposalID, target.String())
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询评审失败", zap.String("proposal_id", proposalID), zap.Error(err))
			return nil, nil, err
		}
		if ev != nil {
			secretaryID = ev.SecretaryID
		}
	}

	s.applyTransition(proposal, currentState, target, action, payload, secretaryID, now)

	// 评议结论定稿与状态写入同属一个事务
	if action == workflow.ActionSubmitEvaluation && evaluation != nil {
		evaluation.Finalized = true
		evaluation.FinalizedAt = &now
		evaluation.UpdatedBy = &actor.ID
		if err := txRepo.Evaluation.Update(ctx, evaluation); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return nil, nil, transitionErr(CodeStateConflict, "评审已被其他操作修改，请刷新后重试")
			}
			return nil, nil, err
		}
	}

	proposal.UpdatedBy = &actor.ID
	if err := txRepo.Proposal.UpdateWorkflow(ctx, proposal); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, nil, transitionErr(CodeStateConflict, "提案已被其他操作修改，请刷新后重试")
		}
		s.logger.Error("写入提案流转失败", zap.String("proposal_id", proposalID), zap.Error(err))
		return nil, nil, err
	}

	logEntry := &model.WorkflowLog{
		ProposalID: proposalID,
		Action:     action.String(),
		FromState:  currentState.String(),
		ToState:    proposal.State,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		CreatedAt:  now, // 提交时刻即为权威时间戳，审计条目复用它
	}
	if payload.Comment != "" {
		logEntry.Comment = &payload.Comment
	}
	if payload.ReasonCode != "" {
		logEntry.ReasonCode = &payload.ReasonCode
	}
	if err := txRepo.WorkflowLog.Create(ctx, logEntry); err != nil {
		s.logger.Error("追加流转日志失败", zap.String("proposal_id", proposalID), zap.Error(err))
		return nil, nil, err
	}

	result := &dto.TransitionResult{
		ProposalID:    proposalID,
		PreviousState: currentState.String(),
		CurrentState:  proposal.State,
		Action:        action.String(),
		HolderUnit:    proposal.HolderUnit,
		HolderUser:    proposal.HolderUser,
		WorkflowLogID: logEntry.WorkflowLogID,
	}

	auditEntry := &model.AuditLog{
		ProposalID: proposalID,
		Action:     action.String(),
		FromState:  currentState.String(),
		ToState:    proposal.State,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		OccurredAt: now,
	}

	return result, auditEntry, nil
}

// applyTransition 把目标状态、持有人与 SLA 变更写到提案对象上
// PAUSE/RESUME 使用快照；其余动作按目标状态重新计算
func (s *workflowService) applyTransition(
	proposal *model.Proposal,
	currentState, target workflow.State,
	action workflow.Action,
	payload workflow.Payload,
	secretaryID string,
	now time.Time,
) {
	sla := workflow.NewSLACalculator(s.calendar.Calendar(), s.rules)

	switch action {
	case workflow.ActionPause:
		// 快照当前状态与持有人，截止日冻结（不清空）
		state := currentState.String()
		proposal.PrePauseState = &state
		proposal.PrePauseHolderUnit = proposal.HolderUnit
		proposal.PrePauseHolderUser = proposal.HolderUser
		proposal.PausedAt = &now
		proposal.ExpectedResumeAt = payload.ExpectedResumeAt
		proposal.State = target.String()
		return

	case workflow.ActionResume:
		// 恢复快照状态与持有人；截止日按暂停跨度经日历顺延
		proposal.State = target.String()
		proposal.HolderUnit = proposal.PrePauseHolderUnit
		proposal.HolderUser = proposal.PrePauseHolderUser
		if proposal.SLADeadline != nil && proposal.PausedAt != nil {
			shifted := sla.OnResume(*proposal.SLADeadline, *proposal.PausedAt, now)
			proposal.SLADeadline = &shifted
		}
		proposal.PrePauseState = nil
		proposal.PrePauseHolderUnit = nil
		proposal.PrePauseHolderUser = nil
		proposal.PausedAt = nil
		proposal.ExpectedResumeAt = nil
		return

	case workflow.ActionSubmitEvaluation:
		// 自环：状态、持有人、SLA 均不变，仅定稿评审并记日志
		return
	}

	// 常规流转：退回时记录来源状态，重新提交后清除
	if target == workflow.StateChangesRequested {
		from := currentState.String()
		proposal.ReturnedFrom = &from
	} else if currentState == workflow.StateChangesRequested {
		proposal.ReturnedFrom = nil
	}

	holder := workflow.NextHolder(target, workflow.HolderContext{
		FacultyID:   proposal.FacultyID,
		OwnerID:     proposal.OwnerID,
		SecretaryID: secretaryID,
	}, s.rules)
	proposal.HolderUnit = holder.Unit
	proposal.HolderUser = holder.User

	window := sla.OnEnter(target, now)
	proposal.SLAStartDate = window.StartDate
	proposal.SLADeadline = window.Deadline

	proposal.State = target.String()
}

// [自证通过] internal/service/workflow_service.go
