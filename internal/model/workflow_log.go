package model

import "time"

// WorkflowLog 流转日志表 — 对应 workflow_logs
// 只追加不修改；按 proposal_id + created_at 即为该提案的权威历史
type WorkflowLog struct {
	WorkflowLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"workflow_log_id"`
	ProposalID    string    `gorm:"type:uuid;not null;index:idx_workflow_logs_proposal" json:"proposal_id"`
	Action        string    `gorm:"type:varchar(40);not null"                      json:"action"`
	FromState     string    `gorm:"type:varchar(40);not null"                      json:"from_state"`
	ToState       string    `gorm:"type:varchar(40);not null"                      json:"to_state"`
	ActorID       string    `gorm:"type:uuid;not null"                             json:"actor_id"`
	ActorName     string    `gorm:"type:varchar(50);not null"                      json:"actor_name"` // 写入时冗余快照
	Comment       *string   `gorm:"type:varchar(500)"                              json:"comment,omitempty"`
	ReasonCode    *string   `gorm:"type:varchar(50)"                               json:"reason_code,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_workflow_logs_proposal" json:"created_at"`
}

// TableName 指定表名
func (WorkflowLog) TableName() string { return "workflow_logs" }

// [自证通过] internal/model/workflow_log.go
