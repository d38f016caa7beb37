package model

import "time"

// Proposal 立项申请主表 — 对应 proposals
// 状态字段只允许通过流转引擎（WorkflowService）修改
type Proposal struct {
	ProposalID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"proposal_id"`
	Code       string `gorm:"type:varchar(30);not null;uniqueIndex"          json:"code"` // 创建时分配，不可变
	Title      string `gorm:"type:varchar(200);not null"                     json:"title"`
	OwnerID    string `gorm:"type:uuid;not null"                             json:"owner_id"`   // 创建后不可变
	FacultyID  string `gorm:"type:uuid;not null"                             json:"faculty_id"` // 创建后不可变
	State      string `gorm:"type:varchar(40);not null;default:'DRAFT'"      json:"state"`

	// 当前持有人：终态时两者同时为 NULL
	HolderUnit *string `gorm:"type:uuid" json:"holder_unit,omitempty"`
	HolderUser *string `gorm:"type:uuid" json:"holder_user,omitempty"`

	// SLA：有 SLA 的状态下成对设置，否则成对清空
	SLAStartDate *time.Time `gorm:"column:sla_start_date" json:"sla_start_date,omitempty"`
	SLADeadline  *time.Time `gorm:"column:sla_deadline"   json:"sla_deadline,omitempty"`

	// 暂停快照：仅 state == PAUSED 时有值，恢复时清空
	PrePauseState      *string    `gorm:"type:varchar(40)" json:"pre_pause_state,omitempty"`
	PrePauseHolderUnit *string    `gorm:"type:uuid"        json:"pre_pause_holder_unit,omitempty"`
	PrePauseHolderUser *string    `gorm:"type:uuid"        json:"pre_pause_holder_user,omitempty"`
	PausedAt           *time.Time `json:"paused_at,omitempty"`
	ExpectedResumeAt   *time.Time `json:"expected_resume_at,omitempty"`

	// 退回快照：仅 state == CHANGES_REQUESTED 时有值，重新提交后回到该状态
	ReturnedFrom *string `gorm:"type:varchar(40)" json:"returned_from,omitempty"`

	VersionedModel

	// 关联
	Owner   *User    `gorm:"foreignKey:OwnerID;references:UserID"      json:"owner,omitempty"`
	Faculty *Faculty `gorm:"foreignKey:FacultyID;references:FacultyID" json:"faculty,omitempty"`
}

// TableName 指定表名
func (Proposal) TableName() string { return "proposals" }

// [自证通过] internal/model/proposal.go
