// =============================================================================
// 📦 核心运行时配置
// =============================================================================
// 将 state / eventstore / kernel / routing / actor 各包的 Options 汇总为一个
// 顶层 Config，本包只负责装配与加载，不对各业务包的语义做任何决定。
// =============================================================================
package config

import (
	"fmt"
	"time"
)

// Config 是核心运行时的完整配置结构
type Config struct {
	// Server 进程级网络端口配置（例如示例进程 cmd/coreflowd 暴露的健康检查/指标端口）
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Database 关系数据库配置，供 state.DocumentStore / eventstore.SQLEventStore 使用
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Redis 配置，供 state.RedisStore / kernel.RedisDedupWindow 使用
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Mongo 配置，供 state.MongoDocumentStore 使用
	Mongo MongoConfig `yaml:"mongo" env:"MONGO"`

	// Kernel 内核分发相关配置（去重窗口大小、重试策略）
	Kernel KernelConfig `yaml:"kernel" env:"KERNEL"`

	// Routing 跳数与投递配置
	Routing RoutingConfig `yaml:"routing" env:"ROUTING"`

	// Actor 邮箱容量与溢出策略配置
	Actor ActorConfig `yaml:"actor" env:"ACTOR"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置（是否暴露 Prometheus /metrics 端点）
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig 进程级端口配置
type ServerConfig struct {
	// HTTPPort 健康检查/指标 HTTP 端口
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// MetricsPort Prometheus 抓取端口。cmd/coreflowd 不读取该字段，
	// /metrics 挂在 HTTPPort 上
	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
	// ShutdownTimeout 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig 关系数据库配置
type DatabaseConfig struct {
	// Driver 驱动类型: postgres, mysql, sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// Host 主机
	Host string `yaml:"host" env:"HOST"`
	// Port 端口
	Port int `yaml:"port" env:"PORT"`
	// User 用户名
	User string `yaml:"user" env:"USER"`
	// Password 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// Name 数据库名（SQLite 下为文件路径）
	Name string `yaml:"name" env:"NAME"`
	// SSLMode SSL 模式（仅 PostgreSQL）
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// MaxOpenConns 最大连接数
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// MaxIdleConns 最大空闲连接
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// ConnMaxLifetime 连接最大生命周期
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// Addr 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// Password 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// DB 数据库编号
	DB int `yaml:"db" env:"DB"`
	// PoolSize 连接池大小
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// MinIdleConns 最小空闲连接
	MinIdleConns int `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// MongoConfig Mongo 配置
type MongoConfig struct {
	// URI 连接字符串
	URI string `yaml:"uri" env:"URI"`
	// Database 数据库名
	Database string `yaml:"database" env:"DATABASE"`
}

// KernelConfig 内核分发配置。本模块内没有代码把这些字段传给 kernel：
// GAgentBase 的重试策略来自 kernel.Options.RetryPolicy（默认 3 次重试），
// kernel 也没有处理器软/硬超时机制。
type KernelConfig struct {
	// DedupWindowSize 去重窗口容量，默认 1024（spec 规定值）
	DedupWindowSize int `yaml:"dedup_window_size" env:"DEDUP_WINDOW_SIZE"`
	// RetryBaseDelay 重试基准延迟
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" env:"RETRY_BASE_DELAY"`
	// RetryMaxDelay 重试最大延迟上限
	RetryMaxDelay time.Duration `yaml:"retry_max_delay" env:"RETRY_MAX_DELAY"`
	// RetryMaxAttempts 最大重试次数，超过后死信投递
	RetryMaxAttempts int `yaml:"retry_max_attempts" env:"RETRY_MAX_ATTEMPTS"`
	// SoftHandlerTimeout 处理器软超时（仅告警不终止）
	SoftHandlerTimeout time.Duration `yaml:"soft_handler_timeout" env:"SOFT_HANDLER_TIMEOUT"`
	// HardHandlerTimeout 处理器硬超时
	HardHandlerTimeout time.Duration `yaml:"hard_handler_timeout" env:"HARD_HANDLER_TIMEOUT"`
}

// RoutingConfig 跳数与投递配置
type RoutingConfig struct {
	// DefaultMaxHop 未显式指定时的默认最大跳数
	DefaultMaxHop int `yaml:"default_max_hop" env:"DEFAULT_MAX_HOP"`
}

// OverflowPolicy 描述 actor 邮箱满载时的行为
type OverflowPolicy string

const (
	// OverflowBlock 邮箱已满时阻塞发送方，直至有空位或 context 取消
	OverflowBlock OverflowPolicy = "block"
	// OverflowDrop 邮箱已满时丢弃新信封并计入死信
	OverflowDrop OverflowPolicy = "drop"
)

// ActorConfig actor 邮箱配置
type ActorConfig struct {
	// MailboxSize 每个 actor 邮箱的容量
	MailboxSize int `yaml:"mailbox_size" env:"MAILBOX_SIZE"`
	// Overflow 邮箱溢出策略："block"、"drop" 或留空；留空时 Validate 不报错，
	// cmd/coreflowd 按 block 处理
	Overflow OverflowPolicy `yaml:"overflow" env:"OVERFLOW"`
	// DeadLetterBufferSize 死信通道缓冲容量
	DeadLetterBufferSize int `yaml:"dead_letter_buffer_size" env:"DEAD_LETTER_BUFFER_SIZE"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// EnableCaller 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// EnableStacktrace 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置。Enabled 只控制是否暴露 Prometheus /metrics 端点；
// 本仓库从不自带或初始化任何 OTel SDK/导出器。
type TelemetryConfig struct {
	// Enabled 是否暴露 Prometheus /metrics 端点
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Namespace Prometheus 指标命名空间
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// DSN 返回驱动原生格式的数据库连接字符串，供希望自行打开 *sql.DB 的调用方
// 使用。它与 internal/migration.BuildDatabaseURL 的结果不同：postgres 为
// key=value 形式且 sslmode 原样填入（无默认值），mysql 不带 multiStatements，
// sqlite 直接返回 Name，未知驱动返回空串。
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}
