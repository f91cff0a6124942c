// =============================================================================
// 📦 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Database:  DefaultDatabaseConfig(),
		Redis:     DefaultRedisConfig(),
		Mongo:     DefaultMongoConfig(),
		Kernel:    DefaultKernelConfig(),
		Routing:   DefaultRoutingConfig(),
		Actor:     DefaultActorConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Name:            "core.db",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultMongoConfig 返回默认 Mongo 配置
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:      "mongodb://localhost:27017",
		Database: "core",
	}
}

// DefaultKernelConfig 返回默认内核配置
func DefaultKernelConfig() KernelConfig {
	return KernelConfig{
		DedupWindowSize:    1024,
		RetryBaseDelay:     100 * time.Millisecond,
		RetryMaxDelay:      60 * time.Second,
		RetryMaxAttempts:   8,
		SoftHandlerTimeout: 5 * time.Second,
		HardHandlerTimeout: 30 * time.Second,
	}
}

// DefaultRoutingConfig 返回默认路由配置
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		DefaultMaxHop: 16,
	}
}

// DefaultActorConfig 返回默认 actor 配置。Overflow 留空；空值在下游
// 按阻塞策略处理（actor.OverflowPolicy 的零值即 OverflowBlock）。
func DefaultActorConfig() ActorConfig {
	return ActorConfig{
		MailboxSize:          256,
		DeadLetterBufferSize: 256,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:   false,
		Namespace: "core",
	}
}
