package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "core.db", cfg.Database.Name)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)

	assert.Equal(t, 1024, cfg.Kernel.DedupWindowSize)
	assert.Equal(t, 8, cfg.Kernel.RetryMaxAttempts)

	assert.Equal(t, 16, cfg.Routing.DefaultMaxHop)

	assert.Equal(t, 256, cfg.Actor.MailboxSize)
	assert.Equal(t, OverflowPolicy(""), cfg.Actor.Overflow)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "core", cfg.Telemetry.Namespace)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{
		Driver: "postgres", Host: "localhost", Port: 5432,
		User: "core", Password: "pw", Name: "coredb", SSLMode: "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=core password=pw dbname=coredb sslmode=disable", pg.DSN())

	mysql := DatabaseConfig{
		Driver: "mysql", Host: "localhost", Port: 3306,
		User: "core", Password: "pw", Name: "coredb",
	}
	assert.Equal(t, "core:pw@tcp(localhost:3306)/coredb?parseTime=true", mysql.DSN())

	sqlite := DatabaseConfig{Driver: "sqlite", Name: "/tmp/core.db"}
	assert.Equal(t, "/tmp/core.db", sqlite.DSN())

	assert.Equal(t, "", (&DatabaseConfig{Driver: "unknown"}).DSN())
}
