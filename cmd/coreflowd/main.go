package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentmesh/core/actor"
	"github.com/agentmesh/core/config"
	"github.com/agentmesh/core/internal/metrics"
	"github.com/agentmesh/core/internal/telemetry"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	workerCount := flag.Int("workers", 3, "Number of demo workers registered under the supervisor")
	tickEvery := flag.Duration("tick-interval", 5*time.Second, "Interval between demo StartTickEvent rounds")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("starting coreflowd",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	if cfg.Telemetry.Enabled {
		metrics.NewCollector(cfg.Telemetry.Namespace, logger)
		if _, err := telemetry.NewInstruments(logger); err != nil {
			logger.Warn("failed to initialize otel instruments", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := actor.NewManager(actor.ManagerOptions{
		MailboxCapacity:  cfg.Actor.MailboxSize,
		Overflow:         actorOverflow(cfg.Actor.Overflow),
		DeadLetterBuffer: cfg.Actor.DeadLetterBufferSize,
		Logger:           logger,
	})
	go drainDeadLetters(ctx, manager, logger)

	graph, err := buildDemoGraph(ctx, manager, *workerCount, logger)
	if err != nil {
		logger.Fatal("failed to build demo agent graph", zap.Error(err))
	}

	server := newHTTPServer(cfg, graph, logger)
	server.start()

	ticker := time.NewTicker(*tickEvery)
	defer ticker.Stop()
	tickAmount := 1

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received, stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := server.shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", zap.Error(err))
			}
			if err := manager.DeactivateAll(shutdownCtx); err != nil {
				logger.Error("actor manager shutdown error", zap.Error(err))
			}
			logger.Info("coreflowd stopped")
			return

		case <-ticker.C:
			if err := graph.tick(ctx, tickAmount); err != nil {
				logger.Error("tick delivery failed", zap.Error(err))
			}
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func actorOverflow(p config.OverflowPolicy) actor.OverflowPolicy {
	if p == config.OverflowDrop {
		return actor.OverflowDrop
	}
	return actor.OverflowBlock
}

func drainDeadLetters(ctx context.Context, manager *actor.Manager, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case dl := <-manager.DeadLetters():
			logger.Warn("dead letter",
				zap.String("target", dl.Target.String()),
				zap.String("reason", dl.Reason),
			)
		}
	}
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := cfg.Format
	if encoding == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoding = "json"
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
