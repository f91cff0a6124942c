// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 分发指标
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec

	// 处理器错误指标
	handlerErrorsTotal *prometheus.CounterVec
	deadLettersTotal   *prometheus.CounterVec

	// 路由指标
	hopDropsTotal   *prometheus.CounterVec
	dedupDropsTotal *prometheus.CounterVec

	// 内核状态转换指标
	stateTransitionsTotal *prometheus.CounterVec

	// 事件溯源指标
	snapshotsTotal      *prometheus.CounterVec
	eventAppendsTotal   *prometheus.CounterVec
	replayEventsCount   *prometheus.HistogramVec

	// 去重窗口指标
	dedupWindowHits   *prometheus.CounterVec
	dedupWindowMisses *prometheus.CounterVec

	// 数据库指标
	dbConnectionsOpen *prometheus.GaugeVec
	dbConnectionsIdle *prometheus.GaugeVec
	dbQueryDuration   *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 分发指标
	c.dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of envelope dispatches handled by the kernel",
		},
		[]string{"agent_type", "payload_type", "status"},
	)

	c.dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Envelope dispatch duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"agent_type", "payload_type"},
	)

	// 处理器错误指标
	c.handlerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_errors_total",
			Help:      "Total number of handler errors, split by retryable/fatal",
		},
		[]string{"agent_type", "payload_type", "kind"}, // kind: retryable, fatal
	)

	c.deadLettersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dead_letters_total",
			Help:      "Total number of envelopes routed to the dead-letter sink",
		},
		[]string{"agent_type", "reason"},
	)

	// 路由指标
	c.hopDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hop_drops_total",
			Help:      "Total number of envelopes dropped for exceeding max_hop or failing min_hop",
		},
		[]string{"direction"},
	)

	c.dedupDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_drops_total",
			Help:      "Total number of envelopes dropped as duplicates by the dedup window",
		},
		[]string{"agent_type"},
	)

	// 内核状态转换指标
	c.stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_state_transitions_total",
			Help:      "Total number of agent lifecycle state transitions",
		},
		[]string{"agent_type", "from_state", "to_state"},
	)

	// 事件溯源指标
	c.snapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Total number of snapshots written",
		},
		[]string{"agent_type", "strategy"},
	)

	c.eventAppendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_appends_total",
			Help:      "Total number of events appended to the event store",
		},
		[]string{"agent_type", "status"}, // status: ok, conflict
	)

	c.replayEventsCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replay_events_count",
			Help:      "Number of events replayed per state rebuild",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"agent_type"},
	)

	// 去重窗口指标
	c.dedupWindowHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_window_hits_total",
			Help:      "Total number of envelope IDs already present in the dedup window",
		},
		[]string{"window"},
	)

	c.dedupWindowMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_window_misses_total",
			Help:      "Total number of envelope IDs newly admitted into the dedup window",
		},
		[]string{"window"},
	)

	// 数据库指标
	c.dbConnectionsOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Number of open database connections",
		},
		[]string{"database"},
	)

	c.dbConnectionsIdle = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
		[]string{"database"},
	)

	c.dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"database", "operation"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 分发指标记录
// =============================================================================

// RecordDispatch 记录一次处理器分发
func (c *Collector) RecordDispatch(agentType, payloadType, status string, duration time.Duration) {
	c.dispatchTotal.WithLabelValues(agentType, payloadType, status).Inc()
	c.dispatchDuration.WithLabelValues(agentType, payloadType).Observe(duration.Seconds())
}

// =============================================================================
// 🚨 错误与死信指标记录
// =============================================================================

// RecordHandlerError 记录处理器错误
func (c *Collector) RecordHandlerError(agentType, payloadType string, retryable bool) {
	kind := "fatal"
	if retryable {
		kind = "retryable"
	}
	c.handlerErrorsTotal.WithLabelValues(agentType, payloadType, kind).Inc()
}

// RecordDeadLetter 记录一次死信投递
func (c *Collector) RecordDeadLetter(agentType, reason string) {
	c.deadLettersTotal.WithLabelValues(agentType, reason).Inc()
}

// =============================================================================
// 🧭 路由指标记录
// =============================================================================

// RecordHopDrop 记录一次因跳数限制被丢弃的信封
func (c *Collector) RecordHopDrop(direction string) {
	c.hopDropsTotal.WithLabelValues(direction).Inc()
}

// RecordDedupDrop 记录一次因去重被丢弃的信封
func (c *Collector) RecordDedupDrop(agentType string) {
	c.dedupDropsTotal.WithLabelValues(agentType).Inc()
}

// =============================================================================
// 🔄 状态转换指标记录
// =============================================================================

// RecordStateTransition 记录 Agent 生命周期状态转换
func (c *Collector) RecordStateTransition(agentType, fromState, toState string) {
	c.stateTransitionsTotal.WithLabelValues(agentType, fromState, toState).Inc()
}

// =============================================================================
// 🗃️ 事件溯源指标记录
// =============================================================================

// RecordSnapshot 记录一次快照写入
func (c *Collector) RecordSnapshot(agentType, strategy string) {
	c.snapshotsTotal.WithLabelValues(agentType, strategy).Inc()
}

// RecordEventAppend 记录一次事件追加
func (c *Collector) RecordEventAppend(agentType string, conflict bool) {
	status := "ok"
	if conflict {
		status = "conflict"
	}
	c.eventAppendsTotal.WithLabelValues(agentType, status).Inc()
}

// RecordReplay 记录一次状态重建所回放的事件数
func (c *Collector) RecordReplay(agentType string, eventCount int) {
	c.replayEventsCount.WithLabelValues(agentType).Observe(float64(eventCount))
}

// =============================================================================
// 🪟 去重窗口指标记录
// =============================================================================

// RecordDedupWindowHit 记录去重窗口命中（信封 ID 已存在）
func (c *Collector) RecordDedupWindowHit(window string) {
	c.dedupWindowHits.WithLabelValues(window).Inc()
}

// RecordDedupWindowMiss 记录去重窗口未命中（信封 ID 新纳入）
func (c *Collector) RecordDedupWindowMiss(window string) {
	c.dedupWindowMisses.WithLabelValues(window).Inc()
}

// =============================================================================
// 🗄️ 数据库指标记录
// =============================================================================

// RecordDBConnections 记录数据库连接数
func (c *Collector) RecordDBConnections(database string, open, idle int) {
	c.dbConnectionsOpen.WithLabelValues(database).Set(float64(open))
	c.dbConnectionsIdle.WithLabelValues(database).Set(float64(idle))
}

// RecordDBQuery 记录数据库查询
func (c *Collector) RecordDBQuery(database, operation string, duration time.Duration) {
	c.dbQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}
