package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.dispatchTotal)
	assert.NotNil(t, collector.dispatchDuration)
	assert.NotNil(t, collector.handlerErrorsTotal)
	assert.NotNil(t, collector.deadLettersTotal)
}

func TestCollector_RecordDispatch(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordDispatch("counter", "Increment", "ok", 100*time.Millisecond)

	count := testutil.CollectAndCount(collector.dispatchTotal)
	assert.Greater(t, count, 0)

	collector.RecordDispatch("counter", "Increment", "ok", 50*time.Millisecond)

	newCount := testutil.CollectAndCount(collector.dispatchTotal)
	assert.GreaterOrEqual(t, newCount, count)
}

func TestCollector_RecordHandlerError(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordHandlerError("counter", "Increment", true)
	collector.RecordHandlerError("counter", "Increment", false)

	count := testutil.CollectAndCount(collector.handlerErrorsTotal)
	assert.Greater(t, count, 0)
}

func TestCollector_RecordDeadLetter(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordDeadLetter("counter", "max_retries_exceeded")

	count := testutil.CollectAndCount(collector.deadLettersTotal)
	assert.Greater(t, count, 0)
}

func TestCollector_RecordRoutingDrops(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordHopDrop("down")
	collector.RecordDedupDrop("counter")

	hopCount := testutil.CollectAndCount(collector.hopDropsTotal)
	assert.Greater(t, hopCount, 0)

	dedupCount := testutil.CollectAndCount(collector.dedupDropsTotal)
	assert.Greater(t, dedupCount, 0)
}

func TestCollector_RecordStateTransition(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordStateTransition("counter", "activating", "active")

	count := testutil.CollectAndCount(collector.stateTransitionsTotal)
	assert.Greater(t, count, 0)
}

func TestCollector_RecordEventSourcing(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordSnapshot("account", "interval")
	collector.RecordEventAppend("account", false)
	collector.RecordEventAppend("account", true)
	collector.RecordReplay("account", 42)

	assert.Greater(t, testutil.CollectAndCount(collector.snapshotsTotal), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.eventAppendsTotal), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.replayEventsCount), 0)
}

func TestCollector_RecordDedupWindow(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordDedupWindowHit("default")
	collector.RecordDedupWindowMiss("default")

	assert.Greater(t, testutil.CollectAndCount(collector.dedupWindowHits), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.dedupWindowMisses), 0)
}

func TestCollector_RecordDatabaseQuery(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordDBQuery("postgres", "SELECT", 20*time.Millisecond)

	count := testutil.CollectAndCount(collector.dbQueryDuration)
	assert.Greater(t, count, 0)
}

func TestCollector_UpdateConnectionPool(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordDBConnections("postgres", 10, 5)

	openCount := testutil.CollectAndCount(collector.dbConnectionsOpen)
	assert.Greater(t, openCount, 0)

	idleCount := testutil.CollectAndCount(collector.dbConnectionsIdle)
	assert.Greater(t, idleCount, 0)
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			collector.RecordDispatch("counter", "Increment", "ok", 100*time.Millisecond)
			collector.RecordHandlerError("counter", "Increment", true)
			collector.RecordDedupWindowHit("default")
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	dispatchCount := testutil.CollectAndCount(collector.dispatchTotal)
	assert.Greater(t, dispatchCount, 0)

	errCount := testutil.CollectAndCount(collector.handlerErrorsTotal)
	assert.Greater(t, errCount, 0)

	dedupCount := testutil.CollectAndCount(collector.dedupWindowHits)
	assert.Greater(t, dedupCount, 0)
}

func TestCollector_MetricsRegistration(t *testing.T) {
	logger := zap.NewNop()

	registry := prometheus.NewRegistry()

	collector := NewCollector(nextTestNamespace(), logger)

	registry.MustRegister(collector.dispatchTotal)
	registry.MustRegister(collector.dispatchDuration)

	collector.RecordDispatch("counter", "Increment", "ok", 100*time.Millisecond)

	count := testutil.CollectAndCount(collector.dispatchTotal)
	assert.Greater(t, count, 0)
}
