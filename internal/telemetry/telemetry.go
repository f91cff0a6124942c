// =============================================================================
// OpenTelemetry Metric API Wiring
// =============================================================================
// Exposes a process-wide otel Meter without pulling in any SDK or exporter.
// Metrics recorded here are no-ops until the embedding binary installs its
// own otel/sdk/metric MeterProvider via otel.SetMeterProvider — wiring an
// exporter is a deployment concern, not a core concern.
// =============================================================================

package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// InstrumentationName identifies this module's metrics to whatever
// MeterProvider the embedding process installs.
const InstrumentationName = "github.com/agentmesh/core"

// Meter returns the global otel Meter for this module. When no SDK
// MeterProvider has been installed, otel's default noop provider makes every
// instrument created from it a safe no-op.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Instruments bundles the otel counters/histograms the kernel, routing, and
// eventstore packages record against. Construction never fails against the
// noop provider; it can fail against a real SDK provider if instrument
// options are malformed, so NewInstruments surfaces that error.
type Instruments struct {
	DispatchCount  metric.Int64Counter
	HandlerErrors  metric.Int64Counter
	HopDrops       metric.Int64Counter
	SnapshotCount  metric.Int64Counter
	ReplayDuration metric.Float64Histogram
}

// NewInstruments builds the shared instrument set from the current global
// Meter. Call it once after installing a real MeterProvider (if any); the
// returned Instruments remain valid (as no-ops) even if none was installed.
func NewInstruments(logger *zap.Logger) (*Instruments, error) {
	m := Meter()

	dispatchCount, err := m.Int64Counter(
		"core.kernel.dispatch_count",
		metric.WithDescription("Number of envelopes dispatched to agent handlers"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := m.Int64Counter(
		"core.kernel.handler_errors",
		metric.WithDescription("Number of handler errors, retryable and fatal"),
	)
	if err != nil {
		return nil, err
	}

	hopDrops, err := m.Int64Counter(
		"core.routing.hop_drops",
		metric.WithDescription("Number of envelopes dropped for hop-count violations"),
	)
	if err != nil {
		return nil, err
	}

	snapshotCount, err := m.Int64Counter(
		"core.eventstore.snapshot_count",
		metric.WithDescription("Number of snapshots written"),
	)
	if err != nil {
		return nil, err
	}

	replayDuration, err := m.Float64Histogram(
		"core.eventstore.replay_duration_seconds",
		metric.WithDescription("Duration of event replay during state rebuild"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("otel instruments initialized", zap.String("instrumentation", InstrumentationName))

	return &Instruments{
		DispatchCount:  dispatchCount,
		HandlerErrors:  handlerErrors,
		HopDrops:       hopDrops,
		SnapshotCount:  snapshotCount,
		ReplayDuration: replayDuration,
	}, nil
}
