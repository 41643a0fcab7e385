package services

import (
	"errors"

	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the engine's Prometheus collectors.
type Metrics struct {
	chunksReceived      prometheus.Counter
	chunkBytes          prometheus.Counter
	buffersActive       prometheus.Gauge
	transitions         *prometheus.CounterVec
	overrides           prometheus.Counter
	failures            *prometheus.CounterVec
	collaboratorLatency *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		chunksReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "artvault_chunks_received_total",
			Help: "chunks accepted into upload buffers",
		}),
		chunkBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "artvault_chunk_bytes_total",
			Help: "bytes accepted into upload buffers",
		}),
		buffersActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artvault_upload_buffers_active",
			Help: "submissions with buffered chunks",
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artvault_status_transitions_total",
			Help: "lifecycle transitions committed",
		}, []string{"from", "to"}),
		overrides: factory.NewCounter(prometheus.CounterOpts{
			Name: "artvault_overrides_total",
			Help: "administrative status overrides",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artvault_operation_failures_total",
			Help: "operations rejected or failed, by reason",
		}, []string{"operation", "reason"}),
		collaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "artvault_collaborator_seconds",
			Help:    "latency of calls to ledger, oracle, issuer and store",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"collaborator"}),
	}
}

var failureReasons = []struct {
	err    error
	reason string
}{
	{common.ErrorNotFound, "not_found"},
	{common.ErrorForbidden, "forbidden"},
	{common.ErrorUnauthorized, "unauthorized"},
	{common.ErrWrongState, "wrong_state"},
	{common.ErrInvalidTransition, "invalid_transition"},
	{common.ErrInvalidOverride, "invalid_override"},
	{common.ErrSizeExceeded, "size_exceeded"},
	{common.ErrSizeMismatch, "size_mismatch"},
	{common.ErrHashMismatch, "hash_mismatch"},
	{common.ErrIncompleteAsset, "incomplete_asset"},
	{common.ErrChunkIndexOutOfRange, "index_out_of_range"},
	{common.ErrUnsupportedMediaType, "unsupported_media_type"},
	{common.ErrInvalidVerdict, "invalid_verdict"},
	{common.ErrPaymentNotFound, "payment_not_found"},
	{common.ErrLedgerUnavailable, "ledger_unavailable"},
	{common.ErrOracleUnavailable, "oracle_unavailable"},
	{common.ErrIssuerUnavailable, "issuer_unavailable"},
	{common.ErrStorageUnavailable, "storage_unavailable"},
}

func (m *Metrics) fail(operation string, err error) {
	reason := "internal"
	for _, r := range failureReasons {
		if errors.Is(err, r.err) {
			reason = r.reason
			break
		}
	}
	m.failures.WithLabelValues(operation, reason).Inc()
}
