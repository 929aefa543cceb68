package metrics

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
)

const namespace = "decksampler"

// SamplerMetrics records sampling activity. It satisfies decks.Observer so it
// can be handed to every deck, and also tracks whole-sample timings.
type SamplerMetrics struct {
	cardsDropped   prometheus.Counter
	rowsSampled    *prometheus.CounterVec
	backfillRounds prometheus.Histogram
	failures       *prometheus.CounterVec
	samples        prometheus.Counter
	sampleDuration prometheus.Histogram
	sampleRows     *prometheus.GaugeVec

	SampleLatency *Histogram

	rows         atomic.Uint64
	dropped      atomic.Uint64
	failed       atomic.Uint64
	samplesTotal atomic.Uint64
	startTime    time.Time
}

var _ decks.Observer = (*SamplerMetrics)(nil)

// NewSamplerMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewSamplerMetrics(reg prometheus.Registerer) *SamplerMetrics {
	m := &SamplerMetrics{
		cardsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cards_dropped_total",
			Help:      "Deck card names not found in the card universe",
		}),
		rowsSampled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_sampled_total",
			Help:      "Rows drawn from a deck by Choice",
		}, []string{"deck"}),
		backfillRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backfill_rounds",
			Help:      "Backfill rounds needed by unique Choice calls",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 64, 256, 1000},
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "choice_failures_total",
			Help:      "Choice calls that returned an error",
		}, []string{"reason"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Training samples generated",
		}),
		sampleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sample_duration_seconds",
			Help:      "Time to generate a training sample",
			Buckets:   prometheus.DefBuckets,
		}),
		sampleRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sample_rows",
			Help:      "Rows per label in the latest sample",
		}, []string{"label"}),
		SampleLatency: NewHistogram(DefaultHistogramSize),
		startTime:     time.Now(),
	}

	if reg != nil {
		reg.MustRegister(
			m.cardsDropped,
			m.rowsSampled,
			m.backfillRounds,
			m.failures,
			m.samples,
			m.sampleDuration,
			m.sampleRows,
		)
	}
	return m
}

// CardsDropped implements decks.Observer.
func (m *SamplerMetrics) CardsDropped(_ string, names []string) {
	m.cardsDropped.Add(float64(len(names)))
	m.dropped.Add(uint64(len(names)))
}

// RowsSampled implements decks.Observer.
func (m *SamplerMetrics) RowsSampled(deck string, rows int, backfillRounds int) {
	m.rowsSampled.WithLabelValues(deckLabel(deck)).Add(float64(rows))
	m.backfillRounds.Observe(float64(backfillRounds))
	m.rows.Add(uint64(rows))
}

// SampleFailed implements decks.Observer.
func (m *SamplerMetrics) SampleFailed(_ string, err error) {
	m.failures.WithLabelValues(FailureReason(err)).Inc()
	m.failed.Add(1)
}

// ObserveSample records a completed sample and how long it took.
func (m *SamplerMetrics) ObserveSample(s *decks.Sample, took time.Duration) {
	m.samples.Inc()
	m.samplesTotal.Add(1)
	m.sampleDuration.Observe(took.Seconds())
	m.SampleLatency.Record(took)

	m.sampleRows.WithLabelValues("true").Set(float64(s.NumTrue))
	m.sampleRows.WithLabelValues("half").Set(float64(s.NumHalf))
	m.sampleRows.WithLabelValues("false").Set(float64(s.NumFalse))
}

// FailureReason maps sampling errors to a short metric label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, decks.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, decks.ErrInvalidSampleShape):
		return "invalid_shape"
	case errors.Is(err, decks.ErrSamplingStalled):
		return "stalled"
	case errors.Is(err, decks.ErrEmptySource):
		return "empty_source"
	default:
		return "other"
	}
}

func deckLabel(deck string) string {
	if deck == "" {
		return "unnamed"
	}
	return deck
}

// SamplerStats is a JSON snapshot of SamplerMetrics.
type SamplerStats struct {
	SampleLatency LatencyStats `json:"sample_latency"`
	Samples       uint64       `json:"samples"`
	RowsSampled   uint64       `json:"rows_sampled"`
	CardsDropped  uint64       `json:"cards_dropped"`
	Failures      uint64       `json:"failures"`
	Uptime        string       `json:"uptime"`
}

// Stats returns a snapshot of the counters and latency window.
func (m *SamplerMetrics) Stats() *SamplerStats {
	return &SamplerStats{
		SampleLatency: m.SampleLatency.Stats(),
		Samples:       m.samplesTotal.Load(),
		RowsSampled:   m.rows.Load(),
		CardsDropped:  m.dropped.Load(),
		Failures:      m.failed.Load(),
		Uptime:        time.Since(m.startTime).Round(time.Second).String(),
	}
}
