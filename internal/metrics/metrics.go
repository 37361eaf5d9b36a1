package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "billroom"

// Metrics groups the engine collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	generated      *prometheus.CounterVec
	skipped        *prometheus.CounterVec
	claims         prometheus.Counter
	claimsDropped  prometheus.Counter
	stepsCommitted prometheus.Counter
	stepsSkipped   *prometheus.CounterVec
	verified       prometheus.Counter
	archived       prometheus.Counter
	busyRooms      prometheus.Gauge
	queued         prometheus.Gauge
	online         prometheus.Gauge
	networkFlips   prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_generated_total",
			Help:      "Transactions synthesized by the generator, by tier.",
		}, []string{"tier"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_ticks_skipped_total",
			Help:      "Generator ticks that emitted nothing, by tier and reason.",
		}, []string{"tier", "reason"}),
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_claims_total",
			Help:      "Transactions claimed by a room.",
		}),
		claimsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_claims_dropped_total",
			Help:      "Claims dropped because no staff member could be resolved.",
		}),
		stepsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "script_steps_committed_total",
			Help:      "Script messages committed to the chat store.",
		}),
		stepsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "script_steps_suppressed_total",
			Help:      "Script timers suppressed while offline, by phase.",
		}, []string{"phase"}),
		verified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_verified_total",
			Help:      "Transactions flipped to Verified.",
		}),
		archived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_archived_total",
			Help:      "Verified transactions merged into the archive totals.",
		}),
		busyRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_busy",
			Help:      "Rooms currently playing a script.",
		}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_queued_transactions",
			Help:      "Transactions waiting in room queues.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_online",
			Help:      "1 when the network gate reports online.",
		}),
		networkFlips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_transitions_total",
			Help:      "Online/offline transitions of the network gate.",
		}),
	}

	reg.MustRegister(
		m.generated,
		m.skipped,
		m.claims,
		m.claimsDropped,
		m.stepsCommitted,
		m.stepsSkipped,
		m.verified,
		m.archived,
		m.busyRooms,
		m.queued,
		m.online,
		m.networkFlips,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Generated(tier string) {
	if m == nil {
		return
	}
	m.generated.WithLabelValues(tier).Inc()
}

func (m *Metrics) GeneratorSkipped(tier, reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(tier, reason).Inc()
}

func (m *Metrics) Claimed() {
	if m == nil {
		return
	}
	m.claims.Inc()
}

func (m *Metrics) ClaimDropped() {
	if m == nil {
		return
	}
	m.claimsDropped.Inc()
}

func (m *Metrics) StepCommitted() {
	if m == nil {
		return
	}
	m.stepsCommitted.Inc()
}

// StepSuppressed counts a typing or commit timer that fired while offline.
func (m *Metrics) StepSuppressed(phase string) {
	if m == nil {
		return
	}
	m.stepsSkipped.WithLabelValues(phase).Inc()
}

func (m *Metrics) Verified() {
	if m == nil {
		return
	}
	m.verified.Inc()
}

func (m *Metrics) Archived(n int) {
	if m == nil {
		return
	}
	m.archived.Add(float64(n))
}

func (m *Metrics) SetRooms(busy, queued int) {
	if m == nil {
		return
	}
	m.busyRooms.Set(float64(busy))
	m.queued.Set(float64(queued))
}

// NetworkChanged records a gate transition.
func (m *Metrics) NetworkChanged(online bool) {
	if m == nil {
		return
	}

	m.networkFlips.Inc()
	m.SetOnline(online)
}

func (m *Metrics) SetOnline(online bool) {
	if m == nil {
		return
	}

	if online {
		m.online.Set(1)
	} else {
		m.online.Set(0)
	}
}
