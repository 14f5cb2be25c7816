package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for the inbound message flow.
type WebhookMetrics struct {
	inboundTotal   *prometheus.CounterVec
	repliesTotal   *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whatsorder",
			Subsystem: "webhook",
			Name:      "inbound_total",
			Help:      "Total inbound gateway webhooks by message kind and outcome",
		}, []string{"kind", "outcome"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whatsorder",
			Subsystem: "webhook",
			Name:      "replies_total",
			Help:      "Total outbound replies by channel and send status",
		}, []string{"channel", "status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "whatsorder",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of webhook processing end to end",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.repliesTotal, m.webhookLatency)
	return m
}

func (m *WebhookMetrics) ObserveInbound(kind, outcome string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *WebhookMetrics) ObserveReply(channel, status string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(channel, status).Inc()
}

func (m *WebhookMetrics) ObserveLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(kind).Observe(seconds)
}
