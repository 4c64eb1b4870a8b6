package chat

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the chat service.
type Metrics struct {
	MessagesTotal      *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

// NewMetrics registers and returns chat metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salus_messages_total",
			Help: "Total messages handled by resolve outcome or error.",
		}, []string{"result"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salus_emergency_notifications_total",
			Help: "Total emergency escalation attempts by status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.MessagesTotal,
		m.NotificationsTotal,
	)

	return m
}

func (m *Metrics) observeNotify(ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.NotificationsTotal.WithLabelValues(status).Inc()
}
