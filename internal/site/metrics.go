package site

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics are registered on a registry owned by the Server so several
// servers (tests) never collide on the global one.
type metrics struct {
	registry    *prometheus.Registry
	pageViews   *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		pageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_page_views_total",
			Help: "Page renders by initial section.",
		}, []string{"section"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_contact_submissions_total",
			Help: "Contact endpoint requests by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.pageViews,
		m.submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
