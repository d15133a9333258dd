package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type serverMetrics struct {
	logins    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer) (*serverMetrics, error) {
	m := &serverMetrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devidp",
			Name:      "logins_total",
			Help:      "Login requests by response status.",
		}, []string{"status"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devidp",
			Name:      "refreshes_total",
			Help:      "Refresh requests by response status.",
		}, []string{"status"}),
	}
	for _, c := range []prometheus.Collector{m.logins, m.refreshes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
