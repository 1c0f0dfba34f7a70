package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var nodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "treegrid_node_requests_total",
	Help: "Node API requests by operation and outcome",
}, []string{"op", "outcome"})

var gridWidth = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "treegrid_grid_width",
	Help: "Width of the most recently served grid",
})

func countRequest(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	nodeRequests.WithLabelValues(op, outcome).Inc()
}
