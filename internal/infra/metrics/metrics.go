package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestsTotal — счётчик API-запросов по операции и исходу.
var RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ledger_requests_total",
	Help: "API requests by operation and status code.",
}, []string{"op", "status"})
