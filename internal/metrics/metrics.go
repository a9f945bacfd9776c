package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InstructionsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feehub_instructions_built_total", Help: "Hub instructions assembled"},
		[]string{"kind"},
	)
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feehub_validation_failures_total", Help: "Requests rejected before reaching the network"},
		[]string{"reason"},
	)
	RPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feehub_rpc_requests_total", Help: "Ledger RPC calls"},
		[]string{"method", "status"},
	)
	TransactionsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feehub_transactions_submitted_total", Help: "Transactions sent to the ledger"},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(InstructionsBuilt, ValidationFailures, RPCRequests, TransactionsSubmitted)
}

// Status maps an error to a label value.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
