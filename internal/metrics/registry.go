package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SweepInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scanbench_sweep_info",
		Help: "1 if a benchmark sweep is currently active",
	}, []string{"sweep"})

	TrialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanbench_trials_total",
		Help: "Count of trials executed, by outcome",
	}, []string{"status"})

	TrialDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scanbench_trial_duration_seconds",
		Help: "Elapsed time of the last trial for each configuration",
	}, []string{"sweep", "nodes", "gpus", "batch"})

	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanbench_errors_total",
		Help: "Total number of errors during a sweep",
	}, []string{"type"})
)

var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(SweepInfo)
	Registry.MustRegister(TrialsTotal)
	Registry.MustRegister(TrialDuration)
	Registry.MustRegister(ErrorsTotal)
}
