package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plansSelected = promauto.NewCounterVec(
		prometheusCounterOpts("plans_selected_total", "Total number of selected draw plans by generator"),
		[]string{"generator"},
	)
	planSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_search_seconds",
			Help:      "Duration of the generator and seed search.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
	draws = promauto.NewCounter(
		prometheusCounterOpts("draws_total", "Total number of students called"),
	)
	exhaustedPools = promauto.NewCounter(
		prometheusCounterOpts("pools_exhausted_total", "Total draw requests rejected because the pool is exhausted"),
	)
	historyImports = promauto.NewCounter(
		prometheusCounterOpts("history_imports_total", "Total number of imported CSV histories"),
	)
	historyExports = promauto.NewCounter(
		prometheusCounterOpts("history_exports_total", "Total number of exported CSV histories"),
	)
)

// IncPlansSelected увеличивает счётчик выбранных планов для генератора.
func IncPlansSelected(generator string) {
	plansSelected.WithLabelValues(generator).Inc()
}

// ObservePlanSearch записывает длительность поиска плана.
func ObservePlanSearch(d time.Duration) {
	planSearchDuration.Observe(d.Seconds())
}

// IncDraws увеличивает счётчик вызовов.
func IncDraws() {
	draws.Inc()
}

// IncExhaustedPools увеличивает счётчик исчерпанных пулов.
func IncExhaustedPools() {
	exhaustedPools.Inc()
}

// IncHistoryImports увеличивает счётчик импортов.
func IncHistoryImports() {
	historyImports.Inc()
}

// IncHistoryExports увеличивает счётчик экспортов.
func IncHistoryExports() {
	historyExports.Inc()
}

func prometheusCounterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}
}
