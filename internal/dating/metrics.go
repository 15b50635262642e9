// internal/dating/metrics.go

package dating

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    swipesTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "dating_swipes_total",
            Help: "Total number of swipe actions",
        },
        []string{"action"},
    )

    matchesTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "dating_matches_total",
            Help: "Total number of matches created",
        },
    )

    boostsTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "dating_boosts_total",
            Help: "Total number of boosts created",
        },
    )

    compatibilityScores = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "dating_compatibility_percentage",
            Help:    "Distribution of compatibility percentages",
            Buckets: prometheus.LinearBuckets(0, 10, 11),
        },
    )

    discoveryResults = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "dating_discovery_result_count",
            Help:    "Number of candidates returned per discovery request",
            Buckets: prometheus.ExponentialBuckets(1, 2, 10),
        },
    )

    discoveryDuration = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name: "dating_discovery_duration_seconds",
            Help: "Time spent building a discovery feed",
        },
    )
)

func RecordSwipe(action string) {
    swipesTotal.WithLabelValues(action).Inc()
}

func RecordMatch() {
    matchesTotal.Inc()
}

func RecordBoostCreated() {
    boostsTotal.Inc()
}

func RecordCompatibilityScore(percentage float64) {
    compatibilityScores.Observe(percentage)
}

func ObserveDiscovery(resultCount int, elapsed time.Duration) {
    discoveryResults.Observe(float64(resultCount))
    discoveryDuration.Observe(elapsed.Seconds())
}
