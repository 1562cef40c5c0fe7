package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the donation ledger
var (
	DonationsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donations_recorded_total",
			Help: "Total number of donations inserted into the ledger",
		},
	)

	DonationValidationRejectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donation_validation_rejects_total",
			Help: "Total number of donation requests rejected by input validation",
		},
	)

	AuthFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of requests rejected for missing or invalid credentials",
		},
	)

	LeaderboardRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_requests_total",
			Help: "Total number of leaderboard requests served",
		},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(DonationsRecordedTotal)
	prometheus.MustRegister(DonationValidationRejectsTotal)
	prometheus.MustRegister(AuthFailuresTotal)
	prometheus.MustRegister(LeaderboardRequestsTotal)
}
