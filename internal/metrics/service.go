package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_matches_submitted_total",
			Help: "The total number of match scores submitted.",
		}),
		MatchesApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_matches_approved_total",
			Help: "The total number of match scores approved.",
		}),
		MatchesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_matches_rejected_total",
			Help: "The total number of match scores rejected.",
		}),
		TournamentMatchesApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_tournament_matches_approved_total",
			Help: "The total number of tournament match scores approved.",
		}),
		ClaimCodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_claim_codes_issued_total",
			Help: "The total number of one-time claim codes issued.",
		}),
		ClaimCodesRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_claim_codes_redeemed_total",
			Help: "The total number of claim codes successfully redeemed.",
		}),
		ApprovalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clubhouse_match_approval_duration_seconds",
			Help:    "The duration of individual match approvals.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhouse_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clubhouse_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesSubmitted,
		s.MatchesApproved,
		s.MatchesRejected,
		s.TournamentMatchesApproved,
		s.ClaimCodesIssued,
		s.ClaimCodesRedeemed,
		s.ApprovalDuration,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesSubmitted() {
	s.MatchesSubmitted.Inc()
}

func (s *Service) IncMatchesApproved() {
	s.MatchesApproved.Inc()
}

func (s *Service) IncMatchesRejected() {
	s.MatchesRejected.Inc()
}

func (s *Service) IncTournamentMatchesApproved() {
	s.TournamentMatchesApproved.Inc()
}

func (s *Service) IncClaimCodesIssued() {
	s.ClaimCodesIssued.Inc()
}

func (s *Service) IncClaimCodesRedeemed() {
	s.ClaimCodesRedeemed.Inc()
}

func (s *Service) ObserveApprovalDuration(seconds float64) {
	s.ApprovalDuration.Observe(seconds)
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
