package http

import (
	"net/http"

	"github.com/spinhall/clubhouse/internal/access"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/config"
	"github.com/spinhall/clubhouse/internal/gallery"
	"github.com/spinhall/clubhouse/internal/ladder"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/notifier"
	"github.com/spinhall/clubhouse/internal/pubsub"
	"github.com/spinhall/clubhouse/internal/schedule"
	"github.com/spinhall/clubhouse/internal/tournament"
)

func NewServer(
	store club.ClubStore,
	ladderSvc *ladder.Service,
	tournamentEngine *tournament.Engine,
	accessStore access.Store,
	galleryStore gallery.GalleryStore,
	blobs gallery.BlobStore,
	scheduleStore schedule.ScheduleStore,
	notif notifier.Notifier,
	metricsSvc metrics.Metrics,
	metricsHandler http.Handler,
	cfg config.Config,
	ps pubsub.PubSubClient,
) *Server {
	server := &Server{
		Store:          store,
		Ladder:         ladderSvc,
		Tournament:     tournamentEngine,
		Access:         accessStore,
		Gallery:        galleryStore,
		Blobs:          blobs,
		Schedule:       scheduleStore,
		Notifier:       notif,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         ps,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// The principal middleware runs first so every handler can read the
	// caller's identity from the request context.
	handle := func(pattern string, h http.Handler) {
		s.Router.Handle(pattern, Chain(h, principalMiddleware, paramsMiddleware))
	}

	s.Router.Handle("/metrics", s.MetricsHandler)
	handle("GET /health", s.HealthCheckHandler())

	// Members, directory and claims
	handle("GET /directory", s.DirectoryHandler())
	handle("GET /members", s.ListMembersHandler())
	handle("GET /members/me", s.MyProfileHandler())
	handle("PUT /members/me", s.UpdateProfileHandler())
	handle("PUT /members/me/photo", s.UpdateProfilePhotoHandler())
	handle("GET /members/{principal}", s.GetMemberHandler())
	handle("DELETE /members/{principal}", s.DeleteMemberHandler())
	handle("POST /members", s.CreateMemberHandler())
	handle("POST /claim", s.ClaimHandler())

	// Leaderboards
	handle("GET /leaderboard", s.LeaderboardHandler())
	handle("GET /leaderboard/categories", s.CategoryLeaderboardsHandler())

	// Regular matches
	handle("POST /matches", s.SubmitMatchHandler())
	handle("GET /matches/pending", s.PendingMatchesHandler())
	handle("GET /matches/approved", s.ApprovedMatchesHandler())
	handle("GET /matches/history/{principal}", s.MatchHistoryHandler())
	handle("POST /matches/{id}/approve", s.ApproveMatchHandler())
	handle("POST /matches/{id}/reject", s.RejectMatchHandler())

	// Tournament
	handle("GET /tournament", s.TournamentStateHandler())
	handle("GET /tournament/standings", s.TournamentStandingsHandler())
	handle("POST /tournament/announce", s.TournamentAnnounceHandler())
	handle("POST /tournament/start", s.TournamentTransitionHandler("start"))
	handle("POST /tournament/pause", s.TournamentTransitionHandler("pause"))
	handle("POST /tournament/resume", s.TournamentTransitionHandler("resume"))
	handle("POST /tournament/end", s.TournamentTransitionHandler("end"))
	handle("POST /tournament/reset", s.TournamentTransitionHandler("reset"))
	handle("POST /tournament/register", s.TournamentRegisterHandler())
	handle("DELETE /tournament/register", s.TournamentUnregisterHandler())
	handle("POST /tournament/players", s.TournamentAddPlayerHandler())
	handle("DELETE /tournament/players/{principal}", s.TournamentRemovePlayerHandler())
	handle("POST /tournament/matches", s.TournamentSubmitMatchHandler())
	handle("POST /tournament/matches/{round}/{index}/approve", s.TournamentApproveMatchHandler())
	handle("POST /tournament/matches/{round}/{index}/reject", s.TournamentRejectMatchHandler())

	// Gallery and banner
	handle("GET /photos", s.ListPhotosHandler())
	handle("POST /photos", s.UploadPhotoHandler())
	handle("DELETE /photos/{key...}", s.DeletePhotoHandler())
	handle("GET /banner", s.BannerHandler())
	handle("PUT /banner", s.ReorderBannerHandler())
	handle("POST /banner", s.AddToBannerHandler())
	handle("DELETE /banner/{key...}", s.RemoveFromBannerHandler())

	// Schedule
	handle("GET /schedule", s.ListSessionsHandler())
	handle("POST /schedule", s.CreateSessionHandler())
	handle("PUT /schedule/{date}", s.UpdateSessionHandler())
	handle("DELETE /schedule/{date}", s.DeleteSessionHandler())

	// Access control
	handle("POST /access/init", s.InitAccessHandler())
	handle("POST /access/roles", s.AssignRoleHandler())
	handle("GET /access/roles/me", s.MyRoleHandler())
	handle("GET /access/score-admins", s.ListScoreAuthAdminsHandler())
	handle("POST /access/score-admins", s.AppointScoreAuthAdminHandler())
	handle("DELETE /access/score-admins/{principal}", s.RemoveScoreAuthAdminHandler())

	// Pub/Sub push subscriptions
	handle("POST /events/rating-changed", s.RatingChangedEventHandler())
	handle("POST /events/tournament-standings", s.TournamentStandingsEventHandler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
