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

type Server struct {
	Store          club.ClubStore
	Ladder         *ladder.Service
	Tournament     *tournament.Engine
	Access         access.Store
	Gallery        gallery.GalleryStore
	Blobs          gallery.BlobStore
	Schedule       schedule.ScheduleStore
	Notifier       notifier.Notifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
