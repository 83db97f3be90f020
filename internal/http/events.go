package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spinhall/clubhouse/internal/pubsub"
)

// pushEnvelope is the JSON wrapper a Pub/Sub push subscription delivers.
// The payload itself is base64-encoded MessagePack.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"`
	} `json:"message"`
}

// decodePush unwraps a push delivery into the raw MessagePack bytes.
func decodePush(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return nil, false
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var envelope pushEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		log.Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil, false
	}
	rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		log.Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return nil, false
	}
	return rawData, true
}

// RatingChangedEventHandler receives rating-changed events and posts the
// match result to the club channel.
func (s *Server) RatingChangedEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, ok := decodePush(w, r)
		if !ok {
			return
		}
		var event pubsub.RatingChangedEvent
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		dryRun := isDryRunFromContext(r) || s.Cfg.DryRun
		if err := s.Notifier.SendMatchResult(&event, dryRun); err != nil {
			log.Error("Failed to notify match result", "error", err)
			http.Error(w, "Failed to notify match result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// TournamentStandingsEventHandler receives standings snapshots and posts
// them to the club channel.
func (s *Server) TournamentStandingsEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, ok := decodePush(w, r)
		if !ok {
			return
		}
		var event pubsub.TournamentStandingsEvent
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		dryRun := isDryRunFromContext(r) || s.Cfg.DryRun
		if err := s.Notifier.SendTournamentStandings(&event, dryRun); err != nil {
			log.Error("Failed to notify tournament standings", "error", err)
			http.Error(w, "Failed to notify tournament standings", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
