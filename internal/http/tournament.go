package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spinhall/clubhouse/internal/club"
)

func (s *Server) TournamentStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.Tournament.State()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, state)
	}
}

func (s *Server) TournamentStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Tournament.Standings()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, standings)
	}
}

// TournamentAnnounceHandler opens a tournament for registration and posts
// the announcement to the club channel.
func (s *Server) TournamentAnnounceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if err := s.Tournament.Announce(caller); err != nil {
			respondError(w, err)
			return
		}
		dryRun := isDryRunFromContext(r) || s.Cfg.DryRun
		if err := s.Notifier.SendTournamentAnnouncement(dryRun); err != nil {
			log.Error("Failed to send tournament announcement", "error", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// TournamentTransitionHandler serves the remaining lifecycle endpoints.
func (s *Server) TournamentTransitionHandler(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		var err error
		switch action {
		case "start":
			err = s.Tournament.Start(caller)
		case "pause":
			err = s.Tournament.Pause(caller)
		case "resume":
			err = s.Tournament.Resume(caller)
		case "end":
			err = s.Tournament.End(caller)
		case "reset":
			err = s.Tournament.Reset(caller)
		default:
			err = fmt.Errorf("%w: unknown tournament action %q", club.ErrInvalidInput, action)
		}
		if err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) TournamentRegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Tournament.Register(principalFromContext(r)); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) TournamentUnregisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Tournament.Unregister(principalFromContext(r)); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) TournamentAddPlayerHandler() http.HandlerFunc {
	type request struct {
		Principal string `json:"principal"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Tournament.AddPlayer(caller, req.Principal); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) TournamentRemovePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if err := s.Tournament.RemovePlayer(caller, r.PathValue("principal")); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) TournamentSubmitMatchHandler() http.HandlerFunc {
	type request struct {
		Round       int    `json:"round"`
		PlayerA     string `json:"player_a"`
		PlayerB     string `json:"player_b"`
		ScoreA      int    `json:"score_a"`
		ScoreB      int    `json:"score_b"`
		TableNumber *int   `json:"table_number"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if req.PlayerA == "" {
			req.PlayerA = caller
		}
		match, err := s.Tournament.SubmitMatchWithPlayers(caller, req.Round, req.PlayerA, req.PlayerB, req.ScoreA, req.ScoreB, req.TableNumber)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, match)
	}
}

// matchCoordinates parses the {round}/{index} path values.
func matchCoordinates(r *http.Request) (int, int, error) {
	round, err := strconv.Atoi(r.PathValue("round"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: round must be a number", club.ErrInvalidInput)
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: index must be a number", club.ErrInvalidInput)
	}
	return round, index, nil
}

func (s *Server) TournamentApproveMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		round, index, err := matchCoordinates(r)
		if err != nil {
			respondError(w, err)
			return
		}
		outcome, err := s.Tournament.ApproveMatch(caller, round, index)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, outcome)
	}
}

func (s *Server) TournamentRejectMatchHandler() http.HandlerFunc {
	type request struct {
		Reason string `json:"reason"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		round, index, err := matchCoordinates(r)
		if err != nil {
			respondError(w, err)
			return
		}
		// The body is optional for tournament rejections.
		var req request
		if r.Body != nil && r.ContentLength != 0 {
			if err := decodeJSON(r, &req); err != nil {
				respondError(w, err)
				return
			}
		}
		if err := s.Tournament.RejectMatch(caller, round, index, req.Reason); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
