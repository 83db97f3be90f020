package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spinhall/clubhouse/internal/club"
)

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// respondError maps domain error kinds to HTTP status codes. Unrecognized
// errors are internal.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, club.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, club.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, club.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, club.ErrInvalidState), errors.Is(err, club.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", club.ErrInvalidInput)
	}
	return nil
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) DirectoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Store.Directory()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := s.Store.ListMembers()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, members)
	}
}

func (s *Server) GetMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		member, err := s.Store.GetMember(r.PathValue("principal"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, member)
	}
}

func (s *Server) MyProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r)
		if principal == "" {
			respondError(w, fmt.Errorf("%w: authentication required", club.ErrForbidden))
			return
		}
		member, err := s.Store.GetMember(principal)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, member)
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	type request struct {
		Name     string  `json:"name"`
		PhotoKey *string `json:"photo_key"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r)
		if principal == "" {
			respondError(w, fmt.Errorf("%w: authentication required", club.ErrForbidden))
			return
		}
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Store.UpdateProfile(principal, req.Name, req.PhotoKey); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateProfilePhotoHandler sets just the profile photo, leaving the name
// untouched.
func (s *Server) UpdateProfilePhotoHandler() http.HandlerFunc {
	type request struct {
		PhotoKey string `json:"photo_key"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r)
		if principal == "" {
			respondError(w, fmt.Errorf("%w: authentication required", club.ErrForbidden))
			return
		}
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Store.UpdateMemberPhoto(principal, req.PhotoKey); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) DeleteMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if err := s.Ladder.DeleteMember(caller, r.PathValue("principal")); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CreateMemberHandler() http.HandlerFunc {
	type request struct {
		Name     string  `json:"name"`
		PhotoKey *string `json:"photo_key"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		code, err := s.Ladder.CreateMemberWithClaimCode(caller, req.Name, req.PhotoKey)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]string{"claim_code": code})
	}
}

func (s *Server) ClaimHandler() http.HandlerFunc {
	type request struct {
		Code string `json:"code"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		member, err := s.Ladder.ClaimMemberAccount(caller, req.Code)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, member)
	}
}

// LeaderboardHandler returns a handler that serves the global leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ranked, err := s.Ladder.Leaderboard()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ranked)
	}
}

func (s *Server) CategoryLeaderboardsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boards, err := s.Ladder.CategoryLeaderboards()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, boards)
	}
}

func (s *Server) SubmitMatchHandler() http.HandlerFunc {
	type request struct {
		PlayerA string `json:"player_a"`
		PlayerB string `json:"player_b"`
		ScoreA  int    `json:"score_a"`
		ScoreB  int    `json:"score_b"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		// The caller plays as playerA unless an admin submits on behalf
		// of someone else.
		if req.PlayerA == "" {
			req.PlayerA = caller
		}
		match, err := s.Ladder.SubmitMatch(caller, req.PlayerA, req.PlayerB, req.ScoreA, req.ScoreB)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, match)
	}
}

func (s *Server) PendingMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.PendingMatches()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) ApprovedMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.ApprovedMatches()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) MatchHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.MatchHistory(r.PathValue("principal"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) ApproveMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		applied, err := s.Ladder.ApproveMatch(caller, r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, applied)
	}
}

func (s *Server) RejectMatchHandler() http.HandlerFunc {
	type request struct {
		Reason string `json:"reason"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Ladder.RejectMatch(caller, r.PathValue("id"), req.Reason); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
