package http

import (
	"fmt"
	"net/http"

	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/schedule"
)

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Schedule.ListSessions()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, sessions)
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may manage the schedule", club.ErrForbidden))
			return
		}
		var session schedule.Session
		if err := decodeJSON(r, &session); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Schedule.CreateSession(session); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, session)
	}
}

func (s *Server) UpdateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may manage the schedule", club.ErrForbidden))
			return
		}
		var session schedule.Session
		if err := decodeJSON(r, &session); err != nil {
			respondError(w, err)
			return
		}
		session.Date = r.PathValue("date")
		if err := s.Schedule.UpdateSession(session); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may manage the schedule", club.ErrForbidden))
			return
		}
		if err := s.Schedule.DeleteSession(r.PathValue("date")); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
