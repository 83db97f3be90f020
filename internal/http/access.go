package http

import (
	"fmt"
	"net/http"

	"github.com/spinhall/clubhouse/internal/access"
	"github.com/spinhall/clubhouse/internal/club"
)

// InitAccessHandler bootstraps access control: the first caller becomes the
// admin, later calls change nothing.
func (s *Server) InitAccessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if caller == "" {
			respondError(w, fmt.Errorf("%w: authentication required", club.ErrForbidden))
			return
		}
		if err := s.Access.InitializeAccessControl(caller); err != nil {
			respondError(w, err)
			return
		}
		role, err := s.Access.Role(caller)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"principal": caller, "role": role})
	}
}

func (s *Server) AssignRoleHandler() http.HandlerFunc {
	type request struct {
		Principal string      `json:"principal"`
		Role      access.Role `json:"role"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may assign roles", club.ErrForbidden))
			return
		}
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Access.AssignRole(req.Principal, req.Role); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) MyRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if caller == "" {
			respondError(w, fmt.Errorf("%w: authentication required", club.ErrForbidden))
			return
		}
		role, err := s.Access.Role(caller)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"principal":      caller,
			"role":           role,
			"score_approver": s.Access.CanApproveScores(caller),
		})
	}
}

func (s *Server) ListScoreAuthAdminsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admins, err := s.Access.ListScoreAuthAdmins()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, admins)
	}
}

func (s *Server) AppointScoreAuthAdminHandler() http.HandlerFunc {
	type request struct {
		Principal string `json:"principal"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may appoint score authorities", club.ErrForbidden))
			return
		}
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Access.AppointScoreAuthAdmin(req.Principal); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RemoveScoreAuthAdminHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may remove score authorities", club.ErrForbidden))
			return
		}
		if err := s.Access.RemoveScoreAuthAdmin(r.PathValue("principal")); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
