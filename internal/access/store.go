package access

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spinhall/clubhouse/internal/club"
)

// Role is the coarse permission level of a principal.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new access Store.
func New(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) InitializeAccessControl(principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var adminExists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM user_roles WHERE role = ?)", RoleAdmin).Scan(&adminExists)
	if err != nil {
		return err
	}
	if adminExists {
		return nil
	}

	_, err = s.db.Exec(
		"INSERT INTO user_roles (principal, role) VALUES (?, ?) ON CONFLICT(principal) DO UPDATE SET role = excluded.role",
		principal, RoleAdmin,
	)
	if err != nil {
		return err
	}
	log.Info("Access control initialized", "admin", principal)
	return nil
}

func (s *store) AssignRole(principal string, role Role) error {
	switch role {
	case RoleAdmin, RoleUser, RoleGuest:
	default:
		return fmt.Errorf("%w: unknown role %q", club.ErrInvalidInput, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO user_roles (principal, role) VALUES (?, ?) ON CONFLICT(principal) DO UPDATE SET role = excluded.role",
		principal, role,
	)
	if err != nil {
		log.Error("Failed to assign role", "error", err, "principal", principal, "role", role)
	}
	return err
}

// Role returns the stored role for a principal, defaulting to user for
// principals without an explicit assignment.
func (s *store) Role(principal string) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var role Role
	err := s.db.QueryRow("SELECT role FROM user_roles WHERE principal = ?", principal).Scan(&role)
	if err == sql.ErrNoRows {
		return RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

func (s *store) IsAdmin(principal string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM user_roles WHERE principal = ? AND role = ?)",
		principal, RoleAdmin,
	).Scan(&exists)
	if err != nil {
		log.Error("Failed to check admin role", "error", err, "principal", principal)
		return false
	}
	return exists
}

func (s *store) IsScoreAuthAdmin(principal string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM score_auth_admins WHERE principal = ?)", principal).Scan(&exists)
	if err != nil {
		log.Error("Failed to check score-auth admin", "error", err, "principal", principal)
		return false
	}
	return exists
}

func (s *store) CanApproveScores(principal string) bool {
	return s.IsAdmin(principal) || s.IsScoreAuthAdmin(principal)
}

func (s *store) AppointScoreAuthAdmin(principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO score_auth_admins (principal, appointed_at) VALUES (?, ?) ON CONFLICT(principal) DO NOTHING",
		principal, time.Now().Unix(),
	)
	if err == nil {
		log.Info("Appointed score-auth admin", "principal", principal)
	}
	return err
}

func (s *store) RemoveScoreAuthAdmin(principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM score_auth_admins WHERE principal = ?", principal)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: score-auth admin %s", club.ErrNotFound, principal)
	}
	return nil
}

func (s *store) ListScoreAuthAdmins() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT principal FROM score_auth_admins ORDER BY appointed_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			log.Error("Failed to scan score-auth admin row", "error", err)
			continue
		}
		admins = append(admins, p)
	}
	return admins, rows.Err()
}
