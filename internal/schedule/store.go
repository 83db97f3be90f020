package schedule

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spinhall/clubhouse/internal/club"
)

// Session is one scheduled club session, keyed by date.
type Session struct {
	Date        string  `json:"date"`
	SessionType string  `json:"session_type"`
	Notes       *string `json:"notes,omitempty"`
}

// ScheduleStore defines the interface for the weekly session plan.
type ScheduleStore interface {
	CreateSession(session Session) error
	UpdateSession(session Session) error
	DeleteSession(date string) error
	GetSession(date string) (*Session, error)
	ListSessions() ([]Session, error)
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new ScheduleStore.
func New(db *sql.DB) ScheduleStore {
	return &store{
		db: db,
	}
}

func validate(session Session) error {
	if _, err := time.Parse("2006-01-02", session.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", club.ErrInvalidInput)
	}
	if strings.TrimSpace(session.SessionType) == "" {
		return fmt.Errorf("%w: session type must not be empty", club.ErrInvalidInput)
	}
	return nil
}

func (s *store) CreateSession(session Session) error {
	if err := validate(session); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM sessions WHERE date = ?)", session.Date).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: a session already exists on %s", club.ErrConflict, session.Date)
	}

	_, err := s.db.Exec(
		"INSERT INTO sessions (date, session_type, notes) VALUES (?, ?, ?)",
		session.Date, session.SessionType, session.Notes,
	)
	if err != nil {
		return err
	}
	log.Info("Session created", "date", session.Date, "type", session.SessionType)
	return nil
}

func (s *store) UpdateSession(session Session) error {
	if err := validate(session); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE sessions SET session_type = ?, notes = ? WHERE date = ?",
		session.SessionType, session.Notes, session.Date,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: no session on %s", club.ErrNotFound, session.Date)
	}
	return nil
}

func (s *store) DeleteSession(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM sessions WHERE date = ?", date)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: no session on %s", club.ErrNotFound, date)
	}
	return nil
}

func (s *store) GetSession(date string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var session Session
	var notes sql.NullString
	err := s.db.QueryRow("SELECT date, session_type, notes FROM sessions WHERE date = ?", date).
		Scan(&session.Date, &session.SessionType, &notes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no session on %s", club.ErrNotFound, date)
	}
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		session.Notes = &notes.String
	}
	return &session, nil
}

func (s *store) ListSessions() ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT date, session_type, notes FROM sessions ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		var notes sql.NullString
		if err := rows.Scan(&session.Date, &session.SessionType, &notes); err != nil {
			log.Error("Failed to scan session row", "error", err)
			continue
		}
		if notes.Valid {
			session.Notes = &notes.String
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
