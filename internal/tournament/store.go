package tournament

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spinhall/clubhouse/internal/club"
)

// New creates a new TournamentStore. Rating updates triggered by approvals
// run through the members store's transaction helpers so they commit
// atomically with the tournament's own writes.
func New(db *sql.DB, members club.ClubStore) TournamentStore {
	return &store{
		db:      db,
		members: members,
	}
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

func statusOf(q querier) (Status, error) {
	var status Status
	err := q.QueryRow("SELECT status FROM tournament WHERE id = 1").Scan(&status)
	return status, err
}

func (s *store) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return statusOf(s.db)
}

func (s *store) IsActive() (bool, error) {
	status, err := s.Status()
	if err != nil {
		return false, err
	}
	return status == StatusActive, nil
}

// transition moves the tournament from one of the allowed statuses to the
// target status, running extra inside the same transaction.
func (s *store) transition(allowed []Status, to Status, extra func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := statusOf(tx)
	if err != nil {
		return err
	}
	ok := false
	for _, a := range allowed {
		if current == a {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: cannot move tournament from %s to %s", club.ErrInvalidState, current, to)
	}

	if _, err := tx.Exec("UPDATE tournament SET status = ? WHERE id = 1", to); err != nil {
		return err
	}
	if extra != nil {
		if err := extra(tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Tournament transitioned", "from", current, "to", to)
	return nil
}

func clearTx(tx *sql.Tx) error {
	for _, stmt := range []string{
		"DELETE FROM tournament_matches",
		"DELETE FROM tournament_players",
		"DELETE FROM tournament_stats",
		"UPDATE tournament SET current_round = 0, started_at = NULL, ended_at = NULL WHERE id = 1",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Announce opens registration. Announcing after a completed tournament
// clears the previous tournament's players, matches and stats.
func (s *store) Announce() error {
	return s.transition([]Status{StatusNotStarted, StatusCompleted}, StatusAnnounced, clearTx)
}

func (s *store) Start() error {
	return s.transition([]Status{StatusAnnounced}, StatusActive, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE tournament SET started_at = ? WHERE id = 1", time.Now().Unix())
		return err
	})
}

func (s *store) Pause() error {
	return s.transition([]Status{StatusActive}, StatusPaused, nil)
}

func (s *store) Resume() error {
	return s.transition([]Status{StatusPaused}, StatusActive, nil)
}

func (s *store) End() error {
	return s.transition([]Status{StatusActive, StatusPaused}, StatusCompleted, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE tournament SET ended_at = ? WHERE id = 1", time.Now().Unix())
		return err
	})
}

// Reset discards a completed tournament and returns to the idle state.
func (s *store) Reset() error {
	return s.transition([]Status{StatusCompleted}, StatusNotStarted, clearTx)
}

// Register adds a member to the tournament. Registration is open while the
// tournament is announced or active.
func (s *store) Register(principal string) error {
	if _, err := s.members.GetMember(principal); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := statusOf(s.db)
	if err != nil {
		return err
	}
	if status != StatusAnnounced && status != StatusActive {
		return fmt.Errorf("%w: registration is closed while the tournament is %s", club.ErrInvalidState, status)
	}

	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM tournament_players WHERE principal = ?)", principal).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s is already registered", club.ErrConflict, principal)
	}

	_, err = s.db.Exec(
		"INSERT INTO tournament_players (principal, registered_at) VALUES (?, ?)",
		principal, time.Now().Unix(),
	)
	if err != nil {
		return err
	}
	log.Info("Player registered for tournament", "principal", principal)
	return nil
}

func (s *store) Unregister(principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := statusOf(s.db)
	if err != nil {
		return err
	}
	if status != StatusAnnounced && status != StatusActive {
		return fmt.Errorf("%w: registration is closed while the tournament is %s", club.ErrInvalidState, status)
	}

	res, err := s.db.Exec("DELETE FROM tournament_players WHERE principal = ?", principal)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s is not registered", club.ErrNotFound, principal)
	}
	log.Info("Player unregistered from tournament", "principal", principal)
	return nil
}

func (s *store) Players() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listPlayers(s.db)
}

func listPlayers(q querier) ([]Player, error) {
	rows, err := q.Query(`
		SELECT p.principal, m.name, p.registered_at
		FROM tournament_players p
		JOIN members m ON m.principal = p.principal
		ORDER BY p.registered_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.Principal, &p.Name, &p.RegisteredAt); err != nil {
			log.Error("Failed to scan tournament player row", "error", err)
			continue
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// validScore reports whether a score pair is a decided best-of-three set
// count.
func validScore(scoreA, scoreB int) bool {
	switch {
	case scoreA == 2 && (scoreB == 0 || scoreB == 1):
		return true
	case scoreB == 2 && (scoreA == 0 || scoreA == 1):
		return true
	}
	return false
}

// SubmitMatch records a pending tournament match in the given round. Rounds
// are created implicitly; submitting into a new round advances the current
// round counter.
func (s *store) SubmitMatch(round int, playerA, playerB string, scoreA, scoreB int, tableNumber *int) (*Match, error) {
	if round < 1 {
		return nil, fmt.Errorf("%w: rounds are numbered from 1", club.ErrInvalidInput)
	}
	if playerA == playerB {
		return nil, fmt.Errorf("%w: a player cannot play themselves", club.ErrInvalidInput)
	}
	if !validScore(scoreA, scoreB) {
		return nil, fmt.Errorf("%w: tournament matches are best of three, the score must be 2-0, 2-1, 1-2 or 0-2", club.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := statusOf(s.db)
	if err != nil {
		return nil, err
	}
	if status != StatusActive {
		return nil, fmt.Errorf("%w: tournament is %s, not active", club.ErrInvalidState, status)
	}

	for _, p := range []string{playerA, playerB} {
		var registered bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM tournament_players WHERE principal = ?)", p).Scan(&registered); err != nil {
			return nil, err
		}
		if !registered {
			return nil, fmt.Errorf("%w: %s is not registered for the tournament", club.ErrNotFound, p)
		}
	}

	var index int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tournament_matches WHERE round_number = ?", round).Scan(&index); err != nil {
		return nil, err
	}

	m := &Match{
		ID:          uuid.New().String(),
		Round:       round,
		Index:       index,
		PlayerA:     playerA,
		PlayerB:     playerB,
		ScoreA:      scoreA,
		ScoreB:      scoreB,
		TableNumber: tableNumber,
		Status:      club.StatusPending,
		SubmittedAt: time.Now().Unix(),
	}
	_, err = s.db.Exec(
		"INSERT INTO tournament_matches (id, round_number, match_index, player_a, player_b, score_a, score_b, table_number, status, submitted_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.Round, m.Index, m.PlayerA, m.PlayerB, m.ScoreA, m.ScoreB, m.TableNumber, m.Status, m.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.Exec("UPDATE tournament SET current_round = MAX(current_round, ?) WHERE id = 1", round); err != nil {
		return nil, err
	}
	log.Info("Tournament match submitted", "round", round, "index", index, "playerA", playerA, "playerB", playerB)
	return m, nil
}

const matchColumns = "id, round_number, match_index, player_a, player_b, score_a, score_b, table_number, status, rejection_reason, submitted_at"

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var table sql.NullInt64
	var reason sql.NullString
	err := scanner.Scan(
		&m.ID, &m.Round, &m.Index, &m.PlayerA, &m.PlayerB, &m.ScoreA, &m.ScoreB,
		&table, &m.Status, &reason, &m.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	if table.Valid {
		n := int(table.Int64)
		m.TableNumber = &n
	}
	if reason.Valid {
		m.RejectionReason = &reason.String
	}
	return &m, nil
}

func getMatch(q querier, round, index int) (*Match, error) {
	row := q.QueryRow("SELECT "+matchColumns+" FROM tournament_matches WHERE round_number = ? AND match_index = ?", round, index)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: tournament match %d/%d", club.ErrNotFound, round, index)
	}
	return m, err
}

func (s *store) GetMatch(round, index int) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMatch(s.db, round, index)
}

func (s *store) Matches() ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMatches(s.db)
}

func listMatches(q querier) ([]Match, error) {
	rows, err := q.Query("SELECT " + matchColumns + " FROM tournament_matches ORDER BY round_number, match_index")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan tournament match row", "error", err)
			continue
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// ApproveMatch commits a pending tournament match. Rating updates, stats
// accumulation and the status flip happen in ONE transaction under the
// members store's write lock.
func (s *store) ApproveMatch(round, index int) (*ApprovalOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var outcome *ApprovalOutcome
	err := s.members.InTx(func(tx *sql.Tx) error {
		status, err := statusOf(tx)
		if err != nil {
			return err
		}
		if status != StatusActive {
			return fmt.Errorf("%w: tournament is %s, not active", club.ErrInvalidState, status)
		}

		m, err := getMatch(tx, round, index)
		if err != nil {
			return err
		}
		if m.Status != club.StatusPending {
			return fmt.Errorf("%w: no pending tournament match %d/%d", club.ErrNotFound, round, index)
		}

		applied, err := s.members.ApplyResultTx(tx, m.PlayerA, m.PlayerB, m.ScoreA, m.ScoreB)
		if err != nil {
			return err
		}

		if _, err := tx.Exec("UPDATE tournament_matches SET status = ? WHERE id = ?", club.StatusApproved, m.ID); err != nil {
			return err
		}

		winner, loser := m.PlayerA, m.PlayerB
		winnerGames, loserGames := m.ScoreA, m.ScoreB
		if m.ScoreB > m.ScoreA {
			winner, loser = m.PlayerB, m.PlayerA
			winnerGames, loserGames = m.ScoreB, m.ScoreA
		}
		if err := upsertStatsTx(tx, winner, 1, 0, winnerGames, loserGames, PointsPerWin); err != nil {
			return err
		}
		if err := upsertStatsTx(tx, loser, 0, 1, loserGames, winnerGames, PointsPerLoss); err != nil {
			return err
		}

		var pending int
		if err := tx.QueryRow(
			"SELECT COUNT(*) FROM tournament_matches WHERE round_number = ? AND status = ?",
			round, club.StatusPending,
		).Scan(&pending); err != nil {
			return err
		}

		m.Status = club.StatusApproved
		outcome = &ApprovalOutcome{
			Applied:       applied,
			Match:         m,
			RoundComplete: pending == 0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Tournament match approved", "round", round, "index", index,
		"playerA", outcome.Applied.PlayerA, "changeA", outcome.Applied.RatingChangeA,
		"playerB", outcome.Applied.PlayerB, "changeB", outcome.Applied.RatingChangeB,
		"roundComplete", outcome.RoundComplete)
	return outcome, nil
}

func upsertStatsTx(tx *sql.Tx, principal string, wins, losses, gamesWon, gamesLost, points int) error {
	_, err := tx.Exec(`
		INSERT INTO tournament_stats (principal, wins, losses, games_won, games_lost, points)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			games_won = games_won + excluded.games_won,
			games_lost = games_lost + excluded.games_lost,
			points = points + excluded.points`,
		principal, wins, losses, gamesWon, gamesLost, points,
	)
	return err
}

// RejectMatch marks a pending tournament match rejected. Unlike regular
// matches the reason is optional. A rejection resolves the match, so it
// reports round completion just like an approval.
func (s *store) RejectMatch(round, index int, reason *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE tournament_matches SET status = ?, rejection_reason = ? WHERE round_number = ? AND match_index = ? AND status = ?",
		club.StatusRejected, reason, round, index, club.StatusPending,
	)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, fmt.Errorf("%w: no pending tournament match %d/%d", club.ErrNotFound, round, index)
	}

	var pending int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM tournament_matches WHERE round_number = ? AND status = ?",
		round, club.StatusPending,
	).Scan(&pending); err != nil {
		return false, err
	}

	log.Info("Tournament match rejected", "round", round, "index", index, "roundComplete", pending == 0)
	return pending == 0, nil
}

// Standings lists every registered player ordered by points, wins, games
// won and finally name, with 1-based ranks. Players without an approved
// match yet appear with zero stats.
func (s *store) Standings() ([]StandingsRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.principal, m.name,
			COALESCE(st.wins, 0), COALESCE(st.losses, 0),
			COALESCE(st.games_won, 0), COALESCE(st.games_lost, 0),
			COALESCE(st.points, 0)
		FROM tournament_players p
		JOIN members m ON m.principal = p.principal
		LEFT JOIN tournament_stats st ON st.principal = p.principal`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []StandingsRow
	for rows.Next() {
		var r StandingsRow
		if err := rows.Scan(&r.Principal, &r.Name, &r.Wins, &r.Losses, &r.GamesWon, &r.GamesLost, &r.Points); err != nil {
			log.Error("Failed to scan standings row", "error", err)
			continue
		}
		standings = append(standings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		return a.Name < b.Name
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

func (s *store) State() (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var state State
	var started, ended sql.NullInt64
	err := s.db.QueryRow("SELECT status, current_round, started_at, ended_at FROM tournament WHERE id = 1").
		Scan(&state.Status, &state.CurrentRound, &started, &ended)
	if err != nil {
		return nil, err
	}
	if started.Valid {
		state.StartedAt = &started.Int64
	}
	if ended.Valid {
		state.EndedAt = &ended.Int64
	}

	if state.Players, err = listPlayers(s.db); err != nil {
		return nil, err
	}
	if state.Matches, err = listMatches(s.db); err != nil {
		return nil, err
	}
	return &state, nil
}
