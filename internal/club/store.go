package club

import (
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spinhall/clubhouse/internal/elo"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

func (s *store) GetMember(principal string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMember(s.db, principal)
}

// querier lets member lookups run both on the pool and inside a transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getMember(q querier, principal string) (*Member, error) {
	var m Member
	var photoKey sql.NullString
	err := q.QueryRow(
		"SELECT principal, name, photo_key, rating, created_at FROM members WHERE principal = ?",
		principal,
	).Scan(&m.Principal, &m.Name, &photoKey, &m.Rating, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: member %s", ErrNotFound, principal)
	}
	if err != nil {
		return nil, err
	}
	if photoKey.Valid {
		m.PhotoKey = &photoKey.String
	}
	return &m, nil
}

func (s *store) ListMembers() ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT principal, name, photo_key, rating, created_at FROM members ORDER BY name")
	if err != nil {
		log.Error("Failed to query members", "error", err)
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		var photoKey sql.NullString
		if err := rows.Scan(&m.Principal, &m.Name, &photoKey, &m.Rating, &m.CreatedAt); err != nil {
			log.Error("Failed to scan member row", "error", err)
			continue
		}
		if photoKey.Valid {
			m.PhotoKey = &photoKey.String
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Leaderboard returns all claimed members sorted by rating descending with
// 1-based ranks. Ties are broken by name ascending so the order is stable
// across recomputations.
func (s *store) Leaderboard() ([]RankedMember, error) {
	members, err := s.ListMembers()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Rating != members[j].Rating {
			return members[i].Rating > members[j].Rating
		}
		return members[i].Name < members[j].Name
	})

	ranked := make([]RankedMember, len(members))
	for i, m := range members {
		ranked[i] = RankedMember{Member: m, Rank: i + 1}
	}
	return ranked, nil
}

// Directory lists claimed members (with their global rank) followed by
// unclaimed pre-created records, which carry rank 0.
func (s *store) Directory() ([]DirectoryEntry, error) {
	ranked, err := s.Leaderboard()
	if err != nil {
		return nil, err
	}
	unclaimed, err := s.UnclaimedMembers()
	if err != nil {
		return nil, err
	}

	entries := make([]DirectoryEntry, 0, len(ranked)+len(unclaimed))
	for _, m := range ranked {
		entries = append(entries, DirectoryEntry{
			Name:     m.Name,
			Rating:   m.Rating,
			Rank:     m.Rank,
			Claimed:  true,
			PhotoKey: m.PhotoKey,
		})
	}
	for _, c := range unclaimed {
		entries = append(entries, DirectoryEntry{
			Name:     c.Name,
			Rating:   c.Rating,
			Claimed:  false,
			PhotoKey: c.PhotoKey,
		})
	}
	return entries, nil
}

func (s *store) UpdateProfile(principal, name string, photoKey *string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE members SET name = ?, photo_key = ? WHERE principal = ?", name, photoKey, principal)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: member %s", ErrNotFound, principal)
	}
	return nil
}

func (s *store) UpdateMemberPhoto(principal, photoKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE members SET photo_key = ? WHERE principal = ?", photoKey, principal)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: member %s", ErrNotFound, principal)
	}
	return nil
}

// DeleteMember removes a member from the directory and leaderboard. Match
// history rows are intentionally left in place; they are an immutable audit
// trail.
func (s *store) DeleteMember(principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM members WHERE principal = ?", principal)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: member %s", ErrNotFound, principal)
	}
	log.Info("Deleted member", "principal", principal)
	return nil
}

// CreateMemberWithClaimCode stores a pre-created member record keyed by a
// fresh one-time code and returns the code. Delivery of the code to the new
// member happens out of band.
func (s *store) CreateMemberWithClaimCode(name string, photoKey *string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}

	code, err := newClaimCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT INTO claim_codes (code, name, rating, photo_key, created_at) VALUES (?, ?, ?, ?, ?)",
		code, name, elo.DefaultRating, photoKey, time.Now().Unix(),
	)
	if err != nil {
		log.Error("Failed to store claim code", "error", err, "name", name)
		return "", err
	}
	log.Info("Created member with claim code", "name", name)
	return code, nil
}

// newClaimCode returns 128 bits of randomness as a compact base32 string.
func newClaimCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate claim code: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// ClaimMember redeems a one-time claim code for the given identity. The
// claim record is deleted in the same transaction that creates the member,
// so a code can be consumed exactly once.
func (s *store) ClaimMember(code, principal string) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM members WHERE principal = ?)", principal).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: identity already linked to a member", ErrConflict)
	}

	var rec ClaimRecord
	var photoKey sql.NullString
	err = tx.QueryRow(
		"SELECT code, name, rating, photo_key, created_at FROM claim_codes WHERE code = ?",
		code,
	).Scan(&rec.Code, &rec.Name, &rec.Rating, &photoKey, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: claim code", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if photoKey.Valid {
		rec.PhotoKey = &photoKey.String
	}

	member := &Member{
		Principal: principal,
		Name:      rec.Name,
		PhotoKey:  rec.PhotoKey,
		Rating:    rec.Rating,
		CreatedAt: time.Now().Unix(),
	}
	_, err = tx.Exec(
		"INSERT INTO members (principal, name, photo_key, rating, created_at) VALUES (?, ?, ?, ?, ?)",
		member.Principal, member.Name, member.PhotoKey, member.Rating, member.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec("DELETE FROM claim_codes WHERE code = ?", code); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Claim code redeemed", "principal", principal, "name", member.Name)
	return member, nil
}

func (s *store) UnclaimedMembers() ([]ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT code, name, rating, photo_key, created_at FROM claim_codes ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ClaimRecord
	for rows.Next() {
		var rec ClaimRecord
		var photoKey sql.NullString
		if err := rows.Scan(&rec.Code, &rec.Name, &rec.Rating, &photoKey, &rec.CreatedAt); err != nil {
			log.Error("Failed to scan claim code row", "error", err)
			continue
		}
		if photoKey.Valid {
			rec.PhotoKey = &photoKey.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SubmitMatch creates a pending match score between two existing members.
// Score and authorization validation happens in the ladder service; the
// store only guarantees both players exist.
func (s *store) SubmitMatch(playerA, playerB string, scoreA, scoreB int) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range []string{playerA, playerB} {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM members WHERE principal = ?)", p).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: member %s", ErrNotFound, p)
		}
	}

	m := &Match{
		ID:          uuid.New().String(),
		PlayerA:     playerA,
		PlayerB:     playerB,
		ScoreA:      scoreA,
		ScoreB:      scoreB,
		Status:      StatusPending,
		SubmittedAt: time.Now().Unix(),
	}
	_, err := s.db.Exec(
		"INSERT INTO matches (id, player_a, player_b, score_a, score_b, status, submitted_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.PlayerA, m.PlayerB, m.ScoreA, m.ScoreB, m.Status, m.SubmittedAt,
	)
	if err != nil {
		log.Error("Failed to insert match", "error", err, "playerA", playerA, "playerB", playerB)
		return nil, err
	}
	log.Info("Match submitted", "matchID", m.ID, "playerA", playerA, "playerB", playerB, "score", fmt.Sprintf("%d-%d", scoreA, scoreB))
	return m, nil
}

const matchColumns = "id, player_a, player_b, score_a, score_b, status, rejection_reason, k_factor_a, k_factor_b, rating_change_a, rating_change_b, submitted_at"

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var reason sql.NullString
	err := scanner.Scan(
		&m.ID, &m.PlayerA, &m.PlayerB, &m.ScoreA, &m.ScoreB, &m.Status,
		&reason, &m.KFactorA, &m.KFactorB, &m.RatingChangeA, &m.RatingChangeB, &m.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		m.RejectionReason = &reason.String
	}
	return &m, nil
}

func (s *store) GetMatch(id string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT "+matchColumns+" FROM matches WHERE id = ?", id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	return m, err
}

func (s *store) listMatches(query string, args ...any) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (s *store) PendingMatches() ([]Match, error) {
	return s.listMatches("SELECT "+matchColumns+" FROM matches WHERE status = ? ORDER BY submitted_at", StatusPending)
}

func (s *store) ApprovedMatches() ([]Match, error) {
	return s.listMatches("SELECT "+matchColumns+" FROM matches WHERE status = ? ORDER BY submitted_at DESC", StatusApproved)
}

// MatchHistory returns every approved match a player took part in, oldest
// first, from the player's own perspective for display.
func (s *store) MatchHistory(principal string) ([]Match, error) {
	return s.listMatches(
		"SELECT "+matchColumns+" FROM matches WHERE status = ? AND (player_a = ? OR player_b = ?) ORDER BY submitted_at",
		StatusApproved, principal, principal,
	)
}

// ApproveMatch commits a pending match: both ratings, both K-factors and the
// status flip happen in one transaction. A second approval of the same match
// finds no pending row and fails with NotFound, so ratings change exactly
// once per match.
func (s *store) ApproveMatch(id string) (*AppliedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRow("SELECT "+matchColumns+" FROM matches WHERE id = ? AND status = ?", id, StatusPending)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no pending match %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	applied, err := applyResultTx(tx, m.PlayerA, m.PlayerB, m.ScoreA, m.ScoreB)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(
		"UPDATE matches SET status = ?, k_factor_a = ?, k_factor_b = ?, rating_change_a = ?, rating_change_b = ? WHERE id = ?",
		StatusApproved, applied.KFactorA, applied.KFactorB, applied.RatingChangeA, applied.RatingChangeB, id,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Match approved", "matchID", id,
		"playerA", applied.PlayerA, "changeA", applied.RatingChangeA, "newRatingA", applied.NewRatingA,
		"playerB", applied.PlayerB, "changeB", applied.RatingChangeB, "newRatingB", applied.NewRatingB)
	return applied, nil
}

// RejectMatch marks a pending match rejected. Ratings are never touched.
func (s *store) RejectMatch(id string, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE matches SET status = ?, rejection_reason = ? WHERE id = ? AND status = ?",
		StatusRejected, reason, id, StatusPending,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: no pending match %s", ErrNotFound, id)
	}
	log.Info("Match rejected", "matchID", id)
	return nil
}

// InTx runs fn in a single transaction under the store's write lock.
func (s *store) InTx(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ApplyResultTx applies the Elo outcome of a decided match to both players
// inside the caller's transaction. The caller must hold the store lock via
// InTx.
func (s *store) ApplyResultTx(tx *sql.Tx, playerA, playerB string, scoreA, scoreB int) (*AppliedResult, error) {
	return applyResultTx(tx, playerA, playerB, scoreA, scoreB)
}

func applyResultTx(tx *sql.Tx, playerA, playerB string, scoreA, scoreB int) (*AppliedResult, error) {
	memberA, err := getMember(tx, playerA)
	if err != nil {
		return nil, err
	}
	memberB, err := getMember(tx, playerB)
	if err != nil {
		return nil, err
	}

	countA, err := approvedCountTx(tx, playerA)
	if err != nil {
		return nil, err
	}
	countB, err := approvedCountTx(tx, playerB)
	if err != nil {
		return nil, err
	}

	// Each player's delta is computed with their own K-factor, taken from
	// their approved match count before this approval.
	kA := elo.KFactor(countA)
	kB := elo.KFactor(countB)
	deltaA, _ := elo.Delta(memberA.Rating, memberB.Rating, scoreA, scoreB, kA)
	_, deltaB := elo.Delta(memberA.Rating, memberB.Rating, scoreA, scoreB, kB)

	// Ratings never drop below zero; the stored change is the effective one.
	newA := memberA.Rating + deltaA
	if newA < 0 {
		newA = 0
	}
	newB := memberB.Rating + deltaB
	if newB < 0 {
		newB = 0
	}

	if _, err := tx.Exec("UPDATE members SET rating = ? WHERE principal = ?", newA, playerA); err != nil {
		return nil, err
	}
	if _, err := tx.Exec("UPDATE members SET rating = ? WHERE principal = ?", newB, playerB); err != nil {
		return nil, err
	}

	return &AppliedResult{
		PlayerA:       playerA,
		PlayerB:       playerB,
		KFactorA:      kA,
		KFactorB:      kB,
		RatingChangeA: newA - memberA.Rating,
		RatingChangeB: newB - memberB.Rating,
		NewRatingA:    newA,
		NewRatingB:    newB,
	}, nil
}

// approvedCountTx counts a player's approved regular matches. Tournament
// matches keep their own history and do not feed the K-factor.
func approvedCountTx(tx *sql.Tx, principal string) (int, error) {
	var count int
	err := tx.QueryRow(
		"SELECT COUNT(*) FROM matches WHERE status = ? AND (player_a = ? OR player_b = ?)",
		StatusApproved, principal, principal,
	).Scan(&count)
	return count, err
}
