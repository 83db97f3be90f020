package club

import "database/sql"

// ClubStore defines the interface for interacting with members, claim codes
// and regular match scores.
type ClubStore interface {
	// Members
	GetMember(principal string) (*Member, error)
	ListMembers() ([]Member, error)
	Directory() ([]DirectoryEntry, error)
	Leaderboard() ([]RankedMember, error)
	UpdateProfile(principal, name string, photoKey *string) error
	UpdateMemberPhoto(principal, photoKey string) error
	DeleteMember(principal string) error

	// Claim codes
	CreateMemberWithClaimCode(name string, photoKey *string) (string, error)
	ClaimMember(code, principal string) (*Member, error)
	UnclaimedMembers() ([]ClaimRecord, error)

	// Regular matches
	SubmitMatch(playerA, playerB string, scoreA, scoreB int) (*Match, error)
	GetMatch(id string) (*Match, error)
	PendingMatches() ([]Match, error)
	ApprovedMatches() ([]Match, error)
	MatchHistory(principal string) ([]Match, error)
	ApproveMatch(id string) (*AppliedResult, error)
	RejectMatch(id string, reason *string) error

	// InTx runs fn inside a single write-locked transaction. It is the only
	// way for other stores to combine a rating update with their own writes
	// atomically. ApplyResultTx must only be called from within InTx.
	InTx(fn func(tx *sql.Tx) error) error
	ApplyResultTx(tx *sql.Tx, playerA, playerB string, scoreA, scoreB int) (*AppliedResult, error)
}
