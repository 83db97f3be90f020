package tournament

// TournamentStore defines the interface for the tournament lifecycle,
// registrations, matches and standings. Authorization lives in the Engine;
// the store enforces state transitions and data invariants.
type TournamentStore interface {
	// Lifecycle
	State() (*State, error)
	Status() (Status, error)
	IsActive() (bool, error)
	Announce() error
	Start() error
	Pause() error
	Resume() error
	End() error
	Reset() error

	// Registration
	Register(principal string) error
	Unregister(principal string) error
	Players() ([]Player, error)

	// Matches
	SubmitMatch(round int, playerA, playerB string, scoreA, scoreB int, tableNumber *int) (*Match, error)
	GetMatch(round, index int) (*Match, error)
	Matches() ([]Match, error)
	ApproveMatch(round, index int) (*ApprovalOutcome, error)
	RejectMatch(round, index int, reason *string) (roundComplete bool, err error)

	Standings() ([]StandingsRow, error)
}
