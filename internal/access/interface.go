package access

// Checker is the read-only slice of the access store that services gate
// mutating operations on.
type Checker interface {
	IsAdmin(principal string) bool
	IsScoreAuthAdmin(principal string) bool
	// CanApproveScores reports whether the principal may approve or reject
	// match scores: full admins and score-auth admins both qualify.
	CanApproveScores(principal string) bool
}

// Store manages user roles and score-auth admin appointments.
type Store interface {
	Checker

	// InitializeAccessControl bootstraps the first admin: if no admin exists
	// yet, the calling principal becomes one. Later calls are no-ops.
	InitializeAccessControl(principal string) error
	AssignRole(principal string, role Role) error
	Role(principal string) (Role, error)
	AppointScoreAuthAdmin(principal string) error
	RemoveScoreAuthAdmin(principal string) error
	ListScoreAuthAdmins() ([]string, error)
}
