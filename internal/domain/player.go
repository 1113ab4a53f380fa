package domain

// RoleTag identifies the runtime variant of a Player. Together with a
// CommandTag it selects the single rule that may process a command.
type RoleTag string

const (
	PlayerUnknown     RoleTag = "unknown"
	PlayerTeamMember  RoleTag = "team_member"
	PlayerTeamCaptain RoleTag = "team_captain"
	PlayerTeacher     RoleTag = "teacher"
)

// Player is the role a user currently holds within one session.
// Exactly one variant applies per (session, user) pair; it is derived
// from membership records and session ownership, never stored.
//
// The hierarchy is closed: only the four variants below implement it.
type Player interface {
	Role() RoleTag
	Session() int64
	Account() User

	player()
}

// Unknown is an authenticated user with no established role in the
// session yet (pre-join).
type Unknown struct {
	SessionID int64
	User      User
}

func (p Unknown) Role() RoleTag  { return PlayerUnknown }
func (p Unknown) Session() int64 { return p.SessionID }
func (p Unknown) Account() User  { return p.User }
func (Unknown) player()          {}

// TeamMember belongs to a team without captain privileges.
type TeamMember struct {
	SessionID int64
	User      User
	TeamID    int64
}

func (p TeamMember) Role() RoleTag  { return PlayerTeamMember }
func (p TeamMember) Session() int64 { return p.SessionID }
func (p TeamMember) Account() User  { return p.User }
func (TeamMember) player()          {}

// TeamCaptain belongs to a team with captain privileges, e.g.
// submitting the team strategy.
type TeamCaptain struct {
	SessionID int64
	User      User
	TeamID    int64
}

func (p TeamCaptain) Role() RoleTag  { return PlayerTeamCaptain }
func (p TeamCaptain) Session() int64 { return p.SessionID }
func (p TeamCaptain) Account() User  { return p.User }
func (TeamCaptain) player()          {}

// Teacher is the session creator.
type Teacher struct {
	SessionID int64
	User      User
}

func (p Teacher) Role() RoleTag  { return PlayerTeacher }
func (p Teacher) Session() int64 { return p.SessionID }
func (p Teacher) Account() User  { return p.User }
func (Teacher) player()          {}

// PlayerTeamID returns the team a player belongs to, if any.
func PlayerTeamID(p Player) (int64, bool) {
	switch v := p.(type) {
	case TeamMember:
		return v.TeamID, true
	case TeamCaptain:
		return v.TeamID, true
	default:
		return 0, false
	}
}