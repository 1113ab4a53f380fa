package domain

import "github.com/google/uuid"

// MessageKind identifies the runtime variant of a Message payload.
type MessageKind string

const (
	MsgTeamCreated       MessageKind = "team_created"
	MsgTeamJoined        MessageKind = "team_joined"
	MsgRosterChanged     MessageKind = "roster_changed"
	MsgTeamLeft          MessageKind = "team_left"
	MsgStrategySubmitted MessageKind = "strategy_submitted"
	MsgStageChanged      MessageKind = "stage_changed"
	MsgRoundTransition   MessageKind = "round_transition"
)

// Message is one payload variant emitted by a rule. The set is closed.
type Message interface {
	Kind() MessageKind

	message()
}

// TeamCreated announces a newly registered team to the session.
type TeamCreated struct {
	TeamName string `json:"team_name"`
	IDInGame int    `json:"id_in_game"`
}

func (TeamCreated) Kind() MessageKind { return MsgTeamCreated }
func (TeamCreated) message()          {}

// TeamJoined echoes the post-join roster to the joined team.
type TeamJoined struct {
	TeamName     string   `json:"team_name"`
	IDInGame     int      `json:"id_in_game"`
	MemberEmails []string `json:"member_emails"`
}

func (TeamJoined) Kind() MessageKind { return MsgTeamJoined }
func (TeamJoined) message()          {}

// RosterChanged echoes the roster after a member left.
type RosterChanged struct {
	TeamName     string   `json:"team_name"`
	IDInGame     int      `json:"id_in_game"`
	MemberEmails []string `json:"member_emails"`
}

func (RosterChanged) Kind() MessageKind { return MsgRosterChanged }
func (RosterChanged) message()          {}

// TeamLeft confirms the departure to the member who left. Addressed to
// the user because they no longer receive their old team's envelopes.
type TeamLeft struct {
	TeamName string `json:"team_name"`
}

func (TeamLeft) Kind() MessageKind { return MsgTeamLeft }
func (TeamLeft) message()          {}

// StrategySubmitted confirms the captain's strategy to the team.
type StrategySubmitted struct {
	TeamName string `json:"team_name"`
	Strategy string `json:"strategy"`
}

func (StrategySubmitted) Kind() MessageKind { return MsgStrategySubmitted }
func (StrategySubmitted) message()          {}

// StageChanged announces a stage transition. RoundLengthSec carries the
// configured round length so clients can start their timers.
type StageChanged struct {
	From           Stage `json:"from"`
	To             Stage `json:"to"`
	RoundLengthSec int   `json:"round_length_sec"`
	IsEndOfGame    bool  `json:"is_end_of_game"`
}

func (StageChanged) Kind() MessageKind { return MsgStageChanged }
func (StageChanged) message()          {}

// RoundTransition is the normalized round event derived from a
// StageChanged payload by the round projection. Rules never emit it.
type RoundTransition struct {
	RoundNumber    int  `json:"round_number"`
	RoundLengthSec int  `json:"round_length_sec"`
	IsEndOfGame    bool `json:"is_end_of_game"`
}

func (RoundTransition) Kind() MessageKind { return MsgRoundTransition }
func (RoundTransition) message()          {}

// RecipientKind distinguishes team-addressed from user-addressed
// envelopes. A session-wide broadcast is one envelope per current
// team, never a wildcard.
type RecipientKind string

const (
	RecipientTeam RecipientKind = "team"
	RecipientUser RecipientKind = "user"
)

// Recipient addresses exactly one audience for an envelope.
type Recipient struct {
	Kind   RecipientKind `json:"kind"`
	TeamID int64         `json:"team_id,omitempty"`
	UserID uuid.UUID     `json:"user_id,omitempty"`
}

// TeamRecipient addresses a whole team.
func TeamRecipient(teamID int64) Recipient {
	return Recipient{Kind: RecipientTeam, TeamID: teamID}
}

// UserRecipient addresses a single player.
func UserRecipient(userID uuid.UUID) Recipient {
	return Recipient{Kind: RecipientUser, UserID: userID}
}

// Envelope pairs a message payload with its single explicit recipient.
// Envelopes are created by rules, appended once to the session event
// log and never mutated.
type Envelope struct {
	Recipient Recipient `json:"recipient"`
	Message   Message   `json:"message"`
}
