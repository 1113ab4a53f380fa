package domain

// CommandTag identifies the runtime variant of a Command.
type CommandTag string

const (
	CmdCreateTeam     CommandTag = "create_team"
	CmdJoinTeam       CommandTag = "join_team"
	CmdLeaveTeam      CommandTag = "leave_team"
	CmdSubmitStrategy CommandTag = "submit_strategy"
	CmdChangeStage    CommandTag = "change_stage"
)

// Command is one requested action against a session. The hierarchy is
// closed; each variant is valid for exactly one player role, enforced
// by the dispatcher registry.
type Command interface {
	Tag() CommandTag

	command()
}

// CreateTeam registers a new team; the issuer becomes its captain.
type CreateTeam struct {
	TeamName string `json:"team_name"`
	Password string `json:"password"`
}

func (CreateTeam) Tag() CommandTag { return CmdCreateTeam }
func (CreateTeam) command()        {}

// JoinTeam adds the issuer to an existing team.
type JoinTeam struct {
	TeamName string `json:"team_name"`
	Password string `json:"password"`
}

func (JoinTeam) Tag() CommandTag { return CmdJoinTeam }
func (JoinTeam) command()        {}

// LeaveTeam removes the issuer from their team.
type LeaveTeam struct{}

func (LeaveTeam) Tag() CommandTag { return CmdLeaveTeam }
func (LeaveTeam) command()        {}

// SubmitStrategy records the team's strategy text.
type SubmitStrategy struct {
	Strategy string `json:"strategy"`
}

func (SubmitStrategy) Tag() CommandTag { return CmdSubmitStrategy }
func (SubmitStrategy) command()        {}

// ChangeStage advances the session to the next stage.
type ChangeStage struct{}

func (ChangeStage) Tag() CommandTag { return CmdChangeStage }
func (ChangeStage) command()        {}
