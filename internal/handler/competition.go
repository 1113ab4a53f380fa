package handler

import (
	"net/http"

	"github.com/compclass/platform/internal/auth"
	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CompetitionHandler exposes session creation, pin checks and command
// submission.
type CompetitionHandler struct {
	competitions *service.CompetitionService
	process      *service.ProcessService
	accounts     *service.AuthService
}

// NewCompetitionHandler creates a new CompetitionHandler.
func NewCompetitionHandler(
	competitions *service.CompetitionService,
	process *service.ProcessService,
	accounts *service.AuthService,
) *CompetitionHandler {
	return &CompetitionHandler{competitions: competitions, process: process, accounts: accounts}
}

// Create handles POST /competitions.
func (h *CompetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := h.caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var settings domain.Settings
	if err := DecodeJSON(r, &settings); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{"code": "BAD_REQUEST", "message": "invalid JSON body"})
		return
	}

	created, err := h.competitions.Create(r.Context(), *user, settings)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, created)
}

// CheckPin handles POST /competitions/check_pin.
func (h *CompetitionHandler) CheckPin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Pin string `json:"pin"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{"code": "BAD_REQUEST", "message": "invalid JSON body"})
		return
	}

	exists, err := h.competitions.CheckPin(r.Context(), input.Pin)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// SubmitCommand handles POST /competitions/{pin}/commands.
func (h *CompetitionHandler) SubmitCommand(w http.ResponseWriter, r *http.Request) {
	user, err := h.caller(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	cmd, err := decodeCommand(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	envelopes, err := h.process.SubmitCommand(r.Context(), chi.URLParam(r, "pin"), *user, cmd)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"envelopes": envelopes})
}

// StudentInfo handles GET /competitions/{pin}/student_info.
func (h *CompetitionHandler) StudentInfo(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no auth context"))
		return
	}

	info, err := h.process.StudentInfo(r.Context(), userID, chi.URLParam(r, "pin"))
	if err != nil {
		RespondError(w, err)
		return
	}
	if info == nil {
		RespondError(w, domain.ErrNotFound("competition info", chi.URLParam(r, "pin")))
		return
	}
	RespondJSON(w, http.StatusOK, info)
}

func (h *CompetitionHandler) caller(r *http.Request) (*domain.User, error) {
	id := auth.UserIDFromContext(r.Context())
	return h.accounts.UserByID(r.Context(), id)
}

// commandRequest is the wire shape of a submitted command: a type tag
// plus the variant's own fields.
type commandRequest struct {
	Type     domain.CommandTag `json:"type"`
	TeamName string            `json:"team_name,omitempty"`
	Password string            `json:"password,omitempty"`
	Strategy string            `json:"strategy,omitempty"`
}

func decodeCommand(r *http.Request) (domain.Command, error) {
	var req commandRequest
	if err := DecodeJSON(r, &req); err != nil {
		return nil, domain.ErrValidation("invalid JSON body")
	}

	switch req.Type {
	case domain.CmdCreateTeam:
		return domain.CreateTeam{TeamName: req.TeamName, Password: req.Password}, nil
	case domain.CmdJoinTeam:
		return domain.JoinTeam{TeamName: req.TeamName, Password: req.Password}, nil
	case domain.CmdLeaveTeam:
		return domain.LeaveTeam{}, nil
	case domain.CmdSubmitStrategy:
		return domain.SubmitStrategy{Strategy: req.Strategy}, nil
	case domain.CmdChangeStage:
		return domain.ChangeStage{}, nil
	default:
		return nil, domain.ErrValidation("unknown command type")
	}
}
