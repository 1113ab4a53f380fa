package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
)

// Router receives the envelopes a committed rule execution produced and
// fans them out to the session's live stream.
type Router interface {
	Append(sessionID int64, envelopes ...domain.Envelope)
}

// Publisher mirrors committed envelopes to an external broker for
// offline consumers. Optional; failures are logged, never surfaced.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// MessagesTopic is the broker topic committed envelopes are mirrored to.
const MessagesTopic = "competition.messages"

// Engine routes each incoming command to the single rule registered
// for the caller's (role, command) pair and runs it inside one
// transaction. Rule errors are surfaced unchanged; the engine never
// retries a failed execution.
type Engine struct {
	db        repository.DB
	resolver  *PlayerResolver
	router    Router
	publisher Publisher
	logger    *slog.Logger
	rules     map[ruleKey]Rule
}

// New builds an engine with the given rules. Registering two rules for
// the same (role, command) pair is a configuration fault and panics.
func New(db repository.DB, resolver *PlayerResolver, router Router, logger *slog.Logger, rules ...Rule) *Engine {
	e := &Engine{
		db:       db,
		resolver: resolver,
		router:   router,
		logger:   logger,
		rules:    make(map[ruleKey]Rule, len(rules)),
	}
	for _, rule := range rules {
		role, cmd := rule.Accepts()
		key := ruleKey{role: role, cmd: cmd}
		if _, dup := e.rules[key]; dup {
			panic(fmt.Sprintf("engine: duplicate rule for (%s, %s)", role, cmd))
		}
		e.rules[key] = rule
	}
	return e
}

// WithPublisher attaches an external broker mirror.
func (e *Engine) WithPublisher(p Publisher) *Engine {
	e.publisher = p
	return e
}

// Execute resolves the caller's player variant, picks the matching
// rule and runs it inside a transaction scoped to the rule's reads and
// writes. On commit the produced envelopes are appended to the
// session's event log in completion order.
func (e *Engine) Execute(ctx context.Context, sessionID int64, user domain.User, cmd domain.Command) ([]domain.Envelope, error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin command tx", err)
	}
	defer tx.Rollback(ctx)

	player, err := e.resolver.Resolve(ctx, tx, sessionID, user)
	if err != nil {
		return nil, err
	}

	rule, ok := e.rules[ruleKey{role: player.Role(), cmd: cmd.Tag()}]
	if !ok {
		return nil, domain.ErrNoRule(player.Role(), cmd.Tag())
	}

	envelopes, err := rule.Process(ctx, tx, player, cmd)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit command tx", err)
	}

	if len(envelopes) > 0 {
		e.router.Append(sessionID, envelopes...)
		e.mirror(ctx, sessionID, envelopes)
	}

	attrs := []any{
		"session_id", sessionID,
		"role", player.Role(),
		"command", cmd.Tag(),
		"envelopes", len(envelopes),
	}
	if teamID, ok := domain.PlayerTeamID(player); ok {
		attrs = append(attrs, "team_id", teamID)
	}
	e.logger.Info("command processed", attrs...)
	return envelopes, nil
}

// brokerRecord is the wire shape of a mirrored envelope.
type brokerRecord struct {
	SessionID int64            `json:"session_id"`
	Recipient domain.Recipient `json:"recipient"`
	Kind      string           `json:"kind"`
	Message   domain.Message   `json:"message"`
}

func (e *Engine) mirror(ctx context.Context, sessionID int64, envelopes []domain.Envelope) {
	if e.publisher == nil {
		return
	}
	key := []byte(strconv.FormatInt(sessionID, 10))
	for _, env := range envelopes {
		value, err := json.Marshal(brokerRecord{
			SessionID: sessionID,
			Recipient: env.Recipient,
			Kind:      string(env.Message.Kind()),
			Message:   env.Message,
		})
		if err != nil {
			e.logger.Error("marshal broker record", "error", err, "session_id", sessionID)
			continue
		}
		if err := e.publisher.Publish(ctx, MessagesTopic, key, value); err != nil {
			e.logger.Error("publish envelope", "error", err, "session_id", sessionID)
		}
	}
}
