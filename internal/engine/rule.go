package engine

import (
	"context"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
)

// Rule is the unit implementing validation, mutation and response
// construction for one (role, command) pair.
//
// Contract: the player already matches the rule's accepted role (a
// dispatch precondition), reads and writes happen through db inside
// the dispatcher's transaction, and a first validation failure aborts
// with a domain error and zero state change. Every returned envelope
// carries exactly one explicit recipient.
type Rule interface {
	// Accepts returns the (role, command) pair this rule handles.
	Accepts() (domain.RoleTag, domain.CommandTag)

	// Process validates the command, mutates state and builds the
	// addressed response messages.
	Process(ctx context.Context, db repository.DBTX, player domain.Player, cmd domain.Command) ([]domain.Envelope, error)
}

type ruleKey struct {
	role domain.RoleTag
	cmd  domain.CommandTag
}
