// Package dao provides data access objects for use in the clrviz server.
package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Grammars() GrammarRepository
	Close() error
}

type GrammarRepository interface {

	// Create creates a new Grammar. All attributes except for auto-generated
	// fields are taken from the provided Grammar. If a Grammar with the same
	// Key already exists, ErrConstraintViolation is returned.
	Create(ctx context.Context, g Grammar) (Grammar, error)
	GetByID(ctx context.Context, id uuid.UUID) (Grammar, error)
	GetByKey(ctx context.Context, key string) (Grammar, error)

	// GetAll returns every stored Grammar, ordered by creation time.
	GetAll(ctx context.Context) ([]Grammar, error)

	// Touch sets the LastUsed time of the Grammar with the given ID to now
	// and returns the updated Grammar.
	Touch(ctx context.Context, id uuid.UUID) (Grammar, error)
	Delete(ctx context.Context, id uuid.UUID) (Grammar, error)
}

// Grammar is a stored grammar along with its built tables.
type Grammar struct {
	ID uuid.UUID

	// Key identifies the canonical form of the rules together with the
	// conflict policy they were built under.
	Key string

	Rules  []string
	Policy string

	// Tables is the binary encoding of the built tables.
	Tables []byte

	States    int
	Conflicts int

	Created  time.Time
	LastUsed time.Time
}
