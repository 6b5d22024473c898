package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/racequest/raceapi/internal/race"
)

var (
	// ErrNameTaken means the team name was already claimed by another owner.
	// Registration is first write wins, so the claim is permanent.
	ErrNameTaken = errors.New("team name already taken")
	// ErrTeamNotFound means no record exists for the given name or owner.
	ErrTeamNotFound = errors.New("team not found")
)

// PersistenceError marks a durable write that could not be completed after
// retries. Distinct from domain rejections: the transition must not be
// reported as succeeded when it carries this.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TeamStore is the durable keyed collection of team records.
type TeamStore interface {
	// Get looks a team up by exact name.
	Get(ctx context.Context, name string) (*race.Team, error)
	// GetByOwner resolves the registering participant's team.
	GetByOwner(ctx context.Context, ownerID string) (*race.Team, error)
	// All returns every registered team.
	All(ctx context.Context) ([]*race.Team, error)
	// Register persists a fresh record, failing with ErrNameTaken if the
	// name is already claimed.
	Register(ctx context.Context, t *race.Team) error
	// Upsert durably replaces the team's snapshot before returning.
	Upsert(ctx context.Context, t *race.Team) error
}
