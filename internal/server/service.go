package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/racequest/raceapi/internal/race"
)

// Service coordinates every transition: it serializes the read-modify-persist
// cycle per team, commits to the store, and only then fans out to the mirror
// and the event broker. Domain rules live in the engine; the service owns
// ordering and durability.
type Service struct {
	store  TeamStore
	engine *race.Engine
	mirror *Mirror
	broker *Broker
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store TeamStore, engine *race.Engine, mirror *Mirror, broker *Broker, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		mirror: mirror,
		broker: broker,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockTeam acquires the team's transition lock, creating it on first use.
// Records are independent, so different teams proceed in parallel.
func (s *Service) lockTeam(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// afterCommit runs the best-effort side effects of a committed transition.
// Failures here never roll back or fail the transition.
func (s *Service) afterCommit(t *race.Team, event Event) {
	if s.mirror != nil {
		s.mirror.Sync(t)
	}
	event.Team = t.Name
	s.broker.Publish(t.Name, event)
	s.broker.Publish(scoreboardTopic, Event{Type: "scoreboard_updated", Team: t.Name})
}

// Register claims a team name for an owner. First write wins: a taken name
// stays with its original owner forever.
func (s *Service) Register(ctx context.Context, name, ownerID string) (*race.Team, error) {
	unlock := s.lockTeam(name)
	defer unlock()

	team := s.engine.NewTeam(name, ownerID)
	if err := s.store.Register(ctx, team); err != nil {
		return nil, err
	}

	s.afterCommit(team, Event{Type: "registered"})
	return team, nil
}

// resolve maps a transport owner ID to its team under the team's lock,
// re-reading the snapshot so the transition sees the latest committed state.
func (s *Service) resolve(ctx context.Context, ownerID string) (*race.Team, func(), error) {
	team, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.lockTeam(team.Name)
	team, err = s.store.Get(ctx, team.Name)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return team, unlock, nil
}

// SubmitAnswer runs the answer transition for the owner's team.
func (s *Service) SubmitAnswer(ctx context.Context, ownerID, code string) (race.Outcome, *race.Team, error) {
	team, unlock, err := s.resolve(ctx, ownerID)
	if err != nil {
		return race.Outcome{}, nil, err
	}
	defer unlock()

	out, err := s.engine.SubmitAnswer(team, code)
	if err != nil {
		return race.Outcome{}, nil, err
	}
	if err := s.store.Upsert(ctx, team); err != nil {
		return race.Outcome{}, nil, err
	}

	s.afterCommit(team, answerEvent(out))
	return out, team, nil
}

func answerEvent(out race.Outcome) Event {
	e := Event{
		Type:         string(out.Kind),
		Points:       out.Points,
		AttemptsLeft: out.AttemptsLeft,
	}
	if out.Next != nil {
		e.Challenge = out.Next.ID
	}
	if out.Kind == race.OutcomeComplete {
		e.Score = out.FinalScore
	}
	return e
}

// RequestHint reveals the next hint for the owner's team.
func (s *Service) RequestHint(ctx context.Context, ownerID string) (string, *race.Team, error) {
	team, unlock, err := s.resolve(ctx, ownerID)
	if err != nil {
		return "", nil, err
	}
	defer unlock()

	hint, err := s.engine.RequestHint(team)
	if err != nil {
		return "", nil, err
	}
	if err := s.store.Upsert(ctx, team); err != nil {
		return "", nil, err
	}

	s.afterCommit(team, Event{Type: "hint", Challenge: team.CurrentIndex})
	return hint, team, nil
}

// RecordLocation stores the owner's latest position report.
func (s *Service) RecordLocation(ctx context.Context, ownerID string, lat, lon float64) (*race.Team, error) {
	team, unlock, err := s.resolve(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s.engine.RecordLocation(team, lat, lon, time.Now().UTC())
	if err := s.store.Upsert(ctx, team); err != nil {
		return nil, err
	}

	s.afterCommit(team, Event{Type: "location"})
	return team, nil
}

// Status returns the owner's team with its current challenge, nil once the
// team has finished.
func (s *Service) Status(ctx context.Context, ownerID string) (*race.Team, *race.Challenge, error) {
	team, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	ch, err := s.engine.Current(team)
	if err != nil {
		// Finished teams have no current challenge.
		return team, nil, nil
	}
	return team, &ch, nil
}

// Team returns the named record (admin lookup).
func (s *Service) Team(ctx context.Context, name string) (*race.Team, error) {
	return s.store.Get(ctx, name)
}

// Scoreboard returns the ranked snapshot of all registered teams.
func (s *Service) Scoreboard(ctx context.Context) ([]*race.Team, error) {
	teams, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	return race.Rank(teams), nil
}

// ForceIndex is the admin navigation override. The target is clamped into
// course bounds; score and history stay untouched.
func (s *Service) ForceIndex(ctx context.Context, name string, index int) (*race.Team, error) {
	unlock := s.lockTeam(name)
	defer unlock()

	team, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	forced := s.engine.ForceIndex(team, index)
	if err := s.store.Upsert(ctx, team); err != nil {
		return nil, err
	}

	s.afterCommit(team, Event{Type: "forced", Challenge: forced})
	return team, nil
}

// Broadcast pushes an admin message to every registered team's event stream
// and to scoreboard watchers.
func (s *Service) Broadcast(ctx context.Context, message string) error {
	teams, err := s.store.All(ctx)
	if err != nil {
		return err
	}
	for _, t := range teams {
		s.broker.Publish(t.Name, Event{Type: "broadcast", Team: t.Name, Message: message})
	}
	s.broker.Publish(scoreboardTopic, Event{Type: "broadcast", Message: message})
	return nil
}

// Engine exposes the course and rules to the transport layer.
func (s *Service) Engine() *race.Engine { return s.engine }
