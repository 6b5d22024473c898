package race

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrAlreadyFinished rejects transitions for a team past the last challenge.
	ErrAlreadyFinished = errors.New("team has finished the course")
	// ErrNoMoreHints rejects a hint request once the challenge's hints are spent.
	ErrNoMoreHints = errors.New("no more hints for this challenge")
	// ErrOutOfRange rejects an answer submitted from outside the geofence.
	ErrOutOfRange = errors.New("team is not at the challenge location")
)

// Rules are the configurable game policy knobs.
type Rules struct {
	// AttemptBudget is the number of answers a team may try per challenge.
	AttemptBudget int
	// HintPenalty is the fractional point deduction per hint used, applied
	// only on a correct resolution.
	HintPenalty float64
	// Geofence enables proximity checking globally.
	Geofence bool
}

// OutcomeKind labels what a submitted answer did to the team's state.
type OutcomeKind string

const (
	// OutcomeCorrect: correct answer, advanced to the next challenge.
	OutcomeCorrect OutcomeKind = "correct_advance"
	// OutcomeRetry: wrong answer, attempts remain on the same challenge.
	OutcomeRetry OutcomeKind = "incorrect_retry"
	// OutcomeExhausted: wrong answer spent the last attempt, advanced anyway.
	OutcomeExhausted OutcomeKind = "attempts_exhausted"
	// OutcomeComplete: the resolution closed out the final challenge.
	OutcomeComplete OutcomeKind = "game_complete"
)

// Outcome describes the result of a SubmitAnswer transition.
type Outcome struct {
	Kind         OutcomeKind
	Correct      bool
	Points       float64
	AttemptsLeft int
	Next         *Challenge
	FinalScore   float64
}

// Engine applies events to a Team against the fixed catalog. It is pure
// state arithmetic: callers own locking and persistence.
type Engine struct {
	catalog *Catalog
	rules   Rules
	geo     Validator
}

// NewEngine builds an engine for one course and rule set.
func NewEngine(catalog *Catalog, rules Rules) *Engine {
	return &Engine{
		catalog: catalog,
		rules:   rules,
		geo:     Validator{Enabled: rules.Geofence},
	}
}

// Catalog returns the course the engine runs.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// NewTeam creates a fresh record at challenge 1 with a full attempt budget.
func (e *Engine) NewTeam(name, ownerID string) *Team {
	return &Team{
		Name:         name,
		OwnerID:      ownerID,
		CurrentIndex: 1,
		AttemptsLeft: e.rules.AttemptBudget,
	}
}

// Finished reports whether the team has resolved every challenge.
func (e *Engine) Finished(t *Team) bool { return t.CurrentIndex > e.catalog.Len() }

// Current returns the team's current challenge, or ErrAlreadyFinished.
func (e *Engine) Current(t *Team) (Challenge, error) {
	if e.Finished(t) {
		return Challenge{}, ErrAlreadyFinished
	}
	return e.catalog.ByIndex(t.CurrentIndex)
}

// RecordLocation overwrites the team's last known position. Always succeeds
// and never touches progression state.
func (e *Engine) RecordLocation(t *Team, lat, lon float64, at time.Time) {
	t.LastLocation = &Location{Lat: lat, Lon: lon, At: at}
}

// RequestHint reveals the next unrevealed hint for the current challenge, in
// order. Each grant raises the penalty applied if the challenge is later
// solved.
func (e *Engine) RequestHint(t *Team) (string, error) {
	ch, err := e.Current(t)
	if err != nil {
		return "", err
	}
	if t.HintsUsed >= len(ch.Hints) {
		return "", ErrNoMoreHints
	}
	hint := ch.Hints[t.HintsUsed]
	t.HintsUsed++
	return hint, nil
}

// SubmitAnswer checks rawCode against the current challenge and resolves the
// transition.
//
// Proximity is deliberately asymmetric: an answer is rejected for range only
// when a location is on record and out of range. A team whose location never
// arrived is allowed to answer.
func (e *Engine) SubmitAnswer(t *Team, rawCode string) (Outcome, error) {
	ch, err := e.Current(t)
	if err != nil {
		return Outcome{}, err
	}

	if t.LastLocation != nil && !e.geo.Within(ch, t.LastLocation.Lat, t.LastLocation.Lon) {
		return Outcome{}, ErrOutOfRange
	}

	code := strings.TrimSpace(rawCode)
	if !strings.EqualFold(code, ch.AnswerCode) {
		t.AttemptsLeft--
		if t.AttemptsLeft > 0 {
			return Outcome{Kind: OutcomeRetry, AttemptsLeft: t.AttemptsLeft}, nil
		}
		t.History = append(t.History, Resolution{
			Challenge: ch.ID,
			Correct:   false,
			Points:    0,
			Attempts:  e.rules.AttemptBudget,
			Hints:     t.HintsUsed,
		})
		return e.advance(t, Outcome{Kind: OutcomeExhausted}), nil
	}

	points := 1 - float64(t.HintsUsed)*e.rules.HintPenalty
	if points < 0 {
		points = 0
	}
	t.History = append(t.History, Resolution{
		Challenge: ch.ID,
		Correct:   true,
		Points:    points,
		Attempts:  e.rules.AttemptBudget - t.AttemptsLeft + 1,
		Hints:     t.HintsUsed,
	})
	t.Score += points
	return e.advance(t, Outcome{Kind: OutcomeCorrect, Correct: true, Points: points}), nil
}

// advance moves the team to the next challenge and resets the per-challenge
// counters. A resolution advances by exactly one, never more.
func (e *Engine) advance(t *Team, out Outcome) Outcome {
	t.CurrentIndex++
	t.AttemptsLeft = e.rules.AttemptBudget
	t.HintsUsed = 0

	out.AttemptsLeft = t.AttemptsLeft
	if e.Finished(t) {
		out.Kind = OutcomeComplete
		out.FinalScore = t.Score
		return out
	}
	next, _ := e.catalog.ByIndex(t.CurrentIndex)
	out.Next = &next
	return out
}

// ForceIndex is the admin navigation override: the target is clamped into
// the course bounds, attempts and hints reset, score and history untouched.
func (e *Engine) ForceIndex(t *Team, index int) int {
	if index < 1 {
		index = 1
	}
	if index > e.catalog.Len() {
		index = e.catalog.Len()
	}
	t.CurrentIndex = index
	t.AttemptsLeft = e.rules.AttemptBudget
	t.HintsUsed = 0
	return index
}
