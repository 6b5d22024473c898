// Package race implements the team progression rules of the scavenger hunt:
// the challenge catalog, the per-team state machine, proximity checks, and
// scoreboard ranking. It has zero external dependencies: everything here is
// pure Go.
package race

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	_ "embed"
)

// ErrNotFound is returned for a challenge index outside the catalog.
var ErrNotFound = errors.New("challenge not found")

// Geofence restricts answers to a radius around the challenge site.
type Geofence struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	RadiusM float64 `json:"radiusM"`
}

// Challenge is one step of the course. The answer code is only discoverable
// on-site; hints are revealed front-to-back.
type Challenge struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Prompt     string    `json:"prompt"`
	AnswerCode string    `json:"answerCode"`
	Hints      []string  `json:"hints"`
	Geofence   *Geofence `json:"geofence,omitempty"`
}

// Catalog is the immutable ordered course, loaded once at startup and shared
// read-only across all teams.
type Catalog struct {
	challenges []Challenge
}

// NewCatalog validates the course shape once, so accesses never have to:
// IDs must run 1..n in order, answer codes must be non-empty, and any
// geofence needs a positive radius.
func NewCatalog(challenges []Challenge) (*Catalog, error) {
	if len(challenges) == 0 {
		return nil, errors.New("catalog is empty")
	}
	for i, ch := range challenges {
		if ch.ID != i+1 {
			return nil, fmt.Errorf("challenge %d: id %d out of sequence", i+1, ch.ID)
		}
		if ch.AnswerCode == "" {
			return nil, fmt.Errorf("challenge %d: missing answer code", ch.ID)
		}
		if ch.Geofence != nil && ch.Geofence.RadiusM <= 0 {
			return nil, fmt.Errorf("challenge %d: geofence radius must be positive", ch.ID)
		}
	}
	return &Catalog{challenges: challenges}, nil
}

// Load parses a JSON course definition.
func Load(r io.Reader) (*Catalog, error) {
	var challenges []Challenge
	if err := json.NewDecoder(r).Decode(&challenges); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return NewCatalog(challenges)
}

// LoadFile loads a course from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

//go:embed course.json
var defaultCourse []byte

// DefaultCatalog returns the embedded 10-challenge demo course.
func DefaultCatalog() *Catalog {
	c, err := Load(bytes.NewReader(defaultCourse))
	if err != nil {
		panic("race: embedded course is invalid: " + err.Error())
	}
	return c
}

// Len reports the number of challenges in the course.
func (c *Catalog) Len() int { return len(c.challenges) }

// ByIndex returns the challenge at 1-based position i.
func (c *Catalog) ByIndex(i int) (Challenge, error) {
	if i < 1 || i > len(c.challenges) {
		return Challenge{}, ErrNotFound
	}
	return c.challenges[i-1], nil
}
