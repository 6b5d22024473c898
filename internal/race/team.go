package race

import "time"

// Location is a team's last reported coordinate. Overwritten on each report,
// never appended.
type Location struct {
	Lat float64   `json:"lat"`
	Lon float64   `json:"lon"`
	At  time.Time `json:"at"`
}

// Resolution records how one challenge was closed out. Written exactly once
// per resolved challenge and never mutated afterward.
type Resolution struct {
	Challenge int     `json:"challenge"`
	Correct   bool    `json:"correct"`
	Points    float64 `json:"points"`
	Attempts  int     `json:"attempts"`
	Hints     int     `json:"hints"`
}

// Team is the mutable per-team record. Name and OwnerID are fixed at
// registration; everything else is mutated only through Engine transitions.
type Team struct {
	Name         string       `json:"teamName"`
	OwnerID      string       `json:"ownerId"`
	CurrentIndex int          `json:"currentIndex"`
	Score        float64      `json:"score"`
	AttemptsLeft int          `json:"attemptsLeft"`
	HintsUsed    int          `json:"hintsUsed"`
	History      []Resolution `json:"history"`
	LastLocation *Location    `json:"lastLocation,omitempty"`
}
