package server

import "github.com/racequest/raceapi/internal/race"

// ChallengeView is the player-facing projection of a challenge. The answer
// code never leaves the server.
type ChallengeView struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Prompt     string `json:"prompt"`
	TotalHints int    `json:"totalHints"`
	Geofenced  bool   `json:"geofenced"`
}

func challengeView(ch race.Challenge) *ChallengeView {
	return &ChallengeView{
		ID:         ch.ID,
		Title:      ch.Title,
		Prompt:     ch.Prompt,
		TotalHints: len(ch.Hints),
		Geofenced:  ch.Geofence != nil,
	}
}

// TeamView is the public summary of a team's progress.
type TeamView struct {
	TeamName         string  `json:"teamName"`
	CurrentChallenge int     `json:"currentChallenge"`
	TotalChallenges  int     `json:"totalChallenges"`
	Score            float64 `json:"score"`
	AttemptsLeft     int     `json:"attemptsLeft"`
	HintsUsed        int     `json:"hintsUsed"`
	Finished         bool    `json:"finished"`
}

func teamView(t *race.Team, total int) TeamView {
	return TeamView{
		TeamName:         t.Name,
		CurrentChallenge: t.CurrentIndex,
		TotalChallenges:  total,
		Score:            t.Score,
		AttemptsLeft:     t.AttemptsLeft,
		HintsUsed:        t.HintsUsed,
		Finished:         t.CurrentIndex > total,
	}
}
