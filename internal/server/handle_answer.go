package server

import (
	"net/http"
	"strings"

	"github.com/racequest/raceapi/internal/race"
)

type AnswerRequest struct {
	Code string `json:"code"`
}

type AnswerResponse struct {
	Outcome       string         `json:"outcome"`
	Correct       bool           `json:"correct"`
	Points        float64        `json:"points"`
	Score         float64        `json:"score"`
	AttemptsLeft  int            `json:"attemptsLeft"`
	NextChallenge *ChallengeView `json:"nextChallenge,omitempty"`
	GameComplete  bool           `json:"gameComplete"`
	FinalScore    float64        `json:"finalScore,omitempty"`
}

func handleAnswer(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing owner identifier")
			return
		}

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Code = strings.TrimSpace(req.Code)
		if req.Code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}

		out, team, err := svc.SubmitAnswer(r.Context(), owner, req.Code)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := AnswerResponse{
			Outcome:      string(out.Kind),
			Correct:      out.Correct,
			Points:       out.Points,
			Score:        team.Score,
			AttemptsLeft: out.AttemptsLeft,
		}
		if out.Next != nil {
			resp.NextChallenge = challengeView(*out.Next)
		}
		if out.Kind == race.OutcomeComplete {
			resp.GameComplete = true
			resp.FinalScore = out.FinalScore
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
