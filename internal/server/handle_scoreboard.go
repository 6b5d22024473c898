package server

import (
	"context"
	"net/http"
)

type ScoreboardRow struct {
	Rank             int     `json:"rank"`
	TeamName         string  `json:"teamName"`
	Score            float64 `json:"score"`
	CurrentChallenge int     `json:"currentChallenge"`
	Finished         bool    `json:"finished"`
}

type ScoreboardResponse struct {
	Rows []ScoreboardRow `json:"rows"`
}

func handleScoreboard(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := scoreboardRows(r.Context(), svc)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, ScoreboardResponse{Rows: rows})
	}
}

func scoreboardRows(ctx context.Context, svc *Service) ([]ScoreboardRow, error) {
	ranked, err := svc.Scoreboard(ctx)
	if err != nil {
		return nil, err
	}

	total := svc.Engine().Catalog().Len()
	rows := make([]ScoreboardRow, 0, len(ranked))
	for i, t := range ranked {
		rows = append(rows, ScoreboardRow{
			Rank:             i + 1,
			TeamName:         t.Name,
			Score:            t.Score,
			CurrentChallenge: t.CurrentIndex,
			Finished:         t.CurrentIndex > total,
		})
	}
	return rows, nil
}
