package server

import "net/http"

type HintResponse struct {
	Hint      string  `json:"hint"`
	HintsUsed int     `json:"hintsUsed"`
	Penalty   float64 `json:"penalty"`
}

func handleHint(svc *Service, penalty float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing owner identifier")
			return
		}

		hint, team, err := svc.RequestHint(r.Context(), owner)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, HintResponse{
			Hint:      hint,
			HintsUsed: team.HintsUsed,
			Penalty:   penalty,
		})
	}
}
