package server

import "net/http"

type StatusResponse struct {
	Team      TeamView       `json:"team"`
	Challenge *ChallengeView `json:"challenge"`
}

func handleStatus(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing owner identifier")
			return
		}

		team, current, err := svc.Status(r.Context(), owner)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := StatusResponse{Team: teamView(team, svc.Engine().Catalog().Len())}
		if current != nil {
			resp.Challenge = challengeView(*current)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
