package server

import (
	"net/http"
	"strings"
)

type RegisterRequest struct {
	TeamName string `json:"teamName"`
}

type RegisterResponse struct {
	Team      TeamView       `json:"team"`
	Challenge *ChallengeView `json:"challenge"`
}

func handleRegister(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing owner identifier")
			return
		}

		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.TeamName = strings.TrimSpace(req.TeamName)
		if req.TeamName == "" {
			writeError(w, http.StatusBadRequest, "teamName is required")
			return
		}

		team, err := svc.Register(r.Context(), req.TeamName, owner)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		catalog := svc.Engine().Catalog()
		first, _ := catalog.ByIndex(1)
		writeJSON(w, http.StatusCreated, RegisterResponse{
			Team:      teamView(team, catalog.Len()),
			Challenge: challengeView(first),
		})
	}
}
