package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/racequest/raceapi/internal/race"
)

type ForceRequest struct {
	TeamName string `json:"teamName"`
	Index    int    `json:"index"`
}

// AdminTeamView is the unredacted record: owner, history, last location.
type AdminTeamView struct {
	TeamView
	OwnerID      string            `json:"ownerId"`
	History      []race.Resolution `json:"history"`
	LastLocation *race.Location    `json:"lastLocation,omitempty"`
}

func adminTeamView(t *race.Team, total int) AdminTeamView {
	history := t.History
	if history == nil {
		history = []race.Resolution{}
	}
	return AdminTeamView{
		TeamView:     teamView(t, total),
		OwnerID:      t.OwnerID,
		History:      history,
		LastLocation: t.LastLocation,
	}
}

// handleAdminForce moves a team to an arbitrary challenge. Out-of-bounds
// targets are clamped, not rejected.
func handleAdminForce(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForceRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.TeamName = strings.TrimSpace(req.TeamName)
		if req.TeamName == "" {
			writeError(w, http.StatusBadRequest, "teamName is required")
			return
		}

		team, err := svc.ForceIndex(r.Context(), req.TeamName, req.Index)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, adminTeamView(team, svc.Engine().Catalog().Len()))
	}
}

func handleAdminTeam(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		team, err := svc.Team(r.Context(), name)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, adminTeamView(team, svc.Engine().Catalog().Len()))
	}
}

type BroadcastRequest struct {
	Message string `json:"message"`
}

func handleAdminBroadcast(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BroadcastRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		if err := svc.Broadcast(r.Context(), req.Message); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
