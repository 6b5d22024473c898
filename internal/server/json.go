package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/racequest/raceapi/internal/race"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps game-rule rejections and store failures to HTTP
// statuses. Domain rejections are caller-visible and mutate nothing; a
// persistence failure means the transition did not commit.
func writeDomainError(w http.ResponseWriter, err error) {
	var pe *PersistenceError
	switch {
	case errors.Is(err, ErrTeamNotFound):
		writeError(w, http.StatusNotFound, "not registered, register a team first")
	case errors.Is(err, ErrNameTaken):
		writeError(w, http.StatusConflict, "this team name is taken, choose another")
	case errors.Is(err, race.ErrAlreadyFinished):
		writeError(w, http.StatusConflict, "your team has already finished the course")
	case errors.Is(err, race.ErrNoMoreHints):
		writeError(w, http.StatusConflict, "no more hints for this challenge")
	case errors.Is(err, race.ErrOutOfRange):
		writeError(w, http.StatusConflict, "you do not appear to be at the location yet, send your position first")
	case errors.As(err, &pe):
		writeError(w, http.StatusInternalServerError, "could not save progress, try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
