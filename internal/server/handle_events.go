package server

import (
	"fmt"
	"net/http"
	"time"
)

// handleEvents streams a team's transition events over SSE. The owner ID is
// passed as a query parameter because EventSource cannot set headers.
func handleEvents(svc *Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.URL.Query().Get("token")
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "token query parameter required")
			return
		}

		team, _, err := svc.Status(r.Context(), owner)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ch := broker.Subscribe(team.Name)
		defer broker.Unsubscribe(team.Name, ch)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
