package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// handleWSScoreboard pushes the ranked scoreboard over a WebSocket: once on
// connect, then again after every committed transition anywhere in the game.
func handleWSScoreboard(logger *slog.Logger, svc *Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		ch := broker.Subscribe(scoreboardTopic)
		defer broker.Unsubscribe(scoreboardTopic, ch)

		push := func() error {
			rows, err := scoreboardRows(ctx, svc)
			if err != nil {
				return err
			}
			return wsjson.Write(ctx, conn, ScoreboardResponse{Rows: rows})
		}

		if err := push(); err != nil {
			logger.Debug("scoreboard push failed", "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				if err := push(); err != nil {
					logger.Debug("scoreboard push failed", "error", err)
					return
				}
			}
		}
	}
}
