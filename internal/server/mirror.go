package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/racequest/raceapi/internal/race"
)

// mirrorKey is the Redis hash holding one flattened row per team, keyed by
// team name. Dashboards read it; nothing in the game depends on it.
const mirrorKey = "race:live"

const mirrorTimeout = 2 * time.Second

// mirrorRow is the flattened dashboard projection of a team record.
type mirrorRow struct {
	TeamName     string   `json:"team_name"`
	OwnerID      string   `json:"owner_id"`
	CurrentIndex int      `json:"current_idx"`
	Score        float64  `json:"score"`
	AttemptsLeft int      `json:"attempts_left"`
	HintsUsed    int      `json:"hints_used"`
	LastLat      *float64 `json:"last_lat"`
	LastLon      *float64 `json:"last_lon"`
	LastSeenAt   *string  `json:"last_ts"`
}

// Mirror keeps the external live dashboard eventually consistent with the
// team store. Strictly best-effort: every failure is logged and swallowed,
// never surfaced to the caller of a transition.
type Mirror struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewMirror(rdb *redis.Client, logger *slog.Logger) *Mirror {
	return &Mirror{rdb: rdb, logger: logger}
}

// Sync upserts the team's row. Called only after the transition is durably
// committed; uses its own bounded context so a slow mirror cannot hold a
// request hostage.
func (m *Mirror) Sync(t *race.Team) {
	row := mirrorRow{
		TeamName:     t.Name,
		OwnerID:      t.OwnerID,
		CurrentIndex: t.CurrentIndex,
		Score:        t.Score,
		AttemptsLeft: t.AttemptsLeft,
		HintsUsed:    t.HintsUsed,
	}
	if t.LastLocation != nil {
		row.LastLat = &t.LastLocation.Lat
		row.LastLon = &t.LastLocation.Lon
		ts := t.LastLocation.At.UTC().Format(time.RFC3339Nano)
		row.LastSeenAt = &ts
	}

	data, _ := json.Marshal(row)

	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()

	if err := m.rdb.HSet(ctx, mirrorKey, t.Name, string(data)).Err(); err != nil {
		m.logger.Warn("mirror sync failed", "team", t.Name, "error", err)
	}
}
