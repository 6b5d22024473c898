package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/racequest/raceapi/internal/race"
)

// writeRetries bounds how often a failed durable write is retried before the
// operation surfaces a PersistenceError.
const writeRetries = 3

// SQLiteStore persists team records in a single teams table. The history is
// stored as a JSON column; everything the mirror and scoreboard need is a
// plain column.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const teamColumns = `name, owner_id, current_idx, score, attempts_left, hints_used, history, last_lat, last_lon, last_seen_at`

func (s *SQLiteStore) Get(ctx context.Context, name string) (*race.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+teamColumns+` FROM teams WHERE name = ?
	`, name)
	return scanTeam(row)
}

func (s *SQLiteStore) GetByOwner(ctx context.Context, ownerID string) (*race.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+teamColumns+` FROM teams WHERE owner_id = ? LIMIT 1
	`, ownerID)
	return scanTeam(row)
}

func (s *SQLiteStore) All(ctx context.Context) ([]*race.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+teamColumns+` FROM teams ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*race.Team
	for rows.Next() {
		t, err := scanTeamRow(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Register claims the team name. The guarded INSERT makes the first write
// win even under concurrent registration attempts.
func (s *SQLiteStore) Register(ctx context.Context, t *race.Team) error {
	history, lastLat, lastLon, lastSeen := teamFields(t)

	var err error
	for attempt := 0; attempt < writeRetries; attempt++ {
		var res sql.Result
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO teams (name, owner_id, current_idx, score, attempts_left, hints_used, history, last_lat, last_lon, last_seen_at)
			SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
			WHERE NOT EXISTS (SELECT 1 FROM teams WHERE name = ?)
		`, t.Name, t.OwnerID, t.CurrentIndex, t.Score, t.AttemptsLeft, t.HintsUsed,
			history, lastLat, lastLon, lastSeen, t.Name)
		if err != nil {
			continue
		}
		n, raErr := res.RowsAffected()
		if raErr != nil {
			err = raErr
			continue
		}
		if n == 0 {
			return ErrNameTaken
		}
		return nil
	}
	return &PersistenceError{Op: "register " + t.Name, Err: err}
}

// Upsert replaces the team's snapshot in one transaction-per-statement
// write. SQLite's WAL makes this write-new-then-replace: a failure leaves
// the previously committed row untouched.
func (s *SQLiteStore) Upsert(ctx context.Context, t *race.Team) error {
	history, lastLat, lastLon, lastSeen := teamFields(t)

	var err error
	for attempt := 0; attempt < writeRetries; attempt++ {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO teams (name, owner_id, current_idx, score, attempts_left, hints_used, history, last_lat, last_lon, last_seen_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET
				current_idx   = excluded.current_idx,
				score         = excluded.score,
				attempts_left = excluded.attempts_left,
				hints_used    = excluded.hints_used,
				history       = excluded.history,
				last_lat      = excluded.last_lat,
				last_lon      = excluded.last_lon,
				last_seen_at  = excluded.last_seen_at,
				updated_at    = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		`, t.Name, t.OwnerID, t.CurrentIndex, t.Score, t.AttemptsLeft, t.HintsUsed,
			history, lastLat, lastLon, lastSeen)
		if err == nil {
			return nil
		}
	}
	return &PersistenceError{Op: "upsert " + t.Name, Err: err}
}

func teamFields(t *race.Team) (history string, lastLat, lastLon sql.NullFloat64, lastSeen sql.NullString) {
	raw, _ := json.Marshal(t.History)
	if t.History == nil {
		raw = []byte("[]")
	}
	history = string(raw)
	if t.LastLocation != nil {
		lastLat = sql.NullFloat64{Float64: t.LastLocation.Lat, Valid: true}
		lastLon = sql.NullFloat64{Float64: t.LastLocation.Lon, Valid: true}
		lastSeen = sql.NullString{String: t.LastLocation.At.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	return history, lastLat, lastLon, lastSeen
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row *sql.Row) (*race.Team, error) {
	t, err := scanTeamRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	return t, err
}

func scanTeamRow(row rowScanner) (*race.Team, error) {
	var t race.Team
	var history string
	var lastLat, lastLon sql.NullFloat64
	var lastSeen sql.NullString

	err := row.Scan(&t.Name, &t.OwnerID, &t.CurrentIndex, &t.Score, &t.AttemptsLeft,
		&t.HintsUsed, &history, &lastLat, &lastLon, &lastSeen)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(history), &t.History); err != nil {
		return nil, fmt.Errorf("decoding history for %q: %w", t.Name, err)
	}
	if lastLat.Valid && lastLon.Valid {
		loc := &race.Location{Lat: lastLat.Float64, Lon: lastLon.Float64}
		if lastSeen.Valid {
			loc.At, _ = time.Parse(time.RFC3339Nano, lastSeen.String)
		}
		t.LastLocation = loc
	}
	return &t, nil
}
