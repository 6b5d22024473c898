package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/racequest/raceapi/internal/database"
	"github.com/racequest/raceapi/internal/migrations"
	"github.com/racequest/raceapi/internal/race"
)

func testCourse(t *testing.T) *race.Catalog {
	t.Helper()
	catalog, err := race.NewCatalog([]race.Challenge{
		{
			ID:         1,
			Title:      "Fountain",
			Prompt:     "Code under the rim.",
			AnswerCode: "ALPHA",
			Hints:      []string{"first hint", "second hint"},
			Geofence:   &race.Geofence{Lat: 1.29027, Lon: 103.8515, RadiusM: 120},
		},
		{ID: 2, Title: "Bridge", Prompt: "Plaque year.", AnswerCode: "BRAVO", Hints: []string{"only hint"}},
		{ID: 3, Title: "Tower", Prompt: "Door count.", AnswerCode: "CHARLIE"},
	})
	if err != nil {
		t.Fatalf("building course: %v", err)
	}
	return catalog
}

func setupService(t *testing.T, geofence bool) *Service {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	engine := race.NewEngine(testCourse(t), race.Rules{
		AttemptBudget: 3,
		HintPenalty:   0.5,
		Geofence:      geofence,
	})
	return NewService(NewSQLiteStore(db), engine, nil, NewBroker(), slog.Default())
}

func testRouter(t *testing.T, geofence bool) *chi.Mux {
	t.Helper()
	svc := setupService(t, geofence)

	r := chi.NewRouter()
	r.Post("/api/register", handleRegister(svc))
	r.Get("/api/scoreboard", handleScoreboard(svc))
	r.Get("/api/game/status", handleStatus(svc))
	r.Post("/api/game/answer", handleAnswer(svc))
	r.Post("/api/game/hint", handleHint(svc, 0.5))
	r.Post("/api/game/location", handleLocation(svc))
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminOnly(NewAdminSet([]string{"admin-1"})))
		r.Post("/force", handleAdminForce(svc))
		r.Get("/teams/{name}", handleAdminTeam(svc))
		r.Post("/broadcast", handleAdminBroadcast(svc))
	})
	return r
}

func do(t *testing.T, r http.Handler, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if owner != "" {
		req.Header.Set("Authorization", "Bearer "+owner)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r http.Handler, team, owner string) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/register", owner, RegisterRequest{TeamName: team})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", team, w.Code, w.Body.String())
	}
}

func TestRegisterAndStatus(t *testing.T) {
	r := testRouter(t, false)

	w := do(t, r, http.MethodPost, "/api/register", "owner-1", RegisterRequest{TeamName: "Alpha"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var reg RegisterResponse
	json.NewDecoder(w.Body).Decode(&reg)
	if reg.Team.TeamName != "Alpha" || reg.Team.CurrentChallenge != 1 {
		t.Errorf("register: team = %+v", reg.Team)
	}
	if reg.Challenge == nil || reg.Challenge.ID != 1 {
		t.Fatalf("register: expected the first challenge, got %+v", reg.Challenge)
	}

	w = do(t, r, http.MethodGet, "/api/game/status", "owner-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var status StatusResponse
	json.NewDecoder(w.Body).Decode(&status)
	if status.Team.AttemptsLeft != 3 {
		t.Errorf("status: attempts = %d, want 3", status.Team.AttemptsLeft)
	}
	if status.Team.TotalChallenges != 3 {
		t.Errorf("status: total = %d, want 3", status.Team.TotalChallenges)
	}
	if status.Challenge == nil || status.Challenge.Title != "Fountain" {
		t.Errorf("status: challenge = %+v", status.Challenge)
	}
}

func TestRegisterRequiresOwner(t *testing.T) {
	r := testRouter(t, false)

	w := do(t, r, http.MethodPost, "/api/register", "", RegisterRequest{TeamName: "Alpha"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRegisterNameTaken(t *testing.T) {
	r := testRouter(t, false)
	register(t, r, "Alpha", "owner-1")

	w := do(t, r, http.MethodPost, "/api/register", "owner-2", RegisterRequest{TeamName: "Alpha"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// The losing owner is not attached to the existing record.
	w = do(t, r, http.MethodGet, "/api/game/status", "owner-2", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("loser status: expected 404, got %d", w.Code)
	}
}

func TestAnswerNotRegistered(t *testing.T) {
	r := testRouter(t, false)

	w := do(t, r, http.MethodPost, "/api/game/answer", "owner-9", AnswerRequest{Code: "ALPHA"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnswerFlow(t *testing.T) {
	r := testRouter(t, false)
	register(t, r, "Alpha", "owner-1")

	// Two wrong answers burn attempts.
	for i, wantLeft := range []int{2, 1} {
		w := do(t, r, http.MethodPost, "/api/game/answer", "owner-1", AnswerRequest{Code: "NOPE"})
		if w.Code != http.StatusOK {
			t.Fatalf("wrong %d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
		var resp AnswerResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Outcome != "incorrect_retry" {
			t.Errorf("wrong %d: outcome = %q", i+1, resp.Outcome)
		}
		if resp.AttemptsLeft != wantLeft {
			t.Errorf("wrong %d: attemptsLeft = %d, want %d", i+1, resp.AttemptsLeft, wantLeft)
		}
	}

	// One hint, then the correct code: half a point.
	w := do(t, r, http.MethodPost, "/api/game/hint", "owner-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("hint: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var hint HintResponse
	json.NewDecoder(w.Body).Decode(&hint)
	if hint.Hint != "first hint" || hint.HintsUsed != 1 {
		t.Errorf("hint = %+v", hint)
	}

	w = do(t, r, http.MethodPost, "/api/game/answer", "owner-1", AnswerRequest{Code: "alpha"})
	if w.Code != http.StatusOK {
		t.Fatalf("correct: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp AnswerResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Outcome != "correct_advance" || !resp.Correct {
		t.Errorf("correct: outcome = %q correct = %v", resp.Outcome, resp.Correct)
	}
	if resp.Points != 0.5 || resp.Score != 0.5 {
		t.Errorf("correct: points = %v score = %v, want 0.5 each", resp.Points, resp.Score)
	}
	if resp.NextChallenge == nil || resp.NextChallenge.ID != 2 {
		t.Fatalf("correct: nextChallenge = %+v", resp.NextChallenge)
	}
	if resp.AttemptsLeft != 3 {
		t.Errorf("correct: attempts = %d, want reset to 3", resp.AttemptsLeft)
	}
}

func TestAttemptsExhaustedAdvances(t *testing.T) {
	r := testRouter(t, false)
	register(t, r, "Alpha", "owner-1")

	var resp AnswerResponse
	for i := 0; i < 3; i++ {
		w := do(t, r, http.MethodPost, "/api/game/answer", "owner-1", AnswerRequest{Code: "NOPE"})
		if w.Code != http.StatusOK {
			t.Fatalf("wrong %d: expected 200, got %d", i+1, w.Code)
		}
		json.NewDecoder(w.Body).Decode(&resp)
	}

	if resp.Outcome != "attempts_exhausted" {
		t.Errorf("outcome = %q, want attempts_exhausted", resp.Outcome)
	}
	if resp.NextChallenge == nil || resp.NextChallenge.ID != 2 {
		t.Errorf("nextChallenge = %+v, want challenge 2", resp.NextChallenge)
	}
	if resp.Score != 0 {
		t.Errorf("score = %v, want 0", resp.Score)
	}
}

func TestCompleteCourse(t *testing.T) {
	r := testRouter(t, false)
	register(t, r, "Alpha", "owner-1")

	var resp AnswerResponse
	for _, code := range []string{"ALPHA", "BRAVO", "CHARLIE"} {
		w := do(t, r, http.MethodPost, "/api/game/answer", "owner-1", AnswerRequest{Code: code})
		if w.Code != http.StatusOK {
			t.Fatalf("answer %s: expected 200, got %d: %s", code, w.Code, w.Body.String())
		}
		json.NewDecoder(w.Body).Decode(&resp)
	}

	if !resp.GameComplete || resp.Outcome != "game_complete" {
		t.Fatalf("expected game complete, got %+v", resp)
	}
	if resp.FinalScore != 3 {
		t.Errorf("finalScore = %v, want 3", resp.FinalScore)
	}

	// Further submissions are rejected.
	w := do(t, r, http.MethodPost, "/api/game/answer", "owner-1", AnswerRequest{Code: "ALPHA"})
	if w.Code != http.StatusConflict {
		t.Errorf("answer after finish: expected 409, got %d", w.Code)
	}
}

func TestHintExhaustion(t *testing.T) {
	r := testRouter(t, false)
	register(t, r, "Alpha", "owner-1")

	for i := 0; i < 2; i++ {
		w := do(t, r, http.MethodPost, "/api/game/hint", "owner-1", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("hint %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := do(t, r, http.MethodPost, "/api/game/hint", "owner-1", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("third hint: expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGeofencedAnswer(t *testing.T) {
	r := testRouter(t, true)
	register(t, r, "Alpha", "owner-1")

	// No location on record: the correct code goes through.
	w := do(t, r, http.MethodPost, "/api/game/answer", "owner-1", AnswerRequest{Code: "ALPHA"})
	if w.Code != http.StatusOK {
		t.Fatalf("no-location answer: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Second team reports a faraway position and gets rejected.
	register(t, r, "Beta", "owner-2")
	w = do(t, r, http.MethodPost, "/api/game/location", "owner-2", LocationRequest{Lat: 48.8584, Lon: 2.2945})
	if w.Code != http.StatusOK {
		t.Fatalf("location: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/api/game/answer", "owner-2", AnswerRequest{Code: "ALPHA"})
	if w.Code != http.StatusConflict {
		t.Fatalf("far answer: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// On site it counts.
	w = do(t, r, http.MethodPost, "/api/game/location", "owner-2", LocationRequest{Lat: 1.29030, Lon: 103.8516})
	if w.Code != http.StatusOK {
		t.Fatalf("relocation: expected 200, got %d", w.Code)
	}
	w = do(t, r, http.MethodPost, "/api/game/answer", "owner-2", AnswerRequest{Code: "ALPHA"})
	if w.Code != http.StatusOK {
		t.Fatalf("on-site answer: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLocationValidation(t *testing.T) {
	r := testRouter(t, false)
	register(t, r, "Alpha", "owner-1")

	w := do(t, r, http.MethodPost, "/api/game/location", "owner-1", LocationRequest{Lat: 999, Lon: 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScoreboardOrdering(t *testing.T) {
	r := testRouter(t, false)
	register(t, r, "Alpha", "owner-1")
	register(t, r, "Beta", "owner-2")

	// Beta solves the first challenge.
	w := do(t, r, http.MethodPost, "/api/game/answer", "owner-2", AnswerRequest{Code: "ALPHA"})
	if w.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/scoreboard", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("scoreboard: expected 200, got %d", w.Code)
	}

	var board ScoreboardResponse
	json.NewDecoder(w.Body).Decode(&board)
	if len(board.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(board.Rows))
	}
	if board.Rows[0].TeamName != "Beta" || board.Rows[0].Rank != 1 {
		t.Errorf("first row = %+v, want Beta at rank 1", board.Rows[0])
	}
	if board.Rows[0].Score != 1 || board.Rows[0].CurrentChallenge != 2 {
		t.Errorf("first row = %+v", board.Rows[0])
	}
	if board.Rows[1].TeamName != "Alpha" {
		t.Errorf("second row = %+v, want Alpha", board.Rows[1])
	}
}
