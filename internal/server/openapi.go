package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "RaceQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the RaceQuest scavenger hunt.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws/scoreboard
	getWSScore, _ := r.NewOperationContext(http.MethodGet, "/ws/scoreboard")
	getWSScore.SetSummary("Live scoreboard feed")
	getWSScore.SetDescription("Upgrades to a WebSocket that pushes the ranked scoreboard on every change.")
	getWSScore.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSScore)

	// POST /api/register
	postRegister, _ := r.NewOperationContext(http.MethodPost, "/api/register")
	postRegister.SetSummary("Register a team")
	postRegister.SetDescription("Claim a team name for the Bearer owner identifier. First write wins.")
	postRegister.AddReqStructure(RegisterRequest{})
	postRegister.AddRespStructure(RegisterResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postRegister)

	// GET /api/game/status
	getStatus, _ := r.NewOperationContext(http.MethodGet, "/api/game/status")
	getStatus.SetSummary("Team status")
	getStatus.SetDescription("Returns the team's progress and current challenge. Requires Bearer owner identifier.")
	getStatus.AddRespStructure(StatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getStatus.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getStatus)

	// POST /api/game/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/game/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Submit an answer code for the current challenge. Requires Bearer owner identifier.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postAnswer)

	// POST /api/game/hint
	postHint, _ := r.NewOperationContext(http.MethodPost, "/api/game/hint")
	postHint.SetSummary("Request hint")
	postHint.SetDescription("Reveals the next hint for the current challenge, lowering the score on a later solve.")
	postHint.AddRespStructure(HintResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postHint.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postHint)

	// POST /api/game/location
	postLocation, _ := r.NewOperationContext(http.MethodPost, "/api/game/location")
	postLocation.SetSummary("Report location")
	postLocation.SetDescription("Stores the team's latest position for proximity checks.")
	postLocation.AddReqStructure(LocationRequest{})
	postLocation.AddRespStructure(LocationResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postLocation)

	// GET /api/game/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/game/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of the team's transitions. Pass the owner identifier as a token query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/scoreboard
	getScoreboard, _ := r.NewOperationContext(http.MethodGet, "/api/scoreboard")
	getScoreboard.SetSummary("Scoreboard")
	getScoreboard.SetDescription("Ranked standings: score desc, progress desc, name asc.")
	getScoreboard.AddRespStructure(ScoreboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getScoreboard)

	// POST /api/admin/force
	postForce, _ := r.NewOperationContext(http.MethodPost, "/api/admin/force")
	postForce.SetSummary("Force challenge index")
	postForce.SetDescription("Admin override: move a team to a challenge. Out-of-bounds targets are clamped.")
	postForce.AddReqStructure(ForceRequest{})
	postForce.AddRespStructure(AdminTeamView{}, openapi.WithHTTPStatus(http.StatusOK))
	postForce.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postForce.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postForce)

	// GET /api/admin/teams/{name}
	getTeam, _ := r.NewOperationContext(http.MethodGet, "/api/admin/teams/{name}")
	getTeam.SetSummary("Inspect team")
	getTeam.SetDescription("Admin view of a team including owner, history, and last location.")
	getTeam.AddRespStructure(AdminTeamView{}, openapi.WithHTTPStatus(http.StatusOK))
	getTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTeam)

	// POST /api/admin/broadcast
	postBroadcast, _ := r.NewOperationContext(http.MethodPost, "/api/admin/broadcast")
	postBroadcast.SetSummary("Broadcast message")
	postBroadcast.SetDescription("Pushes a message to every team's event stream.")
	postBroadcast.AddReqStructure(BroadcastRequest{})
	postBroadcast.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusAccepted))
	postBroadcast.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postBroadcast)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}
}
