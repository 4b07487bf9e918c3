package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/elitefarmers/farmhand/internal/application/command"
	"github.com/elitefarmers/farmhand/internal/application/query"
	"github.com/elitefarmers/farmhand/internal/domain/shared"
	"github.com/elitefarmers/farmhand/internal/infrastructure/external/hypixel"
	"github.com/elitefarmers/farmhand/internal/infrastructure/external/mojang"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot handles GET / with basic service information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service": "farmhand",
		"status":  "running",
		"uptime":  s.Uptime().String(),
	})
}

// handleHealth handles GET /health, pinging every wired dependency.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "healthy"
		}
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Ping(ctx); err != nil {
			checks["cache"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["cache"] = "healthy"
		}
	}

	status := http.StatusOK
	statusText := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		statusText = "unhealthy"
	}

	writeJSON(w, status, map[string]any{
		"status": statusText,
		"checks": checks,
		"uptime": s.Uptime().String(),
	})
}

// handleLive handles GET /live. Always succeeds while the process runs.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleStatus handles GET /status, exposing the provider client state
// for operators.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"uptime": s.Uptime().String(),
	}

	if s.deps.Provider != nil {
		st := s.deps.Provider.Status()
		resp["provider"] = map[string]any{
			"circuit_state":     st.CircuitBreaker.State.String(),
			"circuit_failures":  st.CircuitBreaker.Failures,
			"available_tokens":  st.RateLimiter.AvailableTokens,
			"consecutive_waits": st.RateLimiter.ConsecutiveWaits,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// API HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetWeight handles GET /api/v1/weight/{player}.
//
// Optional query parameter "profile" pins the lookup to a named profile
// instead of the highest-weight one.
func (s *Server) handleGetWeight(w http.ResponseWriter, r *http.Request) {
	q := query.GetWeightQuery{
		Player:      r.PathValue("player"),
		ProfileName: r.URL.Query().Get("profile"),
	}

	result, err := s.deps.GetWeightHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetContests handles GET /api/v1/contests/{player}.
func (s *Server) handleGetContests(w http.ResponseWriter, r *http.Request) {
	q := query.GetContestsQuery{
		Player: r.PathValue("player"),
	}

	result, err := s.deps.GetContestsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetLeaderboard handles GET /api/v1/guilds/{guild}/leaderboard.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := query.GetLeaderboardQuery{
		GuildID: r.PathValue("guild"),
	}

	result, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSubmitLeaderboard handles
// POST /api/v1/guilds/{guild}/leaderboard/{player}.
func (s *Server) handleSubmitLeaderboard(w http.ResponseWriter, r *http.Request) {
	cmd := command.SubmitLeaderboardCommand{
		GuildID: r.PathValue("guild"),
		Player:  r.PathValue("player"),
	}

	result, err := s.deps.SubmitLeaderboardHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// configureGuildRequest is the JSON body for PUT guild settings.
type configureGuildRequest struct {
	CutoffYear  int      `json:"cutoff_year"`
	CutoffMonth int      `json:"cutoff_month"`
	CutoffDay   int      `json:"cutoff_day"`
	Crops       []string `json:"crops"`
}

// handleConfigureGuild handles PUT /api/v1/guilds/{guild}/settings.
func (s *Server) handleConfigureGuild(w http.ResponseWriter, r *http.Request) {
	var body configureGuildRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	cmd := command.ConfigureGuildCommand{
		GuildID:     r.PathValue("guild"),
		CutoffYear:  body.CutoffYear,
		CutoffMonth: body.CutoffMonth,
		CutoffDay:   body.CutoffDay,
		Crops:       body.Crops,
	}

	result, err := s.deps.ConfigureGuildHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps application errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrEmptyValue), errors.Is(err, shared.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, hypixel.ErrPlayerNotFound),
		errors.Is(err, mojang.ErrNameNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrNoData), errors.Is(err, shared.ErrRateLimited):
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse is the standard error payload.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
