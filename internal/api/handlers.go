// Package api exposes the engine over a thin REST surface. The engine owns
// all semantics; handlers only decode, delegate and encode.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quantpulse/signal-monitor/internal/engine"
	"github.com/quantpulse/signal-monitor/internal/models"
	"github.com/quantpulse/signal-monitor/internal/monitor"
	"github.com/quantpulse/signal-monitor/pkg/logger"
)

// Handler serves the signal monitor API
type Handler struct {
	engine *engine.Engine
	loop   *monitor.Loop // may be nil when the service runs without a loop
}

// NewHandler creates an API handler over the engine
func NewHandler(eng *engine.Engine, loop *monitor.Loop) *Handler {
	return &Handler{
		engine: eng,
		loop:   loop,
	}
}

// Router builds the HTTP router with all routes and middleware
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/signals/{symbol}", h.SubmitSignal).Methods(http.MethodPost)
	v1.HandleFunc("/history/{symbol}", h.GetSignalHistory).Methods(http.MethodGet)

	v1.HandleFunc("/changes/{symbol}", h.GetChangesForSymbol).Methods(http.MethodGet)
	v1.HandleFunc("/changes/{id}/acknowledge", h.AcknowledgeChange).Methods(http.MethodPost)

	v1.HandleFunc("/rules", h.ListRules).Methods(http.MethodGet)
	v1.HandleFunc("/rules", h.CreateRule).Methods(http.MethodPost)
	v1.HandleFunc("/rules/{id}", h.GetRule).Methods(http.MethodGet)
	v1.HandleFunc("/rules/{id}", h.UpdateRule).Methods(http.MethodPut)
	v1.HandleFunc("/rules/{id}", h.DeleteRule).Methods(http.MethodDelete)

	v1.HandleFunc("/alerts", h.ListAlerts).Methods(http.MethodGet)
	v1.HandleFunc("/alerts/{id}/dismiss", h.DismissAlert).Methods(http.MethodPost)

	v1.HandleFunc("/trends", h.GetActiveTrends).Methods(http.MethodGet)
	v1.HandleFunc("/trends/{symbol}/analyze", h.AnalyzeTrend).Methods(http.MethodPost)

	v1.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	v1.HandleFunc("/sources", h.ListSources).Methods(http.MethodGet)

	chain := ChainMiddleware(
		RecoveryMiddleware(),
		CORSMiddleware(),
		LoggingMiddleware(),
	)
	return chain(r)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	}
	if h.loop != nil {
		status["monitor_running"] = h.loop.IsRunning()
	}
	respondWithJSON(w, http.StatusOK, status)
}

// SubmitSignal handles POST /api/v1/signals/{symbol}
func (h *Handler) SubmitSignal(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	var signal models.Signal
	if err := json.NewDecoder(r.Body).Decode(&signal); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if signal.Timestamp.IsZero() {
		signal.Timestamp = time.Now()
	}

	change, err := h.engine.ProcessSignal(symbol, signal)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if change == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"change": nil,
		})
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"change": change,
	})
}

// GetSignalHistory handles GET /api/v1/history/{symbol}?hours=24
func (h *Handler) GetSignalHistory(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	hours := queryInt(r, "hours", 24)

	signals := h.engine.GetSignalHistory(symbol, hours)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"signals": signals,
		"count":   len(signals),
	})
}

// GetChangesForSymbol handles GET /api/v1/changes/{symbol}?limit=50
func (h *Handler) GetChangesForSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	limit := queryInt(r, "limit", 50)

	changes := h.engine.GetChangesForSymbol(symbol, limit)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"changes": changes,
		"count":   len(changes),
	})
}

// AcknowledgeChange handles POST /api/v1/changes/{id}/acknowledge
func (h *Handler) AcknowledgeChange(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		ActorID string `json:"actor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.engine.AcknowledgeChange(id, body.ActorID) {
		respondWithError(w, http.StatusNotFound, "Change not found or already acknowledged")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true})
}

// ListRules handles GET /api/v1/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.engine.ListRules()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// GetRule handles GET /api/v1/rules/{id}
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rule, err := h.engine.GetRule(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Rule not found")
		return
	}
	respondWithJSON(w, http.StatusOK, rule)
}

// CreateRule handles POST /api/v1/rules
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule models.MonitorRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	if err := h.engine.CreateRule(&rule); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("Rule created",
		logger.String("rule_id", rule.ID),
		logger.String("rule_name", rule.Name),
	)
	respondWithJSON(w, http.StatusCreated, rule)
}

// UpdateRule handles PUT /api/v1/rules/{id}
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var rule models.MonitorRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rule.ID = id

	if err := h.engine.UpdateRule(&rule); err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, rule)
}

// DeleteRule handles DELETE /api/v1/rules/{id}
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.engine.DeleteRule(id); err != nil {
		respondWithError(w, http.StatusNotFound, "Rule not found")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// ListAlerts handles GET /api/v1/alerts?active=true
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	var alerts []*models.SignalAlert
	if r.URL.Query().Get("active") == "true" {
		alerts = h.engine.ListActiveAlerts()
	} else {
		alerts = h.engine.ListAlerts()
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// DismissAlert handles POST /api/v1/alerts/{id}/dismiss
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		ActorID string `json:"actor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.engine.DismissAlert(id, body.ActorID) {
		respondWithError(w, http.StatusNotFound, "Alert not found or already dismissed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"dismissed": true})
}

// GetActiveTrends handles GET /api/v1/trends
func (h *Handler) GetActiveTrends(w http.ResponseWriter, r *http.Request) {
	trends := h.engine.GetActiveTrends()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"trends": trends,
		"count":  len(trends),
	})
}

// AnalyzeTrend handles POST /api/v1/trends/{symbol}/analyze
func (h *Handler) AnalyzeTrend(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	trend := h.engine.AnalyzeTrend(symbol)
	if trend == nil {
		respondWithError(w, http.StatusNotFound, "Not enough change history for a trend")
		return
	}
	respondWithJSON(w, http.StatusOK, trend)
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.engine.GetSignalStats())
}

// ListSources handles GET /api/v1/sources
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources := h.engine.Sources().List()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"sources": sources,
		"count":   len(sources),
	})
}

// queryInt reads an integer query parameter with a default
func queryInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// respondWithError writes a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
