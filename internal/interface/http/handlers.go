package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/depthchart-hub/depth-chart-hub/internal/application/query"
	"github.com/depthchart-hub/depth-chart-hub/internal/sport"
	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	endpoints := []string{"/health", "/ready", "/live", "/sports", "/sports/{sport}/chart"}
	if s.deps.Journal != nil {
		endpoints = append(endpoints, "/sports/{sport}/journal")
	}
	if s.deps.Metrics != nil {
		endpoints = append(endpoints, "/metrics")
	}
	writeData(w, r, http.StatusOK, map[string]any{
		"name":      "depth-chart-hub",
		"version":   s.config.Version,
		"endpoints": endpoints,
	})
}

// handleHealth reports every dependency check; 503 when any fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Run(r.Context())
	if !report.Healthy {
		writeData(w, r, http.StatusServiceUnavailable, report)
		return
	}
	writeData(w, r, http.StatusOK, report)
}

// handleReady answers whether the worker can consume its queues.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Run(r.Context())
	if !report.Healthy {
		writeData(w, r, http.StatusServiceUnavailable, map[string]any{
			"status":  "not_ready",
			"failing": report.Failing(),
		})
		return
	}
	writeData(w, r, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, map[string]any{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPTH CHARTS
// ══════════════════════════════════════════════════════════════════════════════

type sportInfo struct {
	ID        string   `json:"id"`
	Queue     string   `json:"queue"`
	Positions []string `json:"positions"`
}

// handleListSports handles GET /sports
func (s *Server) handleListSports(w http.ResponseWriter, r *http.Request) {
	out := []sportInfo{}
	if s.deps.Sports != nil {
		for _, sp := range s.deps.Sports.All() {
			info := sportInfo{ID: sp.ID, Queue: sp.Queue}
			for _, tag := range sp.Taxonomy.Tags() {
				info.Positions = append(info.Positions, tag.String())
			}
			out = append(out, info)
		}
	}
	writeData(w, r, http.StatusOK, out)
}

// handleGetChart handles GET /sports/{sport}/chart
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	sp, ok := s.lookupSport(w, r)
	if !ok {
		return
	}
	chart := sp.Interpreter.Snapshot(r.Context())
	writeData(w, r, http.StatusOK, query.ToDTO(sp.ID, chart))
}

// lookupSport resolves {sport} case-insensitively or writes a 404.
func (s *Server) lookupSport(w http.ResponseWriter, r *http.Request) (*sport.Sport, bool) {
	id := r.PathValue("sport")
	if s.deps.Sports != nil {
		if sp, ok := s.deps.Sports.Get(id); ok {
			return sp, true
		}
	}
	writeError(w, r, http.StatusNotFound, "sport_not_found", "Unknown sport: "+id)
	return nil, false
}

type journalEntryDTO struct {
	ID          string `json:"id"`
	CommandType string `json:"command_type,omitempty"`
	Status      string `json:"status"`
	Payload     string `json:"payload"`
	Output      string `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
	DurationUS  int64  `json:"duration_us"`
	ReceivedAt  string `json:"received_at"`
}

// handleGetJournal handles GET /sports/{sport}/journal?limit=N. Without a
// limit the repository default applies.
func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	sp, ok := s.lookupSport(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.deps.Journal.Recent(r.Context(), sp.ID, limit)
	if err != nil {
		s.requestLog(r).Error("failed to read journal", logger.Sport(sp.ID), logger.Err(err))
		writeError(w, r, http.StatusServiceUnavailable, "journal_unavailable", "Failed to read command journal")
		return
	}

	out := make([]journalEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = journalEntryDTO{
			ID:          e.ID.String(),
			CommandType: e.CommandType,
			Status:      e.Status,
			Payload:     e.Payload,
			Output:      e.Output,
			Error:       e.Error,
			DurationUS:  e.Duration.Microseconds(),
			ReceivedAt:  e.ReceivedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	writeData(w, r, http.StatusOK, out)
}
