package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
	"github.com/fairyhunter13/internship-tracker/internal/usecase"
)

// Actor headers. Authentication is handled upstream of this core; the
// gateway forwards the verified identity in these headers.
const (
	headerActorID   = "X-Actor-Id"
	headerActorType = "X-Actor-Type"
)

var validate = validator.New()

// Server aggregates handler dependencies.
type Server struct {
	Applications usecase.ApplicationService
	Recommend    usecase.RecommendService
	Analytics    usecase.AnalyticsService
}

// NewServer constructs a Server over the core services.
func NewServer(apps usecase.ApplicationService, rec usecase.RecommendService, analytics usecase.AnalyticsService) *Server {
	return &Server{Applications: apps, Recommend: rec, Analytics: analytics}
}

func actorFrom(r *http.Request) (domain.Actor, error) {
	id := r.Header.Get(headerActorID)
	typ := domain.ActorType(r.Header.Get(headerActorType))
	if id == "" {
		return domain.Actor{}, fmt.Errorf("%w: missing %s header", domain.ErrUnauthorized, headerActorID)
	}
	switch typ {
	case domain.ActorStudent, domain.ActorAdmin, domain.ActorSystem:
	default:
		return domain.Actor{}, fmt.Errorf("%w: unknown actor type %q", domain.ErrUnauthorized, typ)
	}
	return domain.Actor{ID: id, Type: typ}, nil
}

type submitRequest struct {
	InternshipID string `json:"internship_id" validate:"required"`
}

// SubmitHandler handles POST /v1/applications.
func (s *Server) SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		app, err := s.Applications.Submit(r.Context(), actor, req.InternshipID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, app)
	}
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// TransitionHandler handles POST /v1/applications/{id}/transition.
func (s *Server) TransitionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req transitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		app, err := s.Applications.Transition(r.Context(), actor, chi.URLParam(r, "id"), domain.ApplicationStatus(req.Status), req.Notes)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, app)
	}
}

// CancelHandler handles DELETE /v1/applications/{id}.
func (s *Server) CancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Applications.Cancel(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HistoryHandler handles GET /v1/applications/{id}/history.
func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Applications.History(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

// RecommendHandler handles GET /v1/recommendations?limit=N for the acting
// student.
func (s *Server) RecommendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		limit := parseLimit(r, 10)
		recs, err := s.Recommend.Recommend(r.Context(), actor.ID, limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
	}
}

// OverallStatsHandler handles GET /v1/stats/overall.
func (s *Server) OverallStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Analytics.GetOverallStats(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// UserStatsHandler handles GET /v1/stats/users/{id}.
func (s *Server) UserStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Analytics.GetUserStats(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// StatusBreakdownHandler handles GET /v1/stats/status-breakdown.
func (s *Server) StatusBreakdownHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		breakdown, err := s.Analytics.GetStatusBreakdown(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"breakdown": breakdown})
	}
}

// ApprovalRatioHandler handles GET /v1/stats/approval-ratio.
func (s *Server) ApprovalRatioHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ratio, err := s.Analytics.GetApprovalRatio(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"approval_ratio": ratio})
	}
}

// PerInternshipHandler handles GET /v1/stats/per-internship?limit=N.
func (s *Server) PerInternshipHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := s.Analytics.GetApplicationsPerInternship(r.Context(), parseLimit(r, 10))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"internships": counts})
	}
}

// TopPerformingHandler handles GET /v1/stats/top-performing?limit=N.
func (s *Server) TopPerformingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		perf, err := s.Analytics.GetTopPerformingInternships(r.Context(), parseLimit(r, 10))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"internships": perf})
	}
}

// TransitionDurationsHandler handles GET /v1/stats/transition-durations.
func (s *Server) TransitionDurationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		durations, err := s.Analytics.GetTransitionDurations(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"durations": durations})
	}
}

func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
