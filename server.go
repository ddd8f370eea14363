package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"wall-planner/coverage"
	"wall-planner/internal/config"
	"wall-planner/internal/maskio"
	"wall-planner/internal/monitoring"
)

// PlanRequest describes one planning run. Exactly one mask source is used,
// in order of preference: Rows, MaskImage, Surface.
type PlanRequest struct {
	Gap                  int             `json:"gap,omitempty"`
	AllowCaution         *bool           `json:"allowCaution,omitempty"`
	Anchor               *coverage.Point `json:"anchor,omitempty"`
	LargestComponentOnly *bool           `json:"largestComponentOnly,omitempty"`

	Rows      []string        `json:"rows,omitempty"`      // '1'/'0' per pixel
	MaskImage string          `json:"maskImage,omitempty"` // base64 encoded image
	Surface   json.RawMessage `json:"surface,omitempty"`   // GeoJSON polygons in pixel space
	Width     int             `json:"width,omitempty"`     // target size for MaskImage and Surface
	Height    int             `json:"height,omitempty"`
}

// PlanResponse carries the plan artifacts back to the caller.
type PlanResponse struct {
	ID         string           `json:"id,omitempty"`
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Grid       []string         `json:"grid,omitempty"`
	Waypoints  []coverage.Point `json:"waypoints"`
	Tour       coverage.Tour    `json:"tour"`
	TourCost   int              `json:"tourCost"`
	Path       []coverage.Point `json:"path"`
	PathLength float64          `json:"pathLength"`
	GeoJSON    json.RawMessage  `json:"geojson,omitempty"`
}

// Server exposes the planner over HTTP and keeps the most recent plans it
// produced, up to the configured max_stored_plans.
type Server struct {
	cfg *config.Config

	mu    sync.RWMutex
	plans map[string]*coverage.Result
	order []string // plan ids, oldest first
}

// NewServer creates a server using cfg for defaults and limits.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg, plans: make(map[string]*coverage.Result)}
}

// store keeps result under id and evicts the oldest plans beyond the cap.
func (s *Server) store(id string, result *coverage.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans[id] = result
	s.order = append(s.order, id)
	for len(s.order) > s.cfg.GetMaxStoredPlans() {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.plans, oldest)
		monitoring.Logf("🗑️  Evicted plan %s", oldest)
	}
}

// Handler returns the HTTP routes with CORS enabled.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/plan", corsMiddleware(s.planHandler))
	mux.HandleFunc("/plans", corsMiddleware(s.getPlanHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("❌ Failed to encode response: %v", err)
	}
}

// POST /plan - Plan a sweep over a wall mask
func (s *Server) planHandler(w http.ResponseWriter, r *http.Request) {
	monitoring.Logf("========================================")
	monitoring.Logf("📍 Plan request received")
	defer monitoring.Logf("========================================")

	if r.Method != http.MethodPost {
		monitoring.Logf("❌ Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		monitoring.Logf("❌ Invalid request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Gap == 0 {
		req.Gap = s.cfg.GetGap()
	}
	if err := s.cfg.CheckGap(req.Gap); err != nil {
		monitoring.Logf("❌ %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	allowCaution := s.cfg.GetAllowCaution()
	if req.AllowCaution != nil {
		allowCaution = *req.AllowCaution
	}

	mask, err := s.maskFromRequest(&req)
	if err != nil {
		monitoring.Logf("❌ Invalid mask: %v", err)
		http.Error(w, fmt.Sprintf("Invalid mask: %v", err), http.StatusBadRequest)
		return
	}

	monitoring.Logf("   Mask: %dx%d (%d surface pixels)", mask.Width, mask.Height, mask.Area())
	monitoring.Logf("   Gap: %d, allow caution: %t", req.Gap, allowCaution)

	id := uuid.NewString()
	result, err := s.plan(id, mask, req, allowCaution)
	if err != nil {
		monitoring.Logf("❌ Planning failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, coverage.ErrUnsolvableSegment) || errors.Is(err, coverage.ErrInvalidMask) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, PlanResponse{Success: false, Message: err.Error()})
		return
	}

	resp, err := newPlanResponse(id, result)
	if err != nil {
		monitoring.Logf("❌ %v", err)
		http.Error(w, "Failed to encode plan", http.StatusInternalServerError)
		return
	}
	if result.Insufficient() {
		resp.Message = "Fewer than two waypoints qualify, nothing to traverse"
		monitoring.Logf("⚠️  %s", resp.Message)
	} else {
		monitoring.Logf("✅ Plan %s: %d waypoints, tour cost %d, %d path pixels",
			id, len(result.Waypoints), result.TourCost, len(result.Path))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) plan(id string, mask *coverage.Mask, req PlanRequest, allowCaution bool) (*coverage.Result, error) {
	opts := s.cfg.PlannerOptions()
	opts.Anchor = req.Anchor
	if req.LargestComponentOnly != nil {
		opts.LargestComponentOnly = *req.LargestComponentOnly
	}
	opts.Logf = monitoring.Logf

	planner, err := coverage.NewPlanner(opts)
	if err != nil {
		return nil, err
	}
	result, err := planner.Plan(mask, req.Gap, allowCaution)
	if err != nil {
		return nil, err
	}

	s.store(id, result)

	if dir := s.cfg.GetOutputDir(); dir != "" {
		file := filepath.Join(dir, "plan-"+id+".geojson")
		if err := coverage.SavePlan(result, file); err != nil {
			monitoring.Logf("⚠️  Failed to save plan: %v", err)
		} else {
			monitoring.Logf("💾 Plan saved to %s", file)
		}
	}
	return result, nil
}

func (s *Server) maskFromRequest(req *PlanRequest) (*coverage.Mask, error) {
	switch {
	case len(req.Rows) > 0:
		if err := s.cfg.CheckSize(len(req.Rows[0]), len(req.Rows)); err != nil {
			return nil, err
		}
		return coverage.MaskFromRows(req.Rows)

	case req.MaskImage != "":
		data, err := base64.StdEncoding.DecodeString(req.MaskImage)
		if err != nil {
			return nil, fmt.Errorf("maskImage is not base64: %w", err)
		}
		w, h, err := maskio.DecodeSize(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if err := s.cfg.CheckSize(w, h); err != nil {
			return nil, err
		}
		resize := req.Width > 0 && req.Height > 0 && (w != req.Width || h != req.Height)
		if resize {
			if err := s.cfg.CheckSize(req.Width, req.Height); err != nil {
				return nil, err
			}
		}
		img, err := maskio.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if resize {
			monitoring.Logf("   Resizing mask %dx%d -> %dx%d", w, h, req.Width, req.Height)
			img = maskio.Resize(img, req.Width, req.Height)
		}
		return maskio.Threshold(uint8(s.cfg.GetMaskThreshold()), false)(img)

	case len(req.Surface) > 0:
		if req.Width <= 0 || req.Height <= 0 {
			return nil, errors.New("surface polygons need width and height")
		}
		if err := s.cfg.CheckSize(req.Width, req.Height); err != nil {
			return nil, err
		}
		return maskio.FromGeoJSON(req.Surface, req.Width, req.Height)
	}
	return nil, errors.New("no mask supplied (rows, maskImage or surface)")
}

func newPlanResponse(id string, result *coverage.Result) (PlanResponse, error) {
	fc, err := result.FeatureCollection().MarshalJSON()
	if err != nil {
		return PlanResponse{}, fmt.Errorf("failed to marshal plan: %w", err)
	}
	resp := PlanResponse{
		ID:         id,
		Success:    true,
		Grid:       result.Grid.Symbols(),
		Waypoints:  result.Waypoints,
		Tour:       result.Tour,
		TourCost:   result.TourCost,
		Path:       result.Path,
		PathLength: result.Path.Length(),
		GeoJSON:    fc,
	}
	if resp.Waypoints == nil {
		resp.Waypoints = []coverage.Point{}
	}
	return resp, nil
}

// GET /plans?id=<id> - Fetch a previously computed plan as GeoJSON
func (s *Server) getPlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	s.mu.RLock()
	result, ok := s.plans[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "Plan not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, result.FeatureCollection())
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	numPlans := len(s.plans)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"numPlans":   numPlans,
		"maxPlans":   s.cfg.GetMaxStoredPlans(),
		"exactNodes": s.cfg.GetExactNodes(),
	})
}
