package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/tablesight/tablesight/internal/layout"
)

// healthHandler returns server health status and frame freshness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if p := s.source.Profile(); p != nil {
		response.Profile = p.Name
	}
	if frame, ok := s.source.Peek(); ok {
		response.HasFrame = true
		response.FrameAge = time.Since(frame.Timestamp).Truncate(time.Millisecond).String()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// profileHandler returns the active room calibration: regions with
// their normalized rectangles, sorted by name.
func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := s.source.Profile()
	if p == nil {
		s.writeErrorResponse(w, "No profile loaded", http.StatusServiceUnavailable)
		return
	}

	regions := make([]RegionInfo, 0, len(p.Regions))
	for _, reg := range p.Regions {
		info := RegionInfo{
			Name:   reg.Name,
			Kind:   string(reg.Kind),
			Rect:   reg.Rect,
			Anchor: reg.Base.Anchor,
		}
		if reg.Kind == layout.KindText {
			info.Semantics = string(reg.Hint().Semantics)
		}
		regions = append(regions, info)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })

	response := ProfileResponse{
		Name:       p.Name,
		ClientSize: p.ClientSize,
		Regions:    regions,
		Count:      len(regions),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode profile response", "error", err)
	}
}

// frameHandler returns the latest recognized frame as JSON, or 204
// when no frame has been published yet.
func (s *Server) frameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame, ok := s.source.Peek()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(frame); err != nil {
		slog.Error("Failed to encode frame response", "error", err)
		return
	}
	framesServedTotal.WithLabelValues("http").Inc()
}

// summaryHandler renders the latest frame as plain text, or 204 when
// no frame has been published yet.
func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame, ok := s.source.Peek()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, frame.Summary()); err != nil {
		slog.Error("Failed to write summary response", "error", err)
	}
}

// writeErrorResponse writes a standardized JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
