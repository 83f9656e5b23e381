package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	bferrors "github.com/dygy/beatforge/internal/errors"
	"github.com/dygy/beatforge/internal/pipeline"
	"github.com/dygy/beatforge/internal/resolver"
	"github.com/dygy/beatforge/internal/timing"
)

// generateRequest is the POST /api/generate payload. Omitted fields take
// the pipeline defaults.
type generateRequest struct {
	SongName      string  `json:"song_name"`
	TempoBPM      float64 `json:"tempo_bpm"`
	TimeSignature string  `json:"time_signature"`
	BarCount      int     `json:"bar_count"`
	Style         string  `json:"style"`
	Instrument    string  `json:"instrument"`
	Complexity    string  `json:"complexity"`
	PlayMode      string  `json:"play_mode"`
	Seed          string  `json:"seed"`
}

type jobResponse struct {
	ID       string           `json:"id"`
	Status   JobStatus        `json:"status"`
	Error    string           `json:"error,omitempty"`
	Result   *pipeline.Result `json:"result,omitempty"`
	Download string           `json:"download,omitempty"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleGenerate accepts a render request and starts a job for it. The
// request is validated synchronously so bad parameters fail with a 400
// instead of a failed job.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	cfg := pipeline.DefaultConfig()
	if req.SongName != "" {
		cfg.SongName = req.SongName
	}
	if req.TempoBPM != 0 {
		cfg.TempoBPM = req.TempoBPM
	}
	if req.TimeSignature != "" {
		cfg.TimeSignature = req.TimeSignature
	}
	if req.BarCount != 0 {
		cfg.BarCount = req.BarCount
	}
	if req.Style != "" {
		cfg.Style = req.Style
	}
	if req.Instrument != "" {
		cfg.Instrument = req.Instrument
	}
	if req.Complexity != "" {
		cfg.Complexity = req.Complexity
	}
	if req.PlayMode != "" {
		cfg.PlayMode = req.PlayMode
	}
	if req.Seed != "" {
		cfg.Seed = req.Seed
	}

	if _, err := timing.New(cfg.TempoBPM, cfg.TimeSignature, cfg.BarCount, cfg.Style); err != nil {
		var cerr *bferrors.ConfigError
		if errors.As(err, &cerr) {
			s.writeError(w, http.StatusBadRequest, cerr.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.jobs.Create(cfg)
	if err != nil {
		s.logger.Error("create job", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "could not create job")
		return
	}

	go s.jobs.Process(job)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(jobResponse{ID: job.ID, Status: job.Status})
}

// handleJobStatus reports a job's current state.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Snapshot(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	resp := jobResponse{ID: job.ID, Status: job.Status, Error: job.Error}
	if job.Status == StatusComplete {
		resp.Result = job.Result
		resp.Download = fmt.Sprintf("/api/jobs/%s/download", job.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleDownload serves a finished job's WAV artifact.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Snapshot(chi.URLParam(r, "id"))
	if !ok || job.Status != StatusComplete {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	path := job.OutputPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		http.Error(w, "Artifact expired", http.StatusGone)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", job.Request.SongName+".wav"))
	http.ServeFile(w, r, path)
}

// handleStyles lists the known styles with their descriptions.
func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	type styleInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	var out []styleInfo
	for _, name := range timing.AvailableStyles() {
		out = append(out, styleInfo{Name: name, Description: timing.StyleDescription(name)})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// handleInstruments lists the registered instrument families.
func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	type familyInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	var out []familyInfo
	for _, name := range resolver.AvailableFamilies() {
		out = append(out, familyInfo{Name: name, Description: resolver.FamilyDescription(name)})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
