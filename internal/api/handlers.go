package api

import (
	"encoding/json"
	"net/http"

	"github.com/algoparity/parity-go/internal/temporal/querier"
	"github.com/algoparity/parity-go/internal/temporal/versioning"
	"github.com/algoparity/parity-go/internal/temporal/workflows"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	opts := querier.ListOptions{
		TaskQueue: versioning.QueuePipeline,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		opts.StatusFilter = status
	}

	pipelines, err := s.querier.ListPipelines(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pipelines)
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "pipeline id required")
		return
	}

	result, err := s.querier.GetPipelineState(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "pipeline id required")
		return
	}

	result, err := s.querier.GetPipelineState(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.State.Report == nil {
		writeError(w, http.StatusNotFound, "no equivalence report yet")
		return
	}
	writeJSON(w, http.StatusOK, result.State.Report)
}

func (s *Server) handleStartPipeline(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Algorithm      string `json:"algorithm"`
		CurrentVersion string `json:"current_version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Algorithm == "" {
		writeError(w, http.StatusBadRequest, "'algorithm' field is required")
		return
	}
	if body.CurrentVersion == "" {
		writeError(w, http.StatusBadRequest, "'current_version' field is required")
		return
	}

	receipt, err := s.querier.StartPipeline(r.Context(), workflows.WorkflowInput{
		Algorithm:      body.Algorithm,
		CurrentVersion: body.CurrentVersion,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
