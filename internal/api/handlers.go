package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/planner"
)

const maxBodyBytes = 1 << 20

const noWeakTopicsDetail = "You must provide at least one weak topic."

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	for _, hc := range s.checks {
		if err := hc.Check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", hc.Name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStudyMaterials(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.catalog.StudyMaterials(r.Context(), filterFromQuery(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (s *Server) handleListWeightages(w http.ResponseWriter, r *http.Request) {
	weightages, err := s.catalog.Weightages(r.Context(), filterFromQuery(r))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weightages)
}

func (s *Server) handleAggregateResources(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.catalog.AggregateResources(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"grouped": grouped})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	resp, err := s.planner.BuildPlan(r.Context(), planner.PlanRequest{
		WeakTopics: r.URL.Query()["weak_topics"],
		Filter:     filterFromQuery(r),
	})
	if errors.Is(err, planner.ErrNoWeakTopics) {
		writeError(w, http.StatusBadRequest, noWeakTopicsDetail)
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if err := catalog.ValidateResourceJSON(body); err != nil {
		writeValidationError(w, r, err)
		return
	}

	var res catalog.Resource
	if err := json.Unmarshal(body, &res); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	res.ID = 0

	created, err := s.catalog.CreateResource(r.Context(), res)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}

	res, err := s.catalog.Resource(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}

	err := s.catalog.DeleteResource(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func resourceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid resource id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateWeightage(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if err := catalog.ValidateWeightageJSON(body); err != nil {
		writeValidationError(w, r, err)
		return
	}

	var wt catalog.Weightage
	if err := json.Unmarshal(body, &wt); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	created, err := s.catalog.CreateWeightage(r.Context(), wt)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func filterFromQuery(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	return catalog.Filter{
		Grade:   q.Get("grade"),
		Exam:    q.Get("exam"),
		Subject: q.Get("subject"),
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}
	return body, true
}

// writeValidationError answers 400 for validation failures and 500 otherwise.
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	writeInternalError(w, r, err)
}
