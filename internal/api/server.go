// Package api exposes the catalog and planner over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/planner"
)

const readyTimeout = 2 * time.Second

// HealthCheck is a named dependency probe used by /readyz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Config holds dependencies for the HTTP server.
type Config struct {
	Catalog      *catalog.Service
	Planner      *planner.Planner
	AdminKeyHash string   // bcrypt hash; empty disables the write endpoints
	CORSOrigins  []string // "*" allows any origin
	HealthChecks []HealthCheck
}

// Server serves the HTTP API.
type Server struct {
	catalog      *catalog.Service
	planner      *planner.Planner
	adminKeyHash []byte
	corsOrigins  []string
	checks       []HealthCheck
}

// NewServer creates an API server.
func NewServer(cfg Config) *Server {
	p := cfg.Planner
	if p == nil {
		var resources planner.ResourceLister
		if cfg.Catalog != nil {
			resources = cfg.Catalog
		}
		p = planner.New(planner.Config{Resources: resources})
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		catalog:      cfg.Catalog,
		planner:      p,
		adminKeyHash: []byte(cfg.AdminKeyHash),
		corsOrigins:  origins,
		checks:       cfg.HealthChecks,
	}
}

// Handler returns the routed handler wrapped in the server's middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /study_materials", s.handleStudyMaterials)
	mux.HandleFunc("GET /subject_weightage", s.handleListWeightages)
	mux.HandleFunc("GET /aggregate_resources", s.handleAggregateResources)
	mux.HandleFunc("GET /resources/{id}", s.handleGetResource)
	mux.HandleFunc("POST /ai_assistant/plan", s.handlePlan)

	mux.Handle("POST /resources", s.requireAdmin(http.HandlerFunc(s.handleCreateResource)))
	mux.Handle("DELETE /resources/{id}", s.requireAdmin(http.HandlerFunc(s.handleDeleteResource)))
	mux.Handle("POST /subject_weightage", s.requireAdmin(http.HandlerFunc(s.handleCreateWeightage)))

	return logRequests(s.cors(mux))
}
