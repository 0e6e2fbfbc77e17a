// Package planner builds day-by-day study plans and practice quizzes for a
// learner's weak topics.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-study/internal/catalog"
)

// ErrNoWeakTopics is returned when a plan is requested without topics.
var ErrNoWeakTopics = errors.New("no weak topics provided")

// EventPlanGenerated is the analytics event recorded for every plan.
const EventPlanGenerated = "plan_generated"

// ResourceLister is the catalog read used to attach materials to a plan.
type ResourceLister interface {
	Resources(ctx context.Context, f catalog.Filter) ([]catalog.Resource, error)
}

// PlanRequest asks for a plan covering WeakTopics, with materials restricted
// to the grade, exam and subject in Filter. Filter.Topic is ignored.
type PlanRequest struct {
	WeakTopics []string
	Filter     catalog.Filter
}

// Material is the projection of a resource shown inside a plan day.
type Material struct {
	Topic       string  `json:"topic"`
	Type        string  `json:"type"`
	URL         string  `json:"url"`
	Description *string `json:"description"`
}

// PlanDay is one day of the study plan.
type PlanDay struct {
	Day                  int        `json:"day"`
	Topic                string     `json:"topic"`
	RecommendedAction    string     `json:"recommended_action"`
	RecommendedMaterials []Material `json:"recommended_materials"`
}

// QuizItem is one multiple-choice question.
type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// PlanResponse is the generated plan and its quiz.
type PlanResponse struct {
	Plan []PlanDay  `json:"plan"`
	Quiz []QuizItem `json:"quiz"`
}

// Config holds dependencies for the planner.
type Config struct {
	Resources ResourceLister
	Quiz      QuizGenerator // defaults to a RandomQuizGenerator
	Events    EventLogger   // defaults to NopEventLogger
}

// Planner builds study plans.
type Planner struct {
	resources ResourceLister
	quiz      QuizGenerator
	events    EventLogger
}

// New creates a planner.
func New(cfg Config) *Planner {
	quiz := cfg.Quiz
	if quiz == nil {
		quiz = NewRandomQuizGenerator(nil)
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	return &Planner{
		resources: cfg.Resources,
		quiz:      quiz,
		events:    events,
	}
}

// BuildPlan returns one plan day and one quiz item per weak topic, in request
// order. Repeated topics get repeated days but a single catalog lookup.
func (p *Planner) BuildPlan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	topics := cleanTopics(req.WeakTopics)
	if len(topics) == 0 {
		return PlanResponse{}, ErrNoWeakTopics
	}

	materials := make(map[string][]Material, len(topics))
	for _, topic := range topics {
		if _, done := materials[topic]; done {
			continue
		}
		found, err := p.materialsFor(ctx, req.Filter, topic)
		if err != nil {
			return PlanResponse{}, err
		}
		materials[topic] = found
	}

	resp := PlanResponse{
		Plan: make([]PlanDay, 0, len(topics)),
		Quiz: make([]QuizItem, 0, len(topics)),
	}
	for i, topic := range topics {
		resp.Plan = append(resp.Plan, PlanDay{
			Day:                  i + 1,
			Topic:                topic,
			RecommendedAction:    "Study " + topic,
			RecommendedMaterials: materials[topic],
		})

		item, err := p.quiz.Generate(ctx, topic)
		if err != nil {
			return PlanResponse{}, fmt.Errorf("generate quiz for %q: %w", topic, err)
		}
		resp.Quiz = append(resp.Quiz, item)
	}

	p.logPlan(req, topics, materials)
	return resp, nil
}

func (p *Planner) materialsFor(ctx context.Context, f catalog.Filter, topic string) ([]Material, error) {
	out := []Material{}
	if p.resources == nil {
		return out, nil
	}

	f.Topic = topic
	resources, err := p.resources.Resources(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list materials for %q: %w", topic, err)
	}
	for _, r := range resources {
		out = append(out, Material{
			Topic:       r.Topic,
			Type:        r.Type,
			URL:         r.URL,
			Description: r.Description,
		})
	}
	return out, nil
}

func (p *Planner) logPlan(req PlanRequest, topics []string, materials map[string][]Material) {
	total := 0
	for _, m := range materials {
		total += len(m)
	}

	err := p.events.LogEvent(Event{
		EventType: EventPlanGenerated,
		Data: map[string]any{
			"weak_topics": topics,
			"grade":       req.Filter.Grade,
			"exam":        req.Filter.Exam,
			"subject":     req.Filter.Subject,
			"materials":   total,
		},
	})
	if err != nil {
		slog.Warn("failed to log plan event", "error", err)
	}
}

// cleanTopics trims whitespace and drops empty entries.
func cleanTopics(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
