package planner_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/planner"
)

func seededCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	store := catalog.NewMemoryStore()
	cat, err := catalog.DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed() error = %v", err)
	}
	if _, err := catalog.Seed(context.Background(), store, cat); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return catalog.NewService(store, nil)
}

// countingLister records how often each topic is looked up.
type countingLister struct {
	inner  planner.ResourceLister
	topics []string
	err    error
}

func (l *countingLister) Resources(ctx context.Context, f catalog.Filter) ([]catalog.Resource, error) {
	l.topics = append(l.topics, f.Topic)
	if l.err != nil {
		return nil, l.err
	}
	return l.inner.Resources(ctx, f)
}

func TestBuildPlan_NoWeakTopics(t *testing.T) {
	p := planner.New(planner.Config{Resources: seededCatalog(t)})

	for _, topics := range [][]string{nil, {}, {"", "  "}} {
		_, err := p.BuildPlan(context.Background(), planner.PlanRequest{WeakTopics: topics})
		if !errors.Is(err, planner.ErrNoWeakTopics) {
			t.Errorf("BuildPlan(%q) error = %v, want ErrNoWeakTopics", topics, err)
		}
	}
}

func TestBuildPlan_DaysAndMaterials(t *testing.T) {
	p := planner.New(planner.Config{Resources: seededCatalog(t)})

	resp, err := p.BuildPlan(context.Background(), planner.PlanRequest{
		WeakTopics: []string{"Algebra", "Mechanics", "Trigonometry"},
	})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}

	if len(resp.Plan) != 3 {
		t.Fatalf("len(Plan) = %d, want 3", len(resp.Plan))
	}
	wantMaterials := []int{3, 2, 0}
	for i, day := range resp.Plan {
		if day.Day != i+1 {
			t.Errorf("Plan[%d].Day = %d, want %d", i, day.Day, i+1)
		}
		if day.RecommendedAction != "Study "+day.Topic {
			t.Errorf("Plan[%d].RecommendedAction = %q", i, day.RecommendedAction)
		}
		if day.RecommendedMaterials == nil {
			t.Errorf("Plan[%d].RecommendedMaterials is nil, want empty slice", i)
		}
		if len(day.RecommendedMaterials) != wantMaterials[i] {
			t.Errorf("len(Plan[%d].RecommendedMaterials) = %d, want %d", i, len(day.RecommendedMaterials), wantMaterials[i])
		}
		for _, m := range day.RecommendedMaterials {
			if m.Topic != day.Topic {
				t.Errorf("material topic = %q, want %q", m.Topic, day.Topic)
			}
		}
	}

	first := resp.Plan[0].RecommendedMaterials[0]
	if first.Type != catalog.TypeYouTube || first.URL != "https://youtube.com/algebra_intro" {
		t.Errorf("first material = %+v, want the algebra intro video", first)
	}
	if first.Description == nil || *first.Description != "Basics of algebra for class 10." {
		t.Errorf("first material description = %v", first.Description)
	}
}

func TestBuildPlan_FilterRestrictsMaterials(t *testing.T) {
	p := planner.New(planner.Config{Resources: seededCatalog(t)})

	resp, err := p.BuildPlan(context.Background(), planner.PlanRequest{
		WeakTopics: []string{"Mechanics"},
		Filter:     catalog.Filter{Exam: "school", Topic: "Algebra"},
	})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	if got := len(resp.Plan[0].RecommendedMaterials); got != 0 {
		t.Errorf("len(RecommendedMaterials) = %d, want 0 for a JEE topic under exam=school", got)
	}
}

func TestBuildPlan_RepeatedTopicLooksUpOnce(t *testing.T) {
	lister := &countingLister{inner: seededCatalog(t)}
	p := planner.New(planner.Config{Resources: lister})

	resp, err := p.BuildPlan(context.Background(), planner.PlanRequest{
		WeakTopics: []string{"Algebra", " Algebra ", "Mechanics"},
	})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	if len(resp.Plan) != 3 || len(resp.Quiz) != 3 {
		t.Errorf("len(Plan), len(Quiz) = %d, %d, want 3, 3", len(resp.Plan), len(resp.Quiz))
	}
	if !slices.Equal(lister.topics, []string{"Algebra", "Mechanics"}) {
		t.Errorf("lookups = %v, want [Algebra Mechanics]", lister.topics)
	}
}

func TestBuildPlan_ListerError(t *testing.T) {
	lister := &countingLister{err: errors.New("db down")}
	p := planner.New(planner.Config{Resources: lister})

	if _, err := p.BuildPlan(context.Background(), planner.PlanRequest{WeakTopics: []string{"Algebra"}}); err == nil {
		t.Fatal("BuildPlan() should return error when the catalog fails")
	}
}

func TestBuildPlan_QuizPerTopic(t *testing.T) {
	p := planner.New(planner.Config{
		Resources: seededCatalog(t),
		Quiz:      planner.NewRandomQuizGenerator(rand.NewPCG(1, 2)),
	})

	resp, err := p.BuildPlan(context.Background(), planner.PlanRequest{WeakTopics: []string{"Algebra", "Geometry"}})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	for i, topic := range []string{"Algebra", "Geometry"} {
		q := resp.Quiz[i]
		if q.Question != "Sample question on "+topic {
			t.Errorf("Quiz[%d].Question = %q", i, q.Question)
		}
		if !slices.Equal(q.Options, planner.DefaultOptions) {
			t.Errorf("Quiz[%d].Options = %v, want %v", i, q.Options, planner.DefaultOptions)
		}
		if !slices.Contains(q.Options, q.Answer) {
			t.Errorf("Quiz[%d].Answer = %q, not among options", i, q.Answer)
		}
	}
}

func TestBuildPlan_LogsEvent(t *testing.T) {
	events := planner.NewMemoryEventLogger()
	p := planner.New(planner.Config{Resources: seededCatalog(t), Events: events})

	_, err := p.BuildPlan(context.Background(), planner.PlanRequest{
		WeakTopics: []string{"Algebra"},
		Filter:     catalog.Filter{Grade: "10"},
	})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}

	got := events.Events()
	if len(got) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(got))
	}
	if got[0].EventType != planner.EventPlanGenerated {
		t.Errorf("EventType = %q, want %q", got[0].EventType, planner.EventPlanGenerated)
	}
	if got[0].Data["materials"] != 3 {
		t.Errorf("Data[materials] = %v, want 3", got[0].Data["materials"])
	}
	if got[0].Data["grade"] != "10" {
		t.Errorf("Data[grade] = %v, want 10", got[0].Data["grade"])
	}
}

func TestBuildPlan_NoLister(t *testing.T) {
	p := planner.New(planner.Config{})

	resp, err := p.BuildPlan(context.Background(), planner.PlanRequest{WeakTopics: []string{"Algebra"}})
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	if resp.Plan[0].RecommendedMaterials == nil || len(resp.Plan[0].RecommendedMaterials) != 0 {
		t.Errorf("RecommendedMaterials = %v, want empty", resp.Plan[0].RecommendedMaterials)
	}
}
