package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-study/internal/catalog"
)

// seededStore returns a MemoryStore holding the built-in catalog.
func seededStore(t *testing.T) *catalog.MemoryStore {
	t.Helper()
	store := catalog.NewMemoryStore()
	cat, err := catalog.DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed() error = %v", err)
	}
	if _, err := catalog.Seed(context.Background(), store, cat); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return store
}

// resourceFilterTests run against every Store backend seeded with the
// built-in catalog.
var resourceFilterTests = []struct {
	name   string
	filter catalog.Filter
	want   int
}{
	{"no filter", catalog.Filter{}, 5},
	{"grade", catalog.Filter{Grade: "10"}, 5},
	{"grade mismatch", catalog.Filter{Grade: "11"}, 0},
	{"exam exact", catalog.Filter{Exam: "JEE"}, 2},
	{"exam ignores case", catalog.Filter{Exam: "jee"}, 2},
	{"subject ignores case", catalog.Filter{Subject: "MATH"}, 3},
	{"exam and subject", catalog.Filter{Exam: "school", Subject: "physics"}, 0},
	{"topic exact", catalog.Filter{Topic: "Mechanics"}, 2},
	{"topic is case sensitive", catalog.Filter{Topic: "mechanics"}, 0},
	{"exam without wildcard is not a prefix", catalog.Filter{Exam: "JE"}, 0},
	{"exam prefix wildcard", catalog.Filter{Exam: "j%"}, 2},
	{"subject suffix wildcard", catalog.Filter{Subject: "%ath"}, 3},
	{"exam single character wildcard", catalog.Filter{Exam: "J_E"}, 2},
	{"single character wildcard needs a character", catalog.Filter{Exam: "JEE_"}, 0},
	{"match everything", catalog.Filter{Exam: "%"}, 5},
	{"inner wildcard", catalog.Filter{Subject: "p%s%s"}, 2},
	{"escaped percent is literal", catalog.Filter{Exam: `JEE\%`}, 0},
}

func TestMemoryStore_ListResources_Filters(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	for _, tt := range resourceFilterTests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListResources(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListResources() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len(ListResources()) = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMemoryStore_ListResources_OrderedByID(t *testing.T) {
	store := seededStore(t)

	got, err := store.ListResources(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("resources not ordered by id: %d before %d", got[i-1].ID, got[i].ID)
		}
	}
	if got[0].URL != "https://youtube.com/algebra_intro" {
		t.Errorf("first resource URL = %q, want the algebra intro video", got[0].URL)
	}
}

func TestMemoryStore_ListResources_EmptyIsNotNil(t *testing.T) {
	store := catalog.NewMemoryStore()

	got, err := store.ListResources(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if got == nil {
		t.Error("ListResources() should return an empty slice, not nil")
	}
}

func TestMemoryStore_ListWeightages(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter catalog.Filter
		want   int
	}{
		{"all", catalog.Filter{}, 3},
		{"school", catalog.Filter{Exam: "School"}, 2},
		{"jee lower", catalog.Filter{Exam: "jee", Subject: "physics"}, 1},
		{"exam pattern", catalog.Filter{Exam: "s%l"}, 2},
		{"grade mismatch", catalog.Filter{Grade: "12"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListWeightages(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListWeightages() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len(ListWeightages()) = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	store := catalog.NewMemoryStore()
	ctx := context.Background()

	created, err := store.CreateResource(ctx, catalog.Resource{
		Type: catalog.TypePDF, Grade: "9", Exam: "School", Subject: "Science",
		Topic: "Cells", Difficulty: catalog.DifficultyEasy, URL: "/pdfs/cells.pdf",
	})
	if err != nil {
		t.Fatalf("CreateResource() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateResource() should assign an id")
	}

	got, err := store.GetResource(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetResource() error = %v", err)
	}
	if got.Topic != "Cells" {
		t.Errorf("Topic = %q, want Cells", got.Topic)
	}

	if err := store.DeleteResource(ctx, created.ID); err != nil {
		t.Fatalf("DeleteResource() error = %v", err)
	}
	if _, err := store.GetResource(ctx, created.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("GetResource() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteResource(ctx, created.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second DeleteResource() error = %v, want ErrNotFound", err)
	}
}
