package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/platform/config"
)

// memoryBackend returns an opener that always hands out the same in-memory
// catalog.
func memoryBackend(store *catalog.MemoryStore) backendOpener {
	return func(context.Context, *config.Config) (*backend, error) {
		return &backend{
			svc:   catalog.NewService(store, nil),
			close: func() {},
		}, nil
	}
}

func execute(t *testing.T, store *catalog.MemoryStore, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(memoryBackend(store))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedCommand(t *testing.T) {
	store := catalog.NewMemoryStore()

	out, err := execute(t, store, "seed")
	if err != nil {
		t.Fatalf("seed error = %v", err)
	}
	if !strings.Contains(out, "seeded 5 resources, 3 weightages") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, store, "seed")
	if err != nil {
		t.Fatalf("second seed error = %v", err)
	}
	if !strings.Contains(out, "seeded 0 resources, 0 weightages") {
		t.Errorf("second seed output = %q, want nothing seeded", out)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := catalog.NewMemoryStore()
	if _, err := execute(t, src, "seed"); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	if _, err := execute(t, src, "export", path, "--exam", "school"); err != nil {
		t.Fatalf("export error = %v", err)
	}

	dst := catalog.NewMemoryStore()
	out, err := execute(t, dst, "import", path)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "imported 3 resources, 2 weightages, skipped 0") {
		t.Errorf("import output = %q", out)
	}

	got, err := dst.ListResources(context.Background(), catalog.Filter{Topic: "Algebra"})
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len(Algebra) = %d, want 3", len(got))
	}
}

func TestImport_SkipsInvalidRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	err = catalog.WriteWorkbook(f, []catalog.Resource{
		{Type: catalog.TypePDF, Grade: "9", Exam: "School", Subject: "Math", Topic: "Sets", Difficulty: catalog.DifficultyEasy, URL: "/pdfs/sets.pdf"},
		{Type: "Podcast", Grade: "9", Exam: "School", Subject: "Math", Topic: "Sets", Difficulty: catalog.DifficultyEasy, URL: "/audio/sets.mp3"},
	}, nil)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}

	out, err := execute(t, catalog.NewMemoryStore(), "import", "--dry-run", path)
	if err != nil {
		t.Fatalf("dry run error = %v", err)
	}
	if !strings.Contains(out, "2 resources, 0 weightages, 1 invalid") {
		t.Errorf("dry run output = %q", out)
	}

	store := catalog.NewMemoryStore()
	out, err = execute(t, store, "import", path)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "imported 1 resources, 0 weightages, skipped 1") {
		t.Errorf("import output = %q", out)
	}
}

func TestImport_SkipsNonNumericWeightage(t *testing.T) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", catalog.SheetResources)
	f.SetSheetRow(catalog.SheetResources, "A1", &[]any{"type", "grade", "exam", "subject", "topic", "difficulty", "url"})
	f.SetSheetRow(catalog.SheetResources, "A2", &[]any{"PDF", "9", "School", "Math", "Sets", "Easy", "/pdfs/sets.pdf"})
	f.NewSheet(catalog.SheetWeightages)
	f.SetSheetRow(catalog.SheetWeightages, "A1", &[]any{"grade", "exam", "subject", "topic", "weightage"})
	f.SetSheetRow(catalog.SheetWeightages, "A2", &[]any{"9", "School", "Math", "Sets", "40"})
	f.SetSheetRow(catalog.SheetWeightages, "A3", &[]any{"9", "School", "Math", "Logic", "twenty"})
	path := filepath.Join(t.TempDir(), "weightages.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"dry run", []string{"import", "--dry-run", path}, "1 resources, 1 weightages, 1 invalid"},
		{"import", []string{"import", path}, "imported 1 resources, 1 weightages, skipped 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, catalog.NewMemoryStore(), tt.args...)
			if err != nil {
				t.Fatalf("%s error = %v", tt.name, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestImport_MissingFile(t *testing.T) {
	if _, err := execute(t, catalog.NewMemoryStore(), "import", filepath.Join(t.TempDir(), "none.xlsx")); err == nil {
		t.Fatal("import should fail for a missing file")
	}
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	if _, err := execute(t, catalog.NewMemoryStore(), "migrate"); err == nil {
		t.Fatal("migrate should fail without a database")
	}
}
