package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetResources  = "resources"
	SheetWeightages = "weightages"
)

var (
	resourceHeader  = []string{"id", "type", "grade", "exam", "subject", "topic", "difficulty", "url", "solutions_url", "description"}
	weightageHeader = []string{"grade", "exam", "subject", "topic", "weightage"}
)

// WriteWorkbook writes resources and weightages as an .xlsx workbook with one
// sheet each.
func WriteWorkbook(w io.Writer, resources []Resource, weightages []Weightage) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetResources); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, SheetResources, 1, toRow(resourceHeader)); err != nil {
		return err
	}
	for i, r := range resources {
		row := []any{r.ID, r.Type, r.Grade, r.Exam, r.Subject, r.Topic, r.Difficulty, r.URL, deref(r.SolutionsURL), deref(r.Description)}
		if err := writeRow(f, SheetResources, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetWeightages); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeRow(f, SheetWeightages, 1, toRow(weightageHeader)); err != nil {
		return err
	}
	for i, wt := range weightages {
		row := []any{wt.Grade, wt.Exam, wt.Subject, wt.Topic, wt.Weightage}
		if err := writeRow(f, SheetWeightages, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Workbook is the parsed content of an import spreadsheet.
type Workbook struct {
	Resources  []Resource
	Weightages []Weightage
	// Rejected lists rows whose cells could not be converted at all.
	// Rows that parse but fail validation are left to the caller.
	Rejected []RowError
}

// RowError reports a spreadsheet row that could not be read.
type RowError struct {
	Sheet string
	Row   int // 1-based, as shown by spreadsheet applications
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s sheet row %d: %v", e.Sheet, e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ReadWorkbook parses a workbook produced by WriteWorkbook, or any workbook
// whose first row names the columns. The resources sheet is required, the
// weightages sheet is optional. Columns are matched by header name.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetResources)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", SheetResources, err)
	}
	wb := &Workbook{}
	wb.Resources, err = parseResourceRows(rows)
	if err != nil {
		return nil, err
	}

	if idx, err := f.GetSheetIndex(SheetWeightages); err == nil && idx >= 0 {
		rows, err := f.GetRows(SheetWeightages)
		if err != nil {
			return nil, fmt.Errorf("read %s sheet: %w", SheetWeightages, err)
		}
		if err := parseWeightageRows(rows, wb); err != nil {
			return nil, err
		}
	}

	return wb, nil
}

func parseResourceRows(rows [][]string) ([]Resource, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := headerIndex(rows[0])
	for _, name := range []string{"type", "topic", "url"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s sheet: missing column %q", SheetResources, name)
		}
	}

	var out []Resource
	for _, row := range rows[1:] {
		get := cellGetter(cols, row)
		if isBlank(row) {
			continue
		}
		out = append(out, Resource{
			Type:         get("type"),
			Grade:        get("grade"),
			Exam:         get("exam"),
			Subject:      get("subject"),
			Topic:        get("topic"),
			Difficulty:   get("difficulty"),
			URL:          get("url"),
			SolutionsURL: StringPtr(get("solutions_url")),
			Description:  StringPtr(get("description")),
		})
	}
	return out, nil
}

func parseWeightageRows(rows [][]string, wb *Workbook) error {
	if len(rows) == 0 {
		return nil
	}
	cols := headerIndex(rows[0])
	if _, ok := cols["weightage"]; !ok {
		return fmt.Errorf("%s sheet: missing column %q", SheetWeightages, "weightage")
	}

	for i, row := range rows[1:] {
		get := cellGetter(cols, row)
		if isBlank(row) {
			continue
		}
		pct, err := strconv.ParseFloat(get("weightage"), 64)
		if err != nil {
			wb.Rejected = append(wb.Rejected, RowError{
				Sheet: SheetWeightages,
				Row:   i + 2,
				Err:   fmt.Errorf("weightage %q is not a number", get("weightage")),
			})
			continue
		}
		wb.Weightages = append(wb.Weightages, Weightage{
			Grade:     get("grade"),
			Exam:      get("exam"),
			Subject:   get("subject"),
			Topic:     get("topic"),
			Weightage: pct,
		})
	}
	return nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

// cellGetter reads a named column from row. GetRows drops trailing empty
// cells, so short rows are expected.
func cellGetter(cols map[string]int, row []string) func(string) string {
	return func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func toRow(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
