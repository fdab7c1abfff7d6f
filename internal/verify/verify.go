// Package verify reads a fixture workbook back the way the downstream
// consumer does and reports what it would see.
package verify

import (
	"context"
	"fmt"
	"sort"

	"dtv-fixtures/internal/calculator"
	"dtv-fixtures/internal/excel"
	"dtv-fixtures/internal/generator"
	"dtv-fixtures/internal/models"
	"dtv-fixtures/internal/phone"
)

// PhoneGroup is every row sharing one normalized phone.
type PhoneGroup struct {
	Phone     string
	Rows      []int
	ClientIDs []string
}

type Report struct {
	Rows            int
	Within          int
	Outside         int
	ThresholdMeters float64
	Deduplicated    int
	Groups          []PhoneGroup
	OutsideRows     []models.ResultRow
}

// Duplicates returns the groups with more than one row.
func (r *Report) Duplicates() []PhoneGroup {
	var out []PhoneGroup
	for _, g := range r.Groups {
		if len(g.Rows) > 1 {
			out = append(out, g)
		}
	}
	return out
}

func (r *Report) Summary() []string {
	lines := []string{
		fmt.Sprintf("filas: %d", r.Rows),
		fmt.Sprintf("dentro de %.0fm: %d", r.ThresholdMeters, r.Within),
		fmt.Sprintf("fuera del rango: %d", r.Outside),
		fmt.Sprintf("personas deduplicadas: %d", r.Deduplicated),
	}
	for _, g := range r.Duplicates() {
		lines = append(lines, fmt.Sprintf("  - telefono %s: %d decoders", g.Phone, len(g.Rows)))
	}
	return lines
}

// Check compares the report with what a fixture promised and returns one
// line per mismatch.
func (r *Report) Check(e generator.Expectation) []string {
	var problems []string
	if r.Rows != e.Total {
		problems = append(problems, fmt.Sprintf("rows: got %d, want %d", r.Rows, e.Total))
	}
	if e.ThresholdMeters > 0 {
		if r.Within != e.Within {
			problems = append(problems, fmt.Sprintf("within %.0fm: got %d, want %d", e.ThresholdMeters, r.Within, e.Within))
		}
		if r.Outside != e.Outside {
			problems = append(problems, fmt.Sprintf("outside: got %d, want %d", r.Outside, e.Outside))
		}
	}
	if len(e.PhoneCounts) > 0 {
		got := make(map[string]int, len(r.Groups))
		for _, g := range r.Groups {
			got[g.Phone] = len(g.Rows)
		}
		for raw, want := range e.PhoneCounts {
			key := phone.Key(raw)
			if got[key] != want {
				problems = append(problems, fmt.Sprintf("phone %s: got %d rows, want %d", key, got[key], want))
			}
		}
	}
	if e.Deduplicated > 0 && r.Deduplicated != e.Deduplicated {
		problems = append(problems, fmt.Sprintf("deduplicated: got %d, want %d", r.Deduplicated, e.Deduplicated))
	}
	sort.Strings(problems)
	return problems
}

// Build classifies customers against the points and groups them by phone.
func Build(ctx context.Context, customers []models.Customer, points []models.PickitPoint, thresholdMeters float64, onProgress calculator.ProgressCallback, logger calculator.LoggerCallback) (*Report, error) {
	results, err := calculator.ComputeNearest(ctx, customers, points, onProgress, logger)
	if err != nil {
		return nil, err
	}
	within, outside := calculator.ClassifyRadius(results, thresholdMeters)

	byPhone := make(map[string]*PhoneGroup)
	var order []string
	for _, c := range customers {
		key := phone.Key(c.Phone)
		g, ok := byPhone[key]
		if !ok {
			g = &PhoneGroup{Phone: key}
			byPhone[key] = g
			order = append(order, key)
		}
		g.Rows = append(g.Rows, c.Row)
		g.ClientIDs = append(g.ClientIDs, c.ClientID)
	}
	sort.Strings(order)

	groups := make([]PhoneGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byPhone[key])
	}

	return &Report{
		Rows:            len(customers),
		Within:          len(within),
		Outside:         len(outside),
		ThresholdMeters: thresholdMeters,
		Deduplicated:    len(groups),
		Groups:          groups,
		OutsideRows:     outside,
	}, nil
}

// File reads the workbook at path and builds its report.
func File(ctx context.Context, path string, points []models.PickitPoint, thresholdMeters float64, onProgress calculator.ProgressCallback, logger calculator.LoggerCallback) (*Report, error) {
	customers, err := excel.ReadFixture(path)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger(fmt.Sprintf("%d rows read from %s", len(customers), path))
	}
	return Build(ctx, customers, points, thresholdMeters, onProgress, logger)
}
