package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"dtv-fixtures/internal/calculator"
	"dtv-fixtures/internal/config"
	"dtv-fixtures/internal/excel"
	"dtv-fixtures/internal/generator"
	"dtv-fixtures/internal/models"
	"dtv-fixtures/internal/verify"
)

const (
	ScenarioProximity  = "proximity"
	ScenarioDuplicates = "duplicates"
)

// Scenarios lists every fixture the service can generate, in run order.
var Scenarios = []string{ScenarioProximity, ScenarioDuplicates}

// PersonStore persists generated persons; nil disables seeding.
type PersonStore interface {
	EnsureTable(ctx context.Context) error
	InsertPersons(ctx context.Context, fixture string, people []models.Person) (int64, error)
}

// Request selects a scenario. Zero Total / Within keep the scenario defaults.
type Request struct {
	Scenario string `validate:"required,oneof=proximity duplicates"`
	Total    int    `validate:"gte=0"`
	Within   int    `validate:"gte=0"`
	Seed     int64
}

type Result struct {
	Scenario string
	Path     string
	Filename string
	Rows     int
	Seeded   int64
	Summary  []string
	Problems []string
}

type FixtureService struct {
	cfg      *config.Config
	store    PersonStore
	validate *validator.Validate
}

func NewFixtureService(cfg *config.Config, store PersonStore) *FixtureService {
	return &FixtureService{cfg: cfg, store: store, validate: validator.New()}
}

func (s *FixtureService) build(ctx context.Context, req Request, logger calculator.LoggerCallback) (*generator.Fixture, error) {
	seed := req.Seed
	if seed == 0 {
		seed = s.cfg.Seed
	}
	gen := generator.New(generator.Options{
		Seed:       seed,
		NameSource: s.cfg.NameSource,
		Logger:     generator.LoggerCallback(logger),
	})

	switch req.Scenario {
	case ScenarioProximity:
		p := generator.DefaultProximity()
		if req.Total > 0 {
			p.Total = req.Total
			if req.Within == 0 {
				p.Within = p.Total * 76 / 100
			}
			p.Filename = fmt.Sprintf("archivo_prueba_dtv_%d_personas.xlsx", p.Total)
		}
		if req.Within > 0 {
			p.Within = req.Within
		}
		return gen.Proximity(ctx, p)
	case ScenarioDuplicates:
		p := generator.DefaultDuplicates()
		if req.Total > 0 {
			p.Total = req.Total
		}
		return gen.Duplicates(ctx, p)
	}
	return nil, fmt.Errorf("unknown scenario %q", req.Scenario)
}

// Generate builds a fixture, writes it under the output directory, reads it
// back to confirm it delivers what it promises, and seeds the store if any.
func (s *FixtureService) Generate(ctx context.Context, req Request, onProgress calculator.ProgressCallback, logger calculator.LoggerCallback) (*Result, error) {
	if logger == nil {
		logger = func(string) {}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}

	fx, err := s.build(ctx, req, logger)
	if err != nil {
		return nil, err
	}

	path := s.cfg.OutputPath(fx.Filename)
	logger(fmt.Sprintf("Writing %d rows to %s", len(fx.People), path))
	if err := excel.WriteFixture(path, fx.Sheet, fx.People); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	report, err := verify.File(ctx, path, fx.Points, thresholdFor(fx, s.cfg), onProgress, logger)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", path, err)
	}

	res := &Result{
		Scenario: req.Scenario,
		Path:     path,
		Filename: fx.Filename,
		Rows:     len(fx.People),
		Summary:  fx.Summary(),
		Problems: report.Check(fx.Expect),
	}
	for _, p := range res.Problems {
		logger("MISMATCH " + p)
	}

	if s.store != nil {
		if err := s.store.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("ensure table: %w", err)
		}
		name := strings.TrimSuffix(fx.Filename, filepath.Ext(fx.Filename))
		n, err := s.store.InsertPersons(ctx, name, fx.People)
		if err != nil {
			return nil, err
		}
		res.Seeded = n
		logger(fmt.Sprintf("%d persons seeded as %s", n, name))
	}
	return res, nil
}

func thresholdFor(fx *generator.Fixture, cfg *config.Config) float64 {
	if fx.Expect.ThresholdMeters > 0 {
		return fx.Expect.ThresholdMeters
	}
	return cfg.ThresholdMeters
}

type VerifyResult struct {
	Report     *verify.Report
	ExportPath string
}

// Verify reads any fixture-shaped workbook and checks it against every pickit
// point. Rows outside the threshold are exported next to the output files.
func (s *FixtureService) Verify(ctx context.Context, path string, onProgress calculator.ProgressCallback, logger calculator.LoggerCallback) (*VerifyResult, error) {
	report, err := verify.File(ctx, path, generator.DefaultCatalog().Points, s.cfg.ThresholdMeters, onProgress, logger)
	if err != nil {
		return nil, err
	}
	res := &VerifyResult{Report: report}
	if len(report.OutsideRows) == 0 {
		return res, nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res.ExportPath = s.cfg.OutputPath(base + "_fuera_rango.xlsx")
	if err := excel.WriteResult(res.ExportPath, report.OutsideRows, "Fuera de Rango"); err != nil {
		return nil, fmt.Errorf("export %s: %w", res.ExportPath, err)
	}
	return res, nil
}
