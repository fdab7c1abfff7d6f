// fixturegen writes the DTV test workbooks and checks workbooks against the
// pickit geofence.
//
//	fixturegen                  generate every scenario
//	fixturegen proximity        76 of 100 persons within 2000m of a pickit point
//	fixturegen duplicates       12 persons, two phones shared across decoders
//	fixturegen verify FILE...   report rows in/out of range and duplicate phones
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"dtv-fixtures/internal/config"
	"dtv-fixtures/internal/pkg/db"
	"dtv-fixtures/internal/pkg/log"
	"dtv-fixtures/internal/repository"
	"dtv-fixtures/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store service.PersonStore
	if cfg.SeedDB {
		pool, err := db.NewPool(cfg.DatabaseURL)
		if err != nil {
			log.Error.Fatalf("db: %v", err)
		}
		defer pool.Close()
		store = repository.NewPgPersonaRepo(pool)
	}
	svc := service.NewFixtureService(cfg, store)

	if err := run(ctx, svc, os.Args[1:]); err != nil {
		log.Error.Println(err)
		stop()
		os.Exit(1)
	}
}

func logLine(msg string) { log.Info.Println(msg) }

func run(ctx context.Context, svc *service.FixtureService, args []string) error {
	cmd := "all"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "all":
		for _, s := range service.Scenarios {
			if err := generate(ctx, svc, s); err != nil {
				return err
			}
		}
		return nil
	case service.ScenarioProximity, service.ScenarioDuplicates:
		return generate(ctx, svc, cmd)
	case "verify":
		if len(args) < 2 {
			return fmt.Errorf("verify: missing workbook path")
		}
		for _, path := range args[1:] {
			if err := verifyFile(ctx, svc, path); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown command %q (want all, proximity, duplicates or verify)", cmd)
}

func generate(ctx context.Context, svc *service.FixtureService, scenario string) error {
	res, err := svc.Generate(ctx, service.Request{Scenario: scenario}, nil, logLine)
	if err != nil {
		return fmt.Errorf("%s: %w", scenario, err)
	}
	for _, line := range res.Summary {
		fmt.Println(line)
	}
	if len(res.Problems) > 0 {
		return fmt.Errorf("%s: %d expectation mismatches", res.Filename, len(res.Problems))
	}
	return nil
}

func verifyFile(ctx context.Context, svc *service.FixtureService, path string) error {
	res, err := svc.Verify(ctx, path, nil, logLine)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	fmt.Printf("%s:\n", path)
	for _, line := range res.Report.Summary() {
		fmt.Println(line)
	}
	if res.ExportPath != "" {
		fmt.Printf("fuera de rango exportado: %s\n", res.ExportPath)
	}
	return nil
}
