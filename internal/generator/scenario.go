package generator

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"dtv-fixtures/internal/models"
)

type LoggerCallback func(msg string)

// ProximityParams drives the fixture that places rows inside or outside the
// geofence threshold of the pickit points.
type ProximityParams struct {
	Total           int     `validate:"gt=0"`
	Within          int     `validate:"gte=0,ltefield=Total"`
	NearMeters      float64 `validate:"gt=0,ltfield=ThresholdMeters"`
	ThresholdMeters float64 `validate:"gt=0"`
	FarMinMeters    float64 `validate:"gtfield=ThresholdMeters"`
	FarMaxMeters    float64 `validate:"gtfield=FarMinMeters"`
	Filename        string  `validate:"required"`
	Sheet           string  `validate:"required,max=31"`
}

func DefaultProximity() ProximityParams {
	return ProximityParams{
		Total:           100,
		Within:          76,
		NearMeters:      1800,
		ThresholdMeters: 2000,
		FarMinMeters:    3000,
		FarMaxMeters:    10000,
		Filename:        "archivo_prueba_dtv_100_personas.xlsx",
		Sheet:           "DTV Data",
	}
}

// DuplicateGroup puts one phone on several rows.
type DuplicateGroup struct {
	Phone string `validate:"required,numeric"`
	Rows  []int  `validate:"min=2,dive,gte=0"`
}

// DuplicateParams drives the fixture where several rows share a phone
// number, simulating one customer with many decoders.
type DuplicateParams struct {
	Total      int              `validate:"gt=0"`
	NearMeters float64          `validate:"gt=0"`
	Groups     []DuplicateGroup `validate:"dive"`
	Filename   string           `validate:"required"`
	Sheet      string           `validate:"required,max=31"`
}

func DefaultDuplicates() DuplicateParams {
	return DuplicateParams{
		Total:      12,
		NearMeters: 1800,
		Groups: []DuplicateGroup{
			{Phone: "1156571617", Rows: []int{0, 3, 7}},
			{Phone: "1145678901", Rows: []int{5, 9}},
		},
		Filename: "archivo_prueba_duplicados.xlsx",
		Sheet:    "dtv data",
	}
}

func (p DuplicateParams) rowPhones() (map[int]string, error) {
	byRow := make(map[int]string)
	for _, g := range p.Groups {
		for _, r := range g.Rows {
			if r >= p.Total {
				return nil, fmt.Errorf("duplicate group %s: row %d out of range (total %d)", g.Phone, r, p.Total)
			}
			if prev, ok := byRow[r]; ok {
				return nil, fmt.Errorf("row %d assigned to phones %s and %s", r, prev, g.Phone)
			}
			byRow[r] = g.Phone
		}
	}
	return byRow, nil
}

// Expectation is what a fixture promises to a consumer reading it back.
type Expectation struct {
	Total           int
	Within          int
	Outside         int
	ThresholdMeters float64
	PhoneCounts     map[string]int
	Deduplicated    int
}

type Fixture struct {
	Filename string
	Sheet    string
	Points   []models.PickitPoint
	People   []models.Person
	Expect   Expectation
}

// Summary returns the human-readable lines printed after a fixture is written.
func (f *Fixture) Summary() []string {
	lines := []string{
		fmt.Sprintf("archivo generado: %s", f.Filename),
		fmt.Sprintf("total filas: %d (sin contar header)", f.Expect.Total),
	}
	if f.Expect.ThresholdMeters > 0 {
		lines = append(lines,
			fmt.Sprintf("%d dentro de %.0fm de puntos pickit", f.Expect.Within, f.Expect.ThresholdMeters),
			fmt.Sprintf("%d fuera del rango", f.Expect.Outside))
	}
	if len(f.Expect.PhoneCounts) > 0 {
		lines = append(lines, fmt.Sprintf("personas únicas (deduplicated): %d", f.Expect.Deduplicated))
		phones := make([]string, 0, len(f.Expect.PhoneCounts))
		for phone, n := range f.Expect.PhoneCounts {
			if n > 1 {
				phones = append(phones, phone)
			}
		}
		sort.Strings(phones)
		for _, phone := range phones {
			lines = append(lines, fmt.Sprintf("  - telefono %s: %d decoders", phone, f.Expect.PhoneCounts[phone]))
		}
	}
	return lines
}

type Options struct {
	Seed       int64
	NameSource string
	Logger     LoggerCallback
}

// Generator builds fixtures from a single seeded random source.
type Generator struct {
	rng        *rand.Rand
	nameSource string
	validate   *validator.Validate
	logger     LoggerCallback
}

func New(opts Options) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := opts.Logger
	if logger == nil {
		logger = func(string) {}
	}
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		nameSource: opts.NameSource,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (g *Generator) Proximity(ctx context.Context, p ProximityParams) (*Fixture, error) {
	if err := g.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("proximity params: %w", err)
	}

	catalog := DefaultCatalog()
	sampler := NewSampler(g.rng)
	builder := NewBuilder(g.rng, catalog, newNameSource(g.nameSource, g.rng, catalog.Names), false)

	g.logger(fmt.Sprintf("Generating %d persons, %d within %.0fm", p.Total, p.Within, p.ThresholdMeters))

	people := make([]models.Person, 0, p.Total)
	for i := 0; i < p.Total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		point := catalog.Points[g.rng.Intn(len(catalog.Points))]

		var (
			loc models.Coordinate
			err error
		)
		if i < p.Within {
			loc, err = sampler.Near(point.Loc, p.NearMeters)
		} else {
			loc, err = sampler.Far(point.Loc, p.FarMinMeters, p.FarMaxMeters, catalog.Points, p.ThresholdMeters)
		}
		if err != nil {
			return nil, fmt.Errorf("row %d near %s: %w", i, point.Name, err)
		}
		people = append(people, builder.Build(i, loc, ""))
	}

	return &Fixture{
		Filename: p.Filename,
		Sheet:    p.Sheet,
		Points:   catalog.Points,
		People:   people,
		Expect: Expectation{
			Total:           p.Total,
			Within:          p.Within,
			Outside:         p.Total - p.Within,
			ThresholdMeters: p.ThresholdMeters,
			Deduplicated:    p.Total,
		},
	}, nil
}

func (g *Generator) Duplicates(ctx context.Context, p DuplicateParams) (*Fixture, error) {
	if err := g.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("duplicate params: %w", err)
	}
	byRow, err := p.rowPhones()
	if err != nil {
		return nil, err
	}

	catalog := DuplicatesCatalog()
	sampler := NewSampler(g.rng)
	builder := NewBuilder(g.rng, catalog, newNameSource(g.nameSource, g.rng, catalog.Names), true)
	for _, grp := range p.Groups {
		builder.Reserve(grp.Phone)
	}

	g.logger(fmt.Sprintf("Generating %d persons, %d shared phones", p.Total, len(p.Groups)))

	people := make([]models.Person, 0, p.Total)
	counts := make(map[string]int)
	for i := 0; i < p.Total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		point := catalog.Points[g.rng.Intn(len(catalog.Points))]
		loc, err := sampler.Near(point.Loc, p.NearMeters)
		if err != nil {
			return nil, fmt.Errorf("row %d near %s: %w", i, point.Name, err)
		}
		person := builder.Build(i, loc, byRow[i])
		counts[person.Phones[0]]++
		people = append(people, person)
	}

	return &Fixture{
		Filename: p.Filename,
		Sheet:    p.Sheet,
		Points:   catalog.Points,
		People:   people,
		Expect: Expectation{
			Total:        p.Total,
			PhoneCounts:  counts,
			Deduplicated: len(counts),
		},
	}, nil
}
