package generator

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtv-fixtures/internal/calculator"
	"dtv-fixtures/internal/models"
)

var obelisco = models.Coordinate{Lat: -34.603722, Lon: -58.381592}

func TestSampler_Near(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(1)))
	for i := 0; i < 500; i++ {
		c, err := s.Near(obelisco, 1800)
		require.NoError(t, err)
		assert.LessOrEqual(t, calculator.Distance(obelisco, c), 1800.0)
	}
}

func TestSampler_Far(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(2)))
	points := DefaultCatalog().Points
	for i := 0; i < 500; i++ {
		c, err := s.Far(points[0].Loc, 3000, 10000, points, 2000)
		require.NoError(t, err)
		d := calculator.Distance(points[0].Loc, c)
		assert.GreaterOrEqual(t, d, 3000.0)
		assert.LessOrEqual(t, d, 10000.0)
		_, nearest := calculator.Nearest(c, points)
		assert.Greater(t, nearest, 2000.0)
	}
}

func TestSampler_FarExhausted(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(3)))
	points := []models.PickitPoint{{Name: "x", Loc: obelisco}}
	_, err := s.Far(obelisco, 3000, 10000, points, 50000)
	require.ErrorIs(t, err, ErrSamplingExhausted)
}

func TestBuilder_Build(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	catalog := DefaultCatalog()
	b := NewBuilder(rng, catalog, newNameSource(NameSourceList, rng, catalog.Names), false)

	p := b.Build(7, models.Coordinate{Lat: -34.5814709, Lon: -58.3792219}, "")
	assert.Equal(t, "CLI10007", p.ClientID)
	assert.Equal(t, "WO20007", p.WorkOrder)
	assert.Equal(t, int64(-34581470), p.LatMicro)
	assert.Equal(t, int64(-58379221), p.LonMicro)
	assert.Contains(t, catalog.Names, p.FullName)
	assert.Contains(t, catalog.Reasons, p.Reason)
	assert.Contains(t, catalog.Statuses, p.Status)
	assert.Contains(t, catalog.Localities, p.Locality)
	assert.Contains(t, catalog.Provinces, p.Province)
	assert.True(t, strings.HasPrefix(p.Street, "Av. Ejemplo "))
	assert.Empty(t, p.StreetNo)

	dni, err := strconv.Atoi(p.DNI)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, dni, 20000000)
	assert.LessOrEqual(t, dni, 45000000)

	cp, err := strconv.Atoi(p.PostCode)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cp, 1000)
	assert.LessOrEqual(t, cp, 1999)

	require.Len(t, p.Phones[0], 10)
	assert.True(t, strings.HasPrefix(p.Phones[0], "11"))
	assert.Empty(t, p.Phones[1])

	override := b.Build(8, obelisco, "1156571617")
	assert.Equal(t, "1156571617", override.Phones[0])
}

func TestBuilder_LowerAndReserve(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	catalog := DuplicatesCatalog()
	b := NewBuilder(rng, catalog, newNameSource(NameSourceList, rng, catalog.Names), true)
	b.Reserve("1156571617")

	p := b.Build(0, obelisco, "")
	assert.Equal(t, "cli10000", p.ClientID)
	assert.Equal(t, "wo20000", p.WorkOrder)
	assert.Equal(t, strings.ToLower(p.FullName), p.FullName)
	assert.True(t, strings.HasPrefix(p.Street, "av. ejemplo "))
	assert.NotEqual(t, "1156571617", p.Phones[0])
}

func TestFakerNameSource(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	src := newNameSource(NameSourceFaker, rng, nil)
	assert.NotEmpty(t, src.Name())
	assert.NotEmpty(t, src.Street())
}

func TestGenerator_Proximity(t *testing.T) {
	g := New(Options{Seed: 42})
	f, err := g.Proximity(context.Background(), DefaultProximity())
	require.NoError(t, err)
	require.Len(t, f.People, 100)
	assert.Equal(t, "DTV Data", f.Sheet)

	within := 0
	for i, p := range f.People {
		_, d := calculator.Nearest(p.Loc(), f.Points)
		if i < 76 {
			assert.LessOrEqual(t, d, 2000.0, "row %d", i)
		} else {
			assert.Greater(t, d, 2000.0, "row %d", i)
		}
		if d <= 2000 {
			within++
		}
	}
	assert.Equal(t, 76, within)
	assert.Equal(t, 24, f.Expect.Outside)
}

func TestGenerator_ProximityDeterministic(t *testing.T) {
	a, err := New(Options{Seed: 9}).Proximity(context.Background(), DefaultProximity())
	require.NoError(t, err)
	b, err := New(Options{Seed: 9}).Proximity(context.Background(), DefaultProximity())
	require.NoError(t, err)
	assert.Equal(t, a.People, b.People)
}

func TestGenerator_ProximityInvalid(t *testing.T) {
	g := New(Options{Seed: 1})
	p := DefaultProximity()
	p.Within = 101
	_, err := g.Proximity(context.Background(), p)
	require.Error(t, err)

	p = DefaultProximity()
	p.FarMinMeters = 1500
	_, err = g.Proximity(context.Background(), p)
	require.Error(t, err)
}

func TestGenerator_Duplicates(t *testing.T) {
	g := New(Options{Seed: 7})
	f, err := g.Duplicates(context.Background(), DefaultDuplicates())
	require.NoError(t, err)
	require.Len(t, f.People, 12)

	counts := map[string]int{}
	for _, p := range f.People {
		counts[p.Phones[0]]++
	}
	assert.Equal(t, 3, counts["1156571617"])
	assert.Equal(t, 2, counts["1145678901"])
	assert.Len(t, counts, 9)
	assert.Equal(t, 9, f.Expect.Deduplicated)

	for _, row := range []int{0, 3, 7} {
		assert.Equal(t, "1156571617", f.People[row].Phones[0])
	}
	for _, row := range []int{5, 9} {
		assert.Equal(t, "1145678901", f.People[row].Phones[0])
	}
	for _, p := range f.People {
		_, d := calculator.Nearest(p.Loc(), f.Points)
		assert.LessOrEqual(t, d, 1801.0)
	}

	summary := strings.Join(f.Summary(), "\n")
	assert.Contains(t, summary, "telefono 1145678901: 2 decoders")
	assert.Contains(t, summary, "telefono 1156571617: 3 decoders")
}

func TestGenerator_DuplicatesInvalid(t *testing.T) {
	g := New(Options{Seed: 1})

	p := DefaultDuplicates()
	p.Groups = append(p.Groups, DuplicateGroup{Phone: "1100000000", Rows: []int{3, 11}})
	_, err := g.Duplicates(context.Background(), p)
	require.Error(t, err)

	p = DefaultDuplicates()
	p.Groups = []DuplicateGroup{{Phone: "1100000000", Rows: []int{1, 12}}}
	_, err = g.Duplicates(context.Background(), p)
	require.Error(t, err)

	p = DefaultDuplicates()
	p.Groups = []DuplicateGroup{{Phone: "1100000000", Rows: []int{1}}}
	_, err = g.Duplicates(context.Background(), p)
	require.Error(t, err)
}

func TestGenerator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{Seed: 1}).Proximity(ctx, DefaultProximity())
	require.ErrorIs(t, err, context.Canceled)
}
