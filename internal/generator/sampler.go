package generator

import (
	"errors"
	"math"
	"math/rand"

	"dtv-fixtures/internal/calculator"
	"dtv-fixtures/internal/models"
)

// metersPerDegree is the flat approximation 1° ≈ 111 km.
const metersPerDegree = 111000.0

const defaultMaxAttempts = 1000

var ErrSamplingExhausted = errors.New("coordinate sampling exhausted")

// Sampler perturbs reference points by random offsets.
type Sampler struct {
	rng         *rand.Rand
	maxAttempts int
}

func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng, maxAttempts: defaultMaxAttempts}
}

func offset(base models.Coordinate, meters, bearing float64) models.Coordinate {
	dLat := meters * math.Cos(bearing) / metersPerDegree
	dLon := meters * math.Sin(bearing) / (metersPerDegree * math.Cos(base.Lat*math.Pi/180))
	return models.Coordinate{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

// Near returns a coordinate uniformly distributed within maxMeters of base.
func (s *Sampler) Near(base models.Coordinate, maxMeters float64) (models.Coordinate, error) {
	for i := 0; i < s.maxAttempts; i++ {
		r := maxMeters * math.Sqrt(s.rng.Float64())
		c := offset(base, r, s.rng.Float64()*2*math.Pi)
		if calculator.Distance(base, c) <= maxMeters {
			return c, nil
		}
	}
	return models.Coordinate{}, ErrSamplingExhausted
}

// Far returns a coordinate in the band [minMeters, maxMeters] around base that
// is farther than exclusionMeters from every point in exclude.
func (s *Sampler) Far(base models.Coordinate, minMeters, maxMeters float64, exclude []models.PickitPoint, exclusionMeters float64) (models.Coordinate, error) {
	lo, hi := minMeters*minMeters, maxMeters*maxMeters
	for i := 0; i < s.maxAttempts; i++ {
		r := math.Sqrt(lo + s.rng.Float64()*(hi-lo))
		c := offset(base, r, s.rng.Float64()*2*math.Pi)
		d := calculator.Distance(base, c)
		if d < minMeters || d > maxMeters {
			continue
		}
		// one meter of slack absorbs micro-degree truncation
		if _, nearest := calculator.Nearest(c, exclude); nearest <= exclusionMeters+1 {
			continue
		}
		return c, nil
	}
	return models.Coordinate{}, ErrSamplingExhausted
}
