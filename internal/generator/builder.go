package generator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"dtv-fixtures/internal/models"
)

const (
	clientIDBase  = 10000
	workOrderBase = 20000
)

// Builder assembles synthetic persons from a catalog.
type Builder struct {
	rng     *rand.Rand
	catalog Catalog
	names   NameSource
	lower   bool
	phones  map[string]struct{}
}

func NewBuilder(rng *rand.Rand, catalog Catalog, names NameSource, lower bool) *Builder {
	return &Builder{
		rng:     rng,
		catalog: catalog,
		names:   names,
		lower:   lower,
		phones:  make(map[string]struct{}),
	}
}

// Reserve marks phones as taken so generated phones never collide with them.
func (b *Builder) Reserve(phones ...string) {
	for _, p := range phones {
		b.phones[p] = struct{}{}
	}
}

func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func (b *Builder) text(s string) string {
	if b.lower {
		return strings.ToLower(s)
	}
	return s
}

func (b *Builder) uniquePhone() string {
	for {
		p := "11" + strconv.Itoa(randInt(b.rng, 20000000, 69999999))
		if _, taken := b.phones[p]; !taken {
			b.phones[p] = struct{}{}
			return p
		}
	}
}

// Build creates the person for row idx located at loc. A non-empty
// phoneOverride replaces the generated phone.
func (b *Builder) Build(idx int, loc models.Coordinate, phoneOverride string) models.Person {
	phone := phoneOverride
	if phone == "" {
		phone = b.uniquePhone()
	}

	return models.Person{
		ClientID:  b.text(fmt.Sprintf("CLI%d", clientIDBase+idx)),
		WorkOrder: b.text(fmt.Sprintf("WO%d", workOrderBase+idx)),
		Reason:    pick(b.rng, b.catalog.Reasons),
		Status:    pick(b.rng, b.catalog.Statuses),
		FullName:  b.text(b.names.Name()),
		DNI:       strconv.Itoa(randInt(b.rng, 20000000, 45000000)),
		Street:    b.text(b.names.Street()),
		LatMicro:  int64(loc.Lat * 1e6),
		LonMicro:  int64(loc.Lon * 1e6),
		PostCode:  strconv.Itoa(1000 + randInt(b.rng, 0, 999)),
		Locality:  pick(b.rng, b.catalog.Localities),
		Province:  pick(b.rng, b.catalog.Provinces),
		Phones:    [4]string{phone},
	}
}
