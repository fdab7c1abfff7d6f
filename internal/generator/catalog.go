package generator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jaswdr/faker"

	"dtv-fixtures/internal/models"
)

// Catalog holds the fixed lookup lists a fixture draws its values from.
type Catalog struct {
	Points     []models.PickitPoint
	Names      []string
	Localities []string
	Provinces  []string
	Reasons    []string
	Statuses   []string
}

func DefaultCatalog() Catalog {
	return Catalog{
		Points: []models.PickitPoint{
			{Name: "Meraki - Yaguareté", Loc: models.Coordinate{Lat: -34.58147, Lon: -58.379221}},
			{Name: "Maxikiosco Calipso", Loc: models.Coordinate{Lat: -34.606872, Lon: -58.430521}},
			{Name: "Mensajería Buenos Aires", Loc: models.Coordinate{Lat: -34.616085, Lon: -58.447403}},
			{Name: "Patricia Maria Mateo", Loc: models.Coordinate{Lat: -34.6232104, Lon: -58.4589195}},
			{Name: "Kiosco Maltagliati", Loc: models.Coordinate{Lat: -34.61972, Lon: -58.468384}},
		},
		Names: []string{
			"Juan Pérez", "María García", "Carlos López", "Ana Martínez", "Pedro Rodríguez",
			"Laura Fernández", "Diego González", "Carolina Sánchez", "Martín Romero", "Valeria Torres",
			"Federico Díaz", "Gabriela Ruiz", "Sebastián Castro", "Natalia Moreno", "Maximiliano Ortiz",
			"Andrea Silva", "Pablo Herrera", "Luciana Medina", "Nicolás Vargas", "Florencia Rojas",
			"Matías Pereyra", "Camila Molina", "Facundo Vega", "Victoria Blanco", "Agustín Giménez",
		},
		Localities: []string{
			"CABA", "Vicente López", "San Isidro", "La Matanza", "Lomas de Zamora",
			"Quilmes", "Avellaneda", "Lanús", "San Martín", "Tres de Febrero",
		},
		Provinces: []string{"Buenos Aires", "CABA"},
		Reasons: []string{
			"Deuda vencida", "Falta de pago", "Gestión de cobro", "Recupero activo",
			"Morosidad", "Atraso en pagos", "Cuenta morosa",
		},
		Statuses: []string{"MOROSO", "SUSPENDIDO", "ACTIVO CON DEUDA", "INACTIVO"},
	}
}

// DuplicatesCatalog is the reduced, lower-cased catalog of the duplicate-phone fixture.
func DuplicatesCatalog() Catalog {
	c := DefaultCatalog()
	return Catalog{
		Points:     c.Points[:3],
		Names:      c.Names[:10],
		Localities: c.Localities[:5],
		Provinces:  c.Provinces,
		Reasons:    c.Reasons[:3],
		Statuses:   c.Statuses[:3],
	}.Lower()
}

// Lower returns a copy of the catalog with every text value lower-cased.
func (c Catalog) Lower() Catalog {
	points := make([]models.PickitPoint, len(c.Points))
	for i, p := range c.Points {
		points[i] = models.PickitPoint{Name: strings.ToLower(p.Name), Loc: p.Loc}
	}
	return Catalog{
		Points:     points,
		Names:      lowerAll(c.Names),
		Localities: lowerAll(c.Localities),
		Provinces:  lowerAll(c.Provinces),
		Reasons:    lowerAll(c.Reasons),
		Statuses:   lowerAll(c.Statuses),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func pick(rng *rand.Rand, list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[rng.Intn(len(list))]
}

// NameSource produces full names and street lines for generated persons.
type NameSource interface {
	Name() string
	Street() string
}

const (
	NameSourceList  = "list"
	NameSourceFaker = "faker"
)

type listNames struct {
	rng   *rand.Rand
	names []string
}

func (l listNames) Name() string { return pick(l.rng, l.names) }

func (l listNames) Street() string {
	return fmt.Sprintf("Av. Ejemplo %d", randInt(l.rng, 100, 9999))
}

type fakerNames struct {
	f faker.Faker
}

func (n fakerNames) Name() string { return n.f.Person().Name() }

func (n fakerNames) Street() string {
	return n.f.Address().StreetName() + " " + n.f.Address().BuildingNumber()
}

func newNameSource(kind string, rng *rand.Rand, names []string) NameSource {
	if kind == NameSourceFaker {
		return fakerNames{f: faker.NewWithSeed(rand.NewSource(rng.Int63()))}
	}
	return listNames{rng: rng, names: names}
}
