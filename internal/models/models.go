package models

type Coordinate struct {
	Lat float64
	Lon float64
}

// PickitPoint is a named reference location used as the center for proximity sampling.
type PickitPoint struct {
	Name string
	Loc  Coordinate
}

// Person is one synthetic customer row of a fixture workbook.
type Person struct {
	ClientID  string
	WorkOrder string
	Reason    string
	Status    string
	FullName  string
	DNI       string
	Street    string
	StreetNo  string
	LatMicro  int64
	LonMicro  int64
	PostCode  string
	Locality  string
	Province  string
	Phones    [4]string
}

// Loc converts the micro-degree coordinates back to degrees.
func (p Person) Loc() Coordinate {
	return Coordinate{
		Lat: float64(p.LatMicro) / 1e6,
		Lon: float64(p.LonMicro) / 1e6,
	}
}

// Customer is a row parsed back from a fixture workbook.
type Customer struct {
	Row       int
	ClientID  string
	WorkOrder string
	FullName  string
	Phone     string
	Loc       Coordinate
	HasLoc    bool
}

type ResultRow struct {
	Row       int
	ClientID  string
	Phone     string
	Lat       float64
	Lon       float64
	PointName string
	PointLat  float64
	PointLon  float64
	Distance  float64
}
