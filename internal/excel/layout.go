package excel

import "dtv-fixtures/internal/models"

// Columns is the width of a fixture row as the consumer expects it.
const Columns = 41

const (
	ColClientID  = 0
	ColWorkOrder = 1
	ColReason    = 3
	ColStatus    = 26
	ColFullName  = 28
	ColDNI       = 29
	ColStreet    = 30
	ColStreetNo  = 31
	ColLon       = 32
	ColLat       = 33
	ColPostCode  = 35
	ColLocality  = 36
	ColPhone1    = 37
	ColPhone2    = 38
	ColPhone3    = 39
	ColPhone4    = 40
)

var headers = map[int]string{
	ColClientID:  "nro_cliente",
	ColWorkOrder: "nro_wo",
	ColReason:    "razon_creacion",
	ColStatus:    "estado_cliente",
	ColFullName:  "apellido_nombre",
	ColDNI:       "dni",
	ColStreet:    "direccion_calle",
	ColStreetNo:  "direccion_numero",
	ColLon:       "lon",
	ColLat:       "lat",
	ColPostCode:  "cp",
	ColLocality:  "localidad",
	ColPhone1:    "telefono_1",
	ColPhone2:    "telefono_2",
	ColPhone3:    "telefono_3",
	ColPhone4:    "telefono_4",
}

// HeaderRow returns the sparse header; unnamed columns are nil.
func HeaderRow() []interface{} {
	row := make([]interface{}, Columns)
	for col, name := range headers {
		row[col] = name
	}
	return row
}

// PersonRow flattens a person into the fixed column layout. Empty values
// stay nil so the cell is left blank.
func PersonRow(p models.Person) []interface{} {
	row := make([]interface{}, Columns)
	set := func(col int, v string) {
		if v != "" {
			row[col] = v
		}
	}

	set(ColClientID, p.ClientID)
	set(ColWorkOrder, p.WorkOrder)
	set(ColReason, p.Reason)
	set(ColStatus, p.Status)
	set(ColFullName, p.FullName)
	set(ColDNI, p.DNI)
	set(ColStreet, p.Street)
	set(ColStreetNo, p.StreetNo)
	row[ColLon] = p.LonMicro
	row[ColLat] = p.LatMicro
	set(ColPostCode, p.PostCode)
	set(ColLocality, p.Locality)
	for i, phone := range p.Phones {
		set(ColPhone1+i, phone)
	}
	return row
}
