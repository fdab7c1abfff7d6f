package excel

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"dtv-fixtures/internal/models"
)

var ErrEmptySheet = errors.New("sheet has no data rows")

func parseCoord(val string) (float64, error) {
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}

// parseDegrees accepts plain degrees or micro-degrees (anything beyond ±180).
func parseDegrees(val string) (float64, error) {
	v, err := parseCoord(val)
	if err != nil {
		return 0, err
	}
	if math.Abs(v) > 180 {
		v /= 1e6
	}
	return v, nil
}

func cell(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func OpenFile(filename string) (*excelize.File, error) {
	return excelize.OpenFile(filename)
}

// ReadFixture reads the first sheet of a fixture workbook back into customers.
// Rows without any phone are skipped.
func ReadFixture(path string) ([]models.Customer, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	return ReadSheet(f, sheets[0])
}

func ReadSheet(f *excelize.File, sheetName string) ([]models.Customer, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, ErrEmptySheet
	}

	var customers []models.Customer
	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		phone := ""
		for col := ColPhone1; col <= ColPhone4; col++ {
			if v := cell(row, col); v != "" {
				phone = v
				break
			}
		}
		if phone == "" {
			continue
		}

		c := models.Customer{
			Row:       i + 1,
			ClientID:  cell(row, ColClientID),
			WorkOrder: cell(row, ColWorkOrder),
			FullName:  cell(row, ColFullName),
			Phone:     phone,
		}
		lat, err1 := parseDegrees(cell(row, ColLat))
		lon, err2 := parseDegrees(cell(row, ColLon))
		if err1 == nil && err2 == nil {
			c.Loc = models.Coordinate{Lat: lat, Lon: lon}
			c.HasLoc = true
		}
		customers = append(customers, c)
	}
	return customers, nil
}

// WriteFixture writes a single-sheet workbook: the sparse header followed by
// one row per person.
func WriteFixture(path string, sheetName string, people []models.Person) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", HeaderRow()); err != nil {
		return err
	}

	for i, p := range people {
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(axis, PersonRow(p)); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// WriteResult writes nearest-point results, e.g. the rows that fell outside
// the geofence, to a single-sheet workbook.
func WriteResult(path string, data []models.ResultRow, sheetName string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	headers := []interface{}{
		"Fila", "Nro Cliente", "Teléfono", "Latitud", "Longitud",
		"Punto Pickit", "Punto Lat", "Punto Lon", "Distancia (metros)",
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, r := range data {
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		var distance interface{}
		if r.Distance >= 0 {
			distance = int(math.Round(r.Distance))
		}
		row := []interface{}{
			r.Row, r.ClientID, r.Phone, r.Lat, r.Lon,
			r.PointName, r.PointLat, r.PointLon, distance,
		}
		if err := sw.SetRow(axis, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
