package exporter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
)

const (
	titleColor    = "#2196F3"
	subtitleColor = "#E3F2FD"
	headerColor   = "#E2E8F0"

	maxSheetName = 31
)

// styles shared by both workbook kinds
type styles struct {
	title    int
	subtitle int
	normal   int
	header   int
	footer   int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	var err error
	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 14, Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{titleColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Family: "Arial", Size: 12, Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{subtitleColor}, Pattern: 1},
		Border: border,
	}); err != nil {
		return s, err
	}
	if s.normal, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Family: "Arial", Size: 10},
		Border: border,
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.footer, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "Arial", Size: 9, Italic: true},
	}); err != nil {
		return s, err
	}
	return s, nil
}

// RecordWorkbook renders one match: title, where the row was found and every
// header/value pair of the row.
func RecordWorkbook(rec model.MatchRecord, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := SheetName("Placa " + rec.Plate)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeRecord(f, sheet, rec, now); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeRecord(f *excelize.File, sheet string, rec model.MatchRecord, now time.Time) error {
	st, err := newStyles(f)
	if err != nil {
		return err
	}

	set := func(cell string, value interface{}, style int) error {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, style)
	}

	if err := set("A1", "INFORMACIÓN DE LA PLACA: "+rec.Plate, st.title); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return err
	}

	if err := set("A3", "UBICACIÓN DEL REGISTRO", st.subtitle); err != nil {
		return err
	}
	location := [][2]interface{}{
		{"Hoja:", rec.Spreadsheet},
		{"Pestaña:", rec.Worksheet},
		{"Fila:", rec.Row},
	}
	for i, kv := range location {
		row := 4 + i
		if err := set(fmt.Sprintf("A%d", row), kv[0], st.normal); err != nil {
			return err
		}
		if err := set(fmt.Sprintf("B%d", row), kv[1], st.normal); err != nil {
			return err
		}
	}

	if err := set("A8", "DATOS COMPLETOS DE LA FILA", st.subtitle); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A8", "C8"); err != nil {
		return err
	}
	if err := set("A9", "Campo", st.subtitle); err != nil {
		return err
	}
	if err := set("B9", "Valor", st.subtitle); err != nil {
		return err
	}

	row := 10
	for _, field := range rec.Fields() {
		if err := set(fmt.Sprintf("A%d", row), field.Name, st.normal); err != nil {
			return err
		}
		if err := set(fmt.Sprintf("B%d", row), field.Value, st.normal); err != nil {
			return err
		}
		row++
	}

	footer := "Archivo generado el: " + now.Format("02/01/2006 15:04:05")
	if err := set(fmt.Sprintf("A%d", row+1), footer, st.footer); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 25); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "C", 15)
}

// resultHeaders columns of the results listing
var resultHeaders = []string{"FECHA", "PLACA", "EMPRESA", "ÚLTIMO ESTADO", "SISTEMA", "PESTAÑA", "HOJA", "FILA"}

// ResultsWorkbook lists every record of a search in display order, followed by the
// registry verdict.
func ResultsWorkbook(resp *model.SearchResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Resultados"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		_ = f.Close()
		return nil, err
	}

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, h := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}
	f.SetRowStyle(sheetName, 1, 1, st.header)

	for i, r := range resp.Records {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Plate)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Company)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.System)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Worksheet)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Spreadsheet)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), r.Row)
	}

	verdictRow := len(resp.Records) + 3
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", verdictRow), "VERIFICACIÓN")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", verdictRow), string(resp.Verdict.Status))
	if resp.Verdict.Detail != "" {
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", verdictRow), resp.Verdict.Detail)
	}
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", verdictRow), fmt.Sprintf("A%d", verdictRow), st.subtitle)

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "E", 18)
	f.SetColWidth(sheetName, "F", "G", 25)
	f.SetColWidth(sheetName, "H", "H", 8)

	return f, nil
}

// Bytes serializes and closes f.
func Bytes(f *excelize.File) ([]byte, error) {
	defer f.Close()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName download name of a plate workbook: placa_<plate>_<YYYYMMDD_HHMMSS>.xlsx
func FileName(plate string, now time.Time) string {
	return fmt.Sprintf("placa_%s_%s.xlsx", sanitize(plate, "_"), now.Format("20060102_150405"))
}

// SheetName makes name acceptable as a worksheet title.
func SheetName(name string) string {
	name = sanitize(name, "-")
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Placa"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

var unsafeChars = []string{"/", "\\", "?", "*", "[", "]", ":"}

func sanitize(s, repl string) string {
	s = strings.TrimSpace(s)
	for _, c := range unsafeChars {
		s = strings.ReplaceAll(s, c, repl)
	}
	return s
}
