package registers

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/imis_backend/models"
)

func TestIsSupportedFormat(t *testing.T) {
	for _, format := range []string{FormatCSV, FormatXLSX, FormatJSON} {
		if !IsSupportedFormat(format) {
			t.Fatalf("%s must be supported", format)
		}
	}
	for _, format := range []string{"xls", "pdf", ""} {
		if IsSupportedFormat(format) {
			t.Fatalf("%s must not be supported", format)
		}
	}
}

func TestItemRow(t *testing.T) {
	frequency := 30
	pkg := "box of 10"
	item := models.Item{
		Code:            "0001",
		Name:            "Paracetamol",
		Type:            "D",
		Price:           decimal.RequireFromString("2.50"),
		CareType:        "B",
		PatientCategory: 15,
		Frequency:       &frequency,
		Package:         &pkg,
	}

	row := itemRow(item)
	if len(row) != len(itemColumns) {
		t.Fatalf("row has %d cells, want %d", len(row), len(itemColumns))
	}
	if row[0] != "0001" || row[1] != "Paracetamol" || row[3] != "2.5" {
		t.Fatalf("row = %v", row)
	}
	// Unset optional fields render empty, not "0".
	if row[6] != "" {
		t.Fatalf("quantity cell = %q, want empty", row[6])
	}
	if row[7] != "30" || row[8] != "box of 10" {
		t.Fatalf("row = %v", row)
	}
}

func TestRenderCSVRoundTrip(t *testing.T) {
	data, err := renderCSV(itemColumns, [][]string{
		{"0001", "Paracetamol 500mg, blister", "D", "2.50", "B", "15", "", "", ""},
	})
	if err != nil {
		t.Fatalf("renderCSV failed: %v", err)
	}

	header, rows, err := readTabularFile(bytes.NewReader(data), "text/csv")
	if err != nil {
		t.Fatalf("readTabularFile failed: %v", err)
	}
	if len(header) != len(itemColumns) || header[0] != "code" {
		t.Fatalf("header = %v", header)
	}
	if len(rows) != 1 || rows[0][1] != "Paracetamol 500mg, blister" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestRenderXLSXRoundTrip(t *testing.T) {
	data, err := renderXLSX("Items", itemColumns, [][]string{
		{"0001", "Paracetamol", "D", "2.50", "B", "15", "", "30", ""},
	})
	if err != nil {
		t.Fatalf("renderXLSX failed: %v", err)
	}

	header, rows, err := readTabularFile(bytes.NewReader(data), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err != nil {
		t.Fatalf("readTabularFile failed: %v", err)
	}
	if len(header) == 0 || header[0] != "code" {
		t.Fatalf("header = %v", header)
	}
	if len(rows) != 1 || rows[0][0] != "0001" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := renderJSON(itemColumns, [][]string{
		{"0001", "Paracetamol", "D", "2.50", "B", "15", "", "", ""},
	})
	if err != nil {
		t.Fatalf("renderJSON failed: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %v", records)
	}
	if records[0]["code"] != "0001" || records[0]["price"] != "2.50" {
		t.Fatalf("record = %v", records[0])
	}
}

func TestRenderDatasetRejectsUnknownFormat(t *testing.T) {
	if _, _, err := renderDataset("xls", "Items", itemColumns, nil); err == nil {
		t.Fatal("expected an error for the xls format")
	}
}

func TestParseItemRows(t *testing.T) {
	header := []string{"code", "name", "type", "price", "care_type", "patient_category", "quantity", "frequency", "package"}
	rows := [][]string{
		{"0001", "Paracetamol", "d", "2.50", "b", "15", "", "30", "box"},
		{"", "No code", "D", "2.50", "B", "15", "", "", ""},
		{"0003", "Bad price", "D", "abc", "B", "15", "", "", ""},
		{"0004", "Bad category", "D", "2.50", "B", "often", "", "", ""},
	}

	entries, parseErrors := parseItemRows(header, rows)
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}
	entry := entries[0]
	if entry.Code != "0001" || entry.Type != "D" || entry.CareType != "B" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Frequency == nil || *entry.Frequency != 30 {
		t.Fatalf("frequency = %v", entry.Frequency)
	}

	want := []string{
		"row (2) - code and name are required",
		"row (3) - price is invalid",
		"row (4) - patient_category is invalid",
	}
	if len(parseErrors) != len(want) {
		t.Fatalf("errors = %v, want %v", parseErrors, want)
	}
	for i, msg := range want {
		if parseErrors[i] != msg {
			t.Fatalf("errors[%d] = %q, want %q", i, parseErrors[i], msg)
		}
	}
}

func TestParseServiceRowsReordersColumns(t *testing.T) {
	// Column order is free-form; cells are matched by header name.
	header := []string{"name", "code", "price", "type", "level", "care_type", "patient_category", "category"}
	rows := [][]string{
		{"Consultation", "X001", "15.00", "p", "v", "o", "5", "s"},
	}

	entries, parseErrors := parseServiceRows(header, rows)
	if len(parseErrors) != 0 {
		t.Fatalf("errors = %v", parseErrors)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}
	entry := entries[0]
	if entry.Code != "X001" || entry.Name != "Consultation" || entry.Level != "V" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Category == nil || *entry.Category != "S" {
		t.Fatalf("category = %v", entry.Category)
	}
}

func TestColumnIndex(t *testing.T) {
	header := []string{" Code ", "NAME", "price"}
	if columnIndex(header, "code") != 0 || columnIndex(header, "name") != 1 {
		t.Fatal("column matching must be case-insensitive and trimmed")
	}
	if columnIndex(header, "missing") != -1 {
		t.Fatal("missing columns must report -1")
	}
	if cellAt([]string{"a"}, -1) != "" || cellAt([]string{"a"}, 5) != "" {
		t.Fatal("out-of-range cells must be empty")
	}
	if cellAt([]string{" a "}, 0) != "a" {
		t.Fatal("cells must be trimmed")
	}
}
