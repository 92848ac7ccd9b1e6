package registers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

// Tabular register formats for the items/services export and import
// endpoints.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

var exportContentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatJSON: "application/json",
}

func IsSupportedFormat(format string) bool {
	_, ok := exportContentTypes[format]
	return ok
}

var itemColumns = []string{"code", "name", "type", "price", "care_type", "patient_category", "quantity", "frequency", "package"}

var serviceColumns = []string{"code", "name", "type", "level", "price", "care_type", "patient_category", "category", "frequency"}

func decimalPtrString(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.String()
}

func intPtrString(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func itemRow(item models.Item) []string {
	return []string{
		item.Code,
		item.Name,
		item.Type,
		item.Price.String(),
		item.CareType,
		strconv.Itoa(item.PatientCategory),
		decimalPtrString(item.Quantity),
		intPtrString(item.Frequency),
		utils.DereferencePtr(item.Package),
	}
}

func serviceRow(service models.MedicalService) []string {
	return []string{
		service.Code,
		service.Name,
		service.Type,
		service.Level,
		service.Price.String(),
		service.CareType,
		strconv.Itoa(service.PatientCategory),
		utils.DereferencePtr(service.Category),
		intPtrString(service.Frequency),
	}
}

func renderCSV(columns []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(sheet string, columns []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	for rowIndex, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(columns []string, rows [][]string) ([]byte, error) {
	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]string, len(columns))
		for i, name := range columns {
			record[name] = row[i]
		}
		records = append(records, record)
	}
	data, err := utils.MarshalToJSON(records)
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func renderDataset(format string, sheet string, columns []string, rows [][]string) ([]byte, string, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, "", fmt.Errorf("unknown export format '%s'", format)
	}
	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data, err = renderCSV(columns, rows)
	case FormatXLSX:
		data, err = renderXLSX(sheet, columns, rows)
	case FormatJSON:
		data, err = renderJSON(columns, rows)
	}
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// ExportItems renders the valid medical items in the requested tabular
// format and returns the payload with its content type.
func ExportItems(ctx context.Context, format string) ([]byte, string, error) {
	rows, err := models.FindAllValid[models.Item](ctx)
	if err != nil {
		return nil, "", err
	}
	dataset := make([][]string, 0, len(rows))
	for _, row := range rows {
		dataset = append(dataset, itemRow(row))
	}
	return renderDataset(format, "Items", itemColumns, dataset)
}

// ExportServices renders the valid medical services in the requested
// tabular format and returns the payload with its content type.
func ExportServices(ctx context.Context, format string) ([]byte, string, error) {
	rows, err := models.FindAllValid[models.MedicalService](ctx)
	if err != nil {
		return nil, "", err
	}
	dataset := make([][]string, 0, len(rows))
	for _, row := range rows {
		dataset = append(dataset, serviceRow(row))
	}
	return renderDataset(format, "Services", serviceColumns, dataset)
}

// readTabularFile loads a CSV or XLSX upload into a header row plus data
// rows. The content type decides the decoder, falling back to XLSX.
func readTabularFile(r io.Reader, contentType string) ([]string, [][]string, error) {
	if strings.Contains(contentType, "csv") || strings.Contains(contentType, "text/plain") {
		reader := csv.NewReader(r)
		reader.TrimLeadingSpace = true
		records, err := reader.ReadAll()
		if err != nil {
			return nil, nil, err
		}
		if len(records) == 0 {
			return nil, nil, fmt.Errorf("file has no header row")
		}
		return records[0], records[1:], nil
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("sheet has no header row")
	}
	return records[0], records[1:], nil
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

func cellAt(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// parseItemRows maps a tabular items file onto upload entries. Rows that
// violate the item constraints produce one error each, prefixed with their
// row number.
func parseItemRows(header []string, rows [][]string) ([]ItemEntry, []string) {
	var entries []ItemEntry
	var errors []string
	for rowIndex, row := range rows {
		rowNumber := rowIndex + 1
		entry := ItemEntry{
			Code:     cellAt(row, columnIndex(header, "code")),
			Name:     cellAt(row, columnIndex(header, "name")),
			Type:     strings.ToUpper(cellAt(row, columnIndex(header, "type"))),
			CareType: strings.ToUpper(cellAt(row, columnIndex(header, "care_type"))),
		}
		if entry.Code == "" || entry.Name == "" {
			errors = append(errors, fmt.Sprintf("row (%d) - code and name are required", rowNumber))
			continue
		}
		price, err := decimal.NewFromString(cellAt(row, columnIndex(header, "price")))
		if err != nil {
			errors = append(errors, fmt.Sprintf("row (%d) - price is invalid", rowNumber))
			continue
		}
		entry.Price = price
		category, err := strconv.Atoi(cellAt(row, columnIndex(header, "patient_category")))
		if err != nil {
			errors = append(errors, fmt.Sprintf("row (%d) - patient_category is invalid", rowNumber))
			continue
		}
		entry.PatientCategory = category
		if raw := cellAt(row, columnIndex(header, "quantity")); raw != "" {
			quantity, err := decimal.NewFromString(raw)
			if err != nil {
				errors = append(errors, fmt.Sprintf("row (%d) - quantity is invalid", rowNumber))
				continue
			}
			entry.Quantity = &quantity
		}
		if raw := cellAt(row, columnIndex(header, "frequency")); raw != "" {
			frequency, err := strconv.Atoi(raw)
			if err != nil {
				errors = append(errors, fmt.Sprintf("row (%d) - frequency is invalid", rowNumber))
				continue
			}
			entry.Frequency = &frequency
		}
		if raw := cellAt(row, columnIndex(header, "package")); raw != "" {
			entry.Package = &raw
		}
		entries = append(entries, entry)
	}
	return entries, errors
}

func parseServiceRows(header []string, rows [][]string) ([]ServiceEntry, []string) {
	var entries []ServiceEntry
	var errors []string
	for rowIndex, row := range rows {
		rowNumber := rowIndex + 1
		entry := ServiceEntry{
			Code:     cellAt(row, columnIndex(header, "code")),
			Name:     cellAt(row, columnIndex(header, "name")),
			Type:     strings.ToUpper(cellAt(row, columnIndex(header, "type"))),
			Level:    strings.ToUpper(cellAt(row, columnIndex(header, "level"))),
			CareType: strings.ToUpper(cellAt(row, columnIndex(header, "care_type"))),
		}
		if entry.Code == "" || entry.Name == "" {
			errors = append(errors, fmt.Sprintf("row (%d) - code and name are required", rowNumber))
			continue
		}
		price, err := decimal.NewFromString(cellAt(row, columnIndex(header, "price")))
		if err != nil {
			errors = append(errors, fmt.Sprintf("row (%d) - price is invalid", rowNumber))
			continue
		}
		entry.Price = price
		category, err := strconv.Atoi(cellAt(row, columnIndex(header, "patient_category")))
		if err != nil {
			errors = append(errors, fmt.Sprintf("row (%d) - patient_category is invalid", rowNumber))
			continue
		}
		entry.PatientCategory = category
		if raw := strings.ToUpper(cellAt(row, columnIndex(header, "category"))); raw != "" {
			entry.Category = &raw
		}
		if raw := cellAt(row, columnIndex(header, "frequency")); raw != "" {
			frequency, err := strconv.Atoi(raw)
			if err != nil {
				errors = append(errors, fmt.Sprintf("row (%d) - frequency is invalid", rowNumber))
				continue
			}
			entry.Frequency = &frequency
		}
		entries = append(entries, entry)
	}
	return entries, errors
}

// ImportItems upserts medical items from a CSV or XLSX file. Rows are
// matched by code; absent rows are left untouched.
func ImportItems(ctx context.Context, auditUserId int, file io.Reader, contentType string) (*UploadResult, error) {
	header, rows, err := readTabularFile(file, contentType)
	if err != nil {
		return nil, err
	}
	entries, parseErrors := parseItemRows(header, rows)
	return UploadRegister(ctx, auditUserId, UploadContext[ItemEntry, models.Item]{
		Entries:       entries,
		ParsingErrors: parseErrors,
		Adapter:       itemAdapter{},
		Strategy:      StrategyInsertUpdate,
		Label:         "Item",
		LabelPlural:   "items",
	})
}

// ImportServices upserts medical services from a CSV or XLSX file.
func ImportServices(ctx context.Context, auditUserId int, file io.Reader, contentType string) (*UploadResult, error) {
	header, rows, err := readTabularFile(file, contentType)
	if err != nil {
		return nil, err
	}
	entries, parseErrors := parseServiceRows(header, rows)
	return UploadRegister(ctx, auditUserId, UploadContext[ServiceEntry, models.MedicalService]{
		Entries:       entries,
		ParsingErrors: parseErrors,
		Adapter:       serviceAdapter{},
		Strategy:      StrategyInsertUpdate,
		Label:         "Service",
		LabelPlural:   "services",
	})
}
