// Package loader ingests rep and account data from CSV or XLSX files with
// case-insensitive header matching and per-row error reporting.
package loader

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/territory-cli/internal/model"
)

// RowError describes a single bad cell or row in an input file. Row numbers
// are 1-based file positions, so the first data row is row 2.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Options configures file loading.
type Options struct {
	// SheetName selects an XLSX sheet by name; empty means the first sheet.
	SheetName string
}

// LoadReps reads a rep file (CSV or XLSX by extension). Rows that fail to
// parse are reported in the returned RowErrors and skipped; the error
// return is reserved for file-level failures (unreadable file, missing
// headers, missing required columns).
func LoadReps(path string, opts Options) ([]model.Rep, []RowError, error) {
	headers, rows, err := readTable(path, opts)
	if err != nil {
		return nil, nil, err
	}
	return ParseReps(headers, rows)
}

// LoadAccounts reads an account file (CSV or XLSX by extension), with the
// same error contract as LoadReps.
func LoadAccounts(path string, opts Options) ([]model.Account, []RowError, error) {
	headers, rows, err := readTable(path, opts)
	if err != nil {
		return nil, nil, err
	}
	return ParseAccounts(headers, rows)
}

// readTable dispatches on file extension.
func readTable(path string, opts Options) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path, opts.SheetName)
	default:
		return nil, nil, eris.Errorf("loader: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// normalizeHeader canonicalizes a header cell: trimmed, lowercased, spaces
// collapsed to underscores. "Rep Name", "rep_name" and "REP_NAME" all map
// to "rep_name".
func normalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(header))), "_")
}

// headerIndex maps normalized header names to their column positions.
func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[normalizeHeader(h)] = i
	}
	return index
}

// requireColumns verifies every required column is present, returning a
// file-level error naming the missing ones.
func requireColumns(index map[string]int, required []string) error {
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("loader: missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// cell returns the trimmed value of a named column in a row, or "" when the
// row is short.
func cell(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseReps converts raw rows into reps. Expected columns (case-insensitive):
// Rep_Name, Segment, Location, all required. Segment accepts any
// capitalization of "Enterprise" / "Mid Market" and is normalized on the
// way in.
func ParseReps(headers []string, rows [][]string) ([]model.Rep, []RowError, error) {
	if len(headers) == 0 {
		return nil, nil, eris.New("loader: file has no headers")
	}
	index := headerIndex(headers)
	if err := requireColumns(index, []string{"rep_name", "segment", "location"}); err != nil {
		return nil, nil, err
	}

	var reps []model.Rep
	var rowErrs []RowError

	for i, row := range rows {
		rowNum := i + 2 // header row is row 1

		name := cell(row, index, "rep_name")
		if name == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Column: "Rep_Name", Message: "Rep_Name is required and cannot be empty"})
			continue
		}

		segment, ok := parseSegment(cell(row, index, "segment"))
		if !ok {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Column: "Segment", Message: fmt.Sprintf("invalid Segment value %q: must be \"Enterprise\" or \"Mid Market\"", cell(row, index, "segment"))})
			continue
		}

		location := cell(row, index, "location")
		if location == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Column: "Location", Message: "Location is required and cannot be empty"})
			continue
		}

		reps = append(reps, model.Rep{Name: name, Segment: segment, Location: location})
	}

	return reps, rowErrs, nil
}

// parseSegment normalizes a segment cell. Empty and unknown values both
// fail; capitalization is standardized on output.
func parseSegment(value string) (model.Segment, bool) {
	switch strings.ToLower(value) {
	case "enterprise":
		return model.SegmentEnterprise, true
	case "mid market":
		return model.SegmentMidMarket, true
	default:
		return "", false
	}
}

// ParseAccounts converts raw rows into accounts. Expected columns
// (case-insensitive): Account_ID, Account_Name, Original_Rep, ARR,
// Num_Employees, Location (required) and Risk_Score (optional; blank means
// no risk data, which is not the same as zero).
func ParseAccounts(headers []string, rows [][]string) ([]model.Account, []RowError, error) {
	if len(headers) == 0 {
		return nil, nil, eris.New("loader: file has no headers")
	}
	index := headerIndex(headers)
	required := []string{"account_id", "account_name", "original_rep", "arr", "num_employees", "location"}
	if err := requireColumns(index, required); err != nil {
		return nil, nil, err
	}

	var accounts []model.Account
	var rowErrs []RowError

	for i, row := range rows {
		rowNum := i + 2

		id := cell(row, index, "account_id")
		if id == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Column: "Account_ID", Message: "Account_ID is required and cannot be empty"})
			continue
		}

		arr, err := parseFloat(cell(row, index, "arr"))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Column: "ARR", Message: err.Error()})
			continue
		}

		employees, err := parseInt(cell(row, index, "num_employees"))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Column: "Num_Employees", Message: err.Error()})
			continue
		}

		account := model.Account{
			ID:           id,
			Name:         cell(row, index, "account_name"),
			OriginalRep:  cell(row, index, "original_rep"),
			ARR:          arr,
			NumEmployees: employees,
			Location:     cell(row, index, "location"),
		}

		if raw := cell(row, index, "risk_score"); raw != "" {
			risk, err := parseFloat(raw)
			if err != nil {
				rowErrs = append(rowErrs, RowError{Row: rowNum, Column: "Risk_Score", Message: err.Error()})
				continue
			}
			account.RiskScore = &risk
		}

		accounts = append(accounts, account)
	}

	return accounts, rowErrs, nil
}

func parseFloat(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number format: %q", value)
	}
	return v, nil
}

func parseInt(value string) (int, error) {
	// Spreadsheets frequently serialize integer cells as "1200.0".
	v, err := parseFloat(value)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
