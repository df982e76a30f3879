package employee

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxRosterRows = 100000

// RosterRow is one spreadsheet line turned into a create request. Line is
// 1-based and counts the header.
type RosterRow struct {
	Line int
	DTO  CreateEmployeeDTO
}

type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created  []*Employee `json:"created"`
	Rejected []RowError  `json:"rejected"`
}

type rosterColumn int

const (
	colFirstName rosterColumn = iota
	colLastName
	colEmail
	colPhone
	colRole
	colContract
	colWeeklyHours
	colHourlyRate
	colStartDate
	colNotes
	columnCount
)

var rosterHeaders = map[string]rosterColumn{
	"prénom":         colFirstName,
	"prenom":         colFirstName,
	"first name":     colFirstName,
	"firstname":      colFirstName,
	"nom":            colLastName,
	"last name":      colLastName,
	"lastname":       colLastName,
	"email":          colEmail,
	"e-mail":         colEmail,
	"téléphone":      colPhone,
	"telephone":      colPhone,
	"phone":          colPhone,
	"poste":          colRole,
	"role":           colRole,
	"rôle":           colRole,
	"contrat":        colContract,
	"contract":       colContract,
	"heures":         colWeeklyHours,
	"heures hebdo":   colWeeklyHours,
	"weekly hours":   colWeeklyHours,
	"taux":           colHourlyRate,
	"taux horaire":   colHourlyRate,
	"hourly rate":    colHourlyRate,
	"date d'entrée":  colStartDate,
	"date d'entree":  colStartDate,
	"start date":     colStartDate,
	"notes":          colNotes,
	"remarques":      colNotes,
}

// ReadRoster parses an uploaded roster. .xls files go through the legacy
// reader; anything else is treated as an xlsx workbook. Only the first sheet
// is read.
func ReadRoster(reader io.Reader, filename string) ([]RosterRow, []RowError, error) {
	rows, err := readSpreadsheet(reader, filename)
	if err != nil {
		return nil, nil, err
	}
	return parseRoster(rows)
}

func readSpreadsheet(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows := workbook.ReadAllCells(maxRosterRows)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	}
}

func parseRoster(rows [][]string) ([]RosterRow, []RowError, error) {
	index := make([]int, columnCount)
	for i := range index {
		index[i] = -1
	}
	for i, header := range rows[0] {
		if col, ok := rosterHeaders[normalizeHeader(header)]; ok && index[col] < 0 {
			index[col] = i
		}
	}
	if index[colFirstName] < 0 || index[colLastName] < 0 || index[colRole] < 0 {
		return nil, nil, fmt.Errorf("header must name first name, last name and role columns")
	}

	var (
		parsed   []RosterRow
		rejected []RowError
	)
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		cell := func(col rosterColumn) string { return cellValue(row, index[col]) }

		dto := CreateEmployeeDTO{
			FirstName:    cell(colFirstName),
			LastName:     cell(colLastName),
			Email:        cell(colEmail),
			Phone:        cell(colPhone),
			Role:         cell(colRole),
			ContractType: cell(colContract),
			StartDate:    cell(colStartDate),
			Notes:        cell(colNotes),
		}
		var err error
		if dto.WeeklyHours, err = parseAmount(cell(colWeeklyHours)); err != nil {
			rejected = append(rejected, RowError{Line: line, Error: "weekly hours: " + err.Error()})
			continue
		}
		if dto.HourlyRate, err = parseAmount(cell(colHourlyRate)); err != nil {
			rejected = append(rejected, RowError{Line: line, Error: "hourly rate: " + err.Error()})
			continue
		}
		parsed = append(parsed, RosterRow{Line: line, DTO: dto})
	}
	return parsed, rejected, nil
}

// parseAmount accepts both "12.5" and "12,5".
func parseAmount(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return &f, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
