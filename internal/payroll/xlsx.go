package payroll

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Paie"

var sheetHeader = []interface{}{"Employé", "Poste", "Services", "Heures", "Taux horaire", "Coût brut"}

// WriteXLSX renders summary as a single-sheet workbook.
func WriteXLSX(w io.Writer, summary *Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	title := fmt.Sprintf("%s (%s au %s)", summary.ScheduleName, summary.StartDate, summary.EndDate)
	if err := f.SetCellValue(SheetName, "A1", title); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A3", &sheetHeader); err != nil {
		return err
	}

	row := 4
	for _, line := range summary.Lines {
		var rate interface{}
		if line.HourlyRate != nil {
			rate = *line.HourlyRate
		}
		cells := []interface{}{line.Name, line.Role, line.Shifts, line.Hours, rate, line.GrossCost}
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", row), &cells); err != nil {
			return err
		}
		row++
	}

	totals := []interface{}{"Total", "", summary.TotalShifts, summary.TotalHours, nil, summary.TotalCost}
	if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", row), &totals); err != nil {
		return err
	}

	for _, cells := range [][2]string{{"A1", "A1"}, {"A3", "F3"}, {fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row)}} {
		if err := f.SetCellStyle(SheetName, cells[0], cells[1], bold); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "F", 14); err != nil {
		return err
	}

	return f.Write(w)
}
