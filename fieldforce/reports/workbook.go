package reports

import (
	"bytes"
	"fmt"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/utils"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	ExpenseSheet    = "Expenses"
	AttendanceSheet = "Attendance"
)

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	return f.SetSheetRow(sheet, cell(1, row), &values)
}

// ExpenseWorkbook lays the monthly expense report out as one sheet: a title row,
// two header rows (each car spans lpg, petrol and 99), the daily rows and a total row.
func ExpenseWorkbook(report *core.ExpenseReport) (*excelize.File, error) {
	f, err := newWorkbook(ExpenseSheet)
	if err != nil {
		return nil, err
	}
	style, err := headerStyle(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	carCols := len(report.Cars) * 3
	lastCol := 2 + carCols + 5

	if err := f.SetCellValue(ExpenseSheet, cell(1, 1), fmt.Sprintf("Expense report %s", report.Month)); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.MergeCell(ExpenseSheet, cell(1, 1), cell(lastCol, 1))

	top := []any{"SL", "Date"}
	sub := []any{"", ""}
	for _, c := range report.Cars {
		top = append(top, c.Name, "", "")
		sub = append(sub, "LPG", "Petrol", "99")
	}
	top = append(top, "Motorcycle", "Toll", "Maintenance", "Cooking gas", "Total")
	sub = append(sub, "", "", "", "", "")
	if err := writeRow(f, ExpenseSheet, 2, top); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRow(f, ExpenseSheet, 3, sub); err != nil {
		f.Close()
		return nil, err
	}
	for i := range report.Cars {
		col := 3 + i*3
		_ = f.MergeCell(ExpenseSheet, cell(col, 2), cell(col+2, 2))
	}
	for _, col := range []int{1, 2, lastCol - 4, lastCol - 3, lastCol - 2, lastCol - 1, lastCol} {
		_ = f.MergeCell(ExpenseSheet, cell(col, 2), cell(col, 3))
	}
	_ = f.SetCellStyle(ExpenseSheet, cell(1, 2), cell(lastCol, 3), style)

	row := 4
	for _, r := range report.Rows {
		values := []any{r.Serial, r.Date}
		for _, c := range report.Cars {
			bill := r.Cars[c.ID]
			if bill == nil {
				bill = &core.FuelBill{}
			}
			values = append(values, bill.LPG, bill.Petrol, bill.Bill99)
		}
		values = append(values, r.MotorcycleBill, r.Toll, r.Maintenance, r.CookingGas, r.Total)
		if err := writeRow(f, ExpenseSheet, row, values); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}

	if err := f.SetCellValue(ExpenseSheet, cell(lastCol-1, row), "Total"); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellValue(ExpenseSheet, cell(lastCol, row), report.Total); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.SetColWidth(ExpenseSheet, "B", "B", 12)
	return f, nil
}

// AttendanceWorkbook writes the monthly attendance rows with clock times in loc.
func AttendanceWorkbook(month string, rows []core.AttendanceReportRow, loc *time.Location) (*excelize.File, error) {
	f, err := newWorkbook(AttendanceSheet)
	if err != nil {
		return nil, err
	}
	style, err := headerStyle(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetCellValue(AttendanceSheet, "A1", fmt.Sprintf("Attendance report %s", month)); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.MergeCell(AttendanceSheet, "A1", "G1")
	if err := writeRow(f, AttendanceSheet, 2, []any{"Date", "Staff", "Role", "Branch", "Status", "Check in", "Check out"}); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.SetCellStyle(AttendanceSheet, "A2", "G2", style)

	for i, r := range rows {
		values := []any{r.Date, r.StaffName, string(r.Role), r.Branch, string(r.Status), utils.FormatClock(r.CheckIn, loc), utils.FormatClock(r.CheckOut, loc)}
		if err := writeRow(f, AttendanceSheet, i+3, values); err != nil {
			f.Close()
			return nil, err
		}
	}
	_ = f.SetColWidth(AttendanceSheet, "A", "A", 12)
	_ = f.SetColWidth(AttendanceSheet, "B", "B", 24)
	return f, nil
}

// Bytes serialises and closes f.
func Bytes(f *excelize.File) ([]byte, error) {
	defer f.Close()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func ExpenseFilename(month string) string {
	return fmt.Sprintf("expense-report-%s.xlsx", month)
}

func AttendanceFilename(month string) string {
	return fmt.Sprintf("attendance-report-%s.xlsx", month)
}
