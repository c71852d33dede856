package reports

import (
	"bytes"
	"testing"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	data, err := Bytes(f)
	require.NoError(t, err)
	out, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

func TestExpenseWorkbook(t *testing.T) {
	lpg := model.FuelLPG
	report := core.BuildExpenseReport("2025-10", []model.Expense{
		{Date: "2025-10-02", Type: model.ExpenseFuel, FuelType: &lpg, VehicleID: utils.Ptr("noah"), Amount: 1000},
		{Date: "2025-10-01", Type: model.ExpenseToll, VehicleID: utils.Ptr("noah"), Amount: 50},
		{Date: "2025-10-01", Type: model.ExpenseMaintenance, VehicleID: utils.Ptr("bike"), Amount: 700},
	}, []model.Vehicle{
		{ID: "noah", Name: "Noah", Type: model.VehicleCar},
		{ID: "bike", Name: "Bike", Type: model.VehicleMotorcycle},
	})

	f, err := ExpenseWorkbook(report)
	require.NoError(t, err)
	book := reopen(t, f)

	assert.Equal(t, []string{ExpenseSheet}, book.GetSheetList())
	rows, err := book.GetRows(ExpenseSheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, "Expense report 2025-10", rows[0][0])
	assert.Equal(t, []string{"SL", "Date", "Noah", "", "", "Motorcycle", "Toll", "Maintenance", "Cooking gas", "Total"}, rows[1])
	assert.Equal(t, []string{"", "", "LPG", "Petrol", "99"}, rows[2])
	assert.Equal(t, []string{"1", "2025-10-01", "0", "0", "0", "700", "50", "0", "0", "750"}, rows[3])
	assert.Equal(t, []string{"2", "2025-10-02", "1000", "0", "0", "0", "0", "0", "0", "1000"}, rows[4])
	assert.Equal(t, "Total", rows[5][8])
	assert.Equal(t, "1750", rows[5][9])

	merged, err := book.GetMergeCells(ExpenseSheet)
	require.NoError(t, err)
	var spans []string
	for _, m := range merged {
		spans = append(spans, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.Contains(t, spans, "C2:E2")
}

func TestAttendanceWorkbook(t *testing.T) {
	in := time.Date(2025, 10, 13, 3, 5, 0, 0, time.UTC)
	rows := []core.AttendanceReportRow{
		{Date: "2025-10-13", StaffName: "Ana", Role: model.RoleOfficer, Branch: "Downtown", Status: model.StatusPresent, CheckIn: &in},
	}

	f, err := AttendanceWorkbook("2025-10", rows, utils.DhakaTZ)
	require.NoError(t, err)
	book := reopen(t, f)

	got, err := book.GetRows(AttendanceSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Attendance report 2025-10", got[0][0])
	assert.Equal(t, "Check out", got[1][6])
	assert.Equal(t, []string{"2025-10-13", "Ana", "officer", "Downtown", "present", "09:05", "-"}, got[2])
	assert.Equal(t, "attendance-report-2025-10.xlsx", AttendanceFilename("2025-10"))
}

func rosterWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "branches"))
	_, err := f.NewSheet(StaffSheet)
	require.NoError(t, err)
	_, err = f.NewSheet(VehicleSheet)
	require.NoError(t, err)

	set := func(sheet string, rows [][]any) {
		for i, r := range rows {
			row := r
			require.NoError(t, f.SetSheetRow(sheet, cell(1, i+1), &row))
		}
	}
	set("branches", [][]any{
		{"id", "name", "lat", "lng", "radius", "target"},
		{"b1", "Downtown", 23.8103, 90.4125, 250, 100000},
		{},
		{"b2", "Nowhere", 0, 0, 250},
		{"b3", "Broken", "north", 90, 250},
	})
	set(StaffSheet, [][]any{
		{"id", "email", "name", "role", "branch"},
		{"u1", "Ana@Example.com", "Ana", "Officer", "b1"},
		{"u2", "sam@example.com", "Sam", "super_admin"},
		{"u3", "x@example.com", "X", "janitor", "b1"},
	})
	set(VehicleSheet, [][]any{
		{"id", "name", "type"},
		{"v1", "Noah", "car"},
		{"v2", "Bus", "bus"},
	})

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadRoster(t *testing.T) {
	roster, err := ReadRoster(rosterWorkbook(t))
	require.NoError(t, err)

	require.Len(t, roster.Branches, 1)
	assert.Equal(t, model.Branch{ID: "b1", Name: "Downtown", Lat: 23.8103, Lng: 90.4125, Radius: 250, TargetAmount: 100000}, roster.Branches[0])

	require.Len(t, roster.Profiles, 2)
	assert.Equal(t, "ana@example.com", roster.Profiles[0].Email)
	assert.Equal(t, model.RoleOfficer, roster.Profiles[0].Role)
	assert.Equal(t, "b1", *roster.Profiles[0].BranchID)
	assert.Nil(t, roster.Profiles[1].BranchID)

	assert.Equal(t, []model.Vehicle{{ID: "v1", Name: "Noah", Type: model.VehicleCar}}, roster.Vehicles)
	assert.Len(t, roster.Skipped, 4)
	assert.Contains(t, roster.Skipped[0], "Branches row 4")

	_, err = ReadRoster(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
