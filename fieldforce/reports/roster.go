package reports

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/utils"
	"github.com/xuri/excelize/v2"
)

const (
	BranchSheet  = "Branches"
	StaffSheet   = "Staff"
	VehicleSheet = "Vehicles"
)

// Roster is the content of a roster workbook. Skipped lists rows that could not be read.
type Roster struct {
	Branches []model.Branch
	Profiles []model.Profile
	Vehicles []model.Vehicle
	Skipped  []string
}

// ReadRoster reads the Branches, Staff and Vehicles sheets of a roster workbook.
// The first row of every sheet is a header; missing sheets are empty.
//
//	Branches: id | name | lat | lng | radius | target
//	Staff:    id | email | name | role | branch id
//	Vehicles: id | name | type
func ReadRoster(r io.Reader) (*Roster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	roster := &Roster{}
	sheets := utils.IndexBy(f.GetSheetList(), func(s string) string { return strings.ToLower(s) })

	rowsOf := func(name string) ([][]string, error) {
		sheet, ok := sheets[strings.ToLower(name)]
		if !ok {
			return nil, nil
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) > 0 {
			rows = rows[1:]
		}
		return rows, nil
	}
	skip := func(sheet string, line int, reason string) {
		roster.Skipped = append(roster.Skipped, fmt.Sprintf("%s row %d: %s", sheet, line, reason))
	}

	rows, err := rowsOf(BranchSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if blank(row) {
			continue
		}
		b, err := branchFromRow(row)
		if err != nil {
			skip(BranchSheet, i+2, err.Error())
			continue
		}
		roster.Branches = append(roster.Branches, b)
	}

	rows, err = rowsOf(StaffSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if blank(row) {
			continue
		}
		p := model.Profile{
			ID:    column(row, 0),
			Email: strings.ToLower(column(row, 1)),
			Name:  column(row, 2),
			Role:  model.Role(strings.ToLower(column(row, 3))),
		}
		if branch := column(row, 4); branch != "" {
			p.BranchID = utils.Ptr(branch)
		}
		switch {
		case p.ID == "" || p.Name == "":
			skip(StaffSheet, i+2, "id and name are required")
		case !p.Role.Valid():
			skip(StaffSheet, i+2, fmt.Sprintf("unknown role %q", p.Role))
		default:
			roster.Profiles = append(roster.Profiles, p)
		}
	}

	rows, err = rowsOf(VehicleSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if blank(row) {
			continue
		}
		v := model.Vehicle{ID: column(row, 0), Name: column(row, 1), Type: model.VehicleType(strings.ToLower(column(row, 2)))}
		if v.ID == "" || (v.Type != model.VehicleCar && v.Type != model.VehicleMotorcycle) {
			skip(VehicleSheet, i+2, "id and a car or motorcycle type are required")
			continue
		}
		roster.Vehicles = append(roster.Vehicles, v)
	}
	return roster, nil
}

func branchFromRow(row []string) (model.Branch, error) {
	b := model.Branch{ID: column(row, 0), Name: column(row, 1)}
	if b.ID == "" || b.Name == "" {
		return b, fmt.Errorf("id and name are required")
	}
	var err error
	if b.Lat, err = number(row, 2); err != nil {
		return b, fmt.Errorf("lat: %w", err)
	}
	if b.Lng, err = number(row, 3); err != nil {
		return b, fmt.Errorf("lng: %w", err)
	}
	if b.Radius, err = number(row, 4); err != nil {
		return b, fmt.Errorf("radius: %w", err)
	}
	if b.TargetAmount, err = number(row, 5); err != nil {
		return b, fmt.Errorf("target: %w", err)
	}
	if _, ok := b.Fence(); !ok {
		return b, fmt.Errorf("invalid geofence %.6f,%.6f r=%.0f", b.Lat, b.Lng, b.Radius)
	}
	return b, nil
}

func column(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// number reads an optional numeric cell; empty is zero.
func number(row []string, i int) (float64, error) {
	s := column(row, i)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
