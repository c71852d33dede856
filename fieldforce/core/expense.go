package core

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/utils"
	"github.com/google/uuid"
)

type ExpenseInput struct {
	VehicleID   *string           `json:"vehicleId" form:"vehicleId"`
	Type        model.ExpenseType `json:"type" form:"type" binding:"required,oneof=fuel maintenance toll cooking_gas"`
	FuelType    *model.FuelType   `json:"fuelType" form:"fuelType"`
	Amount      float64           `json:"amount" form:"amount" binding:"required,gt=0"`
	UnitPrice   *float64          `json:"unitPrice" form:"unitPrice"`
	Odometer    *float64          `json:"odometer" form:"odometer"`
	Description string            `json:"description" form:"description"`
	Date        string            `json:"date" form:"date" binding:"required"`
}

type Voucher struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var voucherExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".pdf": true, ".webp": true}

func needsVehicle(t model.ExpenseType) bool {
	return t == model.ExpenseFuel || t == model.ExpenseMaintenance || t == model.ExpenseToll
}

// ValidateExpense checks an entry against the known vehicles.
func ValidateExpense(in ExpenseInput, vehicles []model.Vehicle) error {
	if in.Amount <= 0 {
		return &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if _, err := utils.ParseISOTime(in.Date); err != nil || len(in.Date) != len(utils.DateLayout) {
		return &ValidationError{Field: "date", Message: "must be yyyy-MM-dd"}
	}
	switch in.Type {
	case model.ExpenseFuel, model.ExpenseMaintenance, model.ExpenseToll, model.ExpenseCookingGas:
	default:
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown expense type %q", in.Type)}
	}

	if in.Type == model.ExpenseFuel {
		if in.FuelType == nil {
			return &ValidationError{Field: "fuelType", Message: "is required for fuel"}
		}
		switch *in.FuelType {
		case model.FuelLPG, model.FuelPetrol, model.Fuel99:
		default:
			return &ValidationError{Field: "fuelType", Message: fmt.Sprintf("unknown fuel type %q", *in.FuelType)}
		}
	}

	if in.VehicleID != nil && *in.VehicleID != "" {
		if utils.Find(vehicles, func(v model.Vehicle) bool { return v.ID == *in.VehicleID }) == nil {
			return &ValidationError{Field: "vehicleId", Message: "unknown vehicle"}
		}
	} else if needsVehicle(in.Type) && len(vehicles) > 0 {
		return &ValidationError{Field: "vehicleId", Message: "select a car or motorcycle"}
	}
	return nil
}

// NewExpense builds the record for a validated entry.
func NewExpense(userID string, in ExpenseInput) *model.Expense {
	e := &model.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        in.Type,
		Amount:      in.Amount,
		Odometer:    in.Odometer,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
	}
	if in.VehicleID != nil && *in.VehicleID != "" {
		e.VehicleID = in.VehicleID
	}
	if in.Type == model.ExpenseFuel {
		e.FuelType = in.FuelType
		if in.UnitPrice != nil && *in.UnitPrice > 0 {
			e.Quantity = utils.Ptr(utils.Round2(in.Amount / *in.UnitPrice))
		}
	}
	return e
}

// VoucherPath is where a voucher of userID is stored.
func VoucherPath(userID, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !voucherExtensions[ext] {
		return "", &ValidationError{Field: "voucher", Message: fmt.Sprintf("unsupported file type %q", ext)}
	}
	return fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext), nil
}

// RecordExpense validates, uploads the optional voucher and stores the entry.
func (s *Service) RecordExpense(ctx context.Context, viewer Viewer, in ExpenseInput, voucher *Voucher) (*model.Expense, error) {
	vehicles, err := s.stores.Vehicles.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list vehicles", Err: err}
	}
	if err := ValidateExpense(in, vehicles); err != nil {
		return nil, err
	}

	e := NewExpense(viewer.ID, in)
	if voucher != nil {
		if s.blobs == nil {
			return nil, &PersistenceError{Op: "upload voucher", Err: fmt.Errorf("no blob store configured")}
		}
		path, err := VoucherPath(viewer.ID, voucher.Filename)
		if err != nil {
			return nil, err
		}
		url, err := s.blobs.Upload(ctx, path, voucher.Body, voucher.ContentType)
		if err != nil {
			return nil, &PersistenceError{Op: "upload voucher", Err: err}
		}
		e.VoucherURL = &url
	}

	if err := s.stores.Expenses.Insert(ctx, e); err != nil {
		return nil, &PersistenceError{Op: "insert expense", Err: err}
	}
	return e, nil
}

// ListExpenses returns the month's expenses; only admins see everyone's.
func (s *Service) ListExpenses(ctx context.Context, viewer Viewer, month string) ([]model.Expense, error) {
	if _, err := utils.ParseMonth(month); err != nil {
		return nil, &ValidationError{Field: "month", Message: err.Error()}
	}
	owner := viewer.ID
	if viewer.Role.IsAdmin() {
		owner = ""
	}
	expenses, err := s.stores.Expenses.List(ctx, month, owner)
	if err != nil {
		return nil, &PersistenceError{Op: "list expenses", Err: err}
	}
	return expenses, nil
}

type FuelBill struct {
	LPG    float64 `json:"lpg"`
	Petrol float64 `json:"petrol"`
	Bill99 float64 `json:"bill99"`
}

type ExpenseReportRow struct {
	Serial         int                  `json:"serial"`
	Date           string               `json:"date"`
	Cars           map[string]*FuelBill `json:"cars"`
	MotorcycleBill float64              `json:"motorcycleBill"`
	Toll           float64              `json:"toll"`
	Maintenance    float64              `json:"maintenance"`
	CookingGas     float64              `json:"cookingGas"`
	Total          float64              `json:"total"`
}

type ExpenseReport struct {
	Month string             `json:"month"`
	Cars  []model.Vehicle    `json:"cars"`
	Rows  []ExpenseReportRow `json:"rows"`
	Total float64            `json:"total"`
}

// BuildExpenseReport lays the month's expenses out one row per date.
// Anything spent on a motorcycle goes to the motorcycle bill; car fuel is split
// per car and fuel type; fuel without a car only counts toward the total.
func BuildExpenseReport(month string, expenses []model.Expense, vehicles []model.Vehicle) *ExpenseReport {
	byID := utils.IndexBy(vehicles, func(v model.Vehicle) string { return v.ID })
	cars := utils.Filter(vehicles, func(v model.Vehicle) bool { return v.Type == model.VehicleCar })
	sort.Slice(cars, func(i, j int) bool { return cars[i].Name < cars[j].Name })

	inMonth := utils.Filter(expenses, func(e model.Expense) bool { return utils.InMonth(e.Date, month) })
	byDate := utils.GroupBy(inMonth, func(e model.Expense) string { return e.Date })
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	report := &ExpenseReport{Month: month, Cars: cars}
	for i, date := range dates {
		row := ExpenseReportRow{Serial: i + 1, Date: date, Cars: make(map[string]*FuelBill, len(cars))}
		for _, c := range cars {
			row.Cars[c.ID] = &FuelBill{}
		}

		for _, e := range byDate[date] {
			var vehicle *model.Vehicle
			if e.VehicleID != nil {
				if v, ok := byID[*e.VehicleID]; ok {
					vehicle = &v
				}
			}

			switch {
			case vehicle != nil && vehicle.Type == model.VehicleMotorcycle:
				row.MotorcycleBill += e.Amount
			case e.Type == model.ExpenseFuel && vehicle != nil && vehicle.Type == model.VehicleCar:
				bill := row.Cars[vehicle.ID]
				switch utils.Deref(e.FuelType, model.FuelPetrol) {
				case model.FuelLPG:
					bill.LPG += e.Amount
				case model.Fuel99:
					bill.Bill99 += e.Amount
				default:
					bill.Petrol += e.Amount
				}
			case e.Type == model.ExpenseMaintenance:
				row.Maintenance += e.Amount
			case e.Type == model.ExpenseToll:
				row.Toll += e.Amount
			case e.Type == model.ExpenseCookingGas:
				row.CookingGas += e.Amount
			}
			row.Total += e.Amount
		}
		report.Total += row.Total
		report.Rows = append(report.Rows, row)
	}
	return report
}

func (s *Service) ExpenseReport(ctx context.Context, viewer Viewer, month string) (*ExpenseReport, error) {
	expenses, err := s.ListExpenses(ctx, viewer, month)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.stores.Vehicles.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list vehicles", Err: err}
	}
	return BuildExpenseReport(month, expenses, vehicles), nil
}
