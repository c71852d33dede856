package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBlobs struct {
	objects map[string]string
	err     error
}

func (b *memoryBlobs) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.objects[path] = string(data)
	return "https://vouchers.example.com/" + path, nil
}

func fleet() []model.Vehicle {
	return []model.Vehicle{
		{ID: "noah", Name: "Noah", Type: model.VehicleCar},
		{ID: "axio", Name: "Axio", Type: model.VehicleCar},
		{ID: "bike", Name: "Bike", Type: model.VehicleMotorcycle},
	}
}

func fuel(f model.FuelType) *model.FuelType {
	return &f
}

func TestValidateExpense(t *testing.T) {
	valid := ExpenseInput{VehicleID: utils.Ptr("noah"), Type: model.ExpenseFuel, FuelType: fuel(model.FuelLPG), Amount: 1200, Date: "2025-10-13"}

	cases := []struct {
		name  string
		edit  func(in *ExpenseInput)
		field string
	}{
		{"Valid fuel entry", func(in *ExpenseInput) {}, ""},
		{"Zero amount", func(in *ExpenseInput) { in.Amount = 0 }, "amount"},
		{"Bad date", func(in *ExpenseInput) { in.Date = "13/10/2025" }, "date"},
		{"Timestamp is not a date", func(in *ExpenseInput) { in.Date = "2025-10-13T09:00:00Z" }, "date"},
		{"Unknown type", func(in *ExpenseInput) { in.Type = "parking" }, "type"},
		{"Fuel without fuel type", func(in *ExpenseInput) { in.FuelType = nil }, "fuelType"},
		{"Unknown fuel type", func(in *ExpenseInput) { in.FuelType = fuel("diesel") }, "fuelType"},
		{"Unknown vehicle", func(in *ExpenseInput) { in.VehicleID = utils.Ptr("tesla") }, "vehicleId"},
		{"Toll without vehicle", func(in *ExpenseInput) { in.Type = model.ExpenseToll; in.VehicleID = nil }, "vehicleId"},
		{"Cooking gas without vehicle", func(in *ExpenseInput) { in.Type = model.ExpenseCookingGas; in.VehicleID = nil }, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.edit(&in)
			err := ValidateExpense(in, fleet())
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestNewExpense(t *testing.T) {
	e := NewExpense("dev", ExpenseInput{
		VehicleID:   utils.Ptr("noah"),
		Type:        model.ExpenseFuel,
		FuelType:    fuel(model.FuelPetrol),
		Amount:      1000,
		UnitPrice:   utils.Ptr(125.0),
		Description: "  full tank ",
		Date:        "2025-10-13",
	})
	assert.Equal(t, "dev", e.UserID)
	assert.Equal(t, 8.0, *e.Quantity)
	assert.Equal(t, "full tank", e.Description)
	assert.NotEmpty(t, e.ID)

	toll := NewExpense("dev", ExpenseInput{VehicleID: utils.Ptr(""), Type: model.ExpenseToll, FuelType: fuel(model.FuelLPG), Amount: 3, UnitPrice: utils.Ptr(1.0), Date: "2025-10-13"})
	assert.Nil(t, toll.VehicleID)
	assert.Nil(t, toll.FuelType)
	assert.Nil(t, toll.Quantity)
}

func TestVoucherPath(t *testing.T) {
	path, err := VoucherPath("dev", "Receipt.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "dev/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	other, err := VoucherPath("dev", "Receipt.JPG")
	require.NoError(t, err)
	assert.NotEqual(t, path, other)

	_, err = VoucherPath("dev", "payload.exe")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRecordExpense(t *testing.T) {
	ctx := context.Background()
	in := ExpenseInput{VehicleID: utils.Ptr("bike"), Type: model.ExpenseMaintenance, Amount: 450, Date: "2025-10-13"}

	newExpenseHarness := func(t *testing.T) (*harness, *memoryBlobs) {
		h := newHarness(t)
		for _, v := range fleet() {
			h.mem.PutVehicle(v)
		}
		blobs := &memoryBlobs{objects: make(map[string]string)}
		h.svc.blobs = blobs
		return h, blobs
	}

	t.Run("With a voucher", func(t *testing.T) {
		h, blobs := newExpenseHarness(t)
		e, err := h.svc.RecordExpense(ctx, ViewerOf(h.profile("dev")), in, &Voucher{Filename: "bill.png", ContentType: "image/png", Body: strings.NewReader("png")})
		require.NoError(t, err)
		require.NotNil(t, e.VoucherURL)
		assert.Contains(t, *e.VoucherURL, "https://vouchers.example.com/dev/")
		assert.Len(t, blobs.objects, 1)

		listed, err := h.svc.ListExpenses(ctx, ViewerOf(h.profile("dev")), "2025-10")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, e.ID, listed[0].ID)
	})

	t.Run("Upload failure stores nothing", func(t *testing.T) {
		h, blobs := newExpenseHarness(t)
		blobs.err = errors.New("bucket missing")
		_, err := h.svc.RecordExpense(ctx, ViewerOf(h.profile("dev")), in, &Voucher{Filename: "bill.png", Body: strings.NewReader("png")})
		var perr *PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "upload voucher", perr.Op)

		listed, err := h.svc.ListExpenses(ctx, ViewerOf(h.profile("sam")), "2025-10")
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("Invalid entry", func(t *testing.T) {
		h, blobs := newExpenseHarness(t)
		bad := in
		bad.VehicleID = utils.Ptr("tesla")
		_, err := h.svc.RecordExpense(ctx, ViewerOf(h.profile("dev")), bad, &Voucher{Filename: "bill.png", Body: strings.NewReader("png")})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Empty(t, blobs.objects)
	})

	t.Run("Only admins list everyone", func(t *testing.T) {
		h, _ := newExpenseHarness(t)
		_, err := h.svc.RecordExpense(ctx, ViewerOf(h.profile("dev")), in, nil)
		require.NoError(t, err)
		_, err = h.svc.RecordExpense(ctx, ViewerOf(h.profile("ana")), in, nil)
		require.NoError(t, err)

		mine, err := h.svc.ListExpenses(ctx, ViewerOf(h.profile("ana")), "2025-10")
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		all, err := h.svc.ListExpenses(ctx, ViewerOf(h.profile("bea")), "2025-10")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		_, err = h.svc.ListExpenses(ctx, ViewerOf(h.profile("bea")), "October")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestBuildExpenseReport(t *testing.T) {
	expenses := []model.Expense{
		{Date: "2025-10-02", Type: model.ExpenseFuel, FuelType: fuel(model.FuelLPG), VehicleID: utils.Ptr("noah"), Amount: 1000},
		{Date: "2025-10-02", Type: model.ExpenseFuel, FuelType: fuel(model.Fuel99), VehicleID: utils.Ptr("noah"), Amount: 500},
		{Date: "2025-10-02", Type: model.ExpenseFuel, FuelType: fuel(model.FuelPetrol), VehicleID: utils.Ptr("axio"), Amount: 800},
		{Date: "2025-10-02", Type: model.ExpenseFuel, FuelType: fuel(model.FuelPetrol), VehicleID: utils.Ptr("bike"), Amount: 300},
		{Date: "2025-10-01", Type: model.ExpenseToll, VehicleID: utils.Ptr("axio"), Amount: 50},
		{Date: "2025-10-01", Type: model.ExpenseMaintenance, VehicleID: utils.Ptr("bike"), Amount: 700},
		{Date: "2025-10-01", Type: model.ExpenseCookingGas, Amount: 1450},
		{Date: "2025-10-01", Type: model.ExpenseFuel, FuelType: fuel(model.FuelLPG), Amount: 20},
		{Date: "2025-09-30", Type: model.ExpenseToll, Amount: 999},
	}

	report := BuildExpenseReport("2025-10", expenses, fleet())
	assert.Equal(t, []string{"Axio", "Noah"}, utils.Map(report.Cars, func(v model.Vehicle) string { return v.Name }))
	require.Len(t, report.Rows, 2)

	first := report.Rows[0]
	assert.Equal(t, 1, first.Serial)
	assert.Equal(t, "2025-10-01", first.Date)
	assert.Equal(t, 50.0, first.Toll)
	assert.Equal(t, 700.0, first.MotorcycleBill)
	assert.Equal(t, 0.0, first.Maintenance)
	assert.Equal(t, 1450.0, first.CookingGas)
	assert.Equal(t, 2220.0, first.Total)

	second := report.Rows[1]
	assert.Equal(t, FuelBill{LPG: 1000, Bill99: 500}, *second.Cars["noah"])
	assert.Equal(t, FuelBill{Petrol: 800}, *second.Cars["axio"])
	assert.Equal(t, 300.0, second.MotorcycleBill)
	assert.Equal(t, 2600.0, second.Total)
	assert.Equal(t, 4820.0, report.Total)

	assert.Empty(t, BuildExpenseReport("2025-11", expenses, fleet()).Rows)
}

func TestServiceExpenseReport(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	for _, v := range fleet() {
		h.mem.PutVehicle(v)
	}
	_, err := h.svc.RecordExpense(ctx, ViewerOf(h.profile("dev")), ExpenseInput{VehicleID: utils.Ptr("axio"), Type: model.ExpenseFuel, FuelType: fuel(model.Fuel99), Amount: 640, Date: "2025-10-05"}, nil)
	require.NoError(t, err)

	report, err := h.svc.ExpenseReport(ctx, ViewerOf(h.profile("sam")), "2025-10")
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 640.0, report.Rows[0].Cars["axio"].Bill99)
}
