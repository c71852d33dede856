package model

import "time"

type ExpenseType string

const (
	ExpenseFuel        ExpenseType = "fuel"
	ExpenseMaintenance ExpenseType = "maintenance"
	ExpenseToll        ExpenseType = "toll"
	ExpenseCookingGas  ExpenseType = "cooking_gas"
)

type FuelType string

const (
	FuelLPG    FuelType = "lpg"
	FuelPetrol FuelType = "petrol"
	Fuel99     FuelType = "99"
)

type Expense struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string      `gorm:"type:varchar(36);not null;index" json:"userId"`
	VehicleID   *string     `gorm:"type:varchar(36)" json:"vehicleId"`
	Type        ExpenseType `gorm:"type:varchar(20);not null" json:"type"`
	FuelType    *FuelType   `gorm:"type:varchar(10)" json:"fuelType"`
	Amount      float64     `gorm:"not null" json:"amount"`
	Quantity    *float64    `json:"quantity"`
	Odometer    *float64    `json:"odometer"`
	Description string      `gorm:"type:text" json:"description"`
	VoucherURL  *string     `gorm:"type:varchar(500)" json:"voucherUrl"`
	Date        string      `gorm:"type:varchar(10);not null;index" json:"date"`
	CreatedAt   time.Time   `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
}

func (Expense) TableName() string {
	return "expenses"
}

// All returns every persisted model, in migration order.
func All() []any {
	return []any{&Branch{}, &Profile{}, &AttendanceRecord{}, &MovementLog{}, &Vehicle{}, &Expense{}}
}
