package model

import "time"

type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
)

type Vehicle struct {
	ID        string      `gorm:"type:varchar(36);primaryKey" json:"id" yaml:"id"`
	Name      string      `gorm:"type:varchar(120);not null" json:"name" yaml:"name"`
	Type      VehicleType `gorm:"type:varchar(20);not null" json:"type" yaml:"type"`
	CreatedAt time.Time   `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt" yaml:"-"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
