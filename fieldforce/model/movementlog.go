package model

import (
	"time"

	"fieldforce.com/fieldforce/geo"
	"gorm.io/datatypes"
)

// MovementLog is an append-only position sample.
type MovementLog struct {
	ID        string         `gorm:"type:varchar(26);primaryKey" json:"id"`
	UserID    string         `gorm:"type:varchar(36);not null;index:idx_movement_user_time,priority:1" json:"userId"`
	Lat       float64        `gorm:"not null" json:"lat"`
	Lng       float64        `gorm:"not null" json:"lng"`
	Accuracy  *float64       `json:"accuracy,omitempty"`
	Altitude  *float64       `json:"altitude,omitempty"`
	Device    datatypes.JSON `json:"device,omitempty"`
	Timestamp time.Time      `gorm:"not null;index;index:idx_movement_user_time,priority:2" json:"timestamp"`
}

func (MovementLog) TableName() string {
	return "movement_logs"
}

func (m *MovementLog) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: m.Lat, Lng: m.Lng}
}
