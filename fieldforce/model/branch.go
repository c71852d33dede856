package model

import (
	"time"

	"fieldforce.com/fieldforce/geo"
)

type Branch struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id" yaml:"id"`
	Name         string    `gorm:"type:varchar(120);not null" json:"name" yaml:"name"`
	Lat          float64   `gorm:"not null" json:"lat" yaml:"lat"`
	Lng          float64   `gorm:"not null" json:"lng" yaml:"lng"`
	Radius       float64   `gorm:"not null" json:"radius" yaml:"radius"`
	TargetAmount float64   `gorm:"not null;default:0" json:"targetAmount" yaml:"targetAmount"`
	CreatedAt    time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"updatedAt" yaml:"-"`
}

func (Branch) TableName() string {
	return "branches"
}

// Fence returns the branch geofence. ok is false when the branch has no usable fence.
func (b *Branch) Fence() (geo.GeoFence, bool) {
	f := geo.GeoFence{Center: geo.Coordinate{Lat: b.Lat, Lng: b.Lng}, Radius: b.Radius}
	// 0,0 is what an unconfigured row looks like
	if b.Lat == 0 && b.Lng == 0 {
		return f, false
	}
	return f, f.Valid()
}
