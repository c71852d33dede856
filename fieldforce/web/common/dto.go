package common

import (
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/geo"
)

// FixDTO is a device position as posted by clients.
type FixDTO struct {
	Lat        *float64          `json:"lat" binding:"required,latitude"`
	Lng        *float64          `json:"lng" binding:"required,longitude"`
	Accuracy   *float64          `json:"accuracy" binding:"omitempty,gte=0"`
	Altitude   *float64          `json:"altitude"`
	CapturedAt *time.Time        `json:"capturedAt"`
	Device     map[string]string `json:"device"`
}

func (d *FixDTO) Fix(now time.Time) core.Fix {
	fix := core.Fix{
		Coordinate: geo.Coordinate{Lat: *d.Lat, Lng: *d.Lng},
		Accuracy:   d.Accuracy,
		Altitude:   d.Altitude,
		CapturedAt: now,
		Device:     d.Device,
	}
	if d.CapturedAt != nil && !d.CapturedAt.IsZero() {
		fix.CapturedAt = *d.CapturedAt
	}
	return fix.ClampTo(now)
}

// PositionBody is the optional body of the attendance and tracking actions.
// Without a fix the server asks the position provider.
type PositionBody struct {
	Fix *FixDTO `json:"fix"`
}
