package v1

import (
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
)

type Fix struct {
	Lat        float64           `json:"lat"`
	Lng        float64           `json:"lng"`
	Accuracy   *float64          `json:"accuracy,omitempty"`
	Altitude   *float64          `json:"altitude,omitempty"`
	CapturedAt *time.Time        `json:"capturedAt,omitempty"`
	Device     map[string]string `json:"device,omitempty"`
}

type positionBody struct {
	Fix *Fix `json:"fix,omitempty"`
}

type Tracking struct {
	Tracking bool                    `json:"tracking"`
	Stats    *core.TrackerStats      `json:"stats,omitempty"`
	Record   *model.AttendanceRecord `json:"record,omitempty"`
}

type Live struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Online      int              `json:"online"`
	Entries     []core.LiveEntry `json:"entries"`
}

type Me struct {
	Profile  model.Profile `json:"profile"`
	Branch   *model.Branch `json:"branch"`
	Geofence *struct {
		Radius float64 `json:"radius"`
	} `json:"geofence"`
}
