package core

import (
	"context"
	"encoding/json"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/geo"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
)

// Fix is a single position reading from a device.
type Fix struct {
	Coordinate geo.Coordinate    `json:"coordinate"`
	Accuracy   *float64          `json:"accuracy,omitempty"`
	Altitude   *float64          `json:"altitude,omitempty"`
	CapturedAt time.Time         `json:"capturedAt"`
	Device     map[string]string `json:"device,omitempty"`
}

func (f Fix) Age(now time.Time) time.Duration {
	return now.Sub(f.CapturedAt)
}

// MaxClockSkew is how far a device clock may run ahead of the server.
const MaxClockSkew = 30 * time.Second

// ClampTo pulls a capture time that lies more than MaxClockSkew after now
// back to now.
func (f Fix) ClampTo(now time.Time) Fix {
	if f.CapturedAt.After(now.Add(MaxClockSkew)) {
		f.CapturedAt = now
	}
	return f
}

// Fresh reports whether f was captured within maxAge of now. A fix from
// further in the future than MaxClockSkew is never fresh.
func (f Fix) Fresh(now time.Time, maxAge time.Duration) bool {
	age := f.Age(now)
	if age < -MaxClockSkew {
		return false
	}
	return maxAge <= 0 || age <= maxAge
}

// HighAccuracyLimit is the worst accuracy, in meters, accepted when high accuracy is requested.
const HighAccuracyLimit = 100.0

type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

func (o PositionOptions) accepts(f Fix, now time.Time) bool {
	if !f.Coordinate.Valid() {
		return false
	}
	if !f.Fresh(now, o.MaxAge) {
		return false
	}
	if o.HighAccuracy && f.Accuracy != nil && *f.Accuracy > HighAccuracyLimit {
		return false
	}
	return true
}

type PositionProvider interface {
	CurrentPosition(ctx context.Context, userID string, opts PositionOptions) (Fix, error)
}

type WatchHandle int

type PositionWatcher interface {
	Watch(userID string, onFix func(Fix), onErr func(error)) WatchHandle
	ClearWatch(h WatchHandle)
}

func newMovementLog(userID string, fix Fix, at time.Time) *model.MovementLog {
	entry := &model.MovementLog{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Lat:       fix.Coordinate.Lat,
		Lng:       fix.Coordinate.Lng,
		Accuracy:  fix.Accuracy,
		Altitude:  fix.Altitude,
		Timestamp: at,
	}
	if len(fix.Device) > 0 {
		if b, err := json.Marshal(fix.Device); err == nil {
			entry.Device = datatypes.JSON(b)
		}
	}
	return entry
}
