package core

import (
	"log"
	"time"

	"fieldforce.com/fieldforce/utils"
)

const (
	DefaultGeofenceTolerance = 20.0
	DefaultMaxFixAge         = 30 * time.Second
	DefaultSampleInterval    = 15 * time.Second
	DefaultPositionTimeout   = 20 * time.Second
	DefaultRefreshInterval   = 10 * time.Second
	DefaultStaleAfter        = 10 * time.Minute
	DefaultLiveWindow        = 12 * time.Hour
)

type Options struct {
	// GeofenceTolerance is added to a branch radius before a position counts as outside.
	GeofenceTolerance float64
	MaxFixAge         time.Duration
	SampleInterval    time.Duration
	PositionTimeout   time.Duration
	HighAccuracy      bool
	RefreshInterval   time.Duration
	StaleAfter        time.Duration
	LiveWindow        time.Duration
	Location          *time.Location
}

func DefaultOptions() Options {
	return Options{
		GeofenceTolerance: DefaultGeofenceTolerance,
		MaxFixAge:         DefaultMaxFixAge,
		SampleInterval:    DefaultSampleInterval,
		PositionTimeout:   DefaultPositionTimeout,
		HighAccuracy:      true,
		RefreshInterval:   DefaultRefreshInterval,
		StaleAfter:        DefaultStaleAfter,
		LiveWindow:        DefaultLiveWindow,
		Location:          utils.DhakaTZ,
	}
}

func (o Options) positionOptions() PositionOptions {
	return PositionOptions{
		HighAccuracy: o.HighAccuracy,
		Timeout:      o.PositionTimeout,
		MaxAge:       o.MaxFixAge,
	}
}

type Logger interface {
	Printf(format string, v ...any)
}

func defaultLogger(l Logger) Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
