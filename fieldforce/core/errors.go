package core

import (
	"errors"
	"fmt"
)

var (
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrDuplicateCheckIn    = errors.New("already checked in today")
	ErrAlreadyCheckedOut   = errors.New("already checked out today")
	ErrNotCheckedIn        = errors.New("not checked in today")
	ErrNoGeofence          = errors.New("no geofence assigned")
	ErrUnknownUser         = errors.New("unknown user")
	ErrForbidden           = errors.New("not allowed for this role")
	ErrSessionClosed       = errors.New("session closed")
)

type LocationErrorKind string

const (
	PermissionDenied LocationErrorKind = "permission_denied"
	Unavailable      LocationErrorKind = "unavailable"
	Timeout          LocationErrorKind = "timeout"
)

// LocationError matches ErrLocationUnavailable with errors.Is.
type LocationError struct {
	Kind LocationErrorKind
	Err  error
}

func (e *LocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location unavailable (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("location unavailable (%s)", e.Kind)
}

func (e *LocationError) Is(target error) bool {
	return target == ErrLocationUnavailable
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// GeofenceViolation is a business rejection; nothing was persisted.
type GeofenceViolation struct {
	Branch   string
	Distance float64
	Radius   float64
}

// Overage is the signed distance beyond the nominal radius in meters.
func (e *GeofenceViolation) Overage() float64 {
	return e.Distance - e.Radius
}

func (e *GeofenceViolation) Error() string {
	return fmt.Sprintf("you are %.0f m outside the geo-fence", e.Overage())
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
