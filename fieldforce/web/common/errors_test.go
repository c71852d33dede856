package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"fieldforce.com/fieldforce/fieldforce/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"geofence violation", &core.GeofenceViolation{Branch: "Downtown", Distance: 300, Radius: 250}, http.StatusUnprocessableEntity, "geofence_violation"},
		{"location timeout", &core.LocationError{Kind: core.Timeout}, http.StatusServiceUnavailable, "timeout"},
		{"wrapped permission denied", fmt.Errorf("check in: %w", &core.LocationError{Kind: core.PermissionDenied}), http.StatusServiceUnavailable, "permission_denied"},
		{"duplicate check-in", core.ErrDuplicateCheckIn, http.StatusConflict, "duplicate_check_in"},
		{"already checked out", core.ErrAlreadyCheckedOut, http.StatusConflict, "already_checked_out"},
		{"not checked in", core.ErrNotCheckedIn, http.StatusConflict, "not_checked_in"},
		{"no geofence", core.ErrNoGeofence, http.StatusPreconditionFailed, "no_geofence"},
		{"unknown user", core.ErrUnknownUser, http.StatusNotFound, "unknown_user"},
		{"forbidden", core.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"validation", &core.ValidationError{Field: "amount", Message: "must be positive"}, http.StatusBadRequest, "validation"},
		{"persistence", &core.PersistenceError{Op: "insert attendance", Err: errors.New("db down")}, http.StatusInternalServerError, "persistence"},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := StatusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Message)
		})
	}

	t.Run("violation carries the overage", func(t *testing.T) {
		_, body := StatusFor(&core.GeofenceViolation{Distance: 300, Radius: 250})
		require.NotNil(t, body.Overage)
		assert.InDelta(t, 50, *body.Overage, 1e-9)
		assert.Equal(t, "you are 50 m outside the geo-fence", body.Message)
	})

	t.Run("persistence hides the cause", func(t *testing.T) {
		_, body := StatusFor(&core.PersistenceError{Op: "insert attendance", Err: errors.New("password=secret")})
		assert.Equal(t, "failed to insert attendance", body.Message)
	})
}
