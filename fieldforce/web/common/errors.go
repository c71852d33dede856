package common

import (
	"errors"
	"fmt"
	"net/http"

	"fieldforce.com/fieldforce/fieldforce/core"
	web "fieldforce.com/fieldforce/web/common"
	"github.com/gin-gonic/gin"
)

// StatusFor maps a service error onto an HTTP status and response body.
func StatusFor(err error) (int, *web.ErrorResponse) {
	var (
		violation  *core.GeofenceViolation
		locErr     *core.LocationError
		validation *core.ValidationError
		persist    *core.PersistenceError
	)
	switch {
	case errors.As(err, &violation):
		overage := violation.Overage()
		return http.StatusUnprocessableEntity, &web.ErrorResponse{Message: violation.Error(), Kind: "geofence_violation", Overage: &overage}
	case errors.As(err, &locErr):
		return http.StatusServiceUnavailable, &web.ErrorResponse{Message: locErr.Error(), Kind: string(locErr.Kind)}
	case errors.Is(err, core.ErrLocationUnavailable):
		return http.StatusServiceUnavailable, &web.ErrorResponse{Message: err.Error(), Kind: "location_unavailable"}
	case errors.Is(err, core.ErrDuplicateCheckIn):
		return http.StatusConflict, &web.ErrorResponse{Message: err.Error(), Kind: "duplicate_check_in"}
	case errors.Is(err, core.ErrAlreadyCheckedOut):
		return http.StatusConflict, &web.ErrorResponse{Message: err.Error(), Kind: "already_checked_out"}
	case errors.Is(err, core.ErrNotCheckedIn):
		return http.StatusConflict, &web.ErrorResponse{Message: err.Error(), Kind: "not_checked_in"}
	case errors.Is(err, core.ErrNoGeofence):
		return http.StatusPreconditionFailed, &web.ErrorResponse{Message: err.Error(), Kind: "no_geofence"}
	case errors.Is(err, core.ErrUnknownUser):
		return http.StatusNotFound, &web.ErrorResponse{Message: err.Error(), Kind: "unknown_user"}
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, &web.ErrorResponse{Message: err.Error(), Kind: "forbidden"}
	case errors.Is(err, core.ErrSessionClosed):
		return http.StatusGone, &web.ErrorResponse{Message: err.Error(), Kind: "session_closed"}
	case errors.As(err, &validation):
		return http.StatusBadRequest, &web.ErrorResponse{Message: validation.Error(), Kind: "validation"}
	case errors.As(err, &persist):
		fmt.Printf("[ERROR] %v\n", persist)
		return http.StatusInternalServerError, &web.ErrorResponse{Message: "failed to " + persist.Op, Kind: "persistence"}
	}
	fmt.Printf("[ERROR] %v\n", err)
	return http.StatusInternalServerError, web.NewErrorResponse(err.Error())
}

func RespondError(c *gin.Context, err error) {
	status, body := StatusFor(err)
	c.AbortWithStatusJSON(status, body)
}
