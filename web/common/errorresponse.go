package common

type ErrorResponse struct {
	Message string `json:"message"`
	// Kind names the failure for clients that branch on it.
	Kind string `json:"kind,omitempty"`
	// Overage is set for geofence violations, in meters.
	Overage *float64 `json:"overage,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}
