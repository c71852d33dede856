package v1

import (
	"context"
	"net/http"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
)

type FieldforceClient struct {
	Transport  *Transport
	Attendance *AttendanceEndpoint
	Positions  *PositionEndpoint
	Tracking   *TrackingEndpoint
	Live       *LiveEndpoint
	Expenses   *ExpenseEndpoint
}

// NewFieldforceClient initializes the API client
func NewFieldforceClient(baseURL string, token string) *FieldforceClient {
	t := NewTransport(baseURL, token)
	return &FieldforceClient{
		Transport:  t,
		Attendance: &AttendanceEndpoint{transport: t},
		Positions:  &PositionEndpoint{transport: t},
		Tracking:   &TrackingEndpoint{transport: t},
		Live:       &LiveEndpoint{transport: t},
		Expenses:   &ExpenseEndpoint{transport: t},
	}
}

func (c *FieldforceClient) Me(ctx context.Context) (*Me, error) {
	return call[*Me](ctx, c.Transport, http.MethodGet, "/api/me", nil, nil)
}

func (c *FieldforceClient) Logout(ctx context.Context) error {
	_, err := c.Transport.Do(ctx, http.MethodPost, "/api/logout", nil, nil)
	return err
}

type AttendanceEndpoint struct {
	transport *Transport
}

func (e *AttendanceEndpoint) Today(ctx context.Context) (*model.AttendanceRecord, error) {
	return call[*model.AttendanceRecord](ctx, e.transport, http.MethodGet, "/api/attendance/today", nil, nil)
}

// CheckIn sends fix, or lets the server use the last reported position when fix is nil.
func (e *AttendanceEndpoint) CheckIn(ctx context.Context, fix *Fix) (*model.AttendanceRecord, error) {
	return call[*model.AttendanceRecord](ctx, e.transport, http.MethodPost, "/api/attendance/check-in", positionBody{Fix: fix}, nil)
}

func (e *AttendanceEndpoint) CheckOut(ctx context.Context, fix *Fix) (*model.AttendanceRecord, error) {
	return call[*model.AttendanceRecord](ctx, e.transport, http.MethodPost, "/api/attendance/check-out", positionBody{Fix: fix}, nil)
}

type PositionEndpoint struct {
	transport *Transport
}

func (e *PositionEndpoint) Report(ctx context.Context, fix Fix) error {
	_, err := e.transport.Do(ctx, http.MethodPost, "/api/positions", fix, nil)
	return err
}

func (e *PositionEndpoint) ReportError(ctx context.Context, kind core.LocationErrorKind) error {
	_, err := e.transport.Do(ctx, http.MethodPost, "/api/positions/error", map[string]core.LocationErrorKind{"kind": kind}, nil)
	return err
}

type TrackingEndpoint struct {
	transport *Transport
}

func (e *TrackingEndpoint) Status(ctx context.Context) (*Tracking, error) {
	return call[*Tracking](ctx, e.transport, http.MethodGet, "/api/tracking", nil, nil)
}

func (e *TrackingEndpoint) Start(ctx context.Context, fix *Fix) (*Tracking, error) {
	return call[*Tracking](ctx, e.transport, http.MethodPost, "/api/tracking/start", positionBody{Fix: fix}, nil)
}

func (e *TrackingEndpoint) Stop(ctx context.Context, fix *Fix) (*Tracking, error) {
	return call[*Tracking](ctx, e.transport, http.MethodPost, "/api/tracking/stop", positionBody{Fix: fix}, nil)
}

type LiveEndpoint struct {
	transport *Transport
}

func (e *LiveEndpoint) Snapshot(ctx context.Context) (*Live, error) {
	return call[*Live](ctx, e.transport, http.MethodGet, "/api/live", nil, nil)
}

func (e *LiveEndpoint) Dashboard(ctx context.Context) (*core.Dashboard, error) {
	return call[*core.Dashboard](ctx, e.transport, http.MethodGet, "/api/dashboard", nil, nil)
}

type ExpenseEndpoint struct {
	transport *Transport
}

// List returns the expenses of month (yyyy-MM); empty means the current month.
func (e *ExpenseEndpoint) List(ctx context.Context, month string) ([]model.Expense, error) {
	var query map[string]string
	if month != "" {
		query = map[string]string{"month": month}
	}
	return call[[]model.Expense](ctx, e.transport, http.MethodGet, "/api/expenses", nil, query)
}

func (e *ExpenseEndpoint) Create(ctx context.Context, in core.ExpenseInput) (*model.Expense, error) {
	return call[*model.Expense](ctx, e.transport, http.MethodPost, "/api/expenses", in, nil)
}
