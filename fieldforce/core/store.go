package core

import (
	"context"
	"io"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
)

// Find methods return nil, nil when nothing matches.

type AttendanceStore interface {
	FindByUserDate(ctx context.Context, userID, date string) (*model.AttendanceRecord, error)
	Insert(ctx context.Context, rec *model.AttendanceRecord) error
	// CompleteCheckOut only touches a record whose check-out is still empty.
	CompleteCheckOut(ctx context.Context, id string, at time.Time, status model.AttendanceStatus) (bool, error)
	UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus) (bool, error)
	// ListBetween returns records with from <= date <= to.
	ListBetween(ctx context.Context, from, to string) ([]model.AttendanceRecord, error)
}

type LocationStore interface {
	Append(ctx context.Context, entry *model.MovementLog) error
	// ListSince returns samples newest first.
	ListSince(ctx context.Context, since time.Time) ([]model.MovementLog, error)
}

type ProfileStore interface {
	Find(ctx context.Context, id string) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	// Delete removes movement logs, attendance and the profile together.
	Delete(ctx context.Context, id string) (bool, error)
}

type BranchStore interface {
	Find(ctx context.Context, id string) (*model.Branch, error)
	List(ctx context.Context) ([]model.Branch, error)
}

type VehicleStore interface {
	List(ctx context.Context) ([]model.Vehicle, error)
}

type ExpenseStore interface {
	Insert(ctx context.Context, e *model.Expense) error
	// List filters by month (yyyy-MM) and, when userID is set, by owner. Newest date first.
	List(ctx context.Context, month string, userID string) ([]model.Expense, error)
}

type BlobStore interface {
	Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error)
}

type Stores struct {
	Attendance AttendanceStore
	Locations  LocationStore
	Profiles   ProfileStore
	Branches   BranchStore
	Vehicles   VehicleStore
	Expenses   ExpenseStore
}
