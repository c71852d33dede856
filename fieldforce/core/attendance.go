package core

import (
	"context"
	"errors"
	"time"

	dbcore "fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/geo"
	"fieldforce.com/fieldforce/utils"
	"github.com/google/uuid"
)

// ClassifyStatus maps a fence evaluation onto an attendance status.
func ClassifyStatus(eval geo.Evaluation) model.AttendanceStatus {
	if eval.Inside {
		return model.StatusPresent
	}
	return model.StatusOnField
}

func checkedInError(existing *model.AttendanceRecord) error {
	if existing.CheckedOut() {
		return ErrAlreadyCheckedOut
	}
	return ErrDuplicateCheckIn
}

// freshFix rejects missing, invalid or stale fixes.
func (s *Service) freshFix(fix *Fix, now time.Time) error {
	if fix == nil {
		return &LocationError{Kind: Unavailable, Err: errors.New("no position")}
	}
	if !fix.Coordinate.Valid() {
		return &LocationError{Kind: Unavailable, Err: errors.New("invalid coordinate")}
	}
	if !fix.Fresh(now, s.opts.MaxFixAge) {
		return &LocationError{Kind: Unavailable, Err: errors.New("position is stale")}
	}
	return nil
}

// CheckIn opens today's record for user when fix lies inside fence.
func (s *Service) CheckIn(ctx context.Context, user *model.Profile, fix *Fix, fence *geo.GeoFence) (*model.AttendanceRecord, error) {
	if fence == nil || !fence.Valid() {
		return nil, ErrNoGeofence
	}

	now := s.now()
	date := utils.LocalDate(now, s.opts.Location)

	existing, err := s.stores.Attendance.FindByUserDate(ctx, user.ID, date)
	if err != nil {
		return nil, &PersistenceError{Op: "find attendance", Err: err}
	}
	if existing != nil {
		return nil, checkedInError(existing)
	}

	if err := s.freshFix(fix, now); err != nil {
		return nil, err
	}

	eval := fence.Evaluate(fix.Coordinate, s.opts.GeofenceTolerance)
	if !eval.Inside {
		return nil, &GeofenceViolation{Branch: user.Branch(), Distance: eval.Distance, Radius: eval.Radius}
	}

	rec := &model.AttendanceRecord{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		Date:    date,
		CheckIn: &now,
		Status:  model.StatusPresent,
	}
	if err := s.stores.Attendance.Insert(ctx, rec); err != nil {
		if dbcore.IsUniqueViolation(err) {
			return nil, ErrDuplicateCheckIn
		}
		return nil, &PersistenceError{Op: "insert attendance", Err: err}
	}

	s.logger.Printf("[INFO] %s checked in at %s (%.0f m from center)\n", user.ID, date, eval.Distance)
	return rec, nil
}

// CheckOut closes rec. A fresh fix re-evaluates the status against fence;
// without one the status from check-in is kept.
func (s *Service) CheckOut(ctx context.Context, rec *model.AttendanceRecord, fix *Fix, fence *geo.GeoFence) (*model.AttendanceRecord, error) {
	if rec == nil {
		return nil, ErrNotCheckedIn
	}
	if rec.CheckedOut() {
		return nil, ErrAlreadyCheckedOut
	}

	now := s.now()
	status := rec.Status
	if fence != nil && fence.Valid() && s.freshFix(fix, now) == nil {
		status = ClassifyStatus(fence.Evaluate(fix.Coordinate, s.opts.GeofenceTolerance))
	}

	ok, err := s.stores.Attendance.CompleteCheckOut(ctx, rec.ID, now, status)
	if err != nil {
		return nil, &PersistenceError{Op: "update attendance", Err: err}
	}
	if !ok {
		return nil, ErrAlreadyCheckedOut
	}

	updated := *rec
	updated.CheckOut = &now
	updated.Status = status
	s.logger.Printf("[INFO] %s checked out of %s as %s\n", rec.UserID, rec.Date, status)
	return &updated, nil
}

// Reevaluate moves today's open record between present and on-field.
// It is a no-op without an open record, a fence or a fresh fix.
func (s *Service) Reevaluate(ctx context.Context, userID string, fix *Fix, fence *geo.GeoFence) (*model.AttendanceRecord, error) {
	now := s.now()
	rec, err := s.stores.Attendance.FindByUserDate(ctx, userID, utils.LocalDate(now, s.opts.Location))
	if err != nil {
		return nil, &PersistenceError{Op: "find attendance", Err: err}
	}
	if rec == nil || rec.CheckedOut() {
		return rec, nil
	}
	if fence == nil || !fence.Valid() || s.freshFix(fix, now) != nil {
		return rec, nil
	}

	status := ClassifyStatus(fence.Evaluate(fix.Coordinate, s.opts.GeofenceTolerance))
	if status == rec.Status {
		return rec, nil
	}

	ok, err := s.stores.Attendance.UpdateStatus(ctx, rec.ID, status)
	if err != nil {
		return nil, &PersistenceError{Op: "update attendance", Err: err}
	}
	if !ok {
		// checked out concurrently
		return rec, nil
	}
	s.logger.Printf("[INFO] %s status %s -> %s\n", userID, rec.Status, status)
	rec.Status = status
	return rec, nil
}

// AttendanceContext is what the user-level operations need about a user.
type AttendanceContext struct {
	User   *model.Profile
	Branch *model.Branch
	Fence  *geo.GeoFence
}

// LoadContext resolves the profile and fence of userID. Fence is nil when the
// user has no usable branch.
func (s *Service) LoadContext(ctx context.Context, userID string) (*AttendanceContext, error) {
	user, err := s.stores.Profiles.Find(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "find profile", Err: err}
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	ac := &AttendanceContext{User: user}
	if user.BranchID == nil {
		return ac, nil
	}
	branch, err := s.stores.Branches.Find(ctx, *user.BranchID)
	if err != nil {
		return nil, &PersistenceError{Op: "find branch", Err: err}
	}
	if branch == nil {
		return ac, nil
	}
	ac.Branch = branch
	if fence, ok := branch.Fence(); ok {
		ac.Fence = &fence
	}
	return ac, nil
}

// CurrentFix asks the position provider for a fix. A nil provider reports Unavailable.
func (s *Service) CurrentFix(ctx context.Context, userID string) (*Fix, error) {
	if s.positions == nil {
		return nil, &LocationError{Kind: Unavailable, Err: errors.New("no position provider")}
	}
	fix, err := s.positions.CurrentPosition(ctx, userID, s.opts.positionOptions())
	if err != nil {
		return nil, err
	}
	return &fix, nil
}

// resolveFix prefers a supplied fix and falls back to the provider.
func (s *Service) resolveFix(ctx context.Context, userID string, fix *Fix) (*Fix, error) {
	if fix != nil {
		return fix, nil
	}
	return s.CurrentFix(ctx, userID)
}

func (s *Service) CheckInUser(ctx context.Context, userID string, fix *Fix) (*model.AttendanceRecord, error) {
	ac, err := s.LoadContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ac.Fence == nil {
		return nil, ErrNoGeofence
	}
	existing, err := s.TodayRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, checkedInError(existing)
	}
	fix, err = s.resolveFix(ctx, userID, fix)
	if err != nil {
		return nil, err
	}
	return s.CheckIn(ctx, ac.User, fix, ac.Fence)
}

// CheckOutUser closes today's record. A missing position only skips re-evaluation.
func (s *Service) CheckOutUser(ctx context.Context, userID string, fix *Fix) (*model.AttendanceRecord, error) {
	rec, err := s.TodayRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotCheckedIn
	}
	if rec.CheckedOut() {
		return nil, ErrAlreadyCheckedOut
	}
	ac, err := s.LoadContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	fix, err = s.resolveFix(ctx, userID, fix)
	if err != nil {
		s.logger.Printf("[WARN] checkout of %s without position: %v\n", userID, err)
		fix = nil
	}
	return s.CheckOut(ctx, rec, fix, ac.Fence)
}

// ReevaluateUser re-tests today's open record against the current position.
func (s *Service) ReevaluateUser(ctx context.Context, userID string, fix *Fix) (*model.AttendanceRecord, error) {
	ac, err := s.LoadContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	fix, err = s.resolveFix(ctx, userID, fix)
	if err != nil {
		s.logger.Printf("[WARN] status of %s not re-evaluated: %v\n", userID, err)
		return s.TodayRecord(ctx, userID)
	}
	return s.Reevaluate(ctx, userID, fix, ac.Fence)
}

func (s *Service) TodayRecord(ctx context.Context, userID string) (*model.AttendanceRecord, error) {
	rec, err := s.stores.Attendance.FindByUserDate(ctx, userID, s.Today())
	if err != nil {
		return nil, &PersistenceError{Op: "find attendance", Err: err}
	}
	return rec, nil
}
