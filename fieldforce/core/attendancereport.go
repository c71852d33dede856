package core

import (
	"context"
	"sort"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/utils"
)

type AttendanceReportRow struct {
	Date      string                 `json:"date"`
	StaffName string                 `json:"staffName"`
	Role      model.Role             `json:"role"`
	Branch    string                 `json:"branch"`
	Status    model.AttendanceStatus `json:"status"`
	CheckIn   *time.Time             `json:"checkIn"`
	CheckOut  *time.Time             `json:"checkOut"`
}

// BuildAttendanceReport lists the records of staff visible to viewer, by date then name.
func BuildAttendanceReport(viewer Viewer, records []model.AttendanceRecord, roster []model.Profile, branches []model.Branch) []AttendanceReportRow {
	users := utils.IndexBy(roster, func(p model.Profile) string { return p.ID })
	branchNames := make(map[string]string, len(branches))
	for _, b := range branches {
		branchNames[b.ID] = b.Name
	}

	rows := make([]AttendanceReportRow, 0, len(records))
	for _, r := range records {
		user, ok := users[r.UserID]
		if !ok || !CanView(viewer, &user) {
			continue
		}
		rows = append(rows, AttendanceReportRow{
			Date:      r.Date,
			StaffName: user.Name,
			Role:      user.Role,
			Branch:    branchNames[user.Branch()],
			Status:    r.Status,
			CheckIn:   r.CheckIn,
			CheckOut:  r.CheckOut,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].StaffName < rows[j].StaffName
	})
	return rows
}

func (s *Service) AttendanceReport(ctx context.Context, viewer Viewer, month string) ([]AttendanceReportRow, error) {
	start, err := utils.ParseMonth(month)
	if err != nil {
		return nil, &ValidationError{Field: "month", Message: err.Error()}
	}
	from := start.Format(utils.DateLayout)
	to := start.AddDate(0, 1, -1).Format(utils.DateLayout)

	records, err := s.stores.Attendance.ListBetween(ctx, from, to)
	if err != nil {
		return nil, &PersistenceError{Op: "list attendance", Err: err}
	}
	roster, err := s.stores.Profiles.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list profiles", Err: err}
	}
	branches, err := s.stores.Branches.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list branches", Err: err}
	}
	return BuildAttendanceReport(viewer, records, roster, branches), nil
}

// RemoveUser deletes a staff member with their movement logs and attendance.
func (s *Service) RemoveUser(ctx context.Context, viewer Viewer, userID string) error {
	if !viewer.Role.IsAdmin() || viewer.ID == userID {
		return ErrForbidden
	}
	user, err := s.stores.Profiles.Find(ctx, userID)
	if err != nil {
		return &PersistenceError{Op: "find profile", Err: err}
	}
	if user == nil {
		return ErrUnknownUser
	}
	if !CanView(viewer, user) {
		return ErrForbidden
	}
	if _, err := s.stores.Profiles.Delete(ctx, userID); err != nil {
		return &PersistenceError{Op: "delete profile", Err: err}
	}
	s.logger.Printf("[INFO] %s removed user %s\n", viewer.ID, userID)
	return nil
}
