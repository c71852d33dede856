package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/utils"
	"golang.org/x/sync/errgroup"
)

type StaffStatus struct {
	UserID     string                 `json:"userId"`
	Name       string                 `json:"name"`
	Role       model.Role             `json:"role"`
	BranchID   string                 `json:"branchId"`
	BranchName string                 `json:"branchName"`
	Status     model.AttendanceStatus `json:"status"`
	CheckIn    *time.Time             `json:"checkIn"`
	CheckOut   *time.Time             `json:"checkOut"`
	Online     bool                   `json:"online"`
	LastSeen   *time.Time             `json:"lastSeen"`
}

type Dashboard struct {
	Date           string        `json:"date"`
	TotalStaff     int           `json:"totalStaff"`
	CheckedIn      int           `json:"checkedIn"`
	OnField        int           `json:"onField"`
	Online         int           `json:"online"`
	AttendanceRate float64       `json:"attendanceRate"`
	Staff          []StaffStatus `json:"staff"`
	Insight        Insight       `json:"insight"`
}

// BuildStaffStatus joins roster, today's records and the live view. Users
// without a record are absent.
func BuildStaffStatus(roster []model.Profile, branches []model.Branch, records []model.AttendanceRecord, live map[string]LiveEntry) []StaffStatus {
	byUser := utils.IndexBy(records, func(r model.AttendanceRecord) string { return r.UserID })
	branchNames := make(map[string]string, len(branches))
	for _, b := range branches {
		branchNames[b.ID] = b.Name
	}

	out := make([]StaffStatus, 0, len(roster))
	for _, p := range roster {
		st := StaffStatus{
			UserID:     p.ID,
			Name:       p.Name,
			Role:       p.Role,
			BranchID:   p.Branch(),
			BranchName: branchNames[p.Branch()],
			Status:     model.StatusAbsent,
		}
		if rec, ok := byUser[p.ID]; ok {
			st.Status = rec.Status
			st.CheckIn = rec.CheckIn
			st.CheckOut = rec.CheckOut
		}
		if e, ok := live[p.ID]; ok {
			st.Online = e.Online
			seen := e.CapturedAt
			st.LastSeen = &seen
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) DigestRows(staff []StaffStatus) []DigestRow {
	return utils.Map(staff, func(st StaffStatus) DigestRow {
		row := DigestRow{Name: st.Name, Role: string(st.Role), Branch: st.BranchName, Status: string(st.Status)}
		if st.CheckIn != nil {
			row.CheckIn = utils.FormatClock(st.CheckIn, s.opts.Location)
		}
		if st.CheckOut != nil {
			row.CheckOut = utils.FormatClock(st.CheckOut, s.opts.Location)
		}
		return row
	})
}

func (s *Service) staffFor(ctx context.Context, viewer Viewer, date string) ([]StaffStatus, error) {
	now := s.now()
	in, err := s.loadLiveInputs(ctx, now.Add(-s.opts.LiveWindow))
	if err != nil {
		return nil, err
	}
	records, err := s.stores.Attendance.ListBetween(ctx, date, date)
	if err != nil {
		return nil, &PersistenceError{Op: "list attendance", Err: err}
	}
	live := Aggregate(in.samples, in.roster, in.branches, viewer, now, s.opts.StaleAfter)
	return BuildStaffStatus(VisibleProfiles(viewer, in.roster), in.branches, records, live), nil
}

// Dashboard summarises today for the staff visible to viewer.
func (s *Service) Dashboard(ctx context.Context, viewer Viewer) (*Dashboard, error) {
	date := s.Today()
	staff, err := s.staffFor(ctx, viewer, date)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Date: date, TotalStaff: len(staff), Staff: staff}
	for _, st := range staff {
		if st.Status != model.StatusAbsent {
			d.CheckedIn++
		}
		if st.Status == model.StatusOnField {
			d.OnField++
		}
		if st.Online {
			d.Online++
		}
	}
	if d.TotalStaff > 0 {
		d.AttendanceRate = math.Round(float64(d.CheckedIn) / float64(d.TotalStaff) * 100)
	}
	d.Insight = s.assistant.SummarizeAttendance(ctx, s.DigestRows(staff))
	return d, nil
}

type BranchDigest struct {
	BranchID string `json:"branchId"`
	Name     string `json:"name"`
	Staff    int    `json:"staff"`
	Present  int    `json:"present"`
	OnField  int    `json:"onField"`
	Absent   int    `json:"absent"`
}

type DailyDigest struct {
	Date     string         `json:"date"`
	Branches []BranchDigest `json:"branches"`
	Insight  Insight        `json:"insight"`
}

// DailyDigest counts attendance per branch for date across all staff.
func (s *Service) DailyDigest(ctx context.Context, date string) (*DailyDigest, error) {
	var (
		roster   []model.Profile
		branches []model.Branch
		records  []model.AttendanceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roster, err = s.stores.Profiles.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		branches, err = s.stores.Branches.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		records, err = s.stores.Attendance.ListBetween(gctx, date, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &PersistenceError{Op: "load digest", Err: err}
	}

	staff := BuildStaffStatus(roster, branches, records, nil)
	counts := make(map[string]*BranchDigest)
	for _, b := range branches {
		counts[b.ID] = &BranchDigest{BranchID: b.ID, Name: b.Name}
	}
	for _, st := range staff {
		bd, ok := counts[st.BranchID]
		if !ok {
			continue
		}
		bd.Staff++
		switch st.Status {
		case model.StatusPresent:
			bd.Present++
		case model.StatusOnField:
			bd.OnField++
		default:
			bd.Absent++
		}
	}

	digest := &DailyDigest{Date: date}
	for _, bd := range counts {
		digest.Branches = append(digest.Branches, *bd)
	}
	sort.Slice(digest.Branches, func(i, j int) bool { return digest.Branches[i].Name < digest.Branches[j].Name })
	digest.Insight = s.assistant.SummarizeAttendance(ctx, s.DigestRows(staff))
	return digest, nil
}

// Text renders the digest as a chat message.
func (d *DailyDigest) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attendance for %s\n", d.Date)
	for _, br := range d.Branches {
		fmt.Fprintf(&b, "• %s: %d/%d in (%d present, %d on field), %d absent\n",
			br.Name, br.Present+br.OnField, br.Staff, br.Present, br.OnField, br.Absent)
	}
	fmt.Fprintf(&b, "%s (punctuality %.0f/10)", d.Insight.Summary, d.Insight.PunctualityRating)
	return b.String()
}
