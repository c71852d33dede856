package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/geo"
	"fieldforce.com/fieldforce/utils"
	"golang.org/x/sync/errgroup"
)

type LiveEntry struct {
	UserID     string         `json:"userId"`
	Name       string         `json:"name"`
	Role       model.Role     `json:"role"`
	BranchID   string         `json:"branchId"`
	BranchName string         `json:"branchName"`
	Coordinate geo.Coordinate `json:"coordinate"`
	CapturedAt time.Time      `json:"capturedAt"`
	Online     bool           `json:"online"`
}

type LiveSnapshot struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Entries     map[string]LiveEntry `json:"entries"`
}

// Sorted returns entries ordered by user id.
func (s *LiveSnapshot) Sorted() []LiveEntry {
	out := make([]LiveEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (s *LiveSnapshot) OnlineCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.Online {
			n++
		}
	}
	return n
}

// LatestPerUser keeps the most recent sample of each user. Ties keep the earlier input.
func LatestPerUser(samples []model.MovementLog) map[string]model.MovementLog {
	ordered := make([]model.MovementLog, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.After(ordered[j].Timestamp)
	})

	latest := make(map[string]model.MovementLog)
	for _, s := range ordered {
		if _, seen := latest[s.UserID]; seen {
			continue
		}
		latest[s.UserID] = s
	}
	return latest
}

// Aggregate builds the live view of viewer. Samples of users missing from roster are dropped;
// stale samples stay but are marked offline.
func Aggregate(samples []model.MovementLog, roster []model.Profile, branches []model.Branch, viewer Viewer, now time.Time, staleAfter time.Duration) map[string]LiveEntry {
	users := utils.IndexBy(roster, func(p model.Profile) string { return p.ID })
	branchNames := make(map[string]string, len(branches))
	for _, b := range branches {
		branchNames[b.ID] = b.Name
	}

	out := make(map[string]LiveEntry)
	for userID, s := range LatestPerUser(samples) {
		user, ok := users[userID]
		if !ok || !CanView(viewer, &user) {
			continue
		}
		out[userID] = LiveEntry{
			UserID:     userID,
			Name:       user.Name,
			Role:       user.Role,
			BranchID:   user.Branch(),
			BranchName: branchNames[user.Branch()],
			Coordinate: s.Coordinate(),
			CapturedAt: s.Timestamp,
			Online:     now.Sub(s.Timestamp) < staleAfter,
		}
	}
	return out
}

type liveInputs struct {
	samples  []model.MovementLog
	roster   []model.Profile
	branches []model.Branch
}

func (s *Service) loadLiveInputs(ctx context.Context, since time.Time) (*liveInputs, error) {
	in := &liveInputs{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		samples, err := s.stores.Locations.ListSince(gctx, since)
		if err != nil {
			return fmt.Errorf("list movement logs: %w", err)
		}
		in.samples = samples
		return nil
	})
	g.Go(func() error {
		roster, err := s.stores.Profiles.List(gctx)
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		in.roster = roster
		return nil
	})
	g.Go(func() error {
		branches, err := s.stores.Branches.List(gctx)
		if err != nil {
			return fmt.Errorf("list branches: %w", err)
		}
		in.branches = branches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, &PersistenceError{Op: "load live view", Err: err}
	}
	return in, nil
}

// LiveSnapshot runs the aggregation pipeline for viewer.
func (s *Service) LiveSnapshot(ctx context.Context, viewer Viewer) (*LiveSnapshot, error) {
	now := s.now()
	in, err := s.loadLiveInputs(ctx, now.Add(-s.opts.LiveWindow))
	if err != nil {
		return nil, err
	}
	return &LiveSnapshot{
		GeneratedAt: now,
		Entries:     Aggregate(in.samples, in.roster, in.branches, viewer, now, s.opts.StaleAfter),
	}, nil
}
