package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/reports"
	"fieldforce.com/fieldforce/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Counts struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

type SyncStats struct {
	Files    []string `json:"files"`
	Branches Counts   `json:"branches"`
	Vehicles Counts   `json:"vehicles"`
	Profiles Counts   `json:"profiles"`
	Skipped  []string `json:"skipped,omitempty"`
}

type rosterSource interface {
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	ReadFile(ctx context.Context, key string, outStream io.Writer) error
}

func isRosterFile(key string) bool {
	name := path.Base(key)
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "~$") {
		return false
	}
	return strings.EqualFold(path.Ext(name), ".xlsx")
}

// GetRosters reads every roster workbook under prefix, in key order.
// A file that cannot be read is reported and skipped.
func GetRosters(ctx context.Context, bucket rosterSource, prefix string) (*reports.Roster, []string, error) {
	keys, err := bucket.ListFiles(ctx, prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list files: %w", err)
	}

	var (
		rosters []*reports.Roster
		files   []string
		skipped []string
	)
	for _, key := range keys {
		if !isRosterFile(key) {
			continue
		}
		fmt.Printf("[INFO] Processing file: %s\n", key)
		var buf bytes.Buffer
		if err := bucket.ReadFile(ctx, key, &buf); err != nil {
			fmt.Printf("[ERROR] failed to read file %s: %v\n", key, err)
			skipped = append(skipped, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		roster, err := reports.ReadRoster(&buf)
		if err != nil {
			fmt.Printf("[ERROR] failed to open roster %s: %v\n", key, err)
			skipped = append(skipped, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		for _, s := range roster.Skipped {
			skipped = append(skipped, key+" "+s)
		}
		rosters = append(rosters, roster)
		files = append(files, key)
	}

	merged := MergeRosters(rosters...)
	merged.Skipped = append(skipped, merged.Skipped...)
	return merged, files, nil
}

// MergeRosters combines rosters; a later row replaces an earlier one with the same id.
func MergeRosters(rosters ...*reports.Roster) *reports.Roster {
	out := &reports.Roster{}
	for _, r := range rosters {
		out.Branches = mergeByID(out.Branches, r.Branches, func(b model.Branch) string { return b.ID })
		out.Profiles = mergeByID(out.Profiles, r.Profiles, func(p model.Profile) string { return p.ID })
		out.Vehicles = mergeByID(out.Vehicles, r.Vehicles, func(v model.Vehicle) string { return v.ID })
	}
	return out
}

func mergeByID[T any](current, incoming []T, id func(T) string) []T {
	pos := make(map[string]int, len(current))
	for i, item := range current {
		pos[id(item)] = i
	}
	for _, item := range incoming {
		if i, ok := pos[id(item)]; ok {
			current[i] = item
			continue
		}
		pos[id(item)] = len(current)
		current = append(current, item)
	}
	return current
}

func diff[T any](incoming, existing []T, id func(T) string, same func(a, b T) bool) Counts {
	known := utils.IndexBy(existing, id)
	var c Counts
	for _, item := range incoming {
		old, ok := known[id(item)]
		switch {
		case !ok:
			c.Created++
		case same(old, item):
			c.Unchanged++
		default:
			c.Updated++
		}
	}
	return c
}

func sameBranch(a, b model.Branch) bool {
	return a.Name == b.Name && a.Lat == b.Lat && a.Lng == b.Lng && a.Radius == b.Radius && a.TargetAmount == b.TargetAmount
}

func sameProfile(a, b model.Profile) bool {
	return a.Email == b.Email && a.Name == b.Name && a.Role == b.Role && a.Branch() == b.Branch()
}

func sameVehicle(a, b model.Vehicle) bool {
	return a.Name == b.Name && a.Type == b.Type
}

// dropOrphans removes staff assigned to a branch that is neither in the roster nor stored.
func dropOrphans(roster *reports.Roster, stored []model.Branch) {
	known := make(map[string]bool, len(stored)+len(roster.Branches))
	for _, b := range stored {
		known[b.ID] = true
	}
	for _, b := range roster.Branches {
		known[b.ID] = true
	}
	roster.Profiles = utils.Filter(roster.Profiles, func(p model.Profile) bool {
		if p.BranchID == nil || known[*p.BranchID] {
			return true
		}
		roster.Skipped = append(roster.Skipped, fmt.Sprintf("staff %s: unknown branch %q", p.ID, *p.BranchID))
		return false
	})
}

// Plan compares roster with the stored rows.
func Plan(roster *reports.Roster, branches []model.Branch, profiles []model.Profile, vehicles []model.Vehicle) SyncStats {
	dropOrphans(roster, branches)
	return SyncStats{
		Branches: diff(roster.Branches, branches, func(b model.Branch) string { return b.ID }, sameBranch),
		Vehicles: diff(roster.Vehicles, vehicles, func(v model.Vehicle) string { return v.ID }, sameVehicle),
		Profiles: diff(roster.Profiles, profiles, func(p model.Profile) string { return p.ID }, sameProfile),
		Skipped:  roster.Skipped,
	}
}

// SyncRoster upserts branches, vehicles and profiles in one transaction.
func SyncRoster(db *gorm.DB, roster *reports.Roster, dryRun bool) (SyncStats, error) {
	var (
		branches []model.Branch
		profiles []model.Profile
		vehicles []model.Vehicle
	)
	if err := db.Find(&branches).Error; err != nil {
		return SyncStats{}, fmt.Errorf("failed to fetch branches: %w", err)
	}
	if err := db.Find(&profiles).Error; err != nil {
		return SyncStats{}, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	if err := db.Find(&vehicles).Error; err != nil {
		return SyncStats{}, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	stats := Plan(roster, branches, profiles, vehicles)
	fmt.Printf("[INFO] Dry run (%v): branches %+v, vehicles %+v, profiles %+v, %d skipped\n",
		dryRun, stats.Branches, stats.Vehicles, stats.Profiles, len(stats.Skipped))
	if dryRun {
		return stats, nil
	}

	return stats, db.Transaction(func(tx *gorm.DB) error {
		if len(roster.Branches) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "lat", "lng", "radius", "target_amount"}),
			}).CreateInBatches(roster.Branches, 100).Error; err != nil {
				return fmt.Errorf("failed to upsert branches: %w", err)
			}
		}
		if len(roster.Vehicles) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "type"}),
			}).CreateInBatches(roster.Vehicles, 100).Error; err != nil {
				return fmt.Errorf("failed to upsert vehicles: %w", err)
			}
		}
		if len(roster.Profiles) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"email", "name", "role", "branch_id"}),
			}).CreateInBatches(roster.Profiles, 100).Error; err != nil {
				return fmt.Errorf("failed to upsert profiles: %w", err)
			}
		}
		return nil
	})
}
