package helper

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/geo"
	"fieldforce.com/fieldforce/utils"
	"github.com/oklog/ulid/v2"
)

type Sample struct {
	ID         string
	UserID     string
	Timestamp  time.Time
	Date       string
	Coordinate geo.Coordinate
	Accuracy   *float64
}

// Track is one user's samples of one local day, oldest first.
type Track struct {
	UserID  string    `json:"userId"`
	Date    string    `json:"date"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Samples []Sample  `json:"-"`
}

// ParseTrackCSV reads id,user,timestamp,lat,lng[,accuracy] rows after a header line.
// Dates are local to loc.
func ParseTrackCSV(r io.Reader, loc *time.Location) ([]Sample, error) {
	rows, err := utils.ParseCSV(r)
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for i, row := range rows {
		if i == 0 {
			continue
		}

		if len(row) < 5 {
			return nil, fmt.Errorf("row %d: expected at least 5 columns, got %d", i, len(row))
		}

		timestamp, err := time.Parse(time.RFC3339, strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp: %w", i, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid lat: %w", i, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid lng: %w", i, err)
		}
		c := geo.Coordinate{Lat: lat, Lng: lng}
		if !c.Valid() {
			return nil, fmt.Errorf("row %d: coordinate %.6f,%.6f out of range", i, lat, lng)
		}

		sample := Sample{
			ID:         strings.TrimSpace(row[0]),
			UserID:     strings.TrimSpace(row[1]),
			Timestamp:  timestamp.In(loc),
			Date:       utils.LocalDate(timestamp, loc),
			Coordinate: c,
		}
		if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
			acc, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
			if err != nil || acc < 0 {
				return nil, fmt.Errorf("row %d: invalid accuracy %q", i, row[5])
			}
			sample.Accuracy = &acc
		}

		samples = append(samples, sample)
	}

	return samples, nil
}

// GroupSamples splits samples per user and date, sorted by user then date.
func GroupSamples(samples []Sample) []Track {
	grouped := utils.GroupBy(samples, func(s Sample) string { return s.UserID + "|" + s.Date })

	tracks := make([]Track, 0, len(grouped))
	for _, group := range grouped {
		sort.Slice(group, func(i, j int) bool { return group[i].Timestamp.Before(group[j].Timestamp) })
		tracks = append(tracks, Track{
			UserID:  group[0].UserID,
			Date:    group[0].Date,
			From:    group[0].Timestamp,
			To:      group[len(group)-1].Timestamp,
			Samples: group,
		})
	}
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].UserID != tracks[j].UserID {
			return tracks[i].UserID < tracks[j].UserID
		}
		return tracks[i].Date < tracks[j].Date
	})
	return tracks
}

type ImportedTrack struct {
	Track
	Count int `json:"count"`
}

type ImportResult struct {
	Tracks  []ImportedTrack `json:"tracks"`
	Skipped []string        `json:"skipped,omitempty"`
}

// Import appends the samples of known users to the location store.
func Import(ctx context.Context, locations core.LocationStore, profiles core.ProfileStore, tracks []Track) (*ImportResult, error) {
	roster, err := profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	known := utils.IndexBy(roster, func(p model.Profile) string { return p.ID })

	result := &ImportResult{}
	for _, track := range tracks {
		if _, ok := known[track.UserID]; !ok {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s %s: unknown user", track.UserID, track.Date))
			continue
		}
		for _, s := range track.Samples {
			entry := &model.MovementLog{
				ID:        ulid.MustNew(ulid.Timestamp(s.Timestamp), ulid.DefaultEntropy()).String(),
				UserID:    s.UserID,
				Lat:       s.Coordinate.Lat,
				Lng:       s.Coordinate.Lng,
				Accuracy:  s.Accuracy,
				Timestamp: s.Timestamp,
			}
			if err := locations.Append(ctx, entry); err != nil {
				return result, fmt.Errorf("failed to append sample %s: %w", s.ID, err)
			}
		}
		result.Tracks = append(result.Tracks, ImportedTrack{Track: track, Count: len(track.Samples)})
	}
	return result, nil
}
