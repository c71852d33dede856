package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	v1 "fieldforce.com/fieldforce/client/v1"
	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/livemap"
	"fieldforce.com/fieldforce/geo"
	"fieldforce.com/fieldforce/utils"
)

// ReadRoute reads lat,lng[,accuracy] rows after a header line.
func ReadRoute(r io.Reader) ([]v1.Fix, error) {
	rows, err := utils.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	var route []v1.Fix
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected lat,lng", i)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid lat: %w", i, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid lng: %w", i, err)
		}
		if !(geo.Coordinate{Lat: lat, Lng: lng}).Valid() {
			return nil, fmt.Errorf("row %d: coordinate out of range", i)
		}
		fix := v1.Fix{Lat: lat, Lng: lng}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			acc, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid accuracy: %w", i, err)
			}
			fix.Accuracy = &acc
		}
		route = append(route, fix)
	}
	if len(route) == 0 {
		return nil, errors.New("route is empty")
	}
	return route, nil
}

func snapshotOf(live *v1.Live) *core.LiveSnapshot {
	snap := &core.LiveSnapshot{GeneratedAt: live.GeneratedAt, Entries: make(map[string]core.LiveEntry, len(live.Entries))}
	for _, e := range live.Entries {
		snap.Entries[e.UserID] = e
	}
	return snap
}

// Replay walks route: checks in at the first point, tracks from trackAt on,
// and checks out at the last point.
func Replay(ctx context.Context, client *v1.FieldforceClient, route []v1.Fix, trackAt int, step time.Duration) error {
	for i, fix := range route {
		fix := fix
		now := time.Now()
		fix.CapturedAt = &now
		if err := client.Positions.Report(ctx, fix); err != nil {
			return fmt.Errorf("report point %d: %w", i, err)
		}

		switch {
		case i == 0:
			rec, err := client.Attendance.CheckIn(ctx, nil)
			var apiErr *v1.APIError
			if errors.As(err, &apiErr) && apiErr.Kind == "duplicate_check_in" {
				fmt.Printf("[INFO] already checked in\n")
			} else if err != nil {
				return fmt.Errorf("check in: %w", err)
			} else {
				fmt.Printf("[INFO] checked in as %s\n", rec.Status)
			}
		case i == trackAt:
			t, err := client.Tracking.Start(ctx, nil)
			if err != nil {
				return fmt.Errorf("start tracking: %w", err)
			}
			fmt.Printf("[INFO] tracking, status %s\n", t.Record.Status)
		}
		fmt.Printf("[INFO] point %d/%d %.6f,%.6f\n", i+1, len(route), fix.Lat, fix.Lng)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
		}
	}

	if trackAt >= 0 && trackAt < len(route) {
		if _, err := client.Tracking.Stop(ctx, nil); err != nil {
			return fmt.Errorf("stop tracking: %w", err)
		}
	}
	rec, err := client.Attendance.CheckOut(ctx, nil)
	if err != nil {
		return fmt.Errorf("check out: %w", err)
	}
	fmt.Printf("[INFO] checked out as %s\n", rec.Status)
	return nil
}

// Watch prints live map changes every interval until ctx is done.
func Watch(ctx context.Context, client *v1.FieldforceClient, out io.Writer, interval time.Duration) error {
	layer := livemap.NewLayer(livemap.NewTextCanvas(out))
	layer.Resize(livemap.Size{Width: 80, Height: 24})

	scheduler := core.NewScheduler(log.Default())
	defer scheduler.Stop()
	err := scheduler.Start("live", interval, true, func(ctx context.Context) error {
		live, err := client.Live.Snapshot(ctx)
		if err != nil {
			return err
		}
		stats := layer.Render(livemap.MarkersFromLive(snapshotOf(live)))
		fmt.Fprintf(out, "-- %s: %d online, %+v\n", live.GeneratedAt.Format(time.TimeOnly), live.Online, stats)
		return nil
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func main() {
	baseURL := flag.String("url", "http://localhost:8090", "API base url")
	token := flag.String("token", os.Getenv("FIELDFORCE_TOKEN"), "identity token")
	mode := flag.String("mode", "watch", "watch or replay")
	file := flag.String("route", "route.csv", "route for replay (lat,lng[,accuracy])")
	trackAt := flag.Int("track-at", 1, "route point where tracking starts, -1 for never")
	step := flag.Duration("step", 15*time.Second, "time between route points")
	interval := flag.Duration("interval", 10*time.Second, "live refresh interval")
	flag.Parse()

	if *token == "" {
		log.Fatal("a token is required (-token or FIELDFORCE_TOKEN)")
	}
	client := v1.NewFieldforceClient(*baseURL, *token)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "watch":
		err = Watch(ctx, client, os.Stdout, *interval)
	case "replay":
		f, ferr := os.Open(*file)
		if ferr != nil {
			log.Fatal(ferr)
		}
		route, rerr := ReadRoute(f)
		f.Close()
		if rerr != nil {
			log.Fatal(rerr)
		}
		err = Replay(ctx, client, route, *trackAt, *step)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
