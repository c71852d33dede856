package core

import (
	"context"
	"io"
	"log"
	"math"
	"sync"
	"testing"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/geo"
	"fieldforce.com/fieldforce/utils"
)

var (
	downtownCenter = geo.Coordinate{Lat: 23.8103, Lng: 90.4125}
	uptownCenter   = geo.Coordinate{Lat: 23.7940, Lng: 90.4043}
	quietLogger    = log.New(io.Discard, "", 0)
)

// north moves c by meters along its meridian.
func north(c geo.Coordinate, meters float64) geo.Coordinate {
	return geo.Coordinate{Lat: c.Lat + meters/geo.EarthRadius*180/math.Pi, Lng: c.Lng}
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakePositions answers with the last position set for a user, stamped with the clock.
type fakePositions struct {
	mu       sync.Mutex
	clock    *fakeClock
	coords   map[string]geo.Coordinate
	err      error
	requests int
}

func (p *fakePositions) Set(userID string, c geo.Coordinate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.coords[userID] = c
}

func (p *fakePositions) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *fakePositions) Requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

func (p *fakePositions) CurrentPosition(ctx context.Context, userID string, opts PositionOptions) (Fix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++
	if p.err != nil {
		return Fix{}, p.err
	}
	c, ok := p.coords[userID]
	if !ok {
		return Fix{}, &LocationError{Kind: Unavailable}
	}
	return Fix{Coordinate: c, CapturedAt: p.clock.Now()}, nil
}

type harness struct {
	svc       *Service
	mem       *store.Memory
	clock     *fakeClock
	positions *fakePositions
}

func (h *harness) fixAt(c geo.Coordinate) *Fix {
	return &Fix{Coordinate: c, CapturedAt: h.clock.Now()}
}

func (h *harness) profile(id string) *model.Profile {
	p, _ := h.mem.Profiles().Find(context.Background(), id)
	return p
}

func downtownFence() *geo.GeoFence {
	return &geo.GeoFence{Center: downtownCenter, Radius: 250}
}

func stores(mem *store.Memory) Stores {
	return Stores{
		Attendance: mem.Attendance(),
		Locations:  mem.Locations(),
		Profiles:   mem.Profiles(),
		Branches:   mem.Branches(),
		Vehicles:   mem.Vehicles(),
		Expenses:   mem.Expenses(),
	}
}

// newHarness seeds two branches and a small roster:
// ana, ben (officers, b1), dev (driver, b1), cara (officer, b2), bea (branch admin, b1),
// sam (super admin), nobranch (officer without branch), zero (officer at a 0,0 branch).
func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()

	mem := store.NewMemory()
	mem.PutBranch(model.Branch{ID: "b1", Name: "Downtown", Lat: downtownCenter.Lat, Lng: downtownCenter.Lng, Radius: 250})
	mem.PutBranch(model.Branch{ID: "b2", Name: "Uptown", Lat: uptownCenter.Lat, Lng: uptownCenter.Lng, Radius: 250})
	mem.PutBranch(model.Branch{ID: "b0", Name: "Unconfigured", Radius: 250})

	b0, b1, b2 := utils.Ptr("b0"), utils.Ptr("b1"), utils.Ptr("b2")
	for _, p := range []model.Profile{
		{ID: "ana", Name: "Ana", Role: model.RoleOfficer, BranchID: b1},
		{ID: "ben", Name: "Ben", Role: model.RoleOfficer, BranchID: b1},
		{ID: "dev", Name: "Dev", Role: model.RoleDriver, BranchID: b1},
		{ID: "cara", Name: "Cara", Role: model.RoleOfficer, BranchID: b2},
		{ID: "bea", Name: "Bea", Role: model.RoleBranchAdmin, BranchID: b1},
		{ID: "sam", Name: "Sam", Role: model.RoleSuperAdmin},
		{ID: "nobranch", Name: "Nobranch", Role: model.RoleOfficer},
		{ID: "zero", Name: "Zero", Role: model.RoleOfficer, BranchID: b0},
	} {
		mem.PutProfile(p)
	}

	clock := &fakeClock{t: time.Date(2025, 10, 13, 9, 0, 0, 0, utils.DhakaTZ)}
	positions := &fakePositions{clock: clock, coords: make(map[string]geo.Coordinate)}

	opts := DefaultOptions()
	opts.SampleInterval = 10 * time.Millisecond
	opts.RefreshInterval = 10 * time.Millisecond
	opts.PositionTimeout = time.Second
	for _, m := range mutate {
		m(&opts)
	}

	svc := NewService(Dependencies{
		Stores:    stores(mem),
		Positions: positions,
		Logger:    quietLogger,
		Now:       clock.Now,
	}, opts)

	return &harness{svc: svc, mem: mem, clock: clock, positions: positions}
}
