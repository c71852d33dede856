package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"fieldforce.com/fieldforce/config"
	dbcore "fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/geo"
	"fieldforce.com/fieldforce/utils"
	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Seed struct {
	Branches []model.Branch  `yaml:"branches"`
	Vehicles []model.Vehicle `yaml:"vehicles"`
	Profiles []model.Profile `yaml:"profiles"`
}

// ReadSeed parses and checks a seed document.
func ReadSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	branches := make(map[string]bool, len(seed.Branches))
	for _, b := range seed.Branches {
		if _, ok := b.Fence(); !ok {
			return nil, fmt.Errorf("branch %s: invalid geofence", b.ID)
		}
		branches[b.ID] = true
	}
	for _, v := range seed.Vehicles {
		if v.Type != model.VehicleCar && v.Type != model.VehicleMotorcycle {
			return nil, fmt.Errorf("vehicle %s: unknown type %q", v.ID, v.Type)
		}
	}
	for _, p := range seed.Profiles {
		if !p.Role.Valid() {
			return nil, fmt.Errorf("profile %s: unknown role %q", p.ID, p.Role)
		}
		if p.BranchID != nil && !branches[*p.BranchID] {
			return nil, fmt.Errorf("profile %s: unknown branch %q", p.ID, *p.BranchID)
		}
	}
	return &seed, nil
}

// MockTrack scatters n samples per branch member within their fence during
// working hours of date.
func MockTrack(seed *Seed, date time.Time, n int, rng *rand.Rand) []model.MovementLog {
	fences := make(map[string]geo.GeoFence, len(seed.Branches))
	for _, b := range seed.Branches {
		if f, ok := b.Fence(); ok {
			fences[b.ID] = f
		}
	}

	var logs []model.MovementLog
	start := time.Date(date.Year(), date.Month(), date.Day(), 9, 0, 0, 0, date.Location())
	for _, p := range seed.Profiles {
		fence, ok := fences[p.Branch()]
		if !ok {
			continue
		}
		for i := 0; i < n; i++ {
			// metres per degree latitude
			dLat := (rng.Float64()*2 - 1) * fence.Radius / 111_320
			dLng := (rng.Float64()*2 - 1) * fence.Radius / 111_320
			ts := start.Add(time.Duration(i) * 8 * time.Hour / time.Duration(n))
			logs = append(logs, model.MovementLog{
				ID:        ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String(),
				UserID:    p.ID,
				Lat:       fence.Center.Lat + dLat,
				Lng:       fence.Center.Lng + dLng,
				Accuracy:  utils.Ptr(float64(5 + rng.IntN(20))),
				Timestamp: ts,
			})
		}
	}
	return logs
}

func main() {
	file := flag.String("file", "seed.yaml", "seed document")
	mock := flag.String("mock", "", "also insert mock movement logs for this date (yyyy-MM-dd)")
	samples := flag.Int("samples", 24, "mock samples per user")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("failed to open seed: %v", err)
	}
	defer f.Close()
	seed, err := ReadSeed(f)
	if err != nil {
		log.Fatal(err)
	}

	dm, err := cfg.OpenDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	ctx := context.Background()
	if err := dm.Migrate(ctx, model.All()...); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	if err := store.NewBranchStore(dm).Upsert(ctx, seed.Branches); err != nil {
		log.Fatalf("failed to seed branches: %v", err)
	}
	if err := store.NewVehicleStore(dm).Upsert(ctx, seed.Vehicles); err != nil {
		log.Fatalf("failed to seed vehicles: %v", err)
	}
	if err := store.NewProfileStore(dm).Upsert(ctx, seed.Profiles); err != nil {
		log.Fatalf("failed to seed profiles: %v", err)
	}
	fmt.Printf("Seeded %d branches, %d vehicles, %d profiles\n", len(seed.Branches), len(seed.Vehicles), len(seed.Profiles))

	if *mock == "" {
		return
	}
	date, err := time.ParseInLocation(utils.DateLayout, *mock, cfg.Location())
	if err != nil {
		log.Fatalf("invalid -mock date: %v", err)
	}
	logs := MockTrack(seed, date, *samples, rand.New(rand.NewPCG(uint64(date.Unix()), 0)))
	fmt.Printf("Inserting %d mock movement logs...\n", len(logs))
	err = dm.Exec(ctx, func(db *gorm.DB) error {
		return db.CreateInBatches(logs, 100).Error
	})
	if dbcore.IsUniqueViolation(err) {
		log.Fatalf("mock logs already exist for %s", *mock)
	}
	if err != nil {
		log.Fatalf("failed to insert mock logs: %v", err)
	}
	fmt.Println("Successfully inserted mock movement logs.")
}
