package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"fieldforce.com/fieldforce/infrastructure/filesystem"
	"fieldforce.com/fieldforce/lambdas/common"
	"github.com/aws/aws-lambda-go/lambda"
	"gorm.io/gorm"
)

type SyncEvent struct {
	Prefix string `json:"prefix"`
	DryRun bool   `json:"dryRun"`
}

func HandleRequest(ctx context.Context, event SyncEvent) (*SyncStats, error) {
	eventJson, _ := json.Marshal(event)
	fmt.Printf("[INFO] Event: %s\n", string(eventJson))

	env, err := common.LoadEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	defer env.Close()
	cfg := env.Config

	fmt.Printf("[INFO] Fetching rosters from bucket: %s\n", cfg.Storage.RosterBucket)
	bucket, err := filesystem.NewBucket(ctx, cfg.Storage.RosterBucket, cfg.Storage.Region, "")
	if err != nil {
		return nil, err
	}
	roster, files, err := GetRosters(ctx, bucket, event.Prefix)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[INFO] Read %d roster files\n", len(files))

	var stats SyncStats
	err = env.DB.Exec(ctx, func(db *gorm.DB) error {
		stats, err = SyncRoster(db, roster, event.DryRun)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync roster: %w", err)
	}
	stats.Files = files

	fmt.Printf("[INFO] Finished syncing roster\n")
	return &stats, nil
}

func main() {
	if common.InLambda() {
		lambda.Start(HandleRequest)
		return
	}

	results, err := HandleRequest(context.Background(), SyncEvent{DryRun: true})
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	resJson, _ := json.MarshalIndent(results, "", "  ")
	fmt.Printf("[SUCCESS] Results:\n%s\n", string(resJson))
}
