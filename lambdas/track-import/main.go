package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/infrastructure/filesystem"
	"fieldforce.com/fieldforce/lambdas/common"
	"fieldforce.com/fieldforce/lambdas/track-import/helper"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

func ImportObject(ctx context.Context, env *common.Environment, bucketName, key string) (*helper.ImportResult, error) {
	bucket, err := filesystem.NewBucket(ctx, bucketName, env.Config.Storage.Region, "")
	if err != nil {
		return nil, err
	}

	fmt.Printf("[INFO] Fetching %s from %s\n", key, bucketName)
	var stream bytes.Buffer
	if err := bucket.ReadFile(ctx, key, &stream); err != nil {
		return nil, err
	}

	samples, err := helper.ParseTrackCSV(&stream, env.Config.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	tracks := helper.GroupSamples(samples)
	fmt.Printf("[INFO] Parsed %d samples in %d tracks\n", len(samples), len(tracks))

	result, err := helper.Import(ctx, store.NewLocationStore(env.DB), store.NewProfileStore(env.DB), tracks)
	if err != nil {
		return nil, err
	}
	for _, t := range result.Tracks {
		fmt.Printf("  User: %s, Date: %s, From: %s, To: %s, Samples: %d\n",
			t.UserID, t.Date, t.From.Format("15:04"), t.To.Format("15:04"), t.Count)
	}
	return result, nil
}

func HandleRequest(ctx context.Context, event events.S3Event) ([]*helper.ImportResult, error) {
	env, err := common.LoadEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	var results []*helper.ImportResult
	for _, record := range event.Records {
		// object keys arrive url-encoded
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return results, fmt.Errorf("invalid object key %q: %w", record.S3.Object.Key, err)
		}
		result, err := ImportObject(ctx, env, record.S3.Bucket.Name, key)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	fmt.Printf("[INFO] Completed\n")
	return results, nil
}

func main() {
	if common.InLambda() {
		lambda.Start(HandleRequest)
		return
	}

	if len(os.Args) < 3 {
		fmt.Printf("usage: track-import <bucket> <key>\n")
		os.Exit(2)
	}
	ctx := context.Background()
	env, err := common.LoadEnvironment(ctx)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	defer env.Close()

	result, err := ImportObject(ctx, env, os.Args[1], os.Args[2])
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	resJson, _ := json.MarshalIndent(result, "", "  ")
	fmt.Printf("[SUCCESS] Results:\n%s\n", string(resJson))
}
