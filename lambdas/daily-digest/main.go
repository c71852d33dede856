package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/infrastructure/communication"
	"fieldforce.com/fieldforce/lambdas/common"
	"fieldforce.com/fieldforce/utils"
	"github.com/aws/aws-lambda-go/lambda"
)

type DigestEvent struct {
	// Date is yyyy-MM-dd; empty means today.
	Date   string `json:"date"`
	DryRun bool   `json:"dryRun"`
}

type notifier interface {
	Info(message string) error
	Error(message string) error
}

// PostDigest builds the digest for event.Date and posts it unless it is a dry run.
func PostDigest(ctx context.Context, svc *core.Service, slack notifier, event DigestEvent) (*core.DailyDigest, error) {
	date := event.Date
	if date == "" {
		date = svc.Today()
	}
	if _, err := utils.ParseISOTime(date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	digest, err := svc.DailyDigest(ctx, date)
	if err != nil {
		slack.Error(fmt.Sprintf("daily digest for %s failed: %v", date, err))
		return nil, err
	}
	fmt.Printf("[INFO] Digest for %s covers %d branches\n", date, len(digest.Branches))

	if event.DryRun {
		fmt.Printf("[INFO] Dry run, not posting:\n%s\n", digest.Text())
		return digest, nil
	}
	if err := slack.Info(digest.Text()); err != nil {
		return nil, fmt.Errorf("failed to post digest: %w", err)
	}
	return digest, nil
}

func HandleRequest(ctx context.Context, event DigestEvent) (*core.DailyDigest, error) {
	eventJson, _ := json.Marshal(event)
	fmt.Printf("[INFO] Event: %s\n", string(eventJson))

	env, err := common.LoadEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	return PostDigest(ctx, env.Service(ctx), communication.ConnectSlack(env.Config.Slack), event)
}

func main() {
	if common.InLambda() {
		lambda.Start(HandleRequest)
		return
	}

	digest, err := HandleRequest(context.Background(), DigestEvent{DryRun: true})
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	resJson, _ := json.MarshalIndent(digest, "", "  ")
	fmt.Printf("[SUCCESS] Results:\n%s\n", string(resJson))
}
