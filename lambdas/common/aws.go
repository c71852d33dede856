package common

import (
	"context"
	"fmt"
	"os"

	"fieldforce.com/fieldforce/ai"
	"fieldforce.com/fieldforce/config"
	"fieldforce.com/fieldforce/core"
	fcore "fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/infrastructure/devops"
)

// Environment is what every job needs: configuration and a database.
type Environment struct {
	Config *config.Config
	DB     *core.DatabaseManager
}

// InLambda reports whether the process runs inside AWS Lambda.
func InLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// LoadEnvironment reads the configuration from SSM inside Lambda and from
// config.yaml/.env otherwise, then connects to the database.
func LoadEnvironment(ctx context.Context) (*Environment, error) {
	var (
		cfg *config.Config
		err error
	)
	if InLambda() {
		fmt.Printf("[INFO] Loading configuration from parameter store\n")
		cfg, err = devops.LoadConfig(ctx)
	} else {
		cfg, err = config.Load("")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dm, err := cfg.OpenDatabase()
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	return &Environment{Config: cfg, DB: dm}, nil
}

func (e *Environment) Close() {
	if err := e.DB.Close(); err != nil {
		fmt.Printf("[ERROR] close database: %v\n", err)
	}
}

func Stores(dm *core.DatabaseManager) fcore.Stores {
	return fcore.Stores{
		Attendance: store.NewAttendanceStore(dm),
		Locations:  store.NewLocationStore(dm),
		Profiles:   store.NewProfileStore(dm),
		Branches:   store.NewBranchStore(dm),
		Vehicles:   store.NewVehicleStore(dm),
		Expenses:   store.NewExpenseStore(dm),
	}
}

// Service builds a core service without a position provider; jobs never
// ask a device for its position.
func (e *Environment) Service(ctx context.Context) *fcore.Service {
	deps := fcore.Dependencies{Stores: Stores(e.DB)}
	if key := e.Config.AI.APIKey; key != "" {
		deps.Assistant = ai.NewAssistant(
			ai.NewGemini(ctx, key, e.Config.AI.Model, e.Config.AI.Verbose),
			ai.WithTimeout(e.Config.AI.Timeout),
			ai.WithLanguage(e.Config.AI.Language),
		)
	}
	return fcore.NewService(deps, e.Config.CoreOptions())
}
