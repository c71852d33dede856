package devops

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"fieldforce.com/fieldforce/config"
)

// DefaultParameter is the SSM parameter holding the YAML configuration.
const DefaultParameter = "/fieldforce/config"

var (
	once    sync.Once
	loaded  *config.Config
	loadErr error
)

// LoadConfig reads the configuration from SSM once per process.
// FIELDFORCE_PARAMETER overrides the parameter name.
func LoadConfig(ctx context.Context) (*config.Config, error) {
	once.Do(func() {
		paramName := os.Getenv("FIELDFORCE_PARAMETER")
		if paramName == "" {
			paramName = DefaultParameter
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter %s: %w", paramName, err)
			return
		}
		if out.Parameter == nil || out.Parameter.Value == nil {
			loadErr = fmt.Errorf("parameter %s is empty", paramName)
			return
		}

		loaded, loadErr = FromParameter(*out.Parameter.Value, os.Getenv)
	})

	return loaded, loadErr
}

// FromParameter parses a parameter value, applies environment overrides and validates.
func FromParameter(value string, getenv func(string) string) (*config.Config, error) {
	cfg, err := config.Parse([]byte(value))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
