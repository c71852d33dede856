package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"fieldforce.com/fieldforce/core"
	fcore "fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/utils"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Tracking   TrackingConfig   `yaml:"tracking"`
	Live       LiveConfig       `yaml:"live"`
	Storage    StorageConfig    `yaml:"storage"`
	AI         AIConfig         `yaml:"ai"`
	Slack      SlackConfig      `yaml:"slack"`
	Mail       MailConfig       `yaml:"mail"`
	Auth       AuthConfig       `yaml:"auth"`
}

type ServerConfig struct {
	Port         int      `yaml:"port" validate:"gt=0,lt=65536"`
	AllowOrigins []string `yaml:"allowOrigins"`
	// DigestSchedule is a cron spec for the daily Slack digest; empty disables it.
	DigestSchedule string `yaml:"digestSchedule"`
}

type DatabaseConfig struct {
	Driver         string `yaml:"driver" validate:"oneof=mysql postgres"`
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections" validate:"gt=0"`
	LogLevel       string `yaml:"logLevel" validate:"oneof=silent error warn info"`
}

type AttendanceConfig struct {
	GeofenceTolerance float64       `yaml:"geofenceTolerance" validate:"gte=0"`
	MaxFixAge         time.Duration `yaml:"maxFixAge" validate:"gt=0"`
	Timezone          string        `yaml:"timezone"`
}

type TrackingConfig struct {
	SampleInterval  time.Duration `yaml:"sampleInterval" validate:"gt=0"`
	PositionTimeout time.Duration `yaml:"positionTimeout" validate:"gt=0"`
	HighAccuracy    bool          `yaml:"highAccuracy"`
}

type LiveConfig struct {
	RefreshInterval time.Duration `yaml:"refreshInterval" validate:"gt=0"`
	StaleAfter      time.Duration `yaml:"staleAfter" validate:"gt=0"`
	Window          time.Duration `yaml:"window" validate:"gt=0"`
}

type StorageConfig struct {
	Region        string `yaml:"region"`
	VoucherBucket string `yaml:"voucherBucket"`
	ReportBucket  string `yaml:"reportBucket"`
	RosterBucket  string `yaml:"rosterBucket"`
	// PublicBaseURL replaces the default virtual-hosted S3 URL of uploaded objects.
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

type AIConfig struct {
	APIKey   string        `yaml:"apiKey"`
	Model    string        `yaml:"model"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	Verbose  bool          `yaml:"verbose"`
}

type SlackConfig struct {
	Token        string `yaml:"token"`
	InfoChannel  string `yaml:"infoChannel"`
	ErrorChannel string `yaml:"errorChannel"`
}

type MailConfig struct {
	From string   `yaml:"from"`
	To   []string `yaml:"to"`
}

type AuthConfig struct {
	SigningSecret string        `yaml:"signingSecret"`
	Issuer        string        `yaml:"issuer"`
	TokenTTL      time.Duration `yaml:"tokenTtl" validate:"gt=0"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8090, AllowOrigins: []string{"*"}, DigestSchedule: "0 18 * * *"},
		Database: DatabaseConfig{
			Driver:         core.DriverMySQL,
			MaxConnections: 10,
			LogLevel:       "warn",
		},
		Attendance: AttendanceConfig{
			GeofenceTolerance: fcore.DefaultGeofenceTolerance,
			MaxFixAge:         fcore.DefaultMaxFixAge,
			Timezone:          "Asia/Dhaka",
		},
		Tracking: TrackingConfig{
			SampleInterval:  fcore.DefaultSampleInterval,
			PositionTimeout: fcore.DefaultPositionTimeout,
			HighAccuracy:    true,
		},
		Live: LiveConfig{
			RefreshInterval: fcore.DefaultRefreshInterval,
			StaleAfter:      fcore.DefaultStaleAfter,
			Window:          fcore.DefaultLiveWindow,
		},
		Storage: StorageConfig{Region: "ap-southeast-1", VoucherBucket: "fieldforce-vouchers", ReportBucket: "fieldforce-reports", RosterBucket: "fieldforce-roster"},
		AI:      AIConfig{Model: "gemini-2.5-flash", Language: "Bengali", Timeout: 8 * time.Second},
		Auth:    AuthConfig{Issuer: "fieldforce", TokenTTL: 30 * 24 * time.Hour},
	}
}

// Parse reads a YAML document over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load reads .env (when present), then the YAML file at path (when present),
// then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("[WARN] .env not loaded: %v\n", err)
	}
	if path == "" {
		path = os.Getenv("FIELDFORCE_CONFIG")
	}
	if path == "" {
		path = "config.yaml"
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if cfg, err = Parse(data); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		fmt.Printf("[INFO] %s not found, using defaults\n", path)
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings that are commonly injected by the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set("DSN", &c.Database.DSN)
	set("DB_DRIVER", &c.Database.Driver)
	set("AWS_REGION", &c.Storage.Region)
	set("VOUCHER_BUCKET", &c.Storage.VoucherBucket)
	set("FIELDFORCE_SIGNING_SECRET", &c.Auth.SigningSecret)
	set("GEMINI_API_KEY", &c.AI.APIKey)
	set("SLACK_BOT_TOKEN", &c.Slack.Token)
	set("SLACK_INFO_CHANNEL", &c.Slack.InfoChannel)
	set("SLACK_ERROR_CHANNEL", &c.Slack.ErrorChannel)
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		} else {
			fmt.Printf("[WARN] ignoring PORT=%q\n", v)
		}
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Location() *time.Location {
	return utils.LoadLocation(c.Attendance.Timezone)
}

func (c *Config) CoreOptions() fcore.Options {
	return fcore.Options{
		GeofenceTolerance: c.Attendance.GeofenceTolerance,
		MaxFixAge:         c.Attendance.MaxFixAge,
		SampleInterval:    c.Tracking.SampleInterval,
		PositionTimeout:   c.Tracking.PositionTimeout,
		HighAccuracy:      c.Tracking.HighAccuracy,
		RefreshInterval:   c.Live.RefreshInterval,
		StaleAfter:        c.Live.StaleAfter,
		LiveWindow:        c.Live.Window,
		Location:          c.Location(),
	}
}

// OpenDatabase connects with the configured driver and pool size.
func (c *Config) OpenDatabase() (*core.DatabaseManager, error) {
	if c.Database.DSN == "" {
		return nil, errors.New("database dsn is not configured")
	}
	return core.New(c.Database.Driver, c.Database.DSN, c.Database.MaxConnections, core.ParseLogLevel(c.Database.LogLevel))
}
