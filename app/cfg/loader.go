package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	FeedsDir      string        `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed source files"`
	Port          string        `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	FetchTimeout  time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"20s" description:"Timeout for fetching a partner feed (0 disables)"`
	ResponseLimit int           `long:"response-limit" env:"RESPONSE_LIMIT" default:"50" description:"Maximum number of products per response"`
	MaxBodyBytes  int64         `long:"max-body-bytes" env:"MAX_BODY_BYTES" default:"67108864" description:"Maximum size of a fetched feed body"`
	CheckWorkers  int           `long:"check-workers" env:"CHECK_WORKERS" default:"4" description:"Concurrent fetches when checking all sources"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Product Feeds/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Paris)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads configuration from a .env file (when present), the environment
// and command-line flags. It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	_ = godotenv.Load()
	return parse(os.Args[1:])
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	cfg := &Cfg{
		FeedsDir:      raw.FeedsDir,
		Port:          raw.Port,
		FetchTimeout:  raw.FetchTimeout,
		ResponseLimit: raw.ResponseLimit,
		MaxBodyBytes:  raw.MaxBodyBytes,
		CheckWorkers:  raw.CheckWorkers,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(raw *rawCfg) error {
	nonNegativeFields := map[string]int64{
		"fetch timeout":  int64(raw.FetchTimeout),
		"response limit": int64(raw.ResponseLimit),
		"max body bytes": raw.MaxBodyBytes,
		"check workers":  int64(raw.CheckWorkers),
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
