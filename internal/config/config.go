package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the callview daemon configuration
type Config struct {
	// HTTP API settings
	APIAddr  string
	LogLevel string

	// Storage paths
	LogDBPath     string // work-call log sqlite file
	WorkDirDBPath string // work directory sqlite file

	// Policy
	Role               string // acting user role; "Management" disables redaction
	LogOnLookupFailure bool   // log terminating calls even when the work lookup fails
	RedactTimeout      time.Duration
	MissedRewritePause time.Duration

	// Workers
	IdentityWorkers int
	UploadBuffer    int

	// Demo drives a scripted fake platform instead of waiting for one
	Demo bool
}

// policyFile is the optional TOML policy block loaded via -config
type policyFile struct {
	Policy struct {
		Role                 string `toml:"role"`
		LogOnLookupFailure   bool   `toml:"log_on_lookup_failure"`
		RedactTimeoutSeconds int    `toml:"redact_timeout_seconds"`
		MissedRewritePauseMs int    `toml:"missed_rewrite_pause_ms"`
	} `toml:"policy"`
}

// Load loads configuration from command line flags, an optional TOML policy
// file, and environment variable overrides, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		RedactTimeout:      8 * time.Second,
		MissedRewritePause: 500 * time.Millisecond,
		IdentityWorkers:    2,
		UploadBuffer:       128,
	}

	var configPath string
	flag.StringVar(&cfg.APIAddr, "api", "0.0.0.0:8080", "HTTP API listen address")
	flag.StringVar(&cfg.LogLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogDBPath, "logdb", "callview.db", "Path to the work-call log database")
	flag.StringVar(&cfg.WorkDirDBPath, "workdir", "workdir.db", "Path to the work directory database")
	flag.StringVar(&cfg.Role, "role", "", "Acting user role (Management skips history redaction)")
	flag.StringVar(&configPath, "config", "", "Path to TOML policy file (optional)")
	flag.BoolVar(&cfg.Demo, "demo", false, "Run a scripted demo call flow")
	flag.Parse()

	if configPath != "" {
		if err := cfg.applyPolicyFile(configPath); err != nil {
			return nil, err
		}
	}

	// Environment variables override flags and file
	if addr := os.Getenv("API_ADDR"); addr != "" {
		cfg.APIAddr = addr
	}
	if level := os.Getenv("LOGLEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if path := os.Getenv("LOG_DB_PATH"); path != "" {
		cfg.LogDBPath = path
	}
	if path := os.Getenv("WORKDIR_DB_PATH"); path != "" {
		cfg.WorkDirDBPath = path
	}
	if role := os.Getenv("USER_ROLE"); role != "" {
		cfg.Role = role
	}
	if v := os.Getenv("LOG_ON_LOOKUP_FAILURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogOnLookupFailure = b
		}
	}

	return cfg, nil
}

// applyPolicyFile merges the TOML policy block into the config
func (c *Config) applyPolicyFile(path string) error {
	var pf policyFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return fmt.Errorf("load policy file %s: %w", path, err)
	}
	if pf.Policy.Role != "" {
		c.Role = pf.Policy.Role
	}
	c.LogOnLookupFailure = pf.Policy.LogOnLookupFailure
	if pf.Policy.RedactTimeoutSeconds > 0 {
		c.RedactTimeout = time.Duration(pf.Policy.RedactTimeoutSeconds) * time.Second
	}
	if pf.Policy.MissedRewritePauseMs > 0 {
		c.MissedRewritePause = time.Duration(pf.Policy.MissedRewritePauseMs) * time.Millisecond
	}
	return nil
}
