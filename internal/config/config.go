package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobscout pipeline.
type Config struct {
	Targets  []Target
	Rules    RulesConfig
	Fetch    FetchConfig
	Store    StoreConfig
	Report   ReportConfig
	Email    EmailConfig
	Interval time.Duration // watch mode re-run interval
}

// Target describes a single company board to poll.
type Target struct {
	Name    string `yaml:"name"`
	ATS     string `yaml:"ats"`
	Slug    string `yaml:"slug"`
	Enabled bool   `yaml:"enabled"`

	// Vendor extras, only read by the matching adapter.
	WorkdayURL           string   `yaml:"workday_url"`
	RSSFeeds             []string `yaml:"rss_feeds"`
	SmartRecruitersSlugs []string `yaml:"smartrecruiters_slugs"`
}

// RulesConfig holds the relevance rule lists, passed verbatim to the filter.
type RulesConfig struct {
	Include        []string
	Exclude        []string
	LocationsAllow []string
	LocationsDeny  []string
	AllowUnlocated bool
	RSSExclude     []string
}

// FetchConfig tunes the fetch stage: pool size, deadlines, retries and
// per-backend request rates.
type FetchConfig struct {
	Concurrency    int
	TargetTimeout  time.Duration // per-target deadline
	Budget         time.Duration // whole fetch stage deadline
	Retries        int
	RetryBaseDelay time.Duration
	Rate           float64 // requests per second against one backend
	Burst          int
	RateOverrides  map[string]float64 // per-backend rps, keyed by backend name
}

// RateFor returns the configured request rate for the given backend,
// falling back to the global Rate.
func (f FetchConfig) RateFor(backend string) float64 {
	if r, ok := f.RateOverrides[backend]; ok {
		return r
	}
	return f.Rate
}

// StoreConfig locates the seen-posting store.
type StoreConfig struct {
	Path      string
	Retention time.Duration // seen records older than this are pruned
}

// ReportConfig controls the rendered report artifacts.
type ReportConfig struct {
	Out   string // HTML output path
	Title string
}

// EmailConfig controls digest delivery. Password is normally supplied via
// ${SMTP_PASS} expansion.
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Subject  string
}

const (
	defaultTitle          = "Job Scout — Daily Report"
	defaultStorePath      = "jobscout.db"
	defaultReportOut      = "report.html"
	defaultConcurrency    = 4
	defaultRetries        = 2
	defaultSMTPPort       = 587
	defaultRate           = 1.0
	defaultBurst          = 2
	defaultTargetTimeout  = 2 * time.Minute
	defaultBudget         = 10 * time.Minute
	defaultRetryBaseDelay = 2 * time.Second
	defaultRetention      = 90 * 24 * time.Hour
	defaultInterval       = 24 * time.Hour
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Interval string          `yaml:"interval"`
	Targets  []Target        `yaml:"targets"`
	Rules    rawRulesConfig  `yaml:"rules"`
	Fetch    rawFetchConfig  `yaml:"fetch"`
	Store    rawStoreConfig  `yaml:"store"`
	Report   rawReportConfig `yaml:"report"`
	Email    EmailConfig     `yaml:"email"`
}

type rawRulesConfig struct {
	Include        []string `yaml:"include"`
	Exclude        []string `yaml:"exclude"`
	LocationsAllow []string `yaml:"locations_allow"`
	LocationsDeny  []string `yaml:"locations_deny"`
	AllowUnlocated *bool    `yaml:"allow_unlocated"` // default true when absent
	RSSExclude     []string `yaml:"rss_exclude"`
}

type rawFetchConfig struct {
	Concurrency    int                `yaml:"concurrency"`
	TargetTimeout  string             `yaml:"target_timeout"`
	Budget         string             `yaml:"budget"`
	Retries        *int               `yaml:"retries"`
	RetryBaseDelay string             `yaml:"retry_base_delay"`
	Rate           float64            `yaml:"rate"`
	Burst          int                `yaml:"burst"`
	RateOverrides  map[string]float64 `yaml:"rate_overrides"`
}

type rawStoreConfig struct {
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
}

type rawReportConfig struct {
	Out   string `yaml:"out"`
	Title string `yaml:"title"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables (SMTP_PASS and friends).
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := defaultInterval
	if raw.Interval != "" {
		interval, err = time.ParseDuration(raw.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse interval %q: %w", raw.Interval, err)
		}
	}

	targetTimeout := defaultTargetTimeout
	if raw.Fetch.TargetTimeout != "" {
		targetTimeout, err = time.ParseDuration(raw.Fetch.TargetTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.target_timeout %q: %w", raw.Fetch.TargetTimeout, err)
		}
	}

	budget := defaultBudget
	if raw.Fetch.Budget != "" {
		budget, err = time.ParseDuration(raw.Fetch.Budget)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.budget %q: %w", raw.Fetch.Budget, err)
		}
	}

	retryBaseDelay := defaultRetryBaseDelay
	if raw.Fetch.RetryBaseDelay != "" {
		retryBaseDelay, err = time.ParseDuration(raw.Fetch.RetryBaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.retry_base_delay %q: %w", raw.Fetch.RetryBaseDelay, err)
		}
	}

	retention := defaultRetention
	if raw.Store.Retention != "" {
		retention, err = time.ParseDuration(raw.Store.Retention)
		if err != nil {
			return nil, fmt.Errorf("parse store.retention %q: %w", raw.Store.Retention, err)
		}
	}

	concurrency := raw.Fetch.Concurrency
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}

	retries := defaultRetries
	if raw.Fetch.Retries != nil {
		retries = *raw.Fetch.Retries
	}

	rps := raw.Fetch.Rate
	if rps == 0 {
		rps = defaultRate
	}

	burst := raw.Fetch.Burst
	if burst == 0 {
		burst = defaultBurst
	}

	allowUnlocated := true
	if raw.Rules.AllowUnlocated != nil {
		allowUnlocated = *raw.Rules.AllowUnlocated
	}

	storePath := raw.Store.Path
	if storePath == "" {
		storePath = defaultStorePath
	}

	reportOut := raw.Report.Out
	if reportOut == "" {
		reportOut = defaultReportOut
	}

	reportTitle := raw.Report.Title
	if reportTitle == "" {
		reportTitle = defaultTitle
	}

	email := raw.Email
	if email.Port == 0 {
		email.Port = defaultSMTPPort
	}
	if email.Subject == "" {
		email.Subject = defaultTitle
	}
	if email.From == "" {
		email.From = email.Username
	}

	cfg := &Config{
		Targets: raw.Targets,
		Rules: RulesConfig{
			Include:        raw.Rules.Include,
			Exclude:        raw.Rules.Exclude,
			LocationsAllow: raw.Rules.LocationsAllow,
			LocationsDeny:  raw.Rules.LocationsDeny,
			AllowUnlocated: allowUnlocated,
			RSSExclude:     raw.Rules.RSSExclude,
		},
		Fetch: FetchConfig{
			Concurrency:    concurrency,
			TargetTimeout:  targetTimeout,
			Budget:         budget,
			Retries:        retries,
			RetryBaseDelay: retryBaseDelay,
			Rate:           rps,
			Burst:          burst,
			RateOverrides:  raw.Fetch.RateOverrides,
		},
		Store: StoreConfig{
			Path:      storePath,
			Retention: retention,
		},
		Report: ReportConfig{
			Out:   reportOut,
			Title: reportTitle,
		},
		Email:    email,
		Interval: interval,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	enabled := 0
	for i, t := range cfg.Targets {
		if !t.Enabled {
			continue
		}
		enabled++
		if t.Name == "" {
			return fmt.Errorf("targets[%d]: name is required", i)
		}
		if t.ATS == "" {
			return fmt.Errorf("target %q: ats is required", t.Name)
		}
		switch strings.ToLower(t.ATS) {
		case "rss":
			if len(t.RSSFeeds) == 0 {
				return fmt.Errorf("target %q: rss_feeds is required for the rss backend", t.Name)
			}
		case "workday", "workday-gql", "workday_gql":
			if t.WorkdayURL == "" {
				return fmt.Errorf("target %q: workday_url is required for the %s backend", t.Name, t.ATS)
			}
		case "smartrecruiters":
			if t.Slug == "" && len(t.SmartRecruitersSlugs) == 0 {
				return fmt.Errorf("target %q: slug or smartrecruiters_slugs is required", t.Name)
			}
		case "randstad", "adecco":
			// Scrapers derive everything from the backend name.
		default:
			if t.Slug == "" {
				return fmt.Errorf("target %q: slug is required for the %s backend", t.Name, t.ATS)
			}
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one target must be enabled")
	}

	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1, got %d", cfg.Fetch.Concurrency)
	}
	if cfg.Fetch.TargetTimeout <= 0 || cfg.Fetch.Budget <= 0 {
		return fmt.Errorf("fetch.target_timeout and fetch.budget must be positive")
	}
	if cfg.Fetch.TargetTimeout > cfg.Fetch.Budget {
		return fmt.Errorf("fetch.target_timeout %v exceeds fetch.budget %v", cfg.Fetch.TargetTimeout, cfg.Fetch.Budget)
	}
	if cfg.Fetch.Retries < 0 {
		return fmt.Errorf("fetch.retries must not be negative, got %d", cfg.Fetch.Retries)
	}
	if cfg.Fetch.Rate <= 0 {
		return fmt.Errorf("fetch.rate must be positive, got %v", cfg.Fetch.Rate)
	}
	for backend, r := range cfg.Fetch.RateOverrides {
		if r <= 0 {
			return fmt.Errorf("fetch.rate_overrides[%q] must be positive, got %v", backend, r)
		}
	}
	if cfg.Fetch.Burst < 1 {
		return fmt.Errorf("fetch.burst must be at least 1, got %d", cfg.Fetch.Burst)
	}
	if cfg.Store.Retention <= 0 {
		return fmt.Errorf("store.retention must be positive, got %v", cfg.Store.Retention)
	}

	if cfg.Email.Enabled {
		if cfg.Email.Host == "" {
			return fmt.Errorf("email.host is required when email.enabled is true")
		}
		if len(cfg.Email.To) == 0 {
			return fmt.Errorf("email.to is required when email.enabled is true")
		}
		if cfg.Email.From == "" {
			return fmt.Errorf("email.from or email.username is required when email.enabled is true")
		}
	}

	return nil
}
