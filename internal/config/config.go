package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceConfig holds the per-source knobs the orchestrator and filter need.
// Loaded once at orchestrator construction; immutable during a run.
type SourceConfig struct {
	Enabled  bool `yaml:"enabled"`
	Priority int  `yaml:"priority"`

	// Pacing between requests to this source. A delay uniform in
	// [min_delay_ms, max_delay_ms] is enforced before every request.
	MinDelayMS int `yaml:"min_delay_ms"`
	MaxDelayMS int `yaml:"max_delay_ms"`

	// MaxRequests caps requests per session; further acquires fail.
	MaxRequests int `yaml:"max_requests"`

	MaxPages int `yaml:"max_pages"`

	// Salary bounds used by this source's filter variant. Zero disables the
	// bound.
	MinSalary int `yaml:"min_salary"`
	MaxSalary int `yaml:"max_salary"`

	// Quality thresholds (inclusive) for general and strict mode.
	MinQuality       float64 `yaml:"min_quality"`
	MinQualityStrict float64 `yaml:"min_quality_strict"`
}

func (s SourceConfig) MinDelay() time.Duration { return time.Duration(s.MinDelayMS) * time.Millisecond }
func (s SourceConfig) MaxDelay() time.Duration { return time.Duration(s.MaxDelayMS) * time.Millisecond }

// EmailConfig configures the email-alerts source (IMAP job alert inbox).
type EmailConfig struct {
	IMAPHost    string   `yaml:"imap_host"`
	IMAPPort    int      `yaml:"imap_port"`
	Username    string   `yaml:"username"`
	Mailbox     string   `yaml:"mailbox"`
	SubjectAny  []string `yaml:"subject_any"`
	MaxMessages int      `yaml:"max_messages"`
}

// Category is a named set of related search queries.
type Category struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Queries     []string `yaml:"queries"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
		Port    int    `yaml:"port"`
	} `yaml:"app"`

	Run struct {
		TimeoutSeconds       int `yaml:"timeout_seconds"`
		MaxConcurrentSources int `yaml:"max_concurrent_sources"`
		RetryMax             int `yaml:"retry_max"`
		RetryBackoffSeconds  int `yaml:"retry_backoff_seconds"`
	} `yaml:"run"`

	Search struct {
		Location        string `yaml:"location"`
		DefaultMaxPages int    `yaml:"default_max_pages"`
		Strict          bool   `yaml:"strict"`
	} `yaml:"search"`

	Browser struct {
		Headless    bool `yaml:"headless"`
		MaxContexts int  `yaml:"max_contexts"`
	} `yaml:"browser"`

	Sources map[string]SourceConfig `yaml:"sources"`

	Email EmailConfig `yaml:"email"`

	Filters struct {
		RequiredKeywords []string `yaml:"required_keywords"`
		ExcludeKeywords  []string `yaml:"exclude_keywords"`
		TechKeywords     []string `yaml:"tech_keywords"`
	} `yaml:"filters"`

	Scoring struct {
		// Weights of the quality-score components. They should sum to 1.0;
		// validation warns when they drift.
		DescriptionWeight float64 `yaml:"description_weight"`
		SalaryWeight      float64 `yaml:"salary_weight"`
		JobTypeWeight     float64 `yaml:"job_type_weight"`
		RemoteTypeWeight  float64 `yaml:"remote_type_weight"`
		TechWeight        float64 `yaml:"tech_weight"`

		// DescriptionCapChars is the description length at which the length
		// component saturates.
		DescriptionCapChars int `yaml:"description_cap_chars"`

		// TechCap is the tech-keyword count past which extra matches stop
		// adding score.
		TechCap int `yaml:"tech_cap"`
	} `yaml:"scoring"`

	Categories []Category `yaml:"categories"`
}

func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Run.TimeoutSeconds) * time.Second
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.Run.RetryBackoffSeconds) * time.Second
}

func (c Config) Source(name string) SourceConfig { return c.Sources[name] }

func (c Config) EnabledSources() []string {
	var out []string
	for name, sc := range c.Sources {
		if sc.Enabled {
			out = append(out, name)
		}
	}
	return out
}

func (c Config) CategoryByName(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

func (c Config) AllQueries() []string {
	var out []string
	for _, cat := range c.Categories {
		out = append(out, cat.Queries...)
	}
	return out
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
