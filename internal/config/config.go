// Package config holds the tunable parameters of the scraping pipeline:
// classifier signal weights, pattern-detector cutoffs, rate limiting, and
// retry budgets. Values load from an optional YAML file with sane defaults,
// so heuristic tuning never requires a code change.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "CIVIC_MEETINGS_CONFIG"

// Config is the full runtime configuration.
type Config struct {
	Classifier ClassifierConfig `yaml:"classifier"`
	Detector   DetectorConfig   `yaml:"detector"`
	Engine     EngineConfig     `yaml:"engine"`
	Resolver   ResolverConfig   `yaml:"resolver"`
}

// ClassifierConfig groups the link-classification signal weights by signal
// family. Scores are additive; a link must clear MinScore for some role or
// it stays unclassified.
type ClassifierConfig struct {
	KeywordWeight    float64 `yaml:"keywordWeight"`    // role keyword in anchor text or context
	URLKeywordWeight float64 `yaml:"urlKeywordWeight"` // role keyword in the URL path
	PlatformWeight   float64 `yaml:"platformWeight"`   // known hosting domain for the role
	DocExtWeight     float64 `yaml:"docExtWeight"`     // document extension with role keyword present
	DocExtNeutral    float64 `yaml:"docExtNeutral"`    // document extension with no role keyword
	MediaExtWeight   float64 `yaml:"mediaExtWeight"`   // media extension or streaming path
	PositionWeight   float64 `yaml:"positionWeight"`   // proximity to the candidate's date token
	MinScore         float64 `yaml:"minScore"`
}

// DetectorConfig holds the structural cutoffs for pattern detection.
type DetectorConfig struct {
	TableMinRows      int `yaml:"tableMinRows"`      // data rows beyond which a table counts
	ListMinDatedItems int `yaml:"listMinDatedItems"` // dated list items beyond which a list counts
	ParagraphMinBold  int `yaml:"paragraphMinBold"`  // bold runs beyond which a paragraph is dense
	ParagraphMinDates int `yaml:"paragraphMinDates"` // date tokens beyond which a paragraph is dense
}

// EngineConfig controls fetching, rate limiting, and navigation bounds.
type EngineConfig struct {
	MinRequestInterval time.Duration `yaml:"minRequestInterval"`
	FetchTimeout       time.Duration `yaml:"fetchTimeout"`
	MaxFetchAttempts   int           `yaml:"maxFetchAttempts"`
	InitialBackoff     time.Duration `yaml:"initialBackoff"`
	MaxPaginationPages int           `yaml:"maxPaginationPages"`
	MaxYearFilters     int           `yaml:"maxYearFilters"`
	MaxDetailPages     int           `yaml:"maxDetailPages"`
}

// ResolverConfig controls URL-resolution verification.
type ResolverConfig struct {
	VerifyTimeout     time.Duration `yaml:"verifyTimeout"`
	MaxVerifyAttempts int           `yaml:"maxVerifyAttempts"`
	InitialBackoff    time.Duration `yaml:"initialBackoff"`
}

// UnmarshalYAML decodes durations from strings like "500ms" or "30s".
// Fields absent from the document keep their current (default) values.
func (c *EngineConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MinRequestInterval string `yaml:"minRequestInterval"`
		FetchTimeout       string `yaml:"fetchTimeout"`
		MaxFetchAttempts   *int   `yaml:"maxFetchAttempts"`
		InitialBackoff     string `yaml:"initialBackoff"`
		MaxPaginationPages *int   `yaml:"maxPaginationPages"`
		MaxYearFilters     *int   `yaml:"maxYearFilters"`
		MaxDetailPages     *int   `yaml:"maxDetailPages"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	for _, d := range []struct {
		dst *time.Duration
		src string
	}{
		{&c.MinRequestInterval, raw.MinRequestInterval},
		{&c.FetchTimeout, raw.FetchTimeout},
		{&c.InitialBackoff, raw.InitialBackoff},
	} {
		if err := setDuration(d.dst, d.src); err != nil {
			return err
		}
	}
	if raw.MaxFetchAttempts != nil {
		c.MaxFetchAttempts = *raw.MaxFetchAttempts
	}
	if raw.MaxPaginationPages != nil {
		c.MaxPaginationPages = *raw.MaxPaginationPages
	}
	if raw.MaxYearFilters != nil {
		c.MaxYearFilters = *raw.MaxYearFilters
	}
	if raw.MaxDetailPages != nil {
		c.MaxDetailPages = *raw.MaxDetailPages
	}
	return nil
}

// UnmarshalYAML decodes durations from strings like "15s".
func (c *ResolverConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		VerifyTimeout     string `yaml:"verifyTimeout"`
		MaxVerifyAttempts *int   `yaml:"maxVerifyAttempts"`
		InitialBackoff    string `yaml:"initialBackoff"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if err := setDuration(&c.VerifyTimeout, raw.VerifyTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.InitialBackoff, raw.InitialBackoff); err != nil {
		return err
	}
	if raw.MaxVerifyAttempts != nil {
		c.MaxVerifyAttempts = *raw.MaxVerifyAttempts
	}
	return nil
}

func setDuration(dst *time.Duration, s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*dst = d
	return nil
}

// Default returns the built-in configuration. The classifier weights mirror
// the hand-tuned values the heuristics were calibrated with.
func Default() Config {
	return Config{
		Classifier: ClassifierConfig{
			KeywordWeight:    1,
			URLKeywordWeight: 2,
			PlatformWeight:   1,
			DocExtWeight:     2,
			DocExtNeutral:    1,
			MediaExtWeight:   3,
			PositionWeight:   1,
			MinScore:         1,
		},
		Detector: DetectorConfig{
			TableMinRows:      3,
			ListMinDatedItems: 3,
			ParagraphMinBold:  2,
			ParagraphMinDates: 2,
		},
		Engine: EngineConfig{
			MinRequestInterval: 500 * time.Millisecond,
			FetchTimeout:       30 * time.Second,
			MaxFetchAttempts:   3,
			InitialBackoff:     2 * time.Second,
			MaxPaginationPages: 5,
			MaxYearFilters:     6,
			MaxDetailPages:     10,
		},
		Resolver: ResolverConfig{
			VerifyTimeout:     15 * time.Second,
			MaxVerifyAttempts: 3,
			InitialBackoff:    time.Second,
		},
	}
}

// Load reads configuration from path, or from $CIVIC_MEETINGS_CONFIG when
// path is empty, layered over the defaults. A missing file is not an error;
// an unreadable or malformed file is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
