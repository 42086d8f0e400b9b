package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds Normalizer Service configuration
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Normalizer NormalizerConfig `json:"normalizer" yaml:"normalizer"`
	Converter  ConverterConfig  `json:"converter" yaml:"converter"`
	Sweeper    SweeperConfig    `json:"sweeper" yaml:"sweeper"`
	IDGen      IDGenConfig      `json:"idgen" yaml:"idgen"`
	Redis      RedisConfig      `json:"redis" yaml:"redis"`
	Logger     logger.Config    `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Addr           string `json:"addr" yaml:"addr"`
	ReadTimeoutMS  int    `json:"read_timeout_ms" yaml:"read_timeout_ms"`
	WriteTimeoutMS int    `json:"write_timeout_ms" yaml:"write_timeout_ms"`
}

type NormalizerConfig struct {
	Mode               string `json:"mode" yaml:"mode"` // "single", "two_pass"
	SourceFormat       string `json:"source_format" yaml:"source_format"`
	IntermediateFormat string `json:"intermediate_format" yaml:"intermediate_format"`
	WorkDir            string `json:"work_dir" yaml:"work_dir"` // empty = $TMPDIR/pptx-normalizer
	MaxFileSize        int64  `json:"max_file_size" yaml:"max_file_size"`
	RequestTimeoutMS   int    `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	PollIntervalMS     int    `json:"poll_interval_ms" yaml:"poll_interval_ms"`
	PollAttempts       int    `json:"poll_attempts" yaml:"poll_attempts"`
	VerifyOutput       bool   `json:"verify_output" yaml:"verify_output"`
}

type ConverterConfig struct {
	Binary                  string `json:"binary" yaml:"binary"` // empty = search PATH and known install dirs
	ProcessTimeoutMS        int    `json:"process_timeout_ms" yaml:"process_timeout_ms"`
	MaxConcurrent           int    `json:"max_concurrent" yaml:"max_concurrent"`
	QueueSize               int    `json:"queue_size" yaml:"queue_size"`
	IsolateProfile          bool   `json:"isolate_profile" yaml:"isolate_profile"`
	BreakerFailureThreshold int    `json:"breaker_failure_threshold" yaml:"breaker_failure_threshold"`
	BreakerOpenTimeoutMS    int    `json:"breaker_open_timeout_ms" yaml:"breaker_open_timeout_ms"`
}

type SweeperConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	IntervalMS int  `json:"interval_ms" yaml:"interval_ms"`
	MaxAgeMS   int  `json:"max_age_ms" yaml:"max_age_ms"`
}

type IDGenConfig struct {
	NodeID int64 `json:"node_id" yaml:"node_id"`
}

// RedisConfig is optional; with an empty Addr job IDs use the local clock.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			ReadTimeoutMS:  60000,
			WriteTimeoutMS: 60000,
		},
		Normalizer: NormalizerConfig{
			Mode:               "single",
			SourceFormat:       "pptx",
			IntermediateFormat: "odp",
			MaxFileSize:        200 * 1024 * 1024, // 200MB
			RequestTimeoutMS:   300000,
			PollIntervalMS:     200,
			PollAttempts:       10,
			VerifyOutput:       true,
		},
		Converter: ConverterConfig{
			ProcessTimeoutMS:        120000,
			MaxConcurrent:           2,
			QueueSize:               16,
			IsolateProfile:          true,
			BreakerFailureThreshold: 3,
			BreakerOpenTimeoutMS:    30000,
		},
		Sweeper: SweeperConfig{
			Enabled:    true,
			IntervalMS: 600000,
			MaxAgeMS:   3600000,
		},
		IDGen: IDGenConfig{
			NodeID: 1,
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "normalizer", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		// The logger is configured from this file, so it is not ready yet.
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// WorkRoot returns the root under which request workspaces are created.
func (c *NormalizerConfig) WorkRoot() string {
	if c.WorkDir != "" {
		return c.WorkDir
	}
	return filepath.Join(os.TempDir(), "pptx-normalizer")
}

// RequestTimeout returns the overall per-request budget with safe default.
func (c *NormalizerConfig) RequestTimeout() time.Duration {
	return millis(c.RequestTimeoutMS, 5*time.Minute)
}

// PollInterval returns the delay between output existence checks.
func (c *NormalizerConfig) PollInterval() time.Duration {
	return millis(c.PollIntervalMS, 200*time.Millisecond)
}

// PollChecks returns how many times output existence is checked.
func (c *NormalizerConfig) PollChecks() int {
	if c.PollAttempts > 0 {
		return c.PollAttempts
	}
	return 10
}

// ProcessTimeout returns the deadline of a single converter invocation.
func (c *ConverterConfig) ProcessTimeout() time.Duration {
	return millis(c.ProcessTimeoutMS, 2*time.Minute)
}

// BreakerOpenTimeout returns how long the converter breaker stays open.
func (c *ConverterConfig) BreakerOpenTimeout() time.Duration {
	return millis(c.BreakerOpenTimeoutMS, 30*time.Second)
}

// Slots returns the converter concurrency. Without profile isolation,
// invocations share one LibreOffice instance and must be serialized.
func (c *ConverterConfig) Slots() int {
	if !c.IsolateProfile {
		return 1
	}
	if c.MaxConcurrent > 0 {
		return c.MaxConcurrent
	}
	return 1
}

func (c *SweeperConfig) Interval() time.Duration {
	return millis(c.IntervalMS, 10*time.Minute)
}

func (c *SweeperConfig) MaxAge() time.Duration {
	return millis(c.MaxAgeMS, time.Hour)
}

func (c *ServerConfig) ReadTimeout() time.Duration {
	return millis(c.ReadTimeoutMS, time.Minute)
}

func (c *ServerConfig) WriteTimeout() time.Duration {
	return millis(c.WriteTimeoutMS, time.Minute)
}

func millis(ms int, def time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
