package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_ImplicitMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ENV", "does-not-exist")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDurationAccessorsFallBackToDefaults(t *testing.T) {
	var cfg Config

	assert.Equal(t, 5*time.Minute, cfg.Normalizer.RequestTimeout())
	assert.Equal(t, 200*time.Millisecond, cfg.Normalizer.PollInterval())
	assert.Equal(t, 10, cfg.Normalizer.PollChecks())
	assert.Equal(t, 2*time.Minute, cfg.Converter.ProcessTimeout())
	assert.Equal(t, 30*time.Second, cfg.Converter.BreakerOpenTimeout())
	assert.Equal(t, 10*time.Minute, cfg.Sweeper.Interval())
	assert.Equal(t, time.Hour, cfg.Sweeper.MaxAge())
	assert.Equal(t, time.Minute, cfg.Server.ReadTimeout())
	assert.NotEmpty(t, cfg.Normalizer.WorkRoot())
}

func TestDurationAccessorsUseConfiguredValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Normalizer.PollIntervalMS = 50
	cfg.Normalizer.PollAttempts = 3
	cfg.Converter.ProcessTimeoutMS = 1500
	cfg.Normalizer.WorkDir = "/srv/normalizer"

	assert.Equal(t, 50*time.Millisecond, cfg.Normalizer.PollInterval())
	assert.Equal(t, 3, cfg.Normalizer.PollChecks())
	assert.Equal(t, 1500*time.Millisecond, cfg.Converter.ProcessTimeout())
	assert.Equal(t, "/srv/normalizer", cfg.Normalizer.WorkRoot())
}

func TestSlotsSerializeWithoutProfileIsolation(t *testing.T) {
	cases := []struct {
		name    string
		isolate bool
		max     int
		want    int
	}{
		{name: "isolated uses max", isolate: true, max: 4, want: 4},
		{name: "isolated zero falls back to one", isolate: true, max: 0, want: 1},
		{name: "shared profile serializes", isolate: false, max: 4, want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := ConverterConfig{IsolateProfile: tc.isolate, MaxConcurrent: tc.max}
			assert.Equal(t, tc.want, c.Slots())
		})
	}
}

func TestDefaultSweeperAgeExceedsRequestTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Greater(t, cfg.Sweeper.MaxAge(), cfg.Normalizer.RequestTimeout())
}
