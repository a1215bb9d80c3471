package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intune-audio/intune/pitch"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigVocalRangePresets(t *testing.T) {
	cases := map[VocalRange][2]float64{
		RangeFull:    {65.0, 1100.0},
		RangeBass:    {65.0, 350.0},
		RangeTenor:   {90.0, 530.0},
		RangeAlto:    {130.0, 700.0},
		RangeSoprano: {175.0, 1100.0},
	}
	for r, want := range cases {
		cfg := DefaultConfig().WithVocalRange(r)
		assert.Equal(t, want[0], cfg.MinFreq, "%s", r)
		assert.Equal(t, want[1], cfg.MaxFreq, "%s", r)
		assert.NoError(t, cfg.Validate(), "%s", r)
	}
}

func TestConfigValidation(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"odd frame size", func(c *Config) { c.FrameSize = 2047 }},
		{"hop >= frame", func(c *Config) { c.HopSize = c.FrameSize }},
		{"zero hop", func(c *Config) { c.HopSize = 0 }},
		{"threshold out of range", func(c *Config) { c.YinThreshold = 1.5 }},
		{"inverted frequencies", func(c *Config) { c.MinFreq, c.MaxFreq = 500, 100 }},
		{"unknown sensitivity", func(c *Config) { c.Sensitivity = "virtuoso" }},
		{"bad reference pitch", func(c *Config) { c.ReferenceA4 = -440 }},
	}
	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigEmptySensitivityIsAccepted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sensitivity = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, pitch.SensitivityStandard.Alpha(), cfg.Sensitivity.Alpha())
}
