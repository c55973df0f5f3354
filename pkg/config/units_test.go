package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"15s", 15 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"250ms", 250 * time.Millisecond, false},
		{"5", 5 * time.Second, false},
		{"0.5", 500 * time.Millisecond, false},
		{" 2m ", 2 * time.Minute, false},
		{"", 0, false},
		{"-1s", 0, true},
		{"-3", 0, true},
		{"1d", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	type timeouts struct {
		Read     Duration `yaml:"read"`
		Interval Duration `yaml:"interval"`
	}

	var cfg timeouts
	require.NoError(t, yaml.Unmarshal([]byte("read: 20s\ninterval: 3\n"), &cfg))
	assert.Equal(t, 20*time.Second, time.Duration(cfg.Read))
	assert.Equal(t, 3*time.Second, time.Duration(cfg.Interval))

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "read: 20s\ninterval: 3s\n", string(out))

	err = yaml.Unmarshal([]byte("read: 20s\ninterval: -5s\n"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
