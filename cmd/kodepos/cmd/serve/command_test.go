package serve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodepos-id/kodepos/internal/cmd/application"
)

func TestParseConfigDefaults(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.PathPrefix)
	assert.True(t, cfg.MetricsEnabled)
}

func TestParseConfigAddr(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{"--addr", ":9090", "--cache-ttl", "0s", "--metrics=false"}))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.MetricsEnabled)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"addr without port", []string{"--addr", "localhost"}},
		{"addr with bad port", []string{"--addr", ":http-alt"}},
		{"port out of range", []string{"--port", "70000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand(&application.Mock{})
			require.NoError(t, cmd.ParseFlags(tt.args))
			_, err := parseConfig(cmd)
			assert.Error(t, err)
		})
	}
}
