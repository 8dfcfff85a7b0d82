package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	t.Setenv("DBAGENT_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsValid())
	assert.Equal(t, "default", cfg.ActiveProfile)
	assert.Equal(t, "http://localhost:8000", cfg.GetAgentURL())
	assert.Equal(t, "http://localhost:5003", cfg.GetDataURL())
	assert.Equal(t, 120*time.Second, cfg.GetTimeout())
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("DBAGENT_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Profiles["staging"] = Profile{
		AgentURL:       "http://staging:8000",
		DataURL:        "http://staging:5003",
		TimeoutSeconds: 30,
	}
	cfg.ActiveProfile = "staging"
	require.NoError(t, cfg.Save())

	reloaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", reloaded.ActiveProfile)
	assert.Equal(t, "http://staging:8000", reloaded.GetAgentURL())
	assert.Equal(t, 30*time.Second, reloaded.GetTimeout())
}

func TestActiveProfileFallback(t *testing.T) {
	t.Setenv("DBAGENT_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.ActiveProfile = "missing"
	require.NoError(t, cfg.Save())

	reloaded, err := LoadConfig()
	require.NoError(t, err)
	// Falls back to whichever profile exists
	assert.Equal(t, "default", reloaded.ActiveProfile)
	assert.True(t, reloaded.IsValid())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DBAGENT_HOME", t.TempDir())
	t.Setenv("DBAGENT_AGENT_URL", "http://override:9000")
	t.Setenv("DBAGENT_TIMEOUT", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://override:9000", cfg.GetAgentURL())
	assert.Equal(t, 7*time.Second, cfg.GetTimeout())
	// Override is in-memory only
	assert.Equal(t, "http://localhost:8000", cfg.Profiles["default"].AgentURL)
}
