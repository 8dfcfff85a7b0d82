package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAgentURL = "http://localhost:8000"
	defaultDataURL  = "http://localhost:5003"
	defaultTimeout  = 120
)

type Profile struct {
	AgentURL       string `json:"agent_url"`
	DataURL        string `json:"data_url"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	currentProfile *Profile
}

func LoadConfig() (*Config, error) {
	// A .env next to the binary may carry overrides; absence is fine.
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	config.applyEnvOverrides()
	return config, nil
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.AgentURL != ""
}

func (c *Config) GetAgentURL() string {
	if c.currentProfile == nil {
		return defaultAgentURL
	}
	return c.currentProfile.AgentURL
}

func (c *Config) GetDataURL() string {
	if c.currentProfile == nil || c.currentProfile.DataURL == "" {
		return defaultDataURL
	}
	return c.currentProfile.DataURL
}

// GetTimeout returns the request timeout for backend exchanges. The agent may
// run long multi-step flows, so the default is generous.
func (c *Config) GetTimeout() time.Duration {
	if c.currentProfile == nil || c.currentProfile.TimeoutSeconds <= 0 {
		return defaultTimeout * time.Second
	}
	return time.Duration(c.currentProfile.TimeoutSeconds) * time.Second
}

// HomeDir returns the directory holding config and logs.
func HomeDir() (string, error) {
	if agentHome := os.Getenv("DBAGENT_HOME"); agentHome != "" {
		return agentHome, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".dbagent"), nil
}

func getConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"default": {
				AgentURL:       defaultAgentURL,
				DataURL:        defaultDataURL,
				TimeoutSeconds: defaultTimeout,
			},
		},
		ActiveProfile: "default",
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if c.Profiles == nil {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// If active profile doesn't exist, fall back to any available one
		for name, p := range c.Profiles {
			c.ActiveProfile = name
			profile = p
			exists = true
			break
		}
	}

	if !exists {
		return fmt.Errorf("no valid profiles found")
	}

	c.currentProfile = &profile
	return nil
}

// applyEnvOverrides lets the environment (.env included) win over the active
// profile without touching the file on disk.
func (c *Config) applyEnvOverrides() {
	if c.currentProfile == nil {
		return
	}
	if v := os.Getenv("DBAGENT_AGENT_URL"); v != "" {
		c.currentProfile.AgentURL = v
	}
	if v := os.Getenv("DBAGENT_DATA_URL"); v != "" {
		c.currentProfile.DataURL = v
	}
	if v := os.Getenv("DBAGENT_TIMEOUT"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.currentProfile.TimeoutSeconds = seconds
		}
	}
}
