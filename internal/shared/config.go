package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Feed        FeedConfig        `toml:"feed"`
	Hubs        HubsConfig        `toml:"hubs"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains SpotiBuds backend credentials and endpoints.
type CredentialsConfig struct {
	APIBaseURL     string `toml:"api_base_url"`
	IdentityUserID string `toml:"identity_user_id"`
	Username       string `toml:"username"`
	AccessToken    string `toml:"access_token"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RedirectURI    string `toml:"redirect_uri"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// FeedConfig contains feed ordering and caching knobs.
type FeedConfig struct {
	PageLimit        int     `toml:"page_limit"`
	ShuffleChunkSize int     `toml:"shuffle_chunk_size"`
	SeenTTLHours     int     `toml:"seen_ttl_hours"`
	CacheCapacity    int     `toml:"cache_capacity"`
	CacheTTLMinutes  int     `toml:"cache_ttl_minutes"`
	RateLimit        float64 `toml:"rate_limit"`
}

// HubsConfig contains the realtime push channel endpoints.
type HubsConfig struct {
	FriendsURL       string `toml:"friends_url"`
	NotificationsURL string `toml:"notifications_url"`
}

// ServerConfig contains OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig writes the configuration back to a TOML file, replacing
// any existing content. Used to persist tokens after login.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
