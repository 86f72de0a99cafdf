package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Viewer ViewerConfig `yaml:"viewer"`
	CDN    CDNConfig    `yaml:"cdn"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ViewerConfig controls the public-facing side: BaseURL is the origin
// viewer share links are minted against.
type ViewerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CDNConfig points media uploads at a storage zone. When Zone is empty the
// server keeps uploads in memory, which only makes sense for development.
type CDNConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Zone      string `yaml:"zone"`
	AccessKey string `yaml:"access_key"`
	PullZone  string `yaml:"pull_zone"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "proofkit.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Viewer: ViewerConfig{
			BaseURL: "http://localhost:8080",
		},
		CDN: CDNConfig{
			Endpoint: "https://storage.bunnycdn.com",
		},
	}

	if path := os.Getenv("PROOFKIT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("PROOFKIT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PROOFKIT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROOFKIT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PROOFKIT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PROOFKIT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if baseURL := os.Getenv("PROOFKIT_VIEWER_BASE_URL"); baseURL != "" {
		cfg.Viewer.BaseURL = baseURL
	}
	if endpoint := os.Getenv("PROOFKIT_CDN_ENDPOINT"); endpoint != "" {
		cfg.CDN.Endpoint = endpoint
	}
	if zone := os.Getenv("PROOFKIT_CDN_ZONE"); zone != "" {
		cfg.CDN.Zone = zone
	}
	if accessKey := os.Getenv("PROOFKIT_CDN_ACCESS_KEY"); accessKey != "" {
		cfg.CDN.AccessKey = accessKey
	}
	if pullZone := os.Getenv("PROOFKIT_CDN_PULL_ZONE"); pullZone != "" {
		cfg.CDN.PullZone = pullZone
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
