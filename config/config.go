package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	PRPC     PRPCConfig     `json:"prpc"`
	Polling  PollingConfig  `json:"polling"`
	Cache    CacheConfig    `json:"cache"`
	Redis    RedisConfig    `json:"redis"`
	GeoIP    GeoIPConfig    `json:"geoip"`
	MongoDB  MongoDBConfig  `json:"mongodb"`
	Versions VersionsConfig `json:"versions"`
	Alerts   AlertsConfig   `json:"alerts"`
	Discord  DiscordConfig  `json:"discord"`
}

type ServerConfig struct {
	Port           int      `json:"port"`
	Host           string   `json:"host"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type PRPCConfig struct {
	Endpoint   string `json:"endpoint"`
	Timeout    int    `json:"timeout_seconds"`
	MaxRetries int    `json:"max_retries"`
}

type PollingConfig struct {
	PollInterval     int `json:"poll_interval_seconds"`
	SnapshotInterval int `json:"snapshot_interval_minutes"`
}

type CacheConfig struct {
	TTL int `json:"ttl_seconds"`
}

type RedisConfig struct {
	Address    string `json:"address"`
	Password   string `json:"password"`
	DB         int    `json:"db"`
	Enabled    bool   `json:"enabled"`
	UseTLS     bool   `json:"use_tls"`
	HistoryKey string `json:"history_key"`
}

type GeoIPConfig struct {
	DBPath string `json:"db_path"`
}

type MongoDBConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	Enabled  bool   `json:"enabled"`
}

// VersionsConfig sets the software version floors used for the
// version_mismatch check.
type VersionsConfig struct {
	CurrentStable string `json:"current_stable"`
	MinSupported  string `json:"min_supported"`
	Deprecated    string `json:"deprecated"`
}

type AlertsConfig struct {
	DedupWindowMinutes int    `json:"dedup_window_minutes"`
	WebhookURL         string `json:"webhook_url"`
}

// DiscordConfig is secret-bearing, so it is env-only: no JSON fields.
type DiscordConfig struct {
	BotToken  string `json:"-"`
	ChannelID string `json:"-"`
}

func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		PRPC: PRPCConfig{
			Endpoint:   "http://localhost:6000",
			Timeout:    10,
			MaxRetries: 3,
		},
		Polling: PollingConfig{
			PollInterval:     30, // evaluation cycle every 30s
			SnapshotInterval: 5,  // trend snapshot every 5m
		},
		Cache: CacheConfig{
			TTL: 30,
		},
		Redis: RedisConfig{
			Address:    "localhost:6379",
			DB:         0,
			Enabled:    true,
			UseTLS:     false,
			HistoryKey: "pnode:metric_history",
		},
		MongoDB: MongoDBConfig{
			URI:      "mongodb://localhost:27017",
			Database: "pnode_analytics",
			Enabled:  true,
		},
		Versions: VersionsConfig{
			CurrentStable: "1.2.0",
			MinSupported:  "1.1.0",
			Deprecated:    "1.0.0",
		},
		Alerts: AlertsConfig{
			DedupWindowMinutes: 60,
		},
	}

	// Config file overrides defaults
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.json"
	}
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err == nil {
			defer file.Close()
			if err := json.NewDecoder(file).Decode(cfg); err != nil {
				fmt.Printf("Warning: failed to decode config file: %v\n", err)
			}
		}
	}

	// Environment overrides config file
	loadEnv(cfg)

	// Flags override everything
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var serverPort int
	var serverHost string
	fs.IntVar(&serverPort, "port", 0, "Server port")
	fs.StringVar(&serverHost, "host", "", "Server host")
	_ = fs.Parse(os.Args[1:])

	if isFlagPassed(fs, "port") {
		cfg.Server.Port = serverPort
	}
	if isFlagPassed(fs, "host") {
		cfg.Server.Host = serverHost
	}

	return cfg, nil
}

func isFlagPassed(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func loadEnv(cfg *Config) {
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = p
		}
	}
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.Server.AllowedOrigins = parts
	}

	if val := os.Getenv("PRPC_ENDPOINT"); val != "" {
		cfg.PRPC.Endpoint = val
	}
	if val := os.Getenv("PRPC_TIMEOUT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.PRPC.Timeout = p
		}
	}
	if val := os.Getenv("PRPC_MAX_RETRIES"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.PRPC.MaxRetries = p
		}
	}

	if val := os.Getenv("POLL_INTERVAL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Polling.PollInterval = p
		}
	}
	if val := os.Getenv("SNAPSHOT_INTERVAL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Polling.SnapshotInterval = p
		}
	}

	if val := os.Getenv("CACHE_TTL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Cache.TTL = p
		}
	}

	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Redis.Address = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = p
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		cfg.Redis.Enabled = val == "true" || val == "1"
	}
	if val := os.Getenv("REDIS_USE_TLS"); val != "" {
		cfg.Redis.UseTLS = val == "true" || val == "1"
	}
	if val := os.Getenv("REDIS_HISTORY_KEY"); val != "" {
		cfg.Redis.HistoryKey = val
	}

	if val := os.Getenv("GEOIP_DB_PATH"); val != "" {
		cfg.GeoIP.DBPath = val
	}

	if val := os.Getenv("MONGODB_URI"); val != "" {
		cfg.MongoDB.URI = val
	}
	if val := os.Getenv("MONGODB_DATABASE"); val != "" {
		cfg.MongoDB.Database = val
	}
	if val := os.Getenv("MONGODB_ENABLED"); val != "" {
		cfg.MongoDB.Enabled = val == "true" || val == "1"
	}

	if val := os.Getenv("VERSION_CURRENT_STABLE"); val != "" {
		cfg.Versions.CurrentStable = val
	}
	if val := os.Getenv("VERSION_MIN_SUPPORTED"); val != "" {
		cfg.Versions.MinSupported = val
	}
	if val := os.Getenv("VERSION_DEPRECATED"); val != "" {
		cfg.Versions.Deprecated = val
	}

	if val := os.Getenv("ALERT_DEDUP_WINDOW"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Alerts.DedupWindowMinutes = p
		}
	}
	if val := os.Getenv("ALERT_WEBHOOK_URL"); val != "" {
		cfg.Alerts.WebhookURL = val
	}

	cfg.Discord.BotToken = os.Getenv("DISCORD_BOT_TOKEN")
	cfg.Discord.ChannelID = os.Getenv("DISCORD_CHANNEL_ID")
}

// Duration helpers.

func (c *Config) PRPCTimeoutDuration() time.Duration {
	return time.Duration(c.PRPC.Timeout) * time.Second
}

func (c *Config) PollIntervalDuration() time.Duration {
	return time.Duration(c.Polling.PollInterval) * time.Second
}

func (c *Config) SnapshotIntervalDuration() time.Duration {
	return time.Duration(c.Polling.SnapshotInterval) * time.Minute
}

func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

func (c *Config) AlertDedupWindow() time.Duration {
	return time.Duration(c.Alerts.DedupWindowMinutes) * time.Minute
}
