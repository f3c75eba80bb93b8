package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses yaml values like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	Environment  string   `yaml:"environment"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

type RemoteStoreConfig struct {
	BaseURL string   `yaml:"base_url"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout"`
}

type SchedulerConfig struct {
	ScanInterval Duration `yaml:"scan_interval"`
	FireWindow   Duration `yaml:"fire_window"`
	SnoozeDelay  Duration `yaml:"snooze_delay"`
}

type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	Password string `yaml:"smtp_password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

type NotifyConfig struct {
	ToastCapacity     int         `yaml:"toast_capacity"`
	DesktopPermission string      `yaml:"desktop_permission"`
	Email             EmailConfig `yaml:"email"`
}

type DatabaseConfig struct {
	DSN             string   `yaml:"dsn"`
	Name            string   `yaml:"name"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	RequestsPerMin int `yaml:"requests_per_min"`
	BurstSize      int `yaml:"burst_size"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	RemoteStore RemoteStoreConfig `yaml:"remote_store"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Notify      NotifyConfig      `yaml:"notify"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	JWTSecret   string            `yaml:"jwt_secret"`
	PrefsPath   string            `yaml:"prefs_path"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Environment:  "development",
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(10 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		RemoteStore: RemoteStoreConfig{
			BaseURL: "http://localhost:8081",
			Timeout: Duration(10 * time.Second),
		},
		Scheduler: SchedulerConfig{
			ScanInterval: Duration(30 * time.Second),
			FireWindow:   Duration(60 * time.Second),
			SnoozeDelay:  Duration(5 * time.Minute),
		},
		Notify: NotifyConfig{
			ToastCapacity:     50,
			DesktopPermission: "default",
		},
		Database: DatabaseConfig{
			Name:            "zest_task_dash",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: Duration(time.Hour),
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMin: 300,
			BurstSize:      20,
		},
		PrefsPath: "prefs.yaml",
	}
}

// LoadConfig reads the yaml file at path (skipped when missing) and then
// applies environment overrides, so deployments can stay file-less.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Server.Environment = v
	}
	if v := os.Getenv("REMOTE_STORE_URL"); v != "" {
		cfg.RemoteStore.BaseURL = v
	}
	if v := os.Getenv("REMOTE_STORE_TOKEN"); v != "" {
		cfg.RemoteStore.Token = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
