package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Session store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Dashboard DashboardConfig
	API       APIConfig
	Session   SessionConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	DevAPI    DevAPIConfig
}

type DashboardConfig struct {
	Listen string `env:"DASHBOARD_LISTEN, default=:8080"`
	// LoginRateLimit is requests per minute per client IP on login and
	// register.
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT, default=20"`
}

type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:1337"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=15s"`
}

type SessionConfig struct {
	Backend   string `env:"SESSION_BACKEND,    default=file"`
	File      string `env:"SESSION_FILE"`
	KeyPrefix string `env:"SESSION_KEY_PREFIX, default=dashboard:session:"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dashboard"`
}

type RedisConfig struct {
	// Addr is one address, or a comma-separated list for cluster mode.
	Addr       string `env:"REDIS_ADDR,        default=localhost:6379"`
	MasterName string `env:"REDIS_MASTER_NAME"`
	Password   string `env:"REDIS_PASSWORD"`
	DB         int    `env:"REDIS_DB,          default=0"`
}

type DevAPIConfig struct {
	Listen    string        `env:"DEVAPI_LISTEN,     default=:1337"`
	JWTSecret string        `env:"DEVAPI_JWT_SECRET, default=dev-secret"`
	TokenTTL  time.Duration `env:"DEVAPI_TOKEN_TTL,  default=24h"`
	SeedFile  string        `env:"DEVAPI_SEED_FILE"`
}

// Load reads an optional .env file and then the environment. envFile ""
// means ".env" in the working directory; a missing file is not an error.
func Load(ctx context.Context, envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}
	return FromLookuper(ctx, envconfig.OsLookuper())
}

// FromLookuper builds a Config from l, without touching .env files.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether human-friendly defaults apply.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func (c *Config) normalize() error {
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case BackendFile, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("config: SESSION_BACKEND %q is not one of file, redis, mongo", c.Session.Backend)
	}
	if c.Session.File == "" {
		c.Session.File = defaultSessionFile()
	}
	if c.API.Timeout <= 0 {
		return errors.New("config: API_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("config: API_BASE_URL is required")
	}
	if c.Dashboard.LoginRateLimit < 0 {
		return errors.New("config: LOGIN_RATE_LIMIT must not be negative")
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "inkwell-dashboard", "session.json")
}
