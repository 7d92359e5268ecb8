// Package config loads server settings from an optional TOML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendLocal  = "local"
	BackendS3     = "s3"
	BackendWebDAV = "webdav"
)

type Config struct {
	// DataDir holds the database, logs, uploads and the default config file.
	DataDir string `toml:"-"`

	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	Storage StorageConfig `toml:"storage"`
	Janitor JanitorConfig `toml:"janitor"`
	Embed   EmbedConfig   `toml:"embed"`
}

type ServerConfig struct {
	Port  string `toml:"port"`
	Debug bool   `toml:"debug"`
}

type AuthConfig struct {
	AdminUser string `toml:"admin_user"`
	// AdminPasswordHash is an argon2id hash in the form $argon2id$salt$hash.
	AdminPasswordHash string `toml:"admin_password_hash"`
	// AdminPassword is hashed at startup when no hash is set.
	AdminPassword string `toml:"admin_password"`
	JWTSecret     string `toml:"jwt_secret"`
	TokenHours    int    `toml:"token_hours"`
	NonceMinutes  int    `toml:"nonce_minutes"`
}

type StorageConfig struct {
	Backend   string       `toml:"backend"`
	PublicURL string       `toml:"public_url"`
	S3        S3Config     `toml:"s3"`
	WebDAV    WebDAVConfig `toml:"webdav"`
}

type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

type WebDAVConfig struct {
	URL      string `toml:"url"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type JanitorConfig struct {
	// Schedule is a cron spec; empty disables the sweep.
	Schedule string `toml:"schedule"`
}

type EmbedConfig struct {
	Front  bool `toml:"front"`
	Admin  bool `toml:"admin"`
	Editor bool `toml:"editor"`
}

// Default returns the settings used when neither file nor environment say
// otherwise.
func Default() Config {
	return Config{
		DataDir: "data",
		Server:  ServerConfig{Port: "8080"},
		Auth: AuthConfig{
			AdminUser:    "admin",
			TokenHours:   24,
			NonceMinutes: 12 * 60,
		},
		Storage: StorageConfig{Backend: BackendLocal},
		Janitor: JanitorConfig{Schedule: "@daily"},
		Embed:   EmbedConfig{Front: true, Admin: true, Editor: true},
	}
}

// Load builds the configuration from the environment. The data directory
// comes from FONTO_DATA_DIR; the file from FONTO_CONFIG, falling back to
// fonto.toml inside the data directory. A missing default file is not an
// error.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup("FONTO_DATA_DIR"); ok && v != "" {
		cfg.DataDir = v
	}

	path, explicit := lookup("FONTO_CONFIG")
	explicit = explicit && path != ""
	if !explicit {
		path = filepath.Join(cfg.DataDir, "fonto.toml")
	}
	if err := readFile(path, &cfg); err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return cfg, err
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("PORT", &cfg.Server.Port)
	if v, ok := lookup("DEBUG"); ok && v != "" {
		cfg.Server.Debug = true
	}

	str("FONTO_ADMIN_USER", &cfg.Auth.AdminUser)
	str("FONTO_ADMIN_PASSWORD", &cfg.Auth.AdminPassword)
	str("FONTO_ADMIN_PASSWORD_HASH", &cfg.Auth.AdminPasswordHash)
	str("FONTO_JWT_SECRET", &cfg.Auth.JWTSecret)

	str("FONTO_STORAGE", &cfg.Storage.Backend)
	str("FONTO_PUBLIC_URL", &cfg.Storage.PublicURL)
	str("FONTO_S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	str("FONTO_S3_REGION", &cfg.Storage.S3.Region)
	str("FONTO_S3_BUCKET", &cfg.Storage.S3.Bucket)
	str("FONTO_S3_ACCESS_KEY", &cfg.Storage.S3.AccessKey)
	str("FONTO_S3_SECRET_KEY", &cfg.Storage.S3.SecretKey)
	str("FONTO_WEBDAV_URL", &cfg.Storage.WebDAV.URL)
	str("FONTO_WEBDAV_USER", &cfg.Storage.WebDAV.User)
	str("FONTO_WEBDAV_PASSWORD", &cfg.Storage.WebDAV.Password)

	if v, ok := lookup("FONTO_JANITOR_SCHEDULE"); ok {
		cfg.Janitor.Schedule = v
	}

	if v, ok := lookup("FONTO_TOKEN_HOURS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FONTO_TOKEN_HOURS %q: %w", v, err)
		}
		cfg.Auth.TokenHours = n
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendLocal:
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for the s3 backend")
		}
	case BackendWebDAV:
		if c.Storage.WebDAV.URL == "" {
			return errors.New("storage.webdav.url is required for the webdav backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Auth.TokenHours <= 0 {
		return fmt.Errorf("auth.token_hours must be positive, got %d", c.Auth.TokenHours)
	}
	if c.Auth.NonceMinutes <= 0 {
		return fmt.Errorf("auth.nonce_minutes must be positive, got %d", c.Auth.NonceMinutes)
	}
	return nil
}

// DatabaseDSN returns the SQLite connection string for the data directory.
func (c Config) DatabaseDSN() string {
	dbPath := filepath.Join(c.DataDir, "fonto.db")
	return fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)", dbPath)
}
