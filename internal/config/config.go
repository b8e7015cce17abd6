package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when neither --config nor BOOKFINDER_CONFIG is set.
const DefaultConfigPath = "~/.config/bookfinder/config.yaml"

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port int    `yaml:"port" default:"8080" validate:"min=1,max=65535"`
}

type CatalogConfig struct {
	BaseURL           string        `yaml:"base_url" default:"https://www.googleapis.com/books/v1" validate:"required,url"`
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout" default:"10s" validate:"min=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" default:"5" validate:"min=0"`
	Burst             int           `yaml:"burst" default:"5" validate:"min=0"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" default:"file" validate:"oneof=file sqlite memory"`
	Path   string `yaml:"path" default:"~/.config/bookfinder"`
}

type DisplayConfig struct {
	WindowSize           int  `yaml:"window_size" default:"5" validate:"min=1"`
	SanitizeDescriptions bool `yaml:"sanitize_descriptions"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json text"`
}

var validate = validator.New()

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	// only fails on malformed default tags
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getenv("BOOKFINDER_CONFIG", DefaultConfigPath)
	}
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errors.Wrap(err, "reading config file")
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parsing config file")
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.Path, err = expandPath(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "PORT=%q", v)
		}
		cfg.Server.Port = port
	}
	cfg.Catalog.BaseURL = getenv("BOOKFINDER_CATALOG_URL", cfg.Catalog.BaseURL)
	cfg.Catalog.APIKey = getenv("BOOKFINDER_API_KEY", cfg.Catalog.APIKey)
	cfg.Storage.Driver = getenv("BOOKFINDER_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Path = getenv("BOOKFINDER_STORAGE_PATH", cfg.Storage.Path)
	cfg.Logging.Level = getenv("BOOKFINDER_LOG_LEVEL", cfg.Logging.Level)
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolving home directory")
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
