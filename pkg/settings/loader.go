package settings

import (
	"errors"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	environment map[string]string
	prefix      string
	file        string
	envFiles    []string
	skipDotEnv  bool
}

// WithFile overlays a YAML settings file on top of the defaults.
func WithFile(path string) LoadOption {
	return func(c *loadConfig) {
		c.file = path
	}
}

// WithPrefix sets the environment variable prefix. Defaults to "RELAY_".
func WithPrefix(prefix string) LoadOption {
	return func(c *loadConfig) {
		c.prefix = prefix
	}
}

// WithEnvFiles sets the dotenv files to load. Defaults to ".env".
func WithEnvFiles(files ...string) LoadOption {
	return func(c *loadConfig) {
		c.envFiles = files
	}
}

// WithEnvironment replaces the process environment, and skips dotenv loading.
// Mostly useful in tests.
func WithEnvironment(vars map[string]string) LoadOption {
	return func(c *loadConfig) {
		c.environment = vars
		c.skipDotEnv = true
	}
}

// Load builds Settings from defaults, then the YAML file (if any), then
// environment variables. Later sources win.
//
// Example:
//
//	cfg, err := settings.Load(settings.WithFile("config/settings.yaml"))
//	if err != nil {
//	    return err
//	}
func Load(opts ...LoadOption) (*Settings, error) {
	c := &loadConfig{prefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(c)
	}

	if !c.skipDotEnv {
		// A missing .env file is fine.
		_ = godotenv.Load(c.envFiles...)
	}

	s := Default()

	if c.file != "" {
		data, err := os.ReadFile(c.file)
		if err != nil {
			return nil, errors.Join(ErrReadingFile, err)
		}
		if err := Parse(data, s); err != nil {
			return nil, err
		}
	}

	envOpts := env.Options{Prefix: c.prefix}
	if c.environment != nil {
		envOpts.Environment = c.environment
	}
	if err := env.ParseWithOptions(s, envOpts); err != nil {
		return nil, errors.Join(ErrParsingEnv, err)
	}

	return s, nil
}

// Parse decodes YAML settings into s, keeping values not present in data.
func Parse(data []byte, s *Settings) error {
	if err := yaml.Unmarshal(data, s); err != nil {
		return errors.Join(ErrParsingFile, err)
	}
	return nil
}
