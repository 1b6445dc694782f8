package haproxyadmin

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults applied for any zero-valued Config field at construction.
const (
	DefaultAddress = "127.0.0.1"
	DefaultPort    = "1023"
	DefaultTimeout = 600 * time.Second
)

// Config declares one runtime API endpoint. The zero value is usable:
// normalize fills the package defaults before the first dial.
type Config struct {
	Address string
	Port    string
	Timeout time.Duration
	Debug   bool
}

type fileConfig struct {
	Address        string `toml:"address"`
	Port           string `toml:"port"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Debug          bool   `toml:"debug"`
}

// LoadConfig reads one endpoint declaration from a TOML file and
// applies the package defaults for omitted fields.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	cfg := Config{
		Address: fc.Address,
		Port:    fc.Port,
		Debug:   fc.Debug,
	}
	if fc.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	cfg = cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize fills defaults for omitted fields.
func (c Config) normalize() Config {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = DefaultAddress
	}
	if strings.TrimSpace(c.Port) == "" {
		c.Port = DefaultPort
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Validate rejects an endpoint still incomplete after defaulting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w: address", ErrMissingEndpoint)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("%w: port", ErrMissingEndpoint)
	}
	return nil
}

// timeoutCommand is the server-side idle timeout directive. It is
// cached at construction and doubles as the liveness probe payload.
func (c Config) timeoutCommand() string {
	return fmt.Sprintf("set timeout cli %d\n", int(c.Timeout/time.Second))
}
