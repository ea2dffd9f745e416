// Package config loads gofind settings from an optional YAML file and
// GOFIND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rendis/gofind/internal/logging"
)

const envPrefix = "GOFIND"

const (
	DefaultCountriesURL  = "https://restcountries.com/v3.1/all?fields=name,cca3,capital,region,subregion,population,languages,latlng,flag"
	DefaultBoundariesURL = "https://af-country-rest-api-pepl.vercel.app/Data/dataset/ne_110m_admin_0_countries.geojson"
	DefaultLookupURL     = "https://restcountries.com/v3.1/name/"
)

type Config struct {
	Gateway GatewayConfig     `mapstructure:"gateway"`
	Render  RenderConfig      `mapstructure:"render"`
	Log     logging.LogConfig `mapstructure:"log"`
}

type GatewayConfig struct {
	CountriesURL   string        `mapstructure:"countries_url"`
	BoundariesURL  string        `mapstructure:"boundaries_url"`
	LookupURL      string        `mapstructure:"lookup_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	TLSFingerprint string        `mapstructure:"tls_fingerprint"` // "", "none" or "chrome"
	ProxyURL       string        `mapstructure:"proxy_url"`
}

type RenderConfig struct {
	FPS      int     `mapstructure:"fps"`
	Speed    float64 `mapstructure:"speed"`    // degrees of longitude per tick
	Altitude float64 `mapstructure:"altitude"` // initial camera altitude in globe radii
}

// FrameInterval is the delay between two render ticks.
func (r RenderConfig) FrameInterval() time.Duration {
	if r.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(r.FPS)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.countries_url", DefaultCountriesURL)
	v.SetDefault("gateway.boundaries_url", DefaultBoundariesURL)
	v.SetDefault("gateway.lookup_url", DefaultLookupURL)
	v.SetDefault("gateway.timeout", 15*time.Second)
	v.SetDefault("gateway.tls_fingerprint", "none")
	v.SetDefault("gateway.proxy_url", "")
	v.SetDefault("render.fps", 60)
	v.SetDefault("render.speed", 0.2)
	v.SetDefault("render.altitude", 2.5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", logging.DefaultOutput())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// DefaultPath is the config file picked up when --config is not given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gofind", "config.yaml")
}

// Load reads path (if non-empty) on top of the defaults and env overrides.
// A missing file at the default location is not an error; a missing
// explicitly requested file is.
func Load(path string) (*Config, error) {
	v := newViper()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
				return nil, fmt.Errorf("reading config %q: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{
		"gateway.countries_url":  c.Gateway.CountriesURL,
		"gateway.boundaries_url": c.Gateway.BoundariesURL,
		"gateway.lookup_url":     c.Gateway.LookupURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: %q is not an absolute URL", name, raw))
		}
	}
	if c.Gateway.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("gateway.timeout must be positive"))
	}
	switch c.Gateway.TLSFingerprint {
	case "", "none", "chrome":
	default:
		errs = append(errs, fmt.Errorf("gateway.tls_fingerprint: unknown value %q", c.Gateway.TLSFingerprint))
	}
	if c.Render.FPS <= 0 || c.Render.FPS > 120 {
		errs = append(errs, fmt.Errorf("render.fps must be between 1 and 120"))
	}
	if c.Render.Altitude <= 0 {
		errs = append(errs, fmt.Errorf("render.altitude must be positive"))
	}
	return errors.Join(errs...)
}
