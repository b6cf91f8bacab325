package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"vs_express_url/internal/resolver"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTargetURL    = "https://www.visualstudio.com/en-us/products/free-developer-offers-vs.aspx"
	DefaultTableClass   = "apps-table"
	DefaultBannerClass  = "visual-studio"
	DefaultLinkClass    = resolver.DefaultLinkClass
	DefaultFetchTimeout = 30 * time.Second
	DefaultUserAgent    = "vs_express_url/1.0"
)

// NotifyConfig controls publishing the resolved link to ntfy.
type NotifyConfig struct {
	Enabled  bool
	BaseURL  string
	Topic    string
	Priority string
}

// Config holds the values injected into the resolver and fetcher at startup.
type Config struct {
	TargetURL    string
	TableClass   string
	BannerClass  string
	LinkClass    string
	FetchTimeout time.Duration
	UserAgent    string
	Notify       NotifyConfig
}

// Load reads the configuration from the environment, falling back to defaults.
func Load() Config {
	cfg := Config{
		TargetURL:    GetEnvWithDefault("VS_OFFERS_URL", DefaultTargetURL),
		TableClass:   GetEnvWithDefault("VS_TABLE_CLASS", DefaultTableClass),
		BannerClass:  GetEnvWithDefault("VS_BANNER_CLASS", DefaultBannerClass),
		LinkClass:    GetEnvWithDefault("VS_LINK_CLASS", DefaultLinkClass),
		FetchTimeout: getDurationEnv("FETCH_TIMEOUT", DefaultFetchTimeout),
		UserAgent:    GetEnvWithDefault("USER_AGENT", DefaultUserAgent),
		Notify: NotifyConfig{
			Enabled:  getBoolEnv("NTFY_ENABLED", false),
			BaseURL:  GetEnvWithDefault("NTFY_URL", "https://ntfy.sh"),
			Topic:    GetEnvWithDefault("NTFY_TOPIC", "vs-express-url"),
			Priority: os.Getenv("NTFY_PRIORITY"),
		},
	}

	log.Debug().
		Str("target_url", cfg.TargetURL).
		Str("table_class", cfg.TableClass).
		Str("banner_class", cfg.BannerClass).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Bool("notify", cfg.Notify.Enabled).
		Msg("Loaded configuration")

	return cfg
}

// Validate reports every missing or out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	if c.TargetURL == "" {
		errs = append(errs, errors.New("target URL is empty"))
	}
	if c.TableClass == "" {
		errs = append(errs, errors.New("table class is empty"))
	}
	if c.BannerClass == "" {
		errs = append(errs, errors.New("banner class is empty"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Notify.Enabled && c.Notify.Topic == "" {
		errs = append(errs, errors.New("notification topic is empty"))
	}
	return errors.Join(errs...)
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msgf("Invalid duration, defaulting to %s", defaultValue)
		return defaultValue
	}
	return d
}

func getBoolEnv(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msgf("Invalid boolean, defaulting to %t", defaultValue)
		return defaultValue
	}
	return b
}
