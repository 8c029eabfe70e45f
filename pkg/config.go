// config.go
package loadstate

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service configuration, loaded from an optional
// loadstate.yaml plus LOADSTATE_* environment variables.
type Config struct {
	ListenAddr   string        `mapstructure:"listen_addr"`
	RedisAddr    string        `mapstructure:"redis_addr"`
	SuccessTTL   time.Duration `mapstructure:"success_ttl"`
	ExpiryPolicy string        `mapstructure:"expiry_policy"`
	RecentCap    int64         `mapstructure:"recent_cap"`
}

// Policy maps the configured expiry-policy string onto an ExpiryPolicy.
// Unknown values fall back to the fire-and-forget default.
func (c Config) Policy() ExpiryPolicy {
	if strings.EqualFold(c.ExpiryPolicy, "reset-on-success") {
		return ExpireResetOnSuccess
	}
	return ExpireFireAndForget
}

// LoadConfig reads the configuration. A missing config file is not an
// error; defaults and environment variables apply either way.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", "0.0.0.0:8080")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("success_ttl", DefaultSuccessTTL)
	v.SetDefault("expiry_policy", "fire-and-forget")
	v.SetDefault("recent_cap", DefaultRecentCap)

	v.SetEnvPrefix("loadstate")
	v.AutomaticEnv()

	v.SetConfigName("loadstate")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
