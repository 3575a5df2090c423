package mechkit

import (
	"fmt"
	"os"
	"reflect"

	"github.com/spf13/viper"

	"github.com/mechkit/mechkit/pkg/errorsx"
	"github.com/mechkit/mechkit/pkg/gateway"
)

// Config is the full runtime configuration, normally loaded from a
// YAML file. Every field has a default, so an empty (or absent) file
// yields a working engine.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Redact   RedactConfig   `mapstructure:"redact"`
	Gateway  gateway.Config `mapstructure:"gateway"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Irys     IrysConfig     `mapstructure:"irys"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type RedactConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// UpstreamConfig shapes the shared HTTP client. RetryAttempts covers
// transport-level failures only; rate-limit handling is driven by the
// key pool, not by this policy.
type UpstreamConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	RetryAttempts  int `mapstructure:"retry_attempts"`
	RetryBackoffMS int `mapstructure:"retry_backoff_ms"`
}

// MetricsConfig selects the observer stack. JSONLPath of "" disables
// the file sink, SampleRate 1.0 keeps every event and AsyncBuffer 0
// keeps recording synchronous.
type MetricsConfig struct {
	JSONLPath   string  `mapstructure:"jsonl_path"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	AsyncBuffer int     `mapstructure:"async_buffer"`
}

type IrysConfig struct {
	Devnet bool `mapstructure:"devnet"`
}

// LoadConfig reads the YAML file at path, layers it over the defaults
// and validates the result. An empty path skips the file entirely and
// returns the defaults, which is what one-shot CLI invocations use.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorsx.Wrap(err, errorsx.ReasonConfig)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorsx.Wrap(err, errorsx.ReasonConfig)
	}

	expandEnvStrings(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, errorsx.Wrap(err, errorsx.ReasonConfig)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("redact.enabled", true)
	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 8089)
	v.SetDefault("gateway.path", "/mech")
	v.SetDefault("upstream.timeout_seconds", 30)
	v.SetDefault("upstream.retry_attempts", 0)
	v.SetDefault("upstream.retry_backoff_ms", 250)
	v.SetDefault("metrics.jsonl_path", "")
	v.SetDefault("metrics.sample_rate", 1.0)
	v.SetDefault("metrics.async_buffer", 0)
	v.SetDefault("irys.devnet", false)
}

// Validate reports the first out-of-range field. Zero values that the
// defaults cannot produce (a missing port, a zero timeout) are treated
// as configuration mistakes rather than silently patched.
func (c Config) Validate() error {
	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port must be between 1 and 65535, got %d", c.Gateway.Port)
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("upstream.timeout_seconds must be positive, got %d", c.Upstream.TimeoutSeconds)
	}
	if c.Upstream.RetryAttempts < 0 {
		return fmt.Errorf("upstream.retry_attempts must not be negative, got %d", c.Upstream.RetryAttempts)
	}
	if c.Upstream.RetryBackoffMS < 0 {
		return fmt.Errorf("upstream.retry_backoff_ms must not be negative, got %d", c.Upstream.RetryBackoffMS)
	}
	if c.Metrics.SampleRate < 0 || c.Metrics.SampleRate > 1 {
		return fmt.Errorf("metrics.sample_rate must be within [0, 1], got %v", c.Metrics.SampleRate)
	}
	if c.Metrics.AsyncBuffer < 0 {
		return fmt.Errorf("metrics.async_buffer must not be negative, got %d", c.Metrics.AsyncBuffer)
	}
	return nil
}

// expandEnvStrings substitutes ${VAR} references in every string field
// so secrets and host names can live in the environment instead of the
// config file.
func expandEnvStrings(cfg *Config) {
	expandValue(reflect.ValueOf(cfg).Elem())
}

func expandValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer:
		if !v.IsNil() {
			expandValue(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			expandValue(v.Field(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(os.ExpandEnv(v.String()))
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			expandValue(v.Index(i))
		}
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && v.Type().Elem().Kind() == reflect.String {
			for _, key := range v.MapKeys() {
				expanded := os.ExpandEnv(v.MapIndex(key).String())
				v.SetMapIndex(key, reflect.ValueOf(expanded))
			}
		}
	}
}
