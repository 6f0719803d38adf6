package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "fitosanitario/common/config"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config fitosanitario configuration
type Config struct {
	Database commoncfg.DatabaseConfig `yaml:"database"`
	// Roles role names registered with the connection provider
	Roles   []string              `yaml:"roles" validate:"min=1,dive,oneof=admin productor asistente_tecnico propietario"`
	Redis   commoncfg.RedisConfig `yaml:"redis"`
	MQTT    MQTTConfig            `yaml:"mqtt"`
	ICA     ICAConfig             `yaml:"ica"`
	Alerts  AlertsConfig          `yaml:"alerts"`
	Reports ReportsConfig         `yaml:"reports"`
	HTTP    struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=json console"`
	} `yaml:"log"`
}

// MQTTConfig alert publishing over MQTT
type MQTTConfig struct {
	commoncfg.MQTTConfig `yaml:",inline"`
	Enabled              bool   `yaml:"enabled"`
	Topic                string `yaml:"topic" validate:"required_if=Enabled true"`
}

// ICAConfig regulator webhook used for critical alerts
type ICAConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint" validate:"required_if=Enabled true,omitempty,url"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AlertsConfig alert store selection
type AlertsConfig struct {
	Store     string `yaml:"store" validate:"oneof=memory redis"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ReportsConfig report output
type ReportsConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// AllRoles every role the connection provider knows about
var AllRoles = []string{"admin", "productor", "asistente_tecnico", "propietario"}

// Load reads .env (if present), the optional CONFIG_FILE yaml and environment overrides,
// then validates the result.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the local development configuration
func Defaults() *Config {
	cfg := &Config{}
	cfg.Database = commoncfg.DatabaseConfig{
		Driver:   "postgres",
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "fitosanitario",
		SSLMode:  "disable",
		Path:     "fitosanitario.db",
		MaxConns: 10,
		MaxIdle:  2,
	}
	cfg.Roles = append([]string(nil), AllRoles...)
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "fitosanitario"
	cfg.MQTT.Topic = "fitosanitario/alertas"
	cfg.ICA.Timeout = 10 * time.Second
	cfg.Alerts.Store = "memory"
	cfg.Alerts.KeyPrefix = "fito:alertas:"
	cfg.Reports.OutputDir = "."
	cfg.HTTP.Addr = ":8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Database.LoadFromEnv("DB")
	c.Redis.LoadFromEnv("REDIS")
	c.MQTT.MQTTConfig.LoadFromEnv("MQTT")

	if roles := os.Getenv("DB_ROLES"); roles != "" {
		c.Roles = splitList(roles)
	}

	c.MQTT.Enabled = parseBool(getEnv("MQTT_ENABLED", strconv.FormatBool(c.MQTT.Enabled)), c.MQTT.Enabled)
	c.MQTT.Topic = getEnv("MQTT_TOPIC", c.MQTT.Topic)

	c.ICA.Enabled = parseBool(getEnv("ICA_ENABLED", strconv.FormatBool(c.ICA.Enabled)), c.ICA.Enabled)
	c.ICA.Endpoint = getEnv("ICA_ENDPOINT", c.ICA.Endpoint)
	c.ICA.Token = getEnv("ICA_TOKEN", c.ICA.Token)
	c.ICA.Timeout = parseDuration(getEnv("ICA_TIMEOUT", ""), c.ICA.Timeout)

	c.Alerts.Store = strings.ToLower(getEnv("ALERT_STORE", c.Alerts.Store))
	c.Alerts.KeyPrefix = getEnv("ALERT_KEY_PREFIX", c.Alerts.KeyPrefix)
	c.Reports.OutputDir = getEnv("REPORT_OUTPUT_DIR", c.Reports.OutputDir)
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

var validate = validator.New()

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
