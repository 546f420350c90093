package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"freeze_dryer/internal/models"
	"freeze_dryer/internal/transport"
)

// EnvPrefix prefixes environment overrides, e.g. DRYER_SERIAL_PORT.
const EnvPrefix = "DRYER"

// Config is the resolved service configuration.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	SigningKey string
	TokenTTL   time.Duration

	DefaultDevice models.ConnectionType

	SerialPort   string
	BaudRate     int
	LineAssembly bool

	SimTick         time.Duration
	SimConnectDelay time.Duration
	SimFinishDelay  time.Duration

	RecipesFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "dryer.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("device.default", string(models.ConnectionMock))
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud", transport.DefaultBaudRate)
	v.SetDefault("serial.line_assembly", false)
	v.SetDefault("sim.tick", time.Second)
	v.SetDefault("sim.connect_delay", 500*time.Millisecond)
	v.SetDefault("sim.finish_delay", 5*time.Second)
	v.SetDefault("recipes.file", "")
}

// Load reads the config file at path, or configs/config.yml when path is empty.
// A missing default file is not an error; every key has a default.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Port:            v.GetString("port"),
		DBPath:          v.GetString("db.path"),
		LogLevel:        v.GetString("log.level"),
		SigningKey:      v.GetString("auth.signing_key"),
		TokenTTL:        v.GetDuration("auth.token_ttl"),
		DefaultDevice:   models.ConnectionType(strings.ToLower(strings.TrimSpace(v.GetString("device.default")))),
		SerialPort:      v.GetString("serial.port"),
		BaudRate:        v.GetInt("serial.baud"),
		LineAssembly:    v.GetBool("serial.line_assembly"),
		SimTick:         v.GetDuration("sim.tick"),
		SimConnectDelay: v.GetDuration("sim.connect_delay"),
		SimFinishDelay:  v.GetDuration("sim.finish_delay"),
		RecipesFile:     v.GetString("recipes.file"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DefaultDevice {
	case models.ConnectionMock, models.ConnectionSerial:
	default:
		return fmt.Errorf("config: device.default must be %q or %q, got %q",
			models.ConnectionMock, models.ConnectionSerial, c.DefaultDevice)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("config: serial.baud must be positive, got %d", c.BaudRate)
	}
	if c.SimTick <= 0 {
		return fmt.Errorf("config: sim.tick must be positive, got %v", c.SimTick)
	}
	if c.SimConnectDelay < 0 || c.SimFinishDelay < 0 {
		return errors.New("config: sim delays must not be negative")
	}
	return nil
}
