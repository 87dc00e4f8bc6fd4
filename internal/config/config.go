package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FLIPFIGHT_GAME_FREEZE_DURATION.
const EnvPrefix = "FLIPFIGHT"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Game   GameConfig   `mapstructure:"game"`
	WS     WSConfig     `mapstructure:"ws"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GameConfig struct {
	MismatchHideDelay time.Duration `mapstructure:"mismatch_hide_delay"`
	FreezeDuration    time.Duration `mapstructure:"freeze_duration"`
}

type WSConfig struct {
	ReadLimit    int64         `mapstructure:"read_limit"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
	SendBuffer   int           `mapstructure:"send_buffer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("game.mismatch_hide_delay", 900*time.Millisecond)
	v.SetDefault("game.freeze_duration", 5*time.Second)
	v.SetDefault("ws.read_limit", 4096)
	v.SetDefault("ws.write_wait", 10*time.Second)
	v.SetDefault("ws.pong_wait", 60*time.Second)
	v.SetDefault("ws.ping_interval", 25*time.Second)
	v.SetDefault("ws.send_buffer", 64)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads defaults, then the optional YAML file at configPath, then
// FLIPFIGHT_* environment variables. A bare PORT variable overrides the
// listen port.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Game.MismatchHideDelay <= 0 {
		errs = append(errs, errors.New("game.mismatch_hide_delay must be positive"))
	}
	if c.Game.FreezeDuration <= 0 {
		errs = append(errs, errors.New("game.freeze_duration must be positive"))
	}
	if c.WS.ReadLimit <= 0 {
		errs = append(errs, errors.New("ws.read_limit must be positive"))
	}
	if c.WS.PingInterval <= 0 || c.WS.PingInterval >= c.WS.PongWait {
		errs = append(errs, errors.New("ws.ping_interval must be positive and shorter than ws.pong_wait"))
	}
	if c.WS.SendBuffer <= 0 {
		errs = append(errs, errors.New("ws.send_buffer must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
