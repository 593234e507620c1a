package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/wfunc/mahjongtable/layout"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Render   RenderConfig   `mapstructure:"render"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Database DatabaseConfig `mapstructure:"database"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type FeedConfig struct {
	URL       string        `mapstructure:"url"`
	Username  string        `mapstructure:"username"`
	Heartbeat time.Duration `mapstructure:"heartbeat"`
	// Listen 是 feed 子命令的监听地址
	Listen string `mapstructure:"listen"`
}

type RenderConfig struct {
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	ShadowMapSize int           `mapstructure:"shadow_map_size"`
	ShadowBlur    int           `mapstructure:"shadow_blur"`
	InitialHand   []string      `mapstructure:"initial_hand"`
}

type MonitorConfig struct {
	Address string `mapstructure:"address"`
}

type RPCConfig struct {
	Address string `mapstructure:"address"`
}

const (
	DriverGorm   = "gorm"
	DriverSQL    = "sql"
	DriverMemory = "memory"
)

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("feed.url", "ws://127.0.0.1:5000/ws")
	v.SetDefault("feed.username", "Guest")
	v.SetDefault("feed.heartbeat", 10*time.Second)
	v.SetDefault("feed.listen", ":5000")
	v.SetDefault("render.frame_interval", 16*time.Millisecond)
	v.SetDefault("render.shadow_map_size", 2048)
	v.SetDefault("render.shadow_blur", 32)
	v.SetDefault("monitor.address", ":9100")
	v.SetDefault("rpc.address", ":9101")
	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.dbname", "mahjongtable")
}

// LoadConfig reads config.yaml from path, or path itself when it names a
// file. A missing config.yaml is not an error; defaults and MAHJONG_*
// environment variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("MAHJONG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

var ErrUnknownDriver = errors.New("unknown database driver")

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverGorm, DriverSQL, DriverMemory:
	default:
		return ErrUnknownDriver
	}
	if len(c.Render.InitialHand) > layout.HandCapacity {
		return fmt.Errorf("render.initial_hand holds at most %d tiles", layout.HandCapacity)
	}
	return nil
}
