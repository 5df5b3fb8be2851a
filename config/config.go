package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Game     GameConfig     `mapstructure:"game"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type AdminConfig struct {
	// Key is the shared secret for the admin channel, compared as an
	// exact string match.
	Key string `mapstructure:"key"`
}

// GameConfig holds the per-game settings. It is passed by value into the
// room manager at startup; admin updates go through the manager, never
// through shared globals.
type GameConfig struct {
	BoardSize   int     `mapstructure:"board_size"`
	TaskRatio   float64 `mapstructure:"task_ratio"`
	DareSeconds int     `mapstructure:"dare_seconds"`
}

// TasksConfig optionally overrides the built-in truth/dare library.
type TasksConfig struct {
	Truths []string `mapstructure:"truths"`
	Dares  []string `mapstructure:"dares"`
}

type DatabaseConfig struct {
	// Enabled turns on the finished-game archive. Rooms themselves are
	// always in-memory only.
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "postgres"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9090")
	viper.SetDefault("game.board_size", 40)
	viper.SetDefault("game.task_ratio", 0.3)
	viper.SetDefault("game.dare_seconds", 60)
	viper.SetDefault("database.driver", "gorm")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	err = config.Validate()
	return
}

// Validate rejects settings the game engine cannot run with.
func (c *Config) Validate() error {
	if c.Game.BoardSize < 8 || c.Game.BoardSize%4 != 0 {
		return fmt.Errorf("game.board_size must be >= 8 and divisible by 4, got %d", c.Game.BoardSize)
	}
	if c.Game.TaskRatio < 0 || c.Game.TaskRatio > 1 {
		return fmt.Errorf("game.task_ratio must be in [0,1], got %v", c.Game.TaskRatio)
	}
	if c.Game.DareSeconds <= 0 {
		return fmt.Errorf("game.dare_seconds must be positive, got %d", c.Game.DareSeconds)
	}
	if c.Database.Enabled && c.Database.Driver != "gorm" && c.Database.Driver != "postgres" {
		return fmt.Errorf("database.driver must be \"gorm\" or \"postgres\", got %q", c.Database.Driver)
	}
	return nil
}
