package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the game, the server and logging.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Autogen AutogenConfig `yaml:"autogen"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// GameConfig holds the parameters of a new game
type GameConfig struct {
	Side       int    `yaml:"side"`
	ShipMax    int    `yaml:"ship_max"`
	Mode       string `yaml:"mode"`       // "bot" or "hs"
	Difficulty int    `yaml:"difficulty"` // 0 easy, 1 hard
	Seed       int64  `yaml:"seed"`       // 0 means time based
}

// AutogenConfig bounds automatic fleet placement
type AutogenConfig struct {
	UniformBudget time.Duration `yaml:"uniform_budget"`
	ZonedBudget   time.Duration `yaml:"zoned_budget"`
	MaxResets     int           `yaml:"max_resets"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	KeysDir     string `yaml:"keys_dir"`
	EventBuffer int    `yaml:"event_buffer"`
	MaxGames    int    `yaml:"max_games"`
}

// LogConfig selects level and output format
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. A missing file is not an
// error; defaults are returned instead.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Game.Side == 0 {
		c.Game.Side = 6
	}
	if c.Game.ShipMax == 0 {
		c.Game.ShipMax = 4
	}
	if c.Game.Mode == "" {
		c.Game.Mode = "bot"
	}
	if c.Autogen.UniformBudget == 0 {
		c.Autogen.UniformBudget = 500 * time.Millisecond
	}
	if c.Autogen.ZonedBudget == 0 {
		c.Autogen.ZonedBudget = 100 * time.Millisecond
	}
	if c.Autogen.MaxResets == 0 {
		c.Autogen.MaxResets = 100
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.KeysDir == "" {
		c.Server.KeysDir = "./keys"
	}
	if c.Server.EventBuffer == 0 {
		c.Server.EventBuffer = 64
	}
	if c.Server.MaxGames == 0 {
		c.Server.MaxGames = 256
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects values no game can start with.
func (c *Config) Validate() error {
	// a side 1 board is a single corner cell and holds no fleet
	if c.Game.Side < 2 {
		return fmt.Errorf("game.side must be >= 2, got %d", c.Game.Side)
	}
	if c.Game.ShipMax < 1 {
		return fmt.Errorf("game.ship_max must be >= 1, got %d", c.Game.ShipMax)
	}
	if c.Game.Mode != "bot" && c.Game.Mode != "hs" {
		return fmt.Errorf("game.mode must be bot or hs, got %q", c.Game.Mode)
	}
	if c.Game.Difficulty < 0 || c.Game.Difficulty > 1 {
		return fmt.Errorf("game.difficulty must be 0 or 1, got %d", c.Game.Difficulty)
	}
	if c.Server.MaxGames < 1 {
		return fmt.Errorf("server.max_games must be >= 1, got %d", c.Server.MaxGames)
	}
	if c.Server.EventBuffer < 1 {
		return fmt.Errorf("server.event_buffer must be >= 1, got %d", c.Server.EventBuffer)
	}
	return nil
}
