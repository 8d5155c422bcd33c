// Package config holds all Absolute Solver configuration. A single YAML
// file (solver.yaml) configures the Discord connection, the economy rules,
// the shop catalog, the tier table, and the drone spawner; secrets can be
// supplied or overridden through the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Uzidoorman9/Absolute-Solver/internal/economy"
)

// Config is the root configuration.
type Config struct {
	// Discord connection settings.
	Discord DiscordConfig `yaml:"discord"`

	// Economy rules, tier table, and shop catalog.
	Economy EconomyConfig `yaml:"economy"`

	// Drone (child chatbot) spawner settings.
	Drones DronesConfig `yaml:"drones"`

	// Logging controls the categorized trace logs.
	Logging LoggingConfig `yaml:"logging"`

	// StateDir is where trace logs live. Defaults to ".solver".
	StateDir string `yaml:"state_dir"`
}

// DiscordConfig configures the manager bot's Discord session.
type DiscordConfig struct {
	Token string `yaml:"token"`

	// GuildID scopes slash command registration to one guild, which makes
	// commands appear immediately. Empty registers globally (can take up
	// to an hour to propagate).
	GuildID string `yaml:"guild_id"`
}

// EconomyConfig configures the ledger, progression, and shop.
type EconomyConfig struct {
	StartBalance int `yaml:"start_balance"`

	// MessageXP is granted per guild message, rate-limited by
	// MessageCooldown per user.
	MessageXP       int    `yaml:"message_xp"`
	MessageCooldown string `yaml:"message_cooldown"`

	JournalLimit int `yaml:"journal_limit"`

	// TopRole is the single crown role for the highest balance.
	TopRole string `yaml:"top_role"`

	Tiers economy.TierTable `yaml:"tiers"`
	Shop  []economy.Item    `yaml:"shop"`
}

// MessageCooldownDuration parses the cooldown, falling back to a minute.
func (e EconomyConfig) MessageCooldownDuration() time.Duration {
	d, err := time.ParseDuration(e.MessageCooldown)
	if err != nil || d < 0 {
		return time.Minute
	}
	return d
}

// DronesConfig configures child chatbot spawning.
type DronesConfig struct {
	// Binary is the drone executable. Empty means "drone" on PATH.
	Binary string `yaml:"binary"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	Model        string `yaml:"model"`
	MaxActive    int    `yaml:"max_active"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// Default returns the configuration the bot ships with: Murder Drones
// tier names and a small oil-priced shop.
func Default() *Config {
	return &Config{
		StateDir: ".solver",
		Economy: EconomyConfig{
			StartBalance:    1000,
			MessageXP:       15,
			MessageCooldown: "60s",
			JournalLimit:    1000,
			TopRole:         "Oil Baron",
			Tiers: economy.TierTable{
				{MinLevel: 0, Role: "Worker"},
				{MinLevel: 5, Role: "Disassembly"},
				{MinLevel: 10, Role: "Electrician"},
			},
			Shop: []economy.Item{
				{Key: "oil-can", Price: 150, XPGrant: 10, Description: "A refreshing can of oil.", Sellable: true},
				{Key: "beanie", Price: 400, XPGrant: 20, Description: "V's beanie. Probably a replica.", Sellable: true},
				{Key: "railgun", Price: 1500, XPGrant: 50, Description: "Standard disassembly issue.", Sellable: true},
				{Key: "core-shard", Price: 5000, XPGrant: 200, Description: "Do not stare directly into it.", Sellable: false},
			},
		},
		Drones: DronesConfig{
			Model:     "gemini-2.5-flash",
			MaxActive: 4,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
	}
}

// Load reads path over the defaults and applies env overrides. A missing
// file is not an error: the defaults plus environment are a runnable
// configuration once DISCORD_TOKEN is set.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment win for secrets and the guild
// scope. Config files holding tokens are a deployment hazard; env is the
// recommended channel.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Drones.GeminiAPIKey = v
	}
	if v := os.Getenv("SOLVER_GUILD_ID"); v != "" {
		c.Discord.GuildID = v
	}
}

// Validate checks the structural invariants the core depends on.
func (c *Config) Validate() error {
	if c.Economy.StartBalance < 0 {
		return fmt.Errorf("economy.start_balance must be non-negative, got %d", c.Economy.StartBalance)
	}
	if c.Economy.MessageXP < 0 {
		return fmt.Errorf("economy.message_xp must be non-negative, got %d", c.Economy.MessageXP)
	}
	if c.Economy.MessageCooldown != "" {
		if _, err := time.ParseDuration(c.Economy.MessageCooldown); err != nil {
			return fmt.Errorf("economy.message_cooldown: %w", err)
		}
	}
	if err := c.Economy.Tiers.Validate(); err != nil {
		return fmt.Errorf("economy.tiers: %w", err)
	}
	if _, err := economy.NewCatalog(c.Economy.Shop); err != nil {
		return fmt.Errorf("economy.shop: %w", err)
	}
	if c.Drones.MaxActive < 0 {
		return fmt.Errorf("drones.max_active must be non-negative, got %d", c.Drones.MaxActive)
	}
	return nil
}
