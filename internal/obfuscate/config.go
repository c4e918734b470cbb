package obfuscate

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Level selects how much of the namespace is renamed. Each level includes
// everything below it.
type Level int

const (
	// LevelContracts renames the contract name only.
	LevelContracts Level = iota
	// LevelFunctions additionally renames functions and events.
	LevelFunctions
	// LevelFull additionally renames slot names and parameters.
	LevelFull
)

func (l Level) String() string {
	switch l {
	case LevelContracts:
		return "contracts"
	case LevelFunctions:
		return "functions"
	case LevelFull:
		return "full"
	default:
		return "contracts"
	}
}

// LevelByName maps the textual spelling back to its value.
var LevelByName = map[string]Level{
	"contracts": LevelContracts,
	"functions": LevelFunctions,
	"full":      LevelFull,
}

// Config is an immutable description of one obfuscation run. The salt keys
// the renaming: the same salt and input always produce the same output, and
// the salt is never persisted alongside the mapping.
type Config struct {
	Level               Level
	Salt                string
	MaxCollisionRetries int
}

// DefaultConfig obfuscates the full namespace with a reasonable retry
// bound. The salt has no usable default and must be supplied.
func DefaultConfig() Config {
	return Config{Level: LevelFull, MaxCollisionRetries: 16}
}

type configFile struct {
	Level               string `toml:"level"`
	Salt                string `toml:"salt"`
	MaxCollisionRetries int    `toml:"max_collision_retries"`
}

// LoadConfig reads a TOML config file. Absent keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	var raw configFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if raw.Level != "" {
		level, ok := LevelByName[raw.Level]
		if !ok {
			return Config{}, fmt.Errorf("unknown obfuscation level %q", raw.Level)
		}
		cfg.Level = level
	}
	if raw.Salt != "" {
		cfg.Salt = raw.Salt
	}
	if raw.MaxCollisionRetries > 0 {
		cfg.MaxCollisionRetries = raw.MaxCollisionRetries
	}
	return cfg, nil
}
