package driver

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the optional project-level configuration loaded from
// .bas2c.toml, sitting underneath whatever flags the CLI passes. A -c N
// depth wins over comment_tabs and --defs paths load after the config's
// own; a boolean option is on if either the flag or the config turns it
// on, so a flag cannot switch off an option the config enables.
type Config struct {
	BCCompat    bool     `toml:"bc_compat"`
	DefsFile    string   `toml:"defs_file"`
	ExtraDefs   []string `toml:"extra_defs"`
	CommentTabs int      `toml:"comment_tabs"`
	UndefErr    bool     `toml:"undef_err"`
	NoBInit     bool     `toml:"no_binit"`
}

// DefaultConfig returns a Config with the same defaults the original
// command line flags imply when absent.
func DefaultConfig() Config {
	return Config{
		DefsFile:    "bas2c.def",
		CommentTabs: 7,
	}
}

// LoadConfig reads path as TOML into a Config seeded with DefaultConfig
// values. A missing file is not an error — it just means no project
// defaults override the built-in ones.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
