package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/deck-scripts/config.toml
//  2. ~/.config/deck-scripts/config.toml
//
// If no file exists, returns DefaultConfig().
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
// A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader. Keys absent from the
// document keep their default values.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			CacheDir: filepath.Join(xdgCacheHome(home), "deck-scripts"),
		},
		Bandwidth: BandwidthConfig{
			Binary:        "speedtest-cli",
			Interval:      Duration{30 * time.Second},
			Timeout:       Duration{60 * time.Second},
			HistoryPoints: 100,
			OutputImage:   "net.png",
			Width:         1000,
			Height:        500,
		},
		Track: TrackConfig{
			Binary:      "playerctl",
			Player:      "cider",
			Timeout:     Duration{5 * time.Second},
			OutputImage: "song.png",
		},
		Profile: ProfileConfig{
			INIPath:        filepath.Join(xdgConfigHome(home), "streamdeck-ui", "streamdeck-ui.conf"),
			ProfilePath:    filepath.Join(xdgCacheHome(home), "streamdeck-ui", "profiles", "default.json"),
			Services:       []string{"streamdeck-ui", "streamdeck"},
			RestartTimeout: Duration{10 * time.Second},
		},
		System: SystemConfig{
			ProcDir:      "/proc",
			SampleWindow: Duration{1 * time.Second},
			CPU:          Thresholds{Low: 50, High: 80},
			RAM:          Thresholds{Low: 70, High: 90},
			Disk:         Thresholds{Low: 100, High: 200},
		},
	}
}

// ResolveOutputDir returns General.OutputDir, or the directory holding the
// running executable when unset.
func (c *Config) ResolveOutputDir() string {
	if c.General.OutputDir != "" {
		return c.General.OutputDir
	}
	return ExecutableDir()
}

// ResolveIconDir returns System.IconDir, or OutputDir/icons when unset.
func (c *Config) ResolveIconDir() string {
	if c.System.IconDir != "" {
		return c.System.IconDir
	}
	return filepath.Join(c.ResolveOutputDir(), "icons")
}

// ExecutableDir returns the absolute directory of the running binary, with
// symlinks resolved. It falls back to the working directory.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, _ := os.Getwd()
	return wd
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DECK_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv("DECK_OUTPUT_DIR"); v != "" {
		cfg.General.OutputDir = v
	}
	if v := os.Getenv("DECK_CACHE_DIR"); v != "" {
		cfg.General.CacheDir = v
	}
	if v := os.Getenv("DECK_PLAYER"); v != "" {
		cfg.Track.Player = v
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "deck-scripts", "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "deck-scripts", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgCacheHome returns XDG_CACHE_HOME or ~/.cache as fallback.
func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}
