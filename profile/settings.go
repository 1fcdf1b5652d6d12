package profile

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

const iniSection = "streamdeck"

// Settings are the optional overrides read from the streamdeck-ui INI file.
type Settings struct {
	// PageName names page "0".
	PageName string

	// ScriptsDir overrides where icons and commands are looked up. Empty
	// means the caller's default.
	ScriptsDir string
}

// LoadSettings reads the [streamdeck] section of the INI file at path. A
// missing, empty or unparseable file yields default settings; parse
// failures are logged, never returned.
func LoadSettings(path string, logger *slog.Logger) Settings {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	section := loadSection(path, logger)
	return Settings{
		PageName:   strings.TrimSpace(section.Key("page_name").MustString(DefaultPageName)),
		ScriptsDir: expandHome(strings.TrimSpace(section.Key("scripts_dir").String())),
	}
}

func loadSection(path string, logger *slog.Logger) *ini.Section {
	empty := ini.Empty().Section(iniSection)

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		logger.Debug("no streamdeck-ui config, using defaults", "path", path)
		return empty
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{Loose: true}, path)
	if err != nil {
		logger.Warn("ignoring unreadable streamdeck-ui config", "path", path, "error", err)
		return empty
	}
	return cfg.Section(iniSection)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + p[1:]
		}
	}
	return p
}
