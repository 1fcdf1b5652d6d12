// Package profile builds the streamdeck-ui page layout that points each key
// at a deck-scripts program, writes it as JSON, and restarts the UI service
// so the layout is picked up.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultPageName is used when the INI file does not set page_name.
const DefaultPageName = "Default"

// Button is one key on a page. Icon is empty for keys without an image.
type Button struct {
	Icon    string `json:"icon"`
	Text    string `json:"text"`
	Command string `json:"command"`
}

// Page is a named set of buttons keyed by their index as a decimal string.
type Page struct {
	Name    string            `json:"name"`
	Buttons map[string]Button `json:"buttons"`
}

// Profile maps page index to page. Build produces exactly one page, "0".
type Profile map[string]Page

// keyDef describes a key relative to the scripts directory.
type keyDef struct {
	text    string
	icon    string
	command string
}

// layout is the fixed key order. Index in this slice is the button key.
var layout = []keyDef{
	{text: "Bandwidth", icon: "net.png", command: "bandwidth"},
	{text: "Cider Track", icon: "song.png", command: "cider-track"},
	{text: "Audio", command: "audio_switch.sh"},
	{text: "Cider", command: "cider_control.sh"},
	{text: "Lock", command: "screenlock.sh"},
	{text: "System", command: "system-monitor"},
	{text: "Time/Date", command: "time_date.sh"},
}

// ButtonCount is the number of keys on the generated page.
var ButtonCount = len(layout)

// Build returns the single-page profile with every icon and command rooted
// at scriptsDir. An empty pageName means DefaultPageName.
func Build(scriptsDir, pageName string) Profile {
	if pageName == "" {
		pageName = DefaultPageName
	}

	buttons := make(map[string]Button, len(layout))
	for i, def := range layout {
		b := Button{
			Text:    def.text,
			Command: filepath.Join(scriptsDir, def.command),
		}
		if def.icon != "" {
			b.Icon = filepath.Join(scriptsDir, def.icon)
		}
		buttons[strconv.Itoa(i)] = b
	}

	return Profile{"0": {Name: pageName, Buttons: buttons}}
}

// Encode renders the profile as JSON with 4-space indentation.
func (p Profile) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("profile: encode: %w", err)
	}
	return data, nil
}

// Write encodes the profile to path, creating parent directories, and
// returns the number of bytes written.
func Write(p Profile, path string) (int, error) {
	data, err := p.Encode()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("profile: create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("profile: write %s: %w", path, err)
	}
	return len(data), nil
}
