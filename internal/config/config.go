// Package config loads analyzer settings from a TOML file. Settings feed
// the command-line flag defaults, so an explicit flag always wins over the
// file.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Settings mirrors the analyzer's command-line surface. MinArea and
// Threshold of -1 mean "use the segmentation mode's default".
type Settings struct {
	Sheet     string  `toml:"sheet"`
	Scale     float64 `toml:"scale"`
	RulerMM   float64 `toml:"ruler_mm"`
	Mode      string  `toml:"mode"`
	MinArea   int     `toml:"min_area_px"`
	Threshold float64 `toml:"threshold"`
	Workers   int     `toml:"workers"`

	Out     string `toml:"out"`
	Debug   string `toml:"debug_dir"`
	History string `toml:"history"`
	HTML    bool   `toml:"html"`
	Plots   bool   `toml:"plots"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Sheet:     "letter",
		Scale:     6,
		RulerMM:   100,
		Mode:      "coarse",
		MinArea:   -1,
		Threshold: -1,
		Workers:   4,
	}
}

// Load reads settings from path, layered over the defaults. Unknown keys
// are rejected so a typo never silently falls back to a default.
func Load(path string) (Settings, error) {
	s := Defaults()
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return s, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return s, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return s, nil
}
