// Package config handles loading and saving engine settings: the group color
// palette, section defaults applied to regenerated documents, tool display
// overrides, dimension vocabularies, and the search debounce delay.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/agentcanvas/engine/pkg/models"
)

// Settings is the engine configuration.
type Settings struct {
	Palette         []string                      `yaml:"palette,omitempty"`
	SectionDefaults models.SectionDefaults        `yaml:"section_defaults"`
	ToolsConfig     map[string]models.DisplayMeta `yaml:"tools_config,omitempty"`
	// Vocabularies maps a dimension id to its ordered value vocabulary,
	// overriding the built-in one.
	Vocabularies   map[string][]string `yaml:"vocabularies,omitempty"`
	SearchDebounce time.Duration       `yaml:"search_debounce,omitempty"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		Palette: []string{
			"#4F46E5", "#0EA5E9", "#10B981", "#F59E0B",
			"#EF4444", "#8B5CF6", "#EC4899", "#14B8A6",
		},
		SectionDefaults: models.DefaultSectionDefaults(),
		SearchDebounce:  300 * time.Millisecond,
	}
}

// Load reads settings from a YAML file, filling omitted fields with
// defaults. A missing file is not an error; it yields the defaults.
func Load(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse config: %w", err)
	}
	settings.fillDefaults()
	return settings, nil
}

// Save writes settings to a YAML file, creating parent directories as
// needed.
func (s Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Settings) fillDefaults() {
	defaults := DefaultSettings()
	if len(s.Palette) == 0 {
		s.Palette = defaults.Palette
	}
	if s.SectionDefaults.Icon == "" {
		s.SectionDefaults.Icon = defaults.SectionDefaults.Icon
	}
	if s.SearchDebounce <= 0 {
		s.SearchDebounce = defaults.SearchDebounce
	}
}

// InitViper configures a viper instance for the engine: YAML config from the
// user config directory, CANVAS_-prefixed environment overrides, and
// defaults matching DefaultSettings.
func InitViper(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	v.AddConfigPath(filepath.Join(home, ".config", "agentcanvas"))
	v.SetConfigType("yaml")
	v.SetConfigName("config")

	v.AutomaticEnv()
	v.SetEnvPrefix("CANVAS")

	defaults := DefaultSettings()
	v.SetDefault("palette", defaults.Palette)
	v.SetDefault("search_debounce", defaults.SearchDebounce)
	v.SetDefault("section_defaults.icon", defaults.SectionDefaults.Icon)
	v.SetDefault("section_defaults.show_in_flow", defaults.SectionDefaults.ShowInFlow)
}

// FromViper reads settings out of a configured viper instance.
func FromViper(v *viper.Viper) Settings {
	settings := Settings{
		Palette:        v.GetStringSlice("palette"),
		SearchDebounce: v.GetDuration("search_debounce"),
		SectionDefaults: models.SectionDefaults{
			Icon:       v.GetString("section_defaults.icon"),
			ShowInFlow: v.GetBool("section_defaults.show_in_flow"),
			IsSupport:  v.GetBool("section_defaults.is_support"),
		},
		Vocabularies: v.GetStringMapStringSlice("vocabularies"),
	}
	settings.fillDefaults()
	return settings
}
