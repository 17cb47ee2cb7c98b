// Package config loads the notedoc configuration file.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/shodgson/notedoc/normalize"
)

// Config is the notedoc configuration.
type Config struct {
	AutoSave    AutoSave    `yaml:"autosave"`
	Attachments Attachments `yaml:"attachments"`
	Sections    Sections    `yaml:"sections"`
	Headings    Headings    `yaml:"headings"`
}

type AutoSave struct {
	// Delay is a duration string, for example "3s".
	Delay string `yaml:"delay"`
}

type Attachments struct {
	MaxCount int   `yaml:"max_count"`
	MaxSize  int64 `yaml:"max_size"`
}

type Sections struct {
	Labels     []string `yaml:"labels"`
	Phrases    []string `yaml:"phrases"`
	Conclusion string   `yaml:"conclusion"`
}

type Headings struct {
	Styles bool `yaml:"styles"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	n := normalize.DefaultConfig()
	return &Config{
		AutoSave:    AutoSave{Delay: "3s"},
		Attachments: Attachments{MaxCount: 20, MaxSize: 10 << 20},
		Sections: Sections{
			Labels:     n.SectionLabels,
			Phrases:    n.SectionPhrases,
			Conclusion: n.ConclusionLabel,
		},
		Headings: Headings{Styles: n.HeadingStyles},
	}
}

// Load reads the configuration file at path. A missing file gives the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Parse reads a YAML configuration. Fields absent from data keep their
// default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal yaml")
	}
	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to validate config")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	delay, err := time.ParseDuration(cfg.AutoSave.Delay)
	if err != nil {
		return errors.Wrap(err, "autosave.delay")
	}
	if delay <= 0 {
		return errors.Errorf("autosave.delay must be positive, got %s", delay)
	}
	if cfg.Attachments.MaxCount <= 0 {
		return errors.Errorf("attachments.max_count must be positive, got %d", cfg.Attachments.MaxCount)
	}
	if cfg.Attachments.MaxSize <= 0 {
		return errors.Errorf("attachments.max_size must be positive, got %d", cfg.Attachments.MaxSize)
	}
	return nil
}

// AutoSaveDelay returns the parsed auto-save delay.
func (c *Config) AutoSaveDelay() time.Duration {
	d, _ := time.ParseDuration(c.AutoSave.Delay)
	return d
}

// Normalize returns the configuration of the normalizers.
func (c *Config) Normalize() normalize.Config {
	return normalize.Config{
		SectionLabels:   c.Sections.Labels,
		SectionPhrases:  c.Sections.Phrases,
		ConclusionLabel: c.Sections.Conclusion,
		HeadingStyles:   c.Headings.Styles,
	}
}
