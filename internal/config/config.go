// Package config loads the batch driver settings from a YAML file, a .env
// file and the environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ss "github.com/setanarut/stickerstroke"
	"github.com/setanarut/stickerstroke/utils"
)

// ColorAuto asks the driver to derive the stroke color from each image.
const ColorAuto = "auto"

const (
	DefaultSize    = ss.DefaultCanvasSize
	DefaultStroke  = ss.DefaultStrokeWidth
	DefaultColor   = "#ffffff"
	DefaultFormat  = "png"
	DefaultWorkers = 1
)

// Config holds everything the batch driver needs.
type Config struct {
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	Size      int    `yaml:"size"`
	Stroke    int    `yaml:"stroke"`
	Color     string `yaml:"color"`   // hex, "r,g,b", name or "auto"
	Palette   string `yaml:"palette"` // dominantcolor | kmeans, used with color: auto
	Threshold int    `yaml:"threshold"`
	Padding   int    `yaml:"padding"`
	Metric    string `yaml:"metric"`
	Format    string `yaml:"format"`
	Workers   int    `yaml:"workers"`
	Pause     bool   `yaml:"pause"`
	Debug     bool   `yaml:"debug"` // also write mask/distance/stroke images
	Dev       bool   `yaml:"dev"`
	LogFile   string `yaml:"log_file"` // empty logs to the console only
}

func Default() Config {
	return Config{
		Size:    DefaultSize,
		Stroke:  DefaultStroke,
		Color:   DefaultColor,
		Format:  DefaultFormat,
		Workers: DefaultWorkers,
	}
}

// UnmarshalYAML sets defaults then decodes, so only keys present in the file
// override them.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	*c = Default()
	type alias Config
	return node.Decode((*alias)(c))
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty) and the environment. A missing .env file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"STICKER_SIZE", &c.Size},
		{"STICKER_STROKE", &c.Stroke},
		{"STICKER_THRESHOLD", &c.Threshold},
		{"STICKER_PADDING", &c.Padding},
		{"STICKER_WORKERS", &c.Workers},
	}
	for _, e := range ints {
		v := strings.TrimSpace(getenv(e.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", e.key, v)
		}
		*e.dst = n
	}
	if v := getenv("STICKER_COLOR"); v != "" {
		c.Color = v
	}
	if v := getenv("STICKER_FORMAT"); v != "" {
		c.Format = v
	}
	if v := getenv("STICKER_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := getenv("STICKER_DEV"); v != "" {
		c.Dev = v == "true" || v == "1"
	}
	return nil
}

// Validate checks every field up front so no image is touched with a bad
// configuration.
func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("input directory is required")
	}
	if c.Output == "" {
		return errors.New("output directory is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := utils.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := utils.ParsePaletteMethod(c.Palette); err != nil {
		return err
	}
	_, err := c.Options()
	return err
}

// Options converts the config to pipeline options. With color "auto" the
// color field is left at white; the driver fills it per image.
func (c Config) Options() (ss.Options, error) {
	opt := ss.DefaultOptions()
	opt.CanvasSize = c.Size
	opt.StrokeWidth = c.Stroke
	opt.Threshold = c.Threshold
	opt.Padding = c.Padding

	m, err := ss.ParseMetric(c.Metric)
	if err != nil {
		return opt, err
	}
	opt.Metric = m

	if !c.AutoColor() {
		col, err := ss.ParseColor(c.Color)
		if err != nil {
			return opt, err
		}
		opt.Color = col
	}
	return opt, opt.Validate()
}

func (c Config) AutoColor() bool {
	return strings.EqualFold(strings.TrimSpace(c.Color), ColorAuto)
}
