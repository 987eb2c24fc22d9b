package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	ss "github.com/setanarut/stickerstroke"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Size != 300 || cfg.Stroke != 3 || cfg.Color != "#ffffff" || cfg.Format != "png" || cfg.Workers != 1 || cfg.LogFile != "" {
		t.Errorf("Default() = %+v", cfg)
	}
}

func TestUnmarshalKeepsDefaults(t *testing.T) {
	data := []byte("stroke: 6\ncolor: \"#ff0000\"\npadding: 4\n")
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cfg.Stroke != 6 || cfg.Color != "#ff0000" || cfg.Padding != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Size != DefaultSize || cfg.Format != DefaultFormat || cfg.Workers != DefaultWorkers {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sticker.yaml")
	body := "input: in\noutput: out\nsize: 512\nmetric: chamfer\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input != "in" || cfg.Output != "out" || cfg.Size != 512 || cfg.Metric != "chamfer" {
		t.Errorf("Load = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"STICKER_SIZE":     "128",
		"STICKER_STROKE":   " 5 ",
		"STICKER_COLOR":    "auto",
		"STICKER_FORMAT":   "jpg",
		"STICKER_WORKERS":  "4",
		"STICKER_DEV":      "true",
		"STICKER_LOG_FILE": "/tmp/s.log",
	}
	cfg := Default()
	if err := cfg.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Size != 128 || cfg.Stroke != 5 || cfg.Format != "jpg" || cfg.Workers != 4 || !cfg.Dev || cfg.LogFile != "/tmp/s.log" {
		t.Errorf("applyEnv = %+v", cfg)
	}
	if !cfg.AutoColor() {
		t.Error("AutoColor should be true")
	}

	env["STICKER_PADDING"] = "wide"
	if err := cfg.applyEnv(func(k string) string { return env[k] }); err == nil {
		t.Error("non-integer padding should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Input, c.Output = "in", "out"
		return c
	}
	tests := []struct {
		name string
		mod  func(*Config)
		want string
	}{
		{"no input", func(c *Config) { c.Input = "" }, "input"},
		{"no output", func(c *Config) { c.Output = "" }, "output"},
		{"workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"format", func(c *Config) { c.Format = "webp" }, "format"},
		{"palette", func(c *Config) { c.Palette = "octree" }, "palette"},
		{"size", func(c *Config) { c.Size = -1 }, "canvas size"},
		{"stroke", func(c *Config) { c.Stroke = 0 }, "stroke width"},
		{"threshold", func(c *Config) { c.Threshold = 300 }, "threshold"},
		{"color", func(c *Config) { c.Color = "#12" }, "color"},
		{"metric", func(c *Config) { c.Metric = "hamming" }, "metric"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mod(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tc.want)
			}
		})
	}
	if err := valid().Validate(); err != nil {
		t.Errorf("valid config: %v", err)
	}
}

func TestOptions(t *testing.T) {
	c := Default()
	c.Color = "0,0,255"
	c.Padding = 3
	c.Metric = "manhattan"
	opt, err := c.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opt.Color != (ss.Color{B: 255}) || opt.Padding != 3 || opt.Metric != ss.MetricManhattan || opt.CanvasSize != 300 {
		t.Errorf("Options = %+v", opt)
	}

	c.Color = "AUTO"
	opt, err = c.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opt.Color != ss.White {
		t.Errorf("auto color placeholder = %v, want white", opt.Color)
	}
}
