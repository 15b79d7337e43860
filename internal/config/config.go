// Package config manages application configuration.
package config

import "runtime"

// Config represents the application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Convert ConvertConfig `yaml:"convert"`
}

// InputConfig describes where bitmaps are read from.
type InputConfig struct {
	Path      string `yaml:"path"`      // directory, single file or OLE2 container
	Extension string `yaml:"extension"` // matched case-insensitively
}

// OutputConfig describes where YUV files are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Report string `yaml:"report,omitempty"` // .json or .yaml summary path
}

// ConvertConfig contains conversion options.
type ConvertConfig struct {
	Layout  string `yaml:"layout"`  // standard, legacy
	Workers int    `yaml:"workers"` // 0 = number of CPUs
	Trace   bool   `yaml:"trace,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Path:      "input_images",
			Extension: ".bmp",
		},
		Output: OutputConfig{
			Dir: "output_yuv",
		},
		Convert: ConvertConfig{
			Layout:  "standard",
			Workers: 0,
		},
	}
}

// EffectiveWorkers returns the worker count to use.
func (c *Config) EffectiveWorkers() int {
	if c.Convert.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Convert.Workers
}

// ApplyEnv overrides settings from BMP2YUV_* environment variables.
func (c *Config) ApplyEnv() {
	c.Input.Path = GetEnvOrDefault("BMP2YUV_INPUT", c.Input.Path)
	c.Output.Dir = GetEnvOrDefault("BMP2YUV_OUTPUT", c.Output.Dir)
	c.Convert.Layout = GetEnvOrDefault("BMP2YUV_LAYOUT", c.Convert.Layout)
	c.Convert.Workers = GetEnvInt("BMP2YUV_WORKERS", c.Convert.Workers)
	if GetEnvBool("BMP2YUV_TRACE") {
		c.Convert.Trace = true
	}
}
