package imdevice

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the file form of the device options.
//
//	label = "editor"
//	pipeline_cache = true
//	staging_alignment = 256
type Config struct {
	Label            string `toml:"label"`
	PipelineCache    bool   `toml:"pipeline_cache"`
	StagingAlignment uint32 `toml:"staging_alignment"`
}

// LoadConfig reads a TOML device configuration from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imdevice: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a TOML device configuration.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("imdevice: parse config: %w", err)
	}
	if a := c.StagingAlignment; a != 0 && (a < 4 || a&(a-1) != 0) {
		return nil, fmt.Errorf("imdevice: parse config: staging_alignment %d is not a power of two >= 4", a)
	}
	return &c, nil
}

// Options converts c into device options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithLabel(c.Label),
		WithPipelineCache(c.PipelineCache),
	}
	if c.StagingAlignment != 0 {
		opts = append(opts, WithStagingAlignment(c.StagingAlignment))
	}
	return opts
}
