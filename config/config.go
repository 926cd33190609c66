// Package config handles flexgraph tool configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/arbobendik/FlexLight-sub000/log"
	"github.com/arbobendik/FlexLight-sub000/scene"
)

var ErrInvalid = errors.New("config: invalid value")

// Config holds all tool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	BVH     BVHConfig     `yaml:"bvh"`
	Layout  LayoutConfig  `yaml:"layout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`        // Rotated log file; empty disables it
	MaxSizeMB  int    `yaml:"max_size_mb"` // Size that triggers a rotation
	MaxBackups int    `yaml:"max_backups"` // Rotated files to keep
}

// BVHConfig holds BVH builder settings.
type BVHConfig struct {
	MaxLeavesPerNode int     `yaml:"max_leaves_per_node"`
	MinBoundingWidth float32 `yaml:"min_bounding_width"`
	DepthSlack       int     `yaml:"depth_slack"`
}

// LayoutConfig holds buffer layout settings.
type LayoutConfig struct {
	SlotsPerLine int `yaml:"slots_per_line"` // 0 disables padding
}

// Default returns a Config with the default builder and layout settings.
func Default() *Config {
	bvh := scene.DefaultBVHOptions()
	return &Config{
		Logging: LoggingConfig{
			Level:      "notice",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		BVH: BVHConfig{
			MaxLeavesPerNode: bvh.MaxLeavesPerNode,
			MinBoundingWidth: bvh.MinBoundingWidth,
			DepthSlack:       bvh.DepthSlack,
		},
		Layout: LayoutConfig{
			SlotsPerLine: scene.DefaultLayout().SlotsPerLine,
		},
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return fmt.Errorf("%w: logging rotation limits must not be negative", ErrInvalid)
	}
	if c.BVH.MaxLeavesPerNode < 1 {
		return fmt.Errorf("%w: bvh.max_leaves_per_node must be at least 1; got %d", ErrInvalid, c.BVH.MaxLeavesPerNode)
	}
	if c.BVH.MinBoundingWidth < 0 || c.BVH.DepthSlack < 0 {
		return fmt.Errorf("%w: bvh.min_bounding_width and bvh.depth_slack must not be negative", ErrInvalid)
	}
	if c.Layout.SlotsPerLine < 0 {
		return fmt.Errorf("%w: layout.slots_per_line must not be negative; got %d", ErrInvalid, c.Layout.SlotsPerLine)
	}
	return nil
}

// BVHOptions converts the BVH section to builder options.
func (c *Config) BVHOptions() scene.BVHOptions {
	return scene.BVHOptions{
		MaxLeavesPerNode: c.BVH.MaxLeavesPerNode,
		MinBoundingWidth: c.BVH.MinBoundingWidth,
		DepthSlack:       c.BVH.DepthSlack,
	}
}

// BufferLayout converts the layout section to a serializer layout.
func (c *Config) BufferLayout() scene.Layout {
	return scene.Layout{SlotsPerLine: c.Layout.SlotsPerLine}
}
