package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "notice" {
		t.Errorf("expected log level 'notice', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.File != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.File)
	}
	if cfg.Logging.MaxSizeMB != 10 || cfg.Logging.MaxBackups != 3 {
		t.Errorf("expected rotation 10MB/3 backups, got %dMB/%d", cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
	}

	if cfg.BVH.MaxLeavesPerNode != 4 {
		t.Errorf("expected 4 leaves per node, got %d", cfg.BVH.MaxLeavesPerNode)
	}
	if cfg.BVH.MinBoundingWidth != 1.0/256 {
		t.Errorf("expected min bounding width 1/256, got %f", cfg.BVH.MinBoundingWidth)
	}
	if cfg.BVH.DepthSlack != 8 {
		t.Errorf("expected depth slack 8, got %d", cfg.BVH.DepthSlack)
	}
	if cfg.Layout.SlotsPerLine != 256 {
		t.Errorf("expected 256 slots per line, got %d", cfg.Layout.SlotsPerLine)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
logging:
  level: debug
  file: /tmp/flexgraph.log

bvh:
  max_leaves_per_node: 2

layout:
  slots_per_line: 0
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.File != "/tmp/flexgraph.log" {
		t.Errorf("expected log file /tmp/flexgraph.log, got %s", cfg.Logging.File)
	}
	if cfg.BVH.MaxLeavesPerNode != 2 {
		t.Errorf("expected 2 leaves per node, got %d", cfg.BVH.MaxLeavesPerNode)
	}

	// Values missing from the file keep their defaults.
	if cfg.BVH.DepthSlack != 8 {
		t.Errorf("expected default depth slack 8, got %d", cfg.BVH.DepthSlack)
	}
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("expected default max backups 3, got %d", cfg.Logging.MaxBackups)
	}

	if cfg.BufferLayout().SlotsPerLine != 0 {
		t.Errorf("expected unpadded layout, got %d slots per line", cfg.BufferLayout().SlotsPerLine)
	}
	if opts := cfg.BVHOptions(); opts.MaxLeavesPerNode != 2 || opts.DepthSlack != 8 {
		t.Errorf("expected builder options 2/8, got %d/%d", opts.MaxLeavesPerNode, opts.DepthSlack)
	}
}

func TestLoadWithoutPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Layout.SlotsPerLine != 256 {
		t.Errorf("expected defaults, got %d slots per line", cfg.Layout.SlotsPerLine)
	}
}

func TestLoadInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	specs := []string{
		"logging:\n  level: chatty\n",
		"bvh:\n  max_leaves_per_node: 0\n",
		"layout:\n  slots_per_line: -4\n",
		"bvh: [not, a, map]\n",
	}

	for index, content := range specs {
		path := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("[spec %d] expected an error", index)
		}
	}

	if _, err := Load(filepath.Join(tmpDir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected missing file error, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := Default()
	cfg.Logging.Level = "warning"
	cfg.BVH.DepthSlack = 3

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Logging.Level != "warning" {
		t.Errorf("expected level warning, got %s", loaded.Logging.Level)
	}
	if loaded.BVH.DepthSlack != 3 {
		t.Errorf("expected depth slack 3, got %d", loaded.BVH.DepthSlack)
	}
	if loaded.BVH.MinBoundingWidth != 1.0/256 {
		t.Errorf("expected min bounding width to survive a round trip, got %f", loaded.BVH.MinBoundingWidth)
	}
}
