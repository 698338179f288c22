package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up next to a scene and in the working
// directory.
const FileName = "portalcam.yaml"

// Load loads configuration with priority: defaults < file < flags. Without
// -config the file is looked up next to the -scene file first, so a scene
// directory can carry its own recursion and viewport settings.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = locate(searchPaths(*flagScene))
	}
	if path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)
	cfg.Sanitize()
	return cfg, nil
}

// LoadFile loads defaults overlaid with a single file, ignoring flags.
// An empty path returns the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	cfg.Sanitize()
	return cfg, nil
}

// searchPaths lists config candidates in lookup order: beside the scene, the
// working directory, then the user config directory.
func searchPaths(scenePath string) []string {
	var paths []string
	if scenePath != "" {
		paths = append(paths, filepath.Join(filepath.Dir(scenePath), FileName))
	}
	return append(paths, FileName, filepath.Join(ConfigDir(), "config.yaml"))
}

func locate(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// ConfigDir returns the per-user portalcam directory.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "portalcam")
}

// mergeFile decodes a YAML file over the values already in cfg.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}
