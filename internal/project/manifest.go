package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "quartz.toml"

// Defaults applied when the manifest omits a knob.
const (
	DefaultMaxDepth       = 256
	DefaultMaxDiagnostics = 100
	DefaultCacheDir       = ".quartz-cache"
)

// Manifest is a located and parsed quartz.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package       PackageConfig       `toml:"package"`
	Instantiation InstantiationConfig `toml:"instantiation"`
	Cache         CacheConfig         `toml:"cache"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// InstantiationConfig tunes the template engine.
type InstantiationConfig struct {
	MaxDepth       int `toml:"max_depth"`
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// CacheConfig controls the on-disk instantiation snapshot.
type CacheConfig struct {
	Dir     string `toml:"dir"`
	Enabled bool   `toml:"enabled"`
}

// FindQuartzToml walks up from startDir to locate quartz.toml.
func FindQuartzToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindProjectRoot returns the directory containing quartz.toml, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindQuartzToml(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// Load locates and parses the manifest governing startDir. ok is false when no
// quartz.toml exists anywhere up the tree.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindQuartzToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Instantiation.MaxDepth < 0 {
		return Config{}, fmt.Errorf("%s: [instantiation].max_depth must not be negative", path)
	}
	if cfg.Instantiation.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [instantiation].max_diagnostics must not be negative", path)
	}
	if cfg.Instantiation.MaxDepth == 0 {
		cfg.Instantiation.MaxDepth = DefaultMaxDepth
	}
	if cfg.Instantiation.MaxDiagnostics == 0 {
		cfg.Instantiation.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if !meta.IsDefined("cache", "enabled") {
		cfg.Cache.Enabled = true
	}
	if strings.TrimSpace(cfg.Cache.Dir) == "" {
		cfg.Cache.Dir = DefaultCacheDir
	}
	return cfg, nil
}

// CachePath resolves the snapshot cache directory against the project root.
func (m *Manifest) CachePath() string {
	if filepath.IsAbs(m.Config.Cache.Dir) {
		return m.Config.Cache.Dir
	}
	return filepath.Join(m.Root, m.Config.Cache.Dir)
}
