package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/go-homedir"
)

const appName = "albumgallery"

type Config struct {
	Folders       []string `koanf:"folders"`        // library roots searched for covers
	CoverPatterns []string `koanf:"cover_patterns"` // e.g. ["cover.*", "folder.*"]
	LogLevel      string   `koanf:"log_level"`      // logrus level name (default: "info")

	Cache   CacheConfig   `koanf:"cache"`
	Sort    SortConfig    `koanf:"sort"`
	Extract ExtractConfig `koanf:"extract"`
	Collage CollageConfig `koanf:"collage"`
}

// CacheConfig selects where computed colors are stored.
type CacheConfig struct {
	Backend string `koanf:"backend"` // "json" or "sqlite" (default: "json")
	Path    string `koanf:"path"`    // empty means the XDG data directory
}

// SortConfig holds the default ordering.
type SortConfig struct {
	Criterion  string `koanf:"criterion"` // "step", "rgb", "year", "lum" (default: "step")
	Descending bool   `koanf:"descending"`
}

// ExtractConfig controls dominant color extraction.
type ExtractConfig struct {
	Method  string `koanf:"method"`  // "histogram", "dominantcolor", "kmeans", "mediancut"
	Size    int    `koanf:"size"`    // covers are scaled to fit size x size (default: 256)
	Workers int    `koanf:"workers"` // parallel analyses (default: 8)
}

// CollageConfig controls rendering.
type CollageConfig struct {
	Height     int    `koanf:"height"`     // canvas height in pixels (default: 2160)
	Background string `koanf:"background"` // montage background (default: "black")
	Output     string `koanf:"output"`     // output image (default: "collage.jpg")
	Command    string `koanf:"command"`    // montage binary (default: "montage")
}

// Load reads the user config then ./config.toml, later files overriding
// earlier ones.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files in order. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, f := range cfg.Folders {
		cfg.Folders[i] = expandPath(f)
	}
	cfg.Cache.Path = expandPath(cfg.Cache.Path)
	cfg.Collage.Output = expandPath(cfg.Collage.Output)
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/albumgallery/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

// expandPath resolves a leading ~. Paths it cannot expand are returned as is.
func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// GetFolders returns the library roots, defaulting to the XDG music
// directory.
func (c *Config) GetFolders() []string {
	if len(c.Folders) > 0 {
		return c.Folders
	}
	if xdg.UserDirs.Music != "" {
		return []string{xdg.UserDirs.Music}
	}
	return []string{"."}
}

// GetCoverPatterns returns the configured patterns or the defaults.
func (c *Config) GetCoverPatterns() []string {
	if len(c.CoverPatterns) > 0 {
		return c.CoverPatterns
	}
	return []string{"cover.*", "folder.*"}
}

// GetLogLevel returns the log level name with its default applied.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache
	if cfg.Backend == "" {
		cfg.Backend = "json"
	}
	return cfg
}

// GetSortConfig returns the sort configuration with defaults applied.
func (c *Config) GetSortConfig() SortConfig {
	cfg := c.Sort
	if cfg.Criterion == "" {
		cfg.Criterion = "step"
	}
	return cfg
}

// GetExtractConfig returns the extraction configuration with defaults applied.
func (c *Config) GetExtractConfig() ExtractConfig {
	cfg := c.Extract

	if cfg.Method == "" {
		cfg.Method = "histogram"
	}
	if cfg.Size <= 0 || cfg.Size > 4096 {
		cfg.Size = 256
	}
	if cfg.Workers <= 0 || cfg.Workers > 64 {
		cfg.Workers = 8
	}

	return cfg
}

// RendersCollage reports whether a collage output is configured. Without
// one, a run only lists the ordered covers unless an output is given on the
// command line.
func (c *Config) RendersCollage() bool {
	return c.Collage.Output != ""
}

// GetCollageConfig returns the collage configuration with defaults applied.
func (c *Config) GetCollageConfig() CollageConfig {
	cfg := c.Collage

	if cfg.Height <= 0 {
		cfg.Height = 2160
	}
	if cfg.Background == "" {
		cfg.Background = "black"
	}
	if cfg.Output == "" {
		cfg.Output = "collage.jpg"
	}
	if cfg.Command == "" {
		cfg.Command = "montage"
	}

	return cfg
}
