package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxClipBytes is the hard limit on an encoded clip (10 MiB).
const DefaultMaxClipBytes = 10 * 1024 * 1024

// Config holds application configuration.
type Config struct {
	// BridgeURL is the base URL of the rendering bridge the capture session
	// talks to (e.g. "http://127.0.0.1:9333").
	BridgeURL string `json:"bridge_url,omitempty"`

	// MaxClipBytes is the hard byte limit applied to the encoded clip.
	// 0 means the 10 MiB default. Clips over the limit are rejected, never
	// truncated or downscaled.
	MaxClipBytes int `json:"max_clip_bytes,omitempty"`

	// DefaultViewportWidth/Height are used when a capture request omits
	// viewport dimensions.
	DefaultViewportWidth  int `json:"default_viewport_width,omitempty"`
	DefaultViewportHeight int `json:"default_viewport_height,omitempty"`

	// DefaultFPS is the capture frame rate used when a request omits one.
	DefaultFPS int `json:"default_fps,omitempty"`

	// DefaultDurationSeconds is the capture duration used when a request
	// omits one.
	DefaultDurationSeconds float64 `json:"default_duration_seconds,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BridgeURL:              "http://127.0.0.1:9333",
		MaxClipBytes:           DefaultMaxClipBytes,
		DefaultViewportWidth:   1280,
		DefaultViewportHeight:  800,
		DefaultFPS:             5,
		DefaultDurationSeconds: 3,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.diffclip.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.diffclip) and repo
// (.diffclip) directories. Repo config is found by walking upward from
// startDir to find the nearest .diffclip/config.json. Repo config takes
// precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .diffclip/config.json. Returns the path if found, or empty string if not.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".diffclip", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.BridgeURL = overlay.BridgeURL
	if result.BridgeURL == "" {
		result.BridgeURL = base.BridgeURL
	}

	result.MaxClipBytes = overlay.MaxClipBytes
	if result.MaxClipBytes == 0 {
		result.MaxClipBytes = base.MaxClipBytes
	}

	result.DefaultViewportWidth = overlay.DefaultViewportWidth
	if result.DefaultViewportWidth == 0 {
		result.DefaultViewportWidth = base.DefaultViewportWidth
	}

	result.DefaultViewportHeight = overlay.DefaultViewportHeight
	if result.DefaultViewportHeight == 0 {
		result.DefaultViewportHeight = base.DefaultViewportHeight
	}

	result.DefaultFPS = overlay.DefaultFPS
	if result.DefaultFPS == 0 {
		result.DefaultFPS = base.DefaultFPS
	}

	result.DefaultDurationSeconds = overlay.DefaultDurationSeconds
	if result.DefaultDurationSeconds == 0 {
		result.DefaultDurationSeconds = base.DefaultDurationSeconds
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
