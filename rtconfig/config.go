// Package rtconfig loads the tunables for revtext's diff, match, and patch
// engines from a JSONC config file, following the global/project/override
// precedence chain calvinalkan-agent-task's config.go uses for its own
// .tk.json.
package rtconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the default project config file name.
const ConfigFileName = ".revtext.json"

// Tunables holds every per-component tunable exposed by spec.md §4,
// loadable from JSONC so a project can commit commented overrides.
type Tunables struct {
	DiffTimeout          time.Duration `json:"diff_timeout,omitempty"`
	DiffEditCost         int           `json:"diff_edit_cost,omitempty"`
	MatchThreshold       float64       `json:"match_threshold,omitempty"`
	MatchDistance        int           `json:"match_distance,omitempty"`
	MatchMaxBits         int           `json:"match_max_bits,omitempty"`
	PatchDeleteThreshold float64       `json:"patch_delete_threshold,omitempty"`
	PatchMargin          int           `json:"patch_margin,omitempty"`
}

// Defaults returns the package defaults, matching the values set by
// revtext's NewDiffEngine/NewMatchEngine/NewPatchEngine constructors.
func Defaults() Tunables {
	return Tunables{
		DiffTimeout:          5 * time.Second,
		DiffEditCost:         4,
		MatchThreshold:       0.5,
		MatchDistance:        1000,
		MatchMaxBits:         32,
		PatchDeleteThreshold: 0.5,
		PatchMargin:          4,
	}
}

// Sources tracks which config files contributed to a loaded Tunables, for
// diagnostics.
type Sources struct {
	Global  string
	Project string
}

// getGlobalConfigPath returns $XDG_CONFIG_HOME/revtext/config.json, falling
// back to ~/.config/revtext/config.json.
func getGlobalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "revtext", "config.json")
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "revtext", "config.json")
	}
	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "revtext", "config.json")
	}
	return ""
}

// Load resolves Tunables with the following precedence (highest wins):
// defaults, global user config, project config (.revtext.json or an
// explicit configPath), then overrides.
func Load(workDir, configPath string, overrides Tunables, env []string) (Tunables, Sources, error) {
	cfg := Defaults()
	var sources Sources

	globalCfg, globalPath, err := loadGlobalConfig(env)
	if err != nil {
		return Tunables{}, Sources{}, err
	}
	sources.Global = globalPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, configPath)
	if err != nil {
		return Tunables{}, Sources{}, err
	}
	sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	cfg = merge(cfg, overrides)

	return cfg, sources, nil
}

func loadGlobalConfig(env []string) (Tunables, string, error) {
	path := getGlobalConfigPath(env)
	if path == "" {
		return Tunables{}, "", nil
	}
	cfg, loaded, err := loadConfigFile(path, false)
	if err != nil {
		return Tunables{}, "", err
	}
	if !loaded {
		return Tunables{}, "", nil
	}
	return cfg, path, nil
}

func loadProjectConfig(workDir, configPath string) (Tunables, string, error) {
	var cfgFile string
	var mustExist bool

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}
		mustExist = true
		if _, err := os.Stat(cfgFile); err != nil {
			return Tunables{}, "", fmt.Errorf("rtconfig: config file not found: %s", configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	cfg, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Tunables{}, "", err
	}
	if !loaded {
		return Tunables{}, "", nil
	}
	return cfg, cfgFile, nil
}

func loadConfigFile(path string, mustExist bool) (Tunables, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Tunables{}, false, nil
		}
		if mustExist {
			return Tunables{}, false, fmt.Errorf("rtconfig: reading config file %s: %w", path, err)
		}
		return Tunables{}, false, nil
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Tunables{}, false, fmt.Errorf("rtconfig: invalid config %s: %w", path, err)
	}
	return cfg, true, nil
}

func parseConfig(data []byte) (Tunables, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Tunables{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg Tunables
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Tunables{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func merge(base, overlay Tunables) Tunables {
	if overlay.DiffTimeout != 0 {
		base.DiffTimeout = overlay.DiffTimeout
	}
	if overlay.DiffEditCost != 0 {
		base.DiffEditCost = overlay.DiffEditCost
	}
	if overlay.MatchThreshold != 0 {
		base.MatchThreshold = overlay.MatchThreshold
	}
	if overlay.MatchDistance != 0 {
		base.MatchDistance = overlay.MatchDistance
	}
	if overlay.MatchMaxBits != 0 {
		base.MatchMaxBits = overlay.MatchMaxBits
	}
	if overlay.PatchDeleteThreshold != 0 {
		base.PatchDeleteThreshold = overlay.PatchDeleteThreshold
	}
	if overlay.PatchMargin != 0 {
		base.PatchMargin = overlay.PatchMargin
	}
	return base
}

// FormatTunables returns cfg as formatted JSON, for `revtext config`.
func FormatTunables(cfg Tunables) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rtconfig: formatting config: %w", err)
	}
	return string(data), nil
}
