package rtconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsWhenNoFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, sources, err := Load(dir, "", Tunables{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Empty(t, sources.Project)
}

func TestLoadProjectConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, ConfigFileName)
	content := `{
		// trailing comments are fine, this is JSONC
		"diff_edit_cost": 8,
		"match_distance": 50,
	}`
	assert.NoError(t, os.WriteFile(projectFile, []byte(content), 0o644))

	cfg, sources, err := Load(dir, "", Tunables{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 8, cfg.DiffEditCost)
	assert.Equal(t, 50, cfg.MatchDistance)
	assert.Equal(t, Defaults().MatchThreshold, cfg.MatchThreshold)
	assert.Equal(t, projectFile, sources.Project)
}

func TestLoadOverridesWinOverProjectConfig(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, ConfigFileName)
	assert.NoError(t, os.WriteFile(projectFile, []byte(`{"diff_edit_cost": 8}`), 0o644))

	cfg, _, err := Load(dir, "", Tunables{DiffEditCost: 99}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 99, cfg.DiffEditCost)
}

func TestLoadExplicitConfigPathMustExist(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Load(dir, "missing.json", Tunables{}, nil)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, ConfigFileName)
	assert.NoError(t, os.WriteFile(projectFile, []byte(`{not valid`), 0o644))

	_, _, err := Load(dir, "", Tunables{}, nil)
	assert.Error(t, err)
}

func TestDefaultsMatchTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, Defaults().DiffTimeout)
}
