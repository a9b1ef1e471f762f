package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LegacyCodeHQ/compresolve/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadDir(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, []string{"js", "jsx"}, cfg.Extensions)
	assert.Equal(t, "node_modules", cfg.VendorDir)
}

func TestLoadDir_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `extensions: [ts, tsx, js]
vendorDir: vendor
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := LoadDir(dir)

	require.NoError(t, err)
	assert.Equal(t, Config{Extensions: []string{"ts", "tsx", "js"}, VendorDir: "vendor", Hook: "directory"}, cfg)
}

func TestParse_EmptyDocumentIsDefault(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("extentions: [js]\n"))

	assert.Error(t, err)
}

func TestParse_RejectsInvalidExtension(t *testing.T) {
	_, err := Parse(strings.NewReader("extensions: [js, 'a/b']\n"))

	assert.True(t, errors.Is(err, resolver.ErrInvalidExtension))
}

func TestMerge_OnlyOverridesSetFields(t *testing.T) {
	merged := Default().Merge(Config{VendorDir: "bower_components"})

	assert.Equal(t, []string{"js", "jsx"}, merged.Extensions)
	assert.Equal(t, "bower_components", merged.VendorDir)
	assert.Equal(t, "directory", merged.Hook)
}

func TestResolverOptions_BuildsResolver(t *testing.T) {
	cfg := Default().Merge(Config{Extensions: []string{".ts"}})

	r, err := resolver.New(cfg.ResolverOptions()...)

	require.NoError(t, err)
	assert.Equal(t, []string{"ts"}, r.Extensions())
}
