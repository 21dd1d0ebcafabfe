package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/prefgen/core/config"
)

const annotated = `package settings

import "github.com/tristendillon/prefgen/prefs"

//prefgen:store
type Settings interface {
	Volume() prefs.Preference[int]
}
`

const modelYAML = `package: com.app
interface: Flags
entries:
  - name: beta
    type: Boolean
    default: "false"
    wrapper: BoolPreference
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testTree(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, root, "settings/settings.go", annotated)
	writeFile(t, root, "settings/settings_prefs_gen.go", annotated)
	writeFile(t, root, "settings/settings_test.go", annotated)
	writeFile(t, root, "settings/plain.go", "package settings\n")
	writeFile(t, root, "android/flags.prefs.yaml", modelYAML)
	writeFile(t, root, "vendor/lib/lib.go", annotated)
	writeFile(t, root, "gen/out.go", annotated)
	return root
}

func TestWalkDiscoversSources(t *testing.T) {
	root := testTree(t)
	cfg := config.Default()
	cfg.Codegen.Output = "gen"

	w := NewSourceWalker(cfg)
	found, err := w.Walk(root)
	require.NoError(t, err)

	require.Len(t, found, 2)
	assert.Equal(t, filepath.Join("android", "flags.prefs.yaml"), found[0].RelPath)
	assert.Equal(t, ModelFile, found[0].Kind)
	assert.Equal(t, filepath.Join("settings", "settings.go"), found[1].RelPath)
	assert.Equal(t, GoSource, found[1].Kind)

	ms, err := w.Load(found)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "Flags", ms[0].OriginTypeName)
	assert.Equal(t, "Settings", ms[1].OriginTypeName)
	assert.Equal(t, filepath.Join(root, "settings", "settings.go"), ms[1].Source)
}

func TestWalkHonorsIncludeAndDeduplicates(t *testing.T) {
	root := testTree(t)
	w := &SourceWalkerImpl{Include: []string{"settings", "settings/settings.go"}}

	found, err := w.Walk(root)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join("settings", "settings.go"), found[0].RelPath)
}

func TestWalkMissingInclude(t *testing.T) {
	w := &SourceWalkerImpl{Include: []string{"nope"}}
	_, err := w.Walk(t.TempDir())
	assert.Error(t, err)
}

func TestLoadReportsParseErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.go", "package p\n\n//prefgen:store\ntype P interface {\n\tX() int\n}\n")

	w := &SourceWalkerImpl{}
	found, err := w.Walk(root)
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = w.Load(found)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.go")
}

func TestShouldExclude(t *testing.T) {
	w := &SourceWalkerImpl{Exclude: []string{".git", "build/out"}}

	assert.True(t, w.ShouldExclude(".git"))
	assert.True(t, w.ShouldExclude(filepath.Join("a", ".git", "config")))
	assert.True(t, w.ShouldExclude(filepath.Join("build", "out", "x.go")))
	assert.False(t, w.ShouldExclude(filepath.Join("a", "build", "out")))
	assert.False(t, w.ShouldExclude(".gitignore"))
	assert.False(t, w.ShouldExclude("."))
}

func TestIsCandidate(t *testing.T) {
	assert.True(t, IsCandidate("a/settings.go"))
	assert.True(t, IsCandidate("a/settings.prefs.yaml"))
	assert.False(t, IsCandidate("a/settings_prefs_gen.go"))
	assert.False(t, IsCandidate("a/settings_test.go"))
	assert.False(t, IsCandidate("prefgen.yaml"))
}
