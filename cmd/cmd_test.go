package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/prefgen/core/cache"
	"github.com/tristendillon/prefgen/core/config"
	"github.com/tristendillon/prefgen/core/logger"
	"github.com/tristendillon/prefgen/core/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
		closeLog = nil
		logger.SetLevel(logger.INFO)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags puts every flag of cmd and its children back to its default and
// clears Changed, so one run's flags never leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "prefgen dev\n", out)
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n\ngo 1.25\n"), 0o644))

	_, err := run(t, "init", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "prefgen.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# prefgen configuration for example.com/app")
	assert.Contains(t, string(data), "renderer: go")

	_, err = run(t, "init", dir)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "init", "--force", dir)
	assert.NoError(t, err)
}

func TestGenerateDryRun(t *testing.T) {
	dir := t.TempDir()
	src := `package settings

import "github.com/tristendillon/prefgen/prefs"

//prefgen:store
type Settings interface {
	Volume() prefs.Preference[int]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.go"), []byte(src), 0o644))
	t.Chdir(dir)

	out, err := run(t, "generate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "// ==> settings_prefs_gen.go")
	assert.Contains(t, out, "func NewSettingsImpl(context prefs.Context) *SettingsImpl {")

	_, err = os.Stat(filepath.Join(dir, "settings_prefs_gen.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateFlagsDoNotLeakBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	src := `package settings

//prefgen:store
type Settings interface {
	Volume() prefs.Preference[int]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.go"), []byte(src), 0o644))
	t.Chdir(dir)

	t.Run("java", func(t *testing.T) {
		out, err := run(t, "generate", "--dry-run", "--renderer", "Java", "--adapters", "DEDUP", "-o", "gen")
		require.NoError(t, err)
		assert.Contains(t, out, "public class SettingsImpl implements Settings {")
	})

	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, "go", rendererFlag)
		assert.Equal(t, "", outputFlag)
		assert.Equal(t, "per-entry", adaptersFlag)
		assert.False(t, dryRun)

		out, err := run(t, "generate", "--dry-run")
		require.NoError(t, err)
		assert.Contains(t, out, "// ==> settings_prefs_gen.go")
		assert.Contains(t, out, "func NewSettingsImpl(context prefs.Context) *SettingsImpl {")
	})
}

func TestRejectsUnknownLogLevel(t *testing.T) {
	_, err := run(t, "version", "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")

	_, err = run(t, "version", "--log-level", "warn")
	assert.NoError(t, err)
}

func TestConfigureCachesHonorsMaxEntries(t *testing.T) {
	gen, parses := cache.GetCache(), cache.GetParseCache()
	t.Cleanup(func() {
		cache.SetCache(gen)
		cache.SetParseCache(parses)
	})

	cfg := config.Default()
	cfg.Cache.MaxEntries = 1
	configureCaches(cfg)

	dir := t.TempDir()
	parse := func(path string, src []byte) ([]*models.Model, error) {
		return []*models.Model{models.NewModel("p", string(src))}, nil
	}
	for _, name := range []string{"a.go", "b.go"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		_, err := cache.GetParseCache().Load(path, parse)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, cache.GetParseCache().GetMetrics().TotalEntries)

	cache.GetCache().MarkWritten("a_prefs_gen.go", "a.go", []byte("a"))
	cache.GetCache().MarkWritten("b_prefs_gen.go", "b.go", []byte("b"))
	assert.Equal(t, []string{"b_prefs_gen.go"}, cache.GetCache().Outputs())
}

func TestGetModuleNameFallsBackToDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "myapp")
	require.NoError(t, os.Mkdir(dir, 0o755))
	assert.Equal(t, "myapp", getModuleName(dir))
}
