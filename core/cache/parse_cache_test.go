package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/prefgen/core/models"
)

func countingParser(calls *int) ParseFunc {
	return func(path string, src []byte) ([]*models.Model, error) {
		*calls++
		if string(src) == "broken" {
			return nil, errors.New("broken source")
		}
		m := models.NewModel("p", string(src))
		m.Source = path
		return []*models.Model{m}, nil
	}
}

func TestParseCacheReparsesOnlyChangedContent(t *testing.T) {
	pc := NewParseCache(nil)
	path := filepath.Join(t.TempDir(), "settings.go")
	calls := 0
	parse := countingParser(&calls)

	require.NoError(t, os.WriteFile(path, []byte("Settings"), 0o644))
	first, err := pc.Load(path, parse)
	require.NoError(t, err)
	second, err := pc.Load(path, parse)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Same(t, first[0], second[0])

	require.NoError(t, os.WriteFile(path, []byte("Flags"), 0o644))
	third, err := pc.Load(path, parse)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Flags", third[0].OriginTypeName)

	m := pc.GetMetrics()
	assert.Equal(t, int64(1), m.Hits)
	assert.Equal(t, int64(2), m.Misses)
	assert.Equal(t, 1, m.TotalEntries)
}

func TestParseCacheDoesNotKeepFailures(t *testing.T) {
	pc := NewParseCache(nil)
	path := filepath.Join(t.TempDir(), "bad.go")
	calls := 0
	parse := countingParser(&calls)

	require.NoError(t, os.WriteFile(path, []byte("Settings"), 0o644))
	_, err := pc.Load(path, parse)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("broken"), 0o644))
	_, err = pc.Load(path, parse)
	require.Error(t, err)
	assert.Equal(t, 0, pc.GetMetrics().TotalEntries)

	require.NoError(t, os.Remove(path))
	_, err = pc.Load(path, parse)
	assert.True(t, os.IsNotExist(err))
}
