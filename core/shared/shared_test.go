package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaming(t *testing.T) {
	assert.Equal(t, "Volume", ToTitle("volume"))
	assert.Equal(t, "", ToTitle(""))
	assert.Equal(t, "volume", LowerFirst("Volume"))
	assert.Equal(t, "ThemeAdapter", SimpleName("com.app.ThemeAdapter"))
	assert.Equal(t, "Plain", SimpleName("Plain"))
	assert.Equal(t, "JSONAdapter", SimpleName("prefs.JSONAdapter[geo.Point]"))
	assert.Equal(t, "ListAdapter", SimpleName("com.app.ListAdapter<com.app.Item>"))
	assert.Equal(t, "prefs.JSONAdapter", BaseName("prefs.JSONAdapter[Point]"))
	assert.Equal(t, "Plain", BaseName("Plain"))
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"UserPrefs":   "user_prefs",
		"Settings":    "settings",
		"HTTPOptions": "http_options",
		"already_ok":  "already_ok",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}
