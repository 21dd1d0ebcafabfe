package emitter

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/prefgen/core/models"
	"github.com/tristendillon/prefgen/core/synth"
)

func goSettings() *models.OutputType {
	m := models.NewModel("settings", "Settings")
	m.AddEntry(models.Entry{Name: "volume", ValueType: "int", DefaultValue: "0", Wrapper: "IntPreference"})
	m.AddEntry(models.Entry{Name: "theme", ValueType: "Theme", DefaultValue: "ThemeLight", Wrapper: "ObjectPreference", Adapter: "ThemeAdapter"})
	return synth.MustSynthesize(m)
}

func javaSettings() *models.OutputType {
	m := models.NewModel("com.app", "Settings")
	m.AddEntry(models.Entry{Name: "volume", ValueType: "Integer", DefaultValue: "0", Wrapper: "IntPreference"})
	m.AddEntry(models.Entry{Name: "theme", ValueType: "Theme", DefaultValue: "Theme.LIGHT", Wrapper: "ObjectPreference", Adapter: "ThemeAdapter"})
	return synth.MustSynthesize(m)
}

const wantGoSettings = `// Code generated by prefgen. DO NOT EDIT.

package settings

import "github.com/tristendillon/prefgen/prefs"

var _ Settings = (*SettingsImpl)(nil)

type SettingsImpl struct {
	volume prefs.Preference[int]
	theme  prefs.Preference[Theme]
}

func NewSettingsImpl(context prefs.Context) *SettingsImpl {
	impl := new(SettingsImpl)
	sharedPreferences := context.Store("settings.Settings", prefs.ModePrivate)
	adapterThemeAdapter := new(ThemeAdapter)
	adapterThemeAdapter.Init(context)
	impl.volume = prefs.NewIntPreference(sharedPreferences, "volume", 0)
	impl.theme = prefs.NewObjectPreference(sharedPreferences, "theme", ThemeLight, adapterThemeAdapter)
	return impl
}

func (impl *SettingsImpl) Volume() prefs.Preference[int] {
	return impl.volume
}

func (impl *SettingsImpl) Theme() prefs.Preference[Theme] {
	return impl.theme
}
`

const wantJavaSettings = `package com.app;

import android.content.Context;
import android.content.SharedPreferences;
import de.appsfactory.mvp.preferences.Preference;
import de.appsfactory.mvp.preferences.concrete.IntPreference;
import de.appsfactory.mvp.preferences.concrete.ObjectPreference;

public class SettingsImpl implements Settings {
  private final Preference<Integer> volume;

  private final Preference<Theme> theme;

  public SettingsImpl(Context context) {
    final SharedPreferences sharedPreferences = context.getSharedPreferences("com.app.Settings", Context.MODE_PRIVATE);
    ThemeAdapter adapterThemeAdapter = new ThemeAdapter();
    adapterThemeAdapter.init(context);
    volume = new IntPreference(sharedPreferences, "volume", 0);
    theme = new ObjectPreference(sharedPreferences, "theme", Theme.LIGHT, adapterThemeAdapter);
  }

  public Preference<Integer> volume() {
    return volume;
  }

  public Preference<Theme> theme() {
    return theme;
  }
}
`

func TestGoRendererSettings(t *testing.T) {
	r, err := Lookup("go", Options{})
	require.NoError(t, err)

	out := goSettings()
	src, err := r.Render(out)
	require.NoError(t, err)
	assert.Equal(t, wantGoSettings, string(src))
	assert.Equal(t, "settings_prefs_gen.go", r.FileName(out))
}

func TestGoRendererEmptyModelParses(t *testing.T) {
	r := NewGoRenderer(Options{RuntimeImport: "example.com/runtime/kv", Source: "empty.go"})
	src, err := r.Render(synth.MustSynthesize(models.NewModel("", "Empty")))
	require.NoError(t, err)

	text := string(src)
	assert.Contains(t, text, "// Source: empty.go")
	assert.Contains(t, text, "package main")
	assert.Contains(t, text, `import prefs "example.com/runtime/kv"`)
	assert.Contains(t, text, `sharedPreferences := context.Store("Empty", prefs.ModePrivate)`)
	assert.Contains(t, text, "_ = sharedPreferences")

	_, err = parser.ParseFile(token.NewFileSet(), "empty_prefs_gen.go", src, parser.AllErrors)
	assert.NoError(t, err)
}

func TestGoRendererQualifiedNames(t *testing.T) {
	m := models.NewModel("github.com/acme/app/config", "Options")
	m.AddEntry(models.Entry{Name: "Timeout", ValueType: "time.Duration", DefaultValue: "5 * time.Second", Wrapper: "durations.NewPreference"})
	r := NewGoRenderer(Options{GoPackage: "cfg"})

	src, err := r.Render(synth.MustSynthesize(m))
	require.NoError(t, err)
	text := string(src)
	assert.Contains(t, text, "package cfg")
	assert.Contains(t, text, "timeout prefs.Preference[time.Duration]")
	assert.Contains(t, text, `impl.timeout = durations.NewPreference(sharedPreferences, "Timeout", 5*time.Second)`)
	assert.Contains(t, text, "func (impl *OptionsImpl) Timeout() prefs.Preference[time.Duration]")
}

func TestGoRendererAdapterPolicies(t *testing.T) {
	shared := func() *models.Model {
		m := models.NewModel("p", "Two")
		m.AddEntry(models.Entry{Name: "a", ValueType: "T", DefaultValue: "T{}", Wrapper: "ObjectPreference", Adapter: "TAdapter"})
		m.AddEntry(models.Entry{Name: "b", ValueType: "T", DefaultValue: "T{}", Wrapper: "ObjectPreference", Adapter: "TAdapter"})
		return m
	}
	r := NewGoRenderer(Options{})

	perEntry, err := r.Render(synth.MustSynthesize(shared()))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(perEntry), "adapterTAdapter := new(TAdapter)"))

	dedup, err := r.Render(synth.MustSynthesize(shared(), synth.WithAdapterPolicy(synth.AdapterDedup)))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(dedup), "adapterTAdapter := new(TAdapter)"))
}

func TestGoRendererReportsUnparsableOutput(t *testing.T) {
	m := models.NewModel("p", "Bad")
	m.AddEntry(models.Entry{Name: "x", ValueType: "int", DefaultValue: "(((", Wrapper: "IntPreference"})

	raw, err := NewGoRenderer(Options{}).Render(synth.MustSynthesize(m))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not parse")
	assert.Contains(t, string(raw), `"x", (((`)
}

func TestJavaRendererSettings(t *testing.T) {
	r, err := Lookup("JAVA", Options{})
	require.NoError(t, err)

	out := javaSettings()
	src, err := r.Render(out)
	require.NoError(t, err)
	assert.Equal(t, wantJavaSettings, string(src))
	assert.Equal(t, "com/app/SettingsImpl.java", r.FileName(out))
}

func TestJavaRendererRootPackageAndQualifiedTypes(t *testing.T) {
	m := models.NewModel("", "Prefs")
	m.AddEntry(models.Entry{Name: "when", ValueType: "java.util.Date", DefaultValue: "null", Wrapper: "ObjectPreference", Adapter: "com.x.DateAdapter"})
	m.AddEntry(models.Entry{Name: "name", ValueType: "java.lang.String", DefaultValue: `"anon"`, Wrapper: "StringPreference"})
	r := NewJavaRenderer(Options{})

	out := synth.MustSynthesize(m)
	src, err := r.Render(out)
	require.NoError(t, err)
	text := string(src)

	assert.True(t, strings.HasPrefix(text, "import "), text)
	assert.Contains(t, text, "import com.x.DateAdapter;\n")
	assert.Contains(t, text, "import java.util.Date;\n")
	assert.NotContains(t, text, "import java.lang.String;")
	assert.Contains(t, text, "private final Preference<Date> when;")
	assert.Contains(t, text, "DateAdapter adapterDateAdapter = new DateAdapter();")
	assert.Contains(t, text, `name = new StringPreference(sharedPreferences, "name", "anon");`)
	assert.Equal(t, "PrefsImpl.java", r.FileName(out))
}

func TestLookupUnknownRenderer(t *testing.T) {
	_, err := Lookup("cobol", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go, java")
	assert.Equal(t, []string{"go", "java"}, Names())
}

func TestGoRendererEscapesKeywordFields(t *testing.T) {
	m := models.NewModel("p", "S")
	m.AddEntry(models.Entry{Name: "type", ValueType: "string", DefaultValue: `""`, Wrapper: "StringPreference"})
	m.AddEntry(models.Entry{Name: "Func", ValueType: "int", DefaultValue: "0", Wrapper: "IntPreference"})

	src, err := NewGoRenderer(Options{}).Render(synth.MustSynthesize(m))
	require.NoError(t, err)
	text := string(src)

	assert.Contains(t, text, "type_ prefs.Preference[string]")
	assert.Contains(t, text, `impl.type_ = prefs.NewStringPreference(sharedPreferences, "type", "")`)
	assert.Contains(t, text, "func (impl *SImpl) Type() prefs.Preference[string] {\n\treturn impl.type_\n}")
	assert.Contains(t, text, `impl.func_ = prefs.NewIntPreference(sharedPreferences, "Func", 0)`)
	assert.Contains(t, text, "func (impl *SImpl) Func() prefs.Preference[int] {\n\treturn impl.func_\n}")
}

func TestGoRendererGenericAdapter(t *testing.T) {
	m := models.NewModel("p", "S")
	m.AddEntry(models.Entry{Name: "origin", ValueType: "Point", DefaultValue: "Point{}", Wrapper: "ObjectPreference", Adapter: "prefs.JSONAdapter[Point]"})

	src, err := NewGoRenderer(Options{}).Render(synth.MustSynthesize(m))
	require.NoError(t, err)
	text := string(src)

	assert.Contains(t, text, "adapterJSONAdapter := new(prefs.JSONAdapter[Point])")
	assert.Contains(t, text, "adapterJSONAdapter.Init(context)")
	assert.Contains(t, text, `impl.origin = prefs.NewObjectPreference(sharedPreferences, "origin", Point{}, adapterJSONAdapter)`)
	assert.NotContains(t, text, "adapterJSONAdapter[")
}

func TestJavaRendererGenericAdapter(t *testing.T) {
	m := models.NewModel("com.app", "Lists")
	m.AddEntry(models.Entry{Name: "items", ValueType: "java.util.List<com.x.Item>", DefaultValue: "null", Wrapper: "ObjectPreference", Adapter: "com.x.ListAdapter<com.x.Item>"})

	src, err := NewJavaRenderer(Options{}).Render(synth.MustSynthesize(m))
	require.NoError(t, err)
	text := string(src)

	assert.Contains(t, text, "import com.x.ListAdapter;\n")
	assert.Contains(t, text, "import java.util.List;\n")
	assert.Contains(t, text, "private final Preference<List<com.x.Item>> items;")
	assert.Contains(t, text, "ListAdapter<com.x.Item> adapterListAdapter = new ListAdapter<com.x.Item>();")
	assert.Contains(t, text, `items = new ObjectPreference(sharedPreferences, "items", null, adapterListAdapter);`)
}

func TestJavaQuoteUsesJavaEscapes(t *testing.T) {
	assert.Equal(t, `"plain"`, javaQuote("plain"))
	assert.Equal(t, `"a\"b\\c\n\t"`, javaQuote("a\"b\\c\n\t"))
	assert.Equal(t, `"\u001b[0m\u0007\u000b"`, javaQuote("\x1b[0m\a\v"))
	assert.Equal(t, `"café"`, javaQuote("café"))
}
