package models

import "fmt"

// Entry describes one persisted configuration value.
type Entry struct {
	Name         string `yaml:"name"`
	ValueType    string `yaml:"type"`
	DefaultValue string `yaml:"default"`
	Wrapper      string `yaml:"wrapper"`
	Adapter      string `yaml:"adapter,omitempty"` // optional
}

// HasAdapter reports whether the entry's wrapper needs a custom adapter argument.
func (e Entry) HasAdapter() bool {
	return e.Adapter != ""
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry{name=%q, type=%q, default=%q, wrapper=%q, adapter=%q}",
		e.Name, e.ValueType, e.DefaultValue, e.Wrapper, e.Adapter)
}

// Model is the unit of synthesis: an origin interface plus its ordered entries.
type Model struct {
	PackageName    string
	OriginTypeName string
	Source         string // file the model was discovered in, informational only

	entries []Entry
}

func NewModel(packageName, originTypeName string) *Model {
	return &Model{
		PackageName:    packageName,
		OriginTypeName: originTypeName,
	}
}

// AddEntry appends an entry. Insertion order is the synthesis order.
func (m *Model) AddEntry(entry Entry) {
	m.entries = append(m.entries, entry)
}

// Entries returns a copy of the model's entries in insertion order.
func (m *Model) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Model) Len() int {
	return len(m.entries)
}

// StoreKey is the namespace the generated constructor opens the backing store under.
func (m *Model) StoreKey() string {
	if m.PackageName == "" {
		return m.OriginTypeName
	}
	return m.PackageName + "." + m.OriginTypeName
}

// ImplName is the name of the generated implementation type.
func (m *Model) ImplName() string {
	return m.OriginTypeName + "Impl"
}

func (m *Model) String() string {
	return fmt.Sprintf("Model{package=%q, origin=%q, entries=%v}", m.PackageName, m.OriginTypeName, m.entries)
}
