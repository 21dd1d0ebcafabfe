// Package prefs is the runtime that prefgen-generated implementations link
// against: a namespaced key-value store obtained from a Context, typed
// Preference wrappers over it, and the Adapter contract for custom value types.
package prefs

// Mode selects how a namespace is shared. Only private access is supported.
type Mode int

const (
	ModePrivate Mode = iota
)

// Store is a flat string key-value namespace.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
	Keys() []string
}

// Context hands out stores by namespace name.
type Context interface {
	Store(name string, mode Mode) Store
}

// Preference is one typed, defaulted value persisted under a key.
type Preference[T any] interface {
	Key() string
	Get() T
	Set(value T) error
	IsSet() bool
	Delete() error
}

// Adapter converts a custom value type to and from its stored form.
// Init is called once by the generated constructor before first use.
type Adapter[T any] interface {
	Init(ctx Context)
	Encode(value T) (string, error)
	Decode(raw string) (T, error)
}
