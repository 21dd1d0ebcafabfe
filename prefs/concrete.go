package prefs

import (
	"encoding/json"
	"strconv"
)

type codec[T any] struct {
	encode func(T) (string, error)
	decode func(string) (T, error)
}

type preference[T any] struct {
	store Store
	key   string
	def   T
	codec codec[T]
}

func newPreference[T any](store Store, key string, def T, c codec[T]) *preference[T] {
	return &preference[T]{store: store, key: key, def: def, codec: c}
}

func (p *preference[T]) Key() string {
	return p.key
}

// Get returns the stored value, or the default when it is missing or undecodable.
func (p *preference[T]) Get() T {
	raw, ok := p.store.Get(p.key)
	if !ok {
		return p.def
	}
	v, err := p.codec.decode(raw)
	if err != nil {
		return p.def
	}
	return v
}

func (p *preference[T]) Set(value T) error {
	raw, err := p.codec.encode(value)
	if err != nil {
		return err
	}
	return p.store.Set(p.key, raw)
}

func (p *preference[T]) IsSet() bool {
	_, ok := p.store.Get(p.key)
	return ok
}

func (p *preference[T]) Delete() error {
	return p.store.Remove(p.key)
}

type IntPreference = preference[int]
type LongPreference = preference[int64]
type FloatPreference = preference[float64]
type BoolPreference = preference[bool]
type StringPreference = preference[string]
type ObjectPreference[T any] = preference[T]

func NewIntPreference(store Store, key string, def int) *IntPreference {
	return newPreference(store, key, def, codec[int]{
		encode: func(v int) (string, error) { return strconv.Itoa(v), nil },
		decode: strconv.Atoi,
	})
}

func NewLongPreference(store Store, key string, def int64) *LongPreference {
	return newPreference(store, key, def, codec[int64]{
		encode: func(v int64) (string, error) { return strconv.FormatInt(v, 10), nil },
		decode: func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
	})
}

func NewFloatPreference(store Store, key string, def float64) *FloatPreference {
	return newPreference(store, key, def, codec[float64]{
		encode: func(v float64) (string, error) { return strconv.FormatFloat(v, 'g', -1, 64), nil },
		decode: func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
	})
}

func NewBoolPreference(store Store, key string, def bool) *BoolPreference {
	return newPreference(store, key, def, codec[bool]{
		encode: func(v bool) (string, error) { return strconv.FormatBool(v), nil },
		decode: strconv.ParseBool,
	})
}

func NewStringPreference(store Store, key string, def string) *StringPreference {
	return newPreference(store, key, def, codec[string]{
		encode: func(v string) (string, error) { return v, nil },
		decode: func(s string) (string, error) { return s, nil },
	})
}

// NewObjectPreference stores values of any type through adapter.
func NewObjectPreference[T any](store Store, key string, def T, adapter Adapter[T]) *ObjectPreference[T] {
	return newPreference(store, key, def, codec[T]{
		encode: adapter.Encode,
		decode: adapter.Decode,
	})
}

// JSONAdapter stores values as JSON documents.
type JSONAdapter[T any] struct{}

func (JSONAdapter[T]) Init(Context) {}

func (JSONAdapter[T]) Encode(value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (JSONAdapter[T]) Decode(raw string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}
