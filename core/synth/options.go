package synth

import (
	"fmt"
	"strings"
)

// AdapterPolicy controls how adapter-bearing entries become adapter statements.
type AdapterPolicy int

const (
	// AdapterPerEntry emits one declaration and init call per adapter-bearing
	// entry, even when several entries share an adapter type. Two entries with
	// the same adapter redeclare the same local name in the output.
	AdapterPerEntry AdapterPolicy = iota
	// AdapterDedup emits one declaration and init call per distinct adapter
	// local name, at the position of the first entry that uses it.
	AdapterDedup
)

func (p AdapterPolicy) String() string {
	switch p {
	case AdapterPerEntry:
		return "per-entry"
	case AdapterDedup:
		return "dedup"
	default:
		return "unknown"
	}
}

func ParseAdapterPolicy(s string) (AdapterPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "per-entry", "per_entry", "perentry":
		return AdapterPerEntry, nil
	case "dedup":
		return AdapterDedup, nil
	default:
		return AdapterPerEntry, fmt.Errorf("unknown adapter policy %q (want per-entry or dedup)", s)
	}
}

type config struct {
	adapterPolicy AdapterPolicy
}

type Option func(*config)

func WithAdapterPolicy(policy AdapterPolicy) Option {
	return func(c *config) {
		c.adapterPolicy = policy
	}
}

func newConfig(opts []Option) config {
	cfg := config{adapterPolicy: AdapterPerEntry}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
