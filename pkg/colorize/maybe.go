package colorize

import "fmt"

// Maybe is a float that might not have been given.
type Maybe struct {
	v  float64
	ok bool
}

var None = Maybe{}

func Some(v float64) Maybe { return Maybe{v: v, ok: true} }

// FromPtr adapts the *float64 fields of config structs.
func FromPtr(p *float64) Maybe {
	if p == nil {
		return None
	}
	return Some(*p)
}

func (m Maybe)Get() (float64, bool) { return m.v, m.ok }
func (m Maybe)IsSet() bool          { return m.ok }

func (m Maybe)Or(def float64) float64 {
	if m.ok {
		return m.v
	}
	return def
}

// First returns the first of the values that is set.
func First(ms ...Maybe) Maybe {
	for _, m := range ms {
		if m.ok {
			return m
		}
	}
	return None
}

func (m Maybe)String() string {
	if !m.ok {
		return "none"
	}
	return fmt.Sprintf("%g", m.v)
}
