// Package predicate implements the first-class comparison/containment
// predicate library of spec §4.7, grounded on the shape.Comparison /
// shape.Regexp value filters in cayley's graph/shape package, adapted from
// iterator-level filters to plain func(interface{}) bool values so they can
// be embedded directly inside has()/is() step arguments.
package predicate

import (
	"fmt"
	"regexp"
	"strings"
)

// Predicate is a first-class callable from value to bool. Per spec §7's
// propagation policy, a Predicate never errors: unsupported input types
// simply evaluate to false so has()/is() remain filters, never hazards.
type Predicate func(v interface{}) bool

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Eq reports whether v equals want: two numbers (int, int32, int64,
// float32, float64) compare by numeric value across types; anything else
// compares by its fmt.Sprint string form.
func Eq(want interface{}) Predicate {
	return func(v interface{}) bool { return equal(v, want) }
}

// Neq is the negation of Eq.
func Neq(want interface{}) Predicate { return Not(Eq(want)) }

func equal(a, b interface{}) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func numericCmp(want interface{}, cmp func(a, b float64) bool) Predicate {
	wf, wok := asFloat(want)
	return func(v interface{}) bool {
		if !wok {
			return false
		}
		vf, ok := asFloat(v)
		if !ok {
			return false
		}
		return cmp(vf, wf)
	}
}

// Gt, Gte, Lt, Lte are the standard numeric comparisons. Per spec §4.7,
// they report false for non-numeric input rather than erroring.
func Gt(want interface{}) Predicate  { return numericCmp(want, func(a, b float64) bool { return a > b }) }
func Gte(want interface{}) Predicate { return numericCmp(want, func(a, b float64) bool { return a >= b }) }
func Lt(want interface{}) Predicate  { return numericCmp(want, func(a, b float64) bool { return a < b }) }
func Lte(want interface{}) Predicate { return numericCmp(want, func(a, b float64) bool { return a <= b }) }

// Inside reports whether lo < v < hi (open interval).
func Inside(lo, hi interface{}) Predicate { return And(Gt(lo), Lt(hi)) }

// Between reports whether lo <= v <= hi (closed interval).
func Between(lo, hi interface{}) Predicate { return And(Gte(lo), Lte(hi)) }

// Outside is the negation of Inside.
func Outside(lo, hi interface{}) Predicate { return Not(Inside(lo, hi)) }

// Within reports whether v equals any of opts.
func Within(opts ...interface{}) Predicate {
	return func(v interface{}) bool {
		for _, o := range opts {
			if equal(v, o) {
				return true
			}
		}
		return false
	}
}

// Without is the negation of Within.
func Without(opts ...interface{}) Predicate { return Not(Within(opts...)) }

// StartingWith reports whether v, as a string, has the given prefix.
func StartingWith(prefix string) Predicate {
	return func(v interface{}) bool {
		s, ok := asString(v)
		return ok && strings.HasPrefix(s, prefix)
	}
}

// EndingWith reports whether v, as a string, has the given suffix.
func EndingWith(suffix string) Predicate {
	return func(v interface{}) bool {
		s, ok := asString(v)
		return ok && strings.HasSuffix(s, suffix)
	}
}

// Containing reports whether v, as a string, contains sub.
func Containing(sub string) Predicate {
	return func(v interface{}) bool {
		s, ok := asString(v)
		return ok && strings.Contains(s, sub)
	}
}

// Regex compiles pattern immediately (spec §4.7: "invalid patterns fail
// immediately"), returning the compiled predicate and any compile error.
func Regex(pattern string) (Predicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return func(v interface{}) bool {
		s, ok := asString(v)
		return ok && re.MatchString(s)
	}, nil
}

// MustRegex is Regex, panicking on an invalid pattern; used for predicates
// built from literal patterns known at compile time.
func MustRegex(pattern string) Predicate {
	p, err := Regex(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Not negates a predicate.
func Not(p Predicate) Predicate { return func(v interface{}) bool { return !p(v) } }

// And is true iff every predicate is true.
func And(ps ...Predicate) Predicate {
	return func(v interface{}) bool {
		for _, p := range ps {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// Or is true iff any predicate is true.
func Or(ps ...Predicate) Predicate {
	return func(v interface{}) bool {
		for _, p := range ps {
			if p(v) {
				return true
			}
		}
		return false
	}
}
