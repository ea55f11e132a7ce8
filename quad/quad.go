// Package quad defines the (Subject, Predicate, Object, Graph-context) tuple
// used to populate the inverted quad index described in spec §4.2. Subject,
// Predicate and Object reuse quad.Value from the standalone cayleygraph/quad
// module rather than a hand-rolled interface{} union, so hashing and string
// normalization of quad components come from a maintained library instead
// of being reimplemented here.
package quad

import (
	"fmt"

	cquad "github.com/cayleygraph/quad"
)

// GraphContext tags which facet of an element a quad describes.
type GraphContext int

const (
	NodeLabel GraphContext = iota
	NodeName
	NodeProperty
	EdgeLink
	EdgeLabel
	EdgeName
	EdgeProperty
)

func (g GraphContext) String() string {
	switch g {
	case NodeLabel:
		return "node-label"
	case NodeName:
		return "node-name"
	case NodeProperty:
		return "node-property"
	case EdgeLink:
		return "edge-link"
	case EdgeLabel:
		return "edge-label"
	case EdgeName:
		return "edge-name"
	case EdgeProperty:
		return "edge-property"
	default:
		return "unknown"
	}
}

// Value is re-exported so callers outside this package never need to import
// cayleygraph/quad directly.
type Value = cquad.Value

// Quad is one (Subject, Predicate, Object, Graph-context) tuple emitted on
// every element insertion.
type Quad struct {
	Subject   Value
	Predicate Value
	Object    Value
	Graph     GraphContext
}

// ToValue coerces an arbitrary attribute value into a quad.Value, stringifying
// anything that isn't already hashable the way spec §4.2 requires
// ("non-hashable property values are coerced to their string form").
func ToValue(v interface{}) Value {
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return cquad.String(t)
	case int:
		return cquad.Int(int64(t))
	case int64:
		return cquad.Int(t)
	case float64:
		return cquad.Float(t)
	case bool:
		return cquad.Bool(t)
	default:
		return cquad.String(fmt.Sprint(v))
	}
}

// StringOf returns the textual form used as a hash key when indexing.
func StringOf(v Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}
