package step

import (
	"fmt"
	"sort"

	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

// ID builds id_(): maps a Traverser to a Value wrapping its node id (or the
// (src,dst) pair, if edge-positioned).
func ID() *Step {
	return &Step{
		StepName: "id_",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			return traverser.NewValue(underlyingValue(ctx, it), it), true, nil
		},
	}
}

// ValueStep builds value(): unwraps a Property item to its scalar Value.
func ValueStep() *Step {
	return &Step{
		StepName: "value",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			p, ok := it.(*traverser.Property)
			if !ok {
				return nil, false, travelerr.NewTraversal(travelerr.TraversalNotAValue, "value", "value() requires a Property input (did you forget properties()?)")
			}
			return traverser.NewValue(p.Val, p), true, nil
		},
	}
}

// KeyStep builds key(): unwraps a Property item to a Value of its key.
func KeyStep() *Step {
	return &Step{
		StepName: "key",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			p, ok := it.(*traverser.Property)
			if !ok {
				return nil, false, travelerr.NewTraversal(travelerr.TraversalNotAValue, "key", "key() requires a Property input")
			}
			return traverser.NewValue(p.Key, p), true, nil
		},
	}
}

// Values builds values(keys...): flat-maps a Traverser to one Value per
// requested attribute key, or every attribute if keys is empty.
func Values(keys ...string) *Step {
	return &Step{
		StepName: "values",
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return nil, travelerr.NewTraversal(travelerr.TraversalNotAnElement, "values", "values() requires an element")
			}
			attrs := elementAttrs(ctx, t)
			var out []traverser.Item
			for _, k := range resolveKeys(keys, attrs) {
				if v, ok := attrs[k]; ok {
					out = append(out, traverser.NewValue(v, t))
				}
			}
			return out, nil
		},
	}
}

// Properties builds properties(keys...): flat-maps a Traverser to one
// Property per requested key, or every attribute if keys is empty.
func Properties(keys ...string) *Step {
	return &Step{
		StepName: "properties",
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return nil, travelerr.NewTraversal(travelerr.TraversalNotAnElement, "properties", "properties() requires an element")
			}
			attrs := elementAttrs(ctx, t)
			var out []traverser.Item
			for _, k := range resolveKeys(keys, attrs) {
				if v, ok := attrs[k]; ok {
					out = append(out, traverser.NewProperty(k, v, t))
				}
			}
			return out, nil
		},
	}
}

func resolveKeys(keys []string, attrs map[string]interface{}) []string {
	if len(keys) > 0 {
		return keys
	}
	var out []string
	for k := range attrs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Name builds name(): maps a Traverser to a Value of its configured name field.
func Name() *Step {
	return &Step{
		StepName: "name",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			v, _ := attrValue(ctx, it, ctx.Graph.Cfg.NameField)
			return traverser.NewValue(v, it), true, nil
		},
	}
}

// Label builds label(): maps a Traverser to a Value of its configured label.
func Label() *Step {
	return &Step{
		StepName: "label",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return nil, false, travelerr.NewTraversal(travelerr.TraversalNotAnElement, "label", "label() requires an element")
			}
			var label string
			if id, ok := t.Position.Node(); ok {
				n := ctx.Graph.Node(id)
				if n != nil {
					label = n.Label(ctx.Graph.Cfg)
				}
			} else {
				src, dst, _ := t.Position.Edge()
				es := ctx.Graph.EdgesBetween(src, dst)
				if len(es) > 0 {
					label = es[0].Label(ctx.Graph.Cfg)
				}
			}
			return traverser.NewValue(label, it), true, nil
		},
	}
}

// Select builds select(labels...): resolves each label against the item's
// save-cache. With one label it emits that saved item's underlying value
// wrapped as a Value; with several it emits a Value whose Val is a
// map[string]interface{} keyed by label, per spec §4.3.
func Select(labels ...string) *Step {
	return &Step{
		StepName: "select",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			if len(labels) == 0 {
				return nil, false, travelerr.NewQuery(travelerr.QueryBadArgCount, "select", "select() requires at least one label")
			}
			resolved := map[string]interface{}{}
			for _, l := range labels {
				saved, ok := it.CacheOf()[l]
				if !ok {
					return nil, false, travelerr.NewTraversal(travelerr.TraversalMissingLabel, "select", "unknown as_ label "+l)
				}
				resolved[l] = underlyingValue(ctx, saved)
			}
			if len(labels) == 1 {
				return traverser.NewValue(resolved[labels[0]], it), true, nil
			}
			return traverser.NewValue(resolved, it), true, nil
		},
	}
}

// Order builds order(): a branch step that materializes the input stream
// and sorts it by the step's ByIdx indexers in order, earlier indexers
// taking priority, per spec §4.4.
func Order() *Step {
	s := &Step{StepName: "order", StepFlags: SupportsBy | SupportsAnonBy | SupportsMultipleBy}
	s.BranchFn = func(ctx *ExecCtx, in Stream) (Stream, error) {
		items, err := Drain(in)
		if err != nil {
			return nil, err
		}
		idx := s.ByIdx
		if len(idx) == 0 {
			idx = []Indexer{{}}
		}
		keys := make([][]interface{}, len(items))
		for i, it := range items {
			row := make([]interface{}, len(idx))
			for j, ix := range idx {
				v, err := Resolve(ctx, ix, it)
				if err != nil {
					return nil, err
				}
				row[j] = v
			}
			keys[i] = row
		}
		order := make([]int, len(items))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			ai, bi := order[a], order[b]
			for j, ix := range idx {
				c := compareValues(keys[ai][j], keys[bi][j])
				if c == 0 {
					continue
				}
				if ix.Dir == traverser.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
		out := make([]traverser.Item, len(items))
		for i, o := range order {
			out[i] = items[o]
		}
		return SliceStream(out), nil
	}
	return s
}

// compareValues orders two values numerically if both are numeric,
// otherwise lexically by their printed form.
func compareValues(a, b interface{}) int {
	if af, ok := asNumber(a); ok {
		if bf, ok := asNumber(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asNumber(v interface{}) (float64, bool) {
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

// valueLen reports the length of it's underlying value if it is a slice
// (as path()/fold() produce), or 1 for any scalar, per spec §6.1's local
// count/aggregate scope semantics ("maps each input to the length of its
// value, or 1 if scalar").
func valueLen(ctx *ExecCtx, it traverser.Item) int {
	v := underlyingValue(ctx, it)
	switch t := v.(type) {
	case []interface{}:
		return len(t)
	default:
		return 1
	}
}

// Count builds count(scope): global scope collapses the whole stream to a
// single Value of its length; local scope maps each element to the length
// of its own value (or 1 if scalar), per spec §6.1.
func Count(scope traverser.Scope) *Step {
	if scope == traverser.Local {
		return &Step{
			StepName: "count",
			MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
				return traverser.NewValue(int64(valueLen(ctx, it)), it), true, nil
			},
		}
	}
	return &Step{
		StepName: "count",
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			items, err := Drain(in)
			if err != nil {
				return nil, err
			}
			return SliceStream([]traverser.Item{traverser.NewValue(int64(len(items)), nil)}), nil
		},
	}
}

// aggregate implements min/max/sum/mean over the underlying values of the
// stream, per spec §4.3, failing with TraversalNotNumeric on any
// non-numeric value; min/max are always global (spec gives no local form),
// sum/mean honor scope per spec §6.1.
func aggregate(name string, fn func(vals []float64) (float64, bool)) *Step {
	return &Step{
		StepName: name,
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			items, err := Drain(in)
			if err != nil {
				return nil, err
			}
			var vals []float64
			for _, it := range items {
				f, ok := asNumber(underlyingValue(ctx, it))
				if !ok {
					return nil, travelerr.NewTraversal(travelerr.TraversalNotNumeric, name, name+"() requires numeric values")
				}
				vals = append(vals, f)
			}
			result, ok := fn(vals)
			if !ok {
				return EmptyStream(), nil
			}
			return SliceStream([]traverser.Item{traverser.NewValue(result, nil)}), nil
		},
	}
}

func localAggregate(name string, fn func(vals []float64) (float64, bool)) *Step {
	return &Step{
		StepName: name,
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			v := underlyingValue(ctx, it)
			seq, ok := v.([]interface{})
			if !ok {
				return nil, false, travelerr.NewTraversal(travelerr.TraversalTypeMismatch, name, name+"(local) requires an iterable value")
			}
			var vals []float64
			for _, e := range seq {
				f, ok := asNumber(e)
				if !ok {
					return nil, false, travelerr.NewTraversal(travelerr.TraversalNotNumeric, name, name+"(local) requires numeric elements")
				}
				vals = append(vals, f)
			}
			result, ok := fn(vals)
			if !ok {
				return nil, false, nil
			}
			return traverser.NewValue(result, it), true, nil
		},
	}
}

// Min builds min(): always global scope, per spec §6.1.
func Min() *Step {
	return aggregate("min", func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m, true
	})
}

// Max builds max(): always global scope, per spec §6.1.
func Max() *Step {
	return aggregate("max", func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m, true
	})
}

func sumFn(vals []float64) (float64, bool) {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s, len(vals) > 0
}

func meanFn(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	s, _ := sumFn(vals)
	return s / float64(len(vals)), true
}

// Sum builds sum(scope): global scope requires every stream element to be
// numeric; local scope requires each element's value to be iterable of
// numerics, per spec §6.1.
func Sum(scope traverser.Scope) *Step {
	if scope == traverser.Local {
		return localAggregate("sum", sumFn)
	}
	return aggregate("sum", sumFn)
}

// Mean builds mean(scope), with the same global/local split as Sum.
func Mean(scope traverser.Scope) *Step {
	if scope == traverser.Local {
		return localAggregate("mean", meanFn)
	}
	return aggregate("mean", meanFn)
}

// Path builds path(): maps a Traverser to a Value wrapping its recorded
// path as a slice of positions. Requires NeedsPath. A by() modulator maps
// each path position through its indexer (e.g. by("name")) instead of
// emitting the raw node id/edge pair, per spec §4.3's path().by(...) form;
// each position is wrapped in a bare Traverser so Resolve can read
// attributes off it the same way it does for a live element.
func Path() *Step {
	s := &Step{StepName: "path", StepFlags: NeedsPath | SupportsBy | SupportsAnonBy}
	s.MapFn = func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
		path := it.PathOf()
		out := make([]interface{}, len(path))
		for i, p := range path {
			if len(s.ByIdx) > 0 {
				v, err := Resolve(ctx, s.ByIdx[0], &traverser.Traverser{Position: p})
				if err != nil {
					return nil, false, err
				}
				out[i] = v
				continue
			}
			if id, ok := p.Node(); ok {
				out[i] = id
			} else {
				src, dst, _ := p.Edge()
				out[i] = [2]interface{}{src, dst}
			}
		}
		return traverser.NewValue(out, it), true, nil
	}
	return s
}

// ElementMap builds element_map(): maps a Traverser to a Value wrapping a
// map[string]interface{} of every attribute on the current element, plus
// its id under "id".
func ElementMap() *Step {
	return &Step{
		StepName: "element_map",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return nil, false, travelerr.NewTraversal(travelerr.TraversalNotAnElement, "element_map", "element_map() requires an element")
			}
			attrs := elementAttrs(ctx, t)
			m := make(map[string]interface{}, len(attrs)+1)
			for k, v := range attrs {
				m[k] = v
			}
			m["id"] = underlyingValue(ctx, it)
			return traverser.NewValue(m, it), true, nil
		},
	}
}

// Fold builds fold(seed, f), spec §4.3's general reduce: f folds seed with
// every underlying value seen, left to right, and the step emits a single
// Value wrapping the final accumulator.
func Fold(seed interface{}, f func(acc, val interface{}) interface{}) *Step {
	return &Step{
		StepName: "fold",
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			items, err := Drain(in)
			if err != nil {
				return nil, err
			}
			acc := seed
			for _, it := range items {
				acc = f(acc, underlyingValue(ctx, it))
			}
			return SliceStream([]traverser.Item{traverser.NewValue(acc, nil)}), nil
		},
	}
}

// FoldList builds the no-argument fold() form: collapses the stream into a
// single Value wrapping a slice of every underlying value seen, equivalent
// to fold(seed=[], f=append).
func FoldList() *Step {
	return Fold([]interface{}{}, func(acc, val interface{}) interface{} {
		return append(acc.([]interface{}), val)
	})
}
