package step

import (
	"fmt"

	"github.com/graphwalk/loom/predicate"
	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/traverser"
)

func attrValue(ctx *ExecCtx, it traverser.Item, key string) (interface{}, bool) {
	t, ok := it.(*traverser.Traverser)
	if !ok {
		return nil, false
	}
	if id, ok := t.Position.Node(); ok {
		n := ctx.Graph.Node(id)
		if n == nil {
			return nil, false
		}
		v, ok := n.Attrs[key]
		return v, ok
	}
	src, dst, _ := t.Position.Edge()
	for _, e := range ctx.Graph.EdgesBetween(src, dst) {
		if v, ok := e.Attrs[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has builds the has(key, pred) filter step, per spec §4.3: keeps elements
// whose key attribute exists and satisfies pred (Eq(value) when called with
// a plain value rather than a predicate).
func Has(key string, pred predicate.Predicate) *Step {
	return &Step{
		StepName: "has",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			v, ok := attrValue(ctx, it, key)
			if !ok {
				return false, nil
			}
			return pred(v), nil
		},
	}
}

// HasNot builds the has_not(key) filter step: keeps elements lacking key.
func HasNot(key string) *Step {
	return &Step{
		StepName: "has_not",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			_, ok := attrValue(ctx, it, key)
			return !ok, nil
		},
	}
}

// HasKey builds the has_key(key) filter step: an alias of HasNot's positive
// counterpart, kept distinct per spec naming.
func HasKey(key string) *Step {
	return &Step{
		StepName: "has_key",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			_, ok := attrValue(ctx, it, key)
			return ok, nil
		},
	}
}

// HasValue builds the has_value(pred) filter step: keeps elements with at
// least one attribute whose value satisfies pred.
func HasValue(pred predicate.Predicate) *Step {
	return &Step{
		StepName: "has_value",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return false, nil
			}
			attrs := elementAttrs(ctx, t)
			for _, v := range attrs {
				if pred(v) {
					return true, nil
				}
			}
			return false, nil
		},
	}
}

func elementAttrs(ctx *ExecCtx, t *traverser.Traverser) store.AttrMap {
	if id, ok := t.Position.Node(); ok {
		if n := ctx.Graph.Node(id); n != nil {
			return n.Attrs
		}
		return nil
	}
	src, dst, _ := t.Position.Edge()
	es := ctx.Graph.EdgesBetween(src, dst)
	if len(es) == 0 {
		return nil
	}
	return es[0].Attrs
}

// HasID builds the has_id(pred) filter step over a node's identifier.
func HasID(pred predicate.Predicate) *Step {
	return &Step{
		StepName: "has_id",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return false, nil
			}
			id, ok := t.Position.Node()
			if !ok {
				return false, nil
			}
			return pred(id), nil
		},
	}
}

// HasName builds has_name(pred), filtering on the configured name field.
func HasName(pred predicate.Predicate) *Step {
	return &Step{
		StepName: "has_name",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			v, ok := attrValue(ctx, it, ctx.Graph.Cfg.NameField)
			return ok && pred(v), nil
		},
	}
}

// HasLabel builds has_label(pred), filtering on the configured label field.
func HasLabel(pred predicate.Predicate) *Step {
	return &Step{
		StepName: "has_label",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return false, nil
			}
			var label string
			if id, ok := t.Position.Node(); ok {
				n := ctx.Graph.Node(id)
				if n == nil {
					return false, nil
				}
				label = n.Label(ctx.Graph.Cfg)
			} else {
				src, dst, _ := t.Position.Edge()
				es := ctx.Graph.EdgesBetween(src, dst)
				if len(es) == 0 {
					return false, nil
				}
				label = es[0].Label(ctx.Graph.Cfg)
			}
			return pred(label), nil
		},
	}
}

// Contains builds contains(pred) filtering the current scalar Value.
func Contains(pred predicate.Predicate) *Step {
	return &Step{
		StepName: "contains",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			return pred(underlyingValue(ctx, it)), nil
		},
	}
}

// Within builds within(opts...) filtering the current scalar Value.
func Within(opts ...interface{}) *Step {
	p := predicate.Within(opts...)
	return &Step{
		StepName: "within",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			return p(underlyingValue(ctx, it)), nil
		},
	}
}

// Is builds is_(pred), filtering the current scalar Value.
func Is(pred predicate.Predicate) *Step {
	return &Step{
		StepName: "is_",
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			return pred(underlyingValue(ctx, it)), nil
		},
	}
}

// SimplePath builds simple_path(), keeping only traversers whose recorded
// path visits no position twice. Requires NeedsPath.
func SimplePath() *Step {
	return &Step{
		StepName:  "simple_path",
		StepFlags: NeedsPath,
		FilterFn: func(ctx *ExecCtx, it traverser.Item) (bool, error) {
			path := it.PathOf()
			seen := map[string]bool{}
			for _, p := range path {
				key := fmt.Sprintf("%v", p)
				if seen[key] {
					return false, nil
				}
				seen[key] = true
			}
			return true, nil
		},
	}
}

// Limit builds limit(n): a stateful branch step, since truncation needs to
// see the stream as a whole rather than deciding per-element.
func Limit(n int) *Step {
	return &Step{
		StepName: "limit",
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			count := 0
			return NewStream(func() (traverser.Item, bool, error) {
				if n <= 0 || count >= n {
					return nil, false, nil
				}
				it, ok, err := in.Next()
				if err != nil || !ok {
					return nil, ok, err
				}
				count++
				return it, true, nil
			}), nil
		},
	}
}

// Skip builds skip(n): drops the first n elements.
func Skip(n int) *Step {
	return &Step{
		StepName: "skip",
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			skipped := 0
			return NewStream(func() (traverser.Item, bool, error) {
				for skipped < n {
					_, ok, err := in.Next()
					if err != nil || !ok {
						return nil, ok, err
					}
					skipped++
				}
				return in.Next()
			}), nil
		},
	}
}

// Range builds range(low, high): a half-open [low, high) window; high < 0
// means "to the end", per spec §4.3's boundary behavior.
func Range(low, high int) *Step {
	return &Step{
		StepName: "range",
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			idx := 0
			return NewStream(func() (traverser.Item, bool, error) {
				for {
					if high >= 0 && idx >= high {
						return nil, false, nil
					}
					it, ok, err := in.Next()
					if err != nil || !ok {
						return nil, ok, err
					}
					cur := idx
					idx++
					if cur < low {
						continue
					}
					return it, true, nil
				}
			}), nil
		},
	}
}

// Dedup builds dedup(): keeps only the first occurrence of each distinct
// underlying value, per spec's idempotence property.
func Dedup() *Step {
	return &Step{
		StepName: "dedup",
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			seen := map[string]bool{}
			return NewStream(func() (traverser.Item, bool, error) {
				for {
					it, ok, err := in.Next()
					if err != nil || !ok {
						return nil, ok, err
					}
					key := fmt.Sprintf("%v", underlyingValue(ctx, it))
					if seen[key] {
						continue
					}
					seen[key] = true
					return it, true, nil
				}
			}), nil
		},
	}
}

// Not builds not_(sub): keeps elements for which the anonymous
// sub-traversal sub yields no results.
func Not(sub SubTraversal) *Step {
	s := &Step{StepName: "not_", Subs: map[string]SubTraversal{"sub": sub}}
	s.FilterFn = func(ctx *ExecCtx, it traverser.Item) (bool, error) {
		built := s.BuiltSubs["sub"]
		out, err := built.Apply(ctx, SliceStream([]traverser.Item{it}))
		if err != nil {
			return false, err
		}
		items, err := Drain(out)
		if err != nil {
			return false, err
		}
		return len(items) == 0, nil
	}
	return s
}

// And builds and_(subs...): keeps elements for which every sub-traversal
// yields at least one result.
func And(subs ...SubTraversal) *Step {
	s := &Step{StepName: "and_", Subs: map[string]SubTraversal{}}
	for i, sub := range subs {
		s.Subs[fmt.Sprintf("%d", i)] = sub
	}
	n := len(subs)
	s.FilterFn = func(ctx *ExecCtx, it traverser.Item) (bool, error) {
		for i := 0; i < n; i++ {
			built := s.BuiltSubs[fmt.Sprintf("%d", i)]
			out, err := built.Apply(ctx, SliceStream([]traverser.Item{it}))
			if err != nil {
				return false, err
			}
			items, err := Drain(out)
			if err != nil {
				return false, err
			}
			if len(items) == 0 {
				return false, nil
			}
		}
		return true, nil
	}
	return s
}

// Or builds or_(subs...): keeps elements for which at least one
// sub-traversal yields a result.
func Or(subs ...SubTraversal) *Step {
	s := &Step{StepName: "or_", Subs: map[string]SubTraversal{}}
	for i, sub := range subs {
		s.Subs[fmt.Sprintf("%d", i)] = sub
	}
	n := len(subs)
	s.FilterFn = func(ctx *ExecCtx, it traverser.Item) (bool, error) {
		for i := 0; i < n; i++ {
			built := s.BuiltSubs[fmt.Sprintf("%d", i)]
			out, err := built.Apply(ctx, SliceStream([]traverser.Item{it}))
			if err != nil {
				return false, err
			}
			items, err := Drain(out)
			if err != nil {
				return false, err
			}
			if len(items) > 0 {
				return true, nil
			}
		}
		return false, nil
	}
	return s
}

// Filter builds filter_(sub): keeps elements for which sub yields a result;
// identical semantics to And with one argument, kept as a distinct name
// per spec's step catalog.
func Filter(sub SubTraversal) *Step {
	s := &Step{StepName: "filter_", Subs: map[string]SubTraversal{"sub": sub}}
	s.FilterFn = func(ctx *ExecCtx, it traverser.Item) (bool, error) {
		built := s.BuiltSubs["sub"]
		out, err := built.Apply(ctx, SliceStream([]traverser.Item{it}))
		if err != nil {
			return false, err
		}
		items, err := Drain(out)
		if err != nil {
			return false, err
		}
		return len(items) > 0, nil
	}
	return s
}
