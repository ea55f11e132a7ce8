package step

import (
	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

// Indexer is one by(...) argument: either a plain attribute key, an
// Order direction (for order().by(asc/desc)), or a bound anonymous
// sub-traversal whose single emitted value becomes the sort/group key,
// per spec §4.4's SUPPORTS_BY / SUPPORTS_ANON_BY flags.
type Indexer struct {
	Key       string
	Dir       traverser.Order
	Anon      SubTraversal
	BuiltAnon BuiltSub
}

// ByKey builds a plain-attribute Indexer, ascending by default.
func ByKey(key string) Indexer { return Indexer{Key: key} }

// ByDir builds an Indexer that only fixes sort direction, applying to the
// element's own underlying value - used for a bare order().by(desc).
func ByDir(dir traverser.Order) Indexer { return Indexer{Dir: dir} }

// ByAnon builds an Indexer backed by an anonymous sub-traversal.
func ByAnon(sub SubTraversal) Indexer { return Indexer{Anon: sub} }

// Resolve extracts the comparison/grouping value an Indexer selects for it,
// per spec §4.4: a plain key reads the element's attribute (nil if absent);
// an anon sub-traversal is run to completion and the underlying value of
// its first emitted item is returned (nil if it emits none; any further
// items are ignored).
func Resolve(ctx *ExecCtx, idx Indexer, it traverser.Item) (interface{}, error) {
	if idx.Anon != nil {
		built := idx.BuiltAnon
		if built == nil {
			return nil, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, "by", "anonymous by() was not built")
		}
		out, err := built.Apply(ctx, SliceStream([]traverser.Item{it}))
		if err != nil {
			return nil, err
		}
		items, err := Drain(out)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		return underlyingValue(ctx, items[0]), nil
	}
	if idx.Key != "" {
		return attrOf(ctx, it, idx.Key), nil
	}
	return underlyingValue(ctx, it), nil
}

// underlyingValue unwraps a stream Item to the Go value it represents:
// a Value/Property's Val, or a Traverser's node/edge id.
func underlyingValue(ctx *ExecCtx, it traverser.Item) interface{} {
	switch v := it.(type) {
	case *traverser.Value:
		return v.Val
	case *traverser.Property:
		return v.Val
	case *traverser.Traverser:
		if id, ok := v.Position.Node(); ok {
			return id
		}
		src, dst, _ := v.Position.Edge()
		return [2]interface{}{src, dst}
	default:
		return nil
	}
}

// attrOf reads attribute key off the element a Traverser-shaped item
// currently sits at; non-Traverser items have no attributes and read nil.
func attrOf(ctx *ExecCtx, it traverser.Item, key string) interface{} {
	t, ok := it.(*traverser.Traverser)
	if !ok {
		return nil
	}
	if id, ok := t.Position.Node(); ok {
		n := ctx.Graph.Node(id)
		if n == nil {
			return nil
		}
		return n.Attrs[key]
	}
	src, dst, ok := t.Position.Edge()
	if !ok {
		return nil
	}
	for _, e := range ctx.Graph.EdgesBetween(src, dst) {
		if v, ok := e.Attrs[key]; ok {
			return v
		}
	}
	return nil
}
