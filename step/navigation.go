package step

import (
	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

// Out builds the out() flat-map step: expands the current node to each
// successor over withLabel (or any label, if empty), per spec §4.3.
func Out(withLabel string) *Step {
	return &Step{
		StepName:  "out",
		StepFlags: 0,
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, id, err := requireNode(it, "out")
			if err != nil {
				return nil, err
			}
			var out []traverser.Item
			for _, n := range ctx.Graph.Successors(id, withLabel) {
				out = append(out, t.MoveTo(n))
			}
			return out, nil
		},
	}
}

// In builds the in() flat-map step: the reverse of Out.
func In(withLabel string) *Step {
	return &Step{
		StepName:  "in",
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, id, err := requireNode(it, "in")
			if err != nil {
				return nil, err
			}
			var out []traverser.Item
			for _, n := range ctx.Graph.Predecessors(id, withLabel) {
				out = append(out, t.MoveTo(n))
			}
			return out, nil
		},
	}
}

// Both builds the both() flat-map step: the union of Out and In.
func Both(withLabel string) *Step {
	return &Step{
		StepName:  "both",
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, id, err := requireNode(it, "both")
			if err != nil {
				return nil, err
			}
			var out []traverser.Item
			for _, n := range ctx.Graph.Successors(id, withLabel) {
				out = append(out, t.MoveTo(n))
			}
			for _, n := range ctx.Graph.Predecessors(id, withLabel) {
				out = append(out, t.MoveTo(n))
			}
			return out, nil
		},
	}
}

// OutE builds the outE() flat-map step: expands a node to its outbound
// edges, repositioning the Traverser onto each edge.
func OutE(withLabel string) *Step {
	return &Step{
		StepName:  "outE",
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, id, err := requireNode(it, "outE")
			if err != nil {
				return nil, err
			}
			var out []traverser.Item
			for _, r := range ctx.Graph.OutEdges(id, withLabel) {
				out = append(out, t.MoveToEdge(r.Src, r.Dst))
			}
			return out, nil
		},
	}
}

// InE builds the inE() flat-map step.
func InE(withLabel string) *Step {
	return &Step{
		StepName:  "inE",
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, id, err := requireNode(it, "inE")
			if err != nil {
				return nil, err
			}
			var out []traverser.Item
			for _, r := range ctx.Graph.InEdges(id, withLabel) {
				out = append(out, t.MoveToEdge(r.Src, r.Dst))
			}
			return out, nil
		},
	}
}

// BothE builds the bothE() flat-map step.
func BothE(withLabel string) *Step {
	return &Step{
		StepName:  "bothE",
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, id, err := requireNode(it, "bothE")
			if err != nil {
				return nil, err
			}
			var out []traverser.Item
			for _, r := range ctx.Graph.OutEdges(id, withLabel) {
				out = append(out, t.MoveToEdge(r.Src, r.Dst))
			}
			for _, r := range ctx.Graph.InEdges(id, withLabel) {
				out = append(out, t.MoveToEdge(r.Src, r.Dst))
			}
			return out, nil
		},
	}
}

// OutV builds the outV() map step: repositions an edge-positioned
// Traverser onto its source node.
func OutV() *Step {
	return &Step{
		StepName: "outV",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			t, src, _, err := requireEdge(it, "outV")
			if err != nil {
				return nil, false, err
			}
			return t.MoveTo(src), true, nil
		},
	}
}

// InV builds the inV() map step: repositions an edge-positioned Traverser
// onto its destination node.
func InV() *Step {
	return &Step{
		StepName: "inV",
		MapFn: func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error) {
			t, _, dst, err := requireEdge(it, "inV")
			if err != nil {
				return nil, false, err
			}
			return t.MoveTo(dst), true, nil
		},
	}
}

// BothV builds the bothV() flat-map step: emits both endpoints of an edge.
func BothV() *Step {
	return &Step{
		StepName: "bothV",
		FlatMapFn: func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
			t, src, dst, err := requireEdge(it, "bothV")
			if err != nil {
				return nil, err
			}
			return []traverser.Item{t.MoveTo(src), t.MoveTo(dst)}, nil
		},
	}
}

func requireNode(it traverser.Item, step string) (*traverser.Traverser, store.NodeID, error) {
	t, ok := it.(*traverser.Traverser)
	if !ok {
		return nil, 0, travelerr.NewTraversal(travelerr.TraversalNotAnElement, step, "requires a Traverser positioned at a node")
	}
	id, ok := t.Position.Node()
	if !ok {
		return nil, 0, travelerr.NewTraversal(travelerr.TraversalNotAnElement, step, "current position is an edge, not a node")
	}
	return t, id, nil
}

func requireEdge(it traverser.Item, step string) (*traverser.Traverser, store.NodeID, store.NodeID, error) {
	t, ok := it.(*traverser.Traverser)
	if !ok {
		return nil, 0, 0, travelerr.NewTraversal(travelerr.TraversalNotAnElement, step, "requires a Traverser positioned at an edge")
	}
	src, dst, ok := t.Position.Edge()
	if !ok {
		return nil, 0, 0, travelerr.NewTraversal(travelerr.TraversalNotAnElement, step, "current position is a node, not an edge")
	}
	return t, src, dst, nil
}
