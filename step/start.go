package step

import (
	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

// V builds the V() start step: one Traverser per node id given, or every
// node in the graph if ids is empty, per spec §4.3. A start step requires
// an empty input stream (spec invariant: "start steps refuse non-empty
// input").
func V(ids ...store.NodeID) *Step {
	return &Step{
		StepName:  "V",
		StepFlags: IsStart,
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			if err := requireEmpty(ctx, in, "V"); err != nil {
				return nil, err
			}
			var items []traverser.Item
			targets := ids
			if len(targets) == 0 {
				targets = ctx.Graph.Nodes()
			}
			for _, id := range targets {
				if !ctx.Graph.HasNode(id) {
					continue
				}
				items = append(items, traverser.NewAtNode(id, ctx.NeedsPath))
			}
			return SliceStream(items), nil
		},
	}
}

// E builds the E() start step: one Traverser per edge endpoint pair given,
// or every edge in the graph if none given.
func E(refs ...store.EdgeRef) *Step {
	return &Step{
		StepName:  "E",
		StepFlags: IsStart,
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			if err := requireEmpty(ctx, in, "E"); err != nil {
				return nil, err
			}
			var items []traverser.Item
			targets := refs
			if len(targets) == 0 {
				targets = ctx.Graph.Edges()
			}
			for _, r := range targets {
				items = append(items, traverser.NewAtEdge(r.Src, r.Dst, ctx.NeedsPath))
			}
			return SliceStream(items), nil
		},
	}
}

// AddV builds the addV() start/map step: it inserts one new node per input
// item (or one, if run as a start step off an empty stream) and emits a
// Traverser positioned at it.
func AddV(label, name string, props map[string]interface{}) *Step {
	return &Step{
		StepName:  "addV",
		StepFlags: IsStart,
		BranchFn: func(ctx *ExecCtx, in Stream) (Stream, error) {
			items, err := Drain(in)
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				items = []traverser.Item{nil}
			}
			out := make([]traverser.Item, 0, len(items))
			for range items {
				id, err := ctx.Graph.AddNode(label, name, props, nil)
				if err != nil {
					return nil, err
				}
				out = append(out, traverser.NewAtNode(id, ctx.NeedsPath))
			}
			return SliceStream(out), nil
		},
	}
}

// AddE builds the addE() step: mid-pipeline, it inserts an edge labeled
// label between the positions named by the from_()/to_() as_-labels
// resolved against each incoming item's save-cache, per spec §4.3's
// SUPPORTS_FROM_TO flag. Opened directly off a traversal source (spec
// §4.6's addE(label, from_?, to_?, props) factory) it instead runs once
// against an empty input stream, with endpoints supplied explicitly by
// AddEFromTo rather than resolved from a save-cache that does not yet
// exist. It is flagged IsStart so a traversal may open on it; Build's
// mid-pipeline check (traversal.go) whitelists "addE" by name so chained
// use after another step is unaffected.
func AddE(label string, props map[string]interface{}) *Step {
	s := &Step{
		StepName:  "addE",
		StepFlags: SupportsFromTo | IsStart,
	}
	s.BranchFn = func(ctx *ExecCtx, in Stream) (Stream, error) {
		items, err := Drain(in)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return addEFromExplicitNodes(ctx, s, label, props)
		}
		out := make([]traverser.Item, 0, len(items))
		for _, it := range items {
			t, ok := it.(*traverser.Traverser)
			if !ok {
				return nil, travelerr.NewTraversal(travelerr.TraversalNotAnElement, "addE", "addE requires a Traverser input")
			}
			if s.FromLabel == "" || s.ToLabel == "" {
				return nil, travelerr.NewQuery(travelerr.QueryMissingFromTo, "addE", "addE requires both from_() and to_()")
			}
			fromItem, ok := t.Load(s.FromLabel)
			if !ok {
				return nil, travelerr.NewTraversal(travelerr.TraversalMissingLabel, "addE", "unknown from_ label "+s.FromLabel)
			}
			toItem, ok := t.Load(s.ToLabel)
			if !ok {
				return nil, travelerr.NewTraversal(travelerr.TraversalMissingLabel, "addE", "unknown to_ label "+s.ToLabel)
			}
			src, err := nodeOf(fromItem, "addE")
			if err != nil {
				return nil, err
			}
			dst, err := nodeOf(toItem, "addE")
			if err != nil {
				return nil, err
			}
			if err := ctx.Graph.AddEdge(src, dst, label, props); err != nil {
				return nil, err
			}
			out = append(out, t.MoveToEdge(src, dst))
		}
		return SliceStream(out), nil
	}
	return s
}

// AddEFromTo builds the addE() traversal-source factory of spec §4.6: it
// opens a traversal with explicit node endpoints rather than from_()/to_()
// labels, since a source-level addE has no preceding traverser to resolve
// labels against.
func AddEFromTo(from, to store.NodeID, label string, props map[string]interface{}) *Step {
	s := &Step{
		StepName:  "addE",
		StepFlags: SupportsFromTo | IsStart,
		FromNode:  &from,
		ToNode:    &to,
	}
	s.BranchFn = func(ctx *ExecCtx, in Stream) (Stream, error) {
		if err := requireEmpty(ctx, in, "addE"); err != nil {
			return nil, err
		}
		return addEFromExplicitNodes(ctx, s, label, props)
	}
	return s
}

func addEFromExplicitNodes(ctx *ExecCtx, s *Step, label string, props map[string]interface{}) (Stream, error) {
	if s.FromNode == nil || s.ToNode == nil {
		return nil, travelerr.NewQuery(travelerr.QueryMissingFromTo, "addE", "addE requires both from_() and to_()")
	}
	if err := ctx.Graph.AddEdge(*s.FromNode, *s.ToNode, label, props); err != nil {
		return nil, err
	}
	t := traverser.NewAtEdge(*s.FromNode, *s.ToNode, ctx.NeedsPath)
	return SliceStream([]traverser.Item{t}), nil
}

func nodeOf(it traverser.Item, step string) (store.NodeID, error) {
	t, ok := it.(*traverser.Traverser)
	if !ok {
		return 0, travelerr.NewTraversal(travelerr.TraversalNotAnElement, step, "from_/to_ label does not name an element")
	}
	id, ok := t.Position.Node()
	if !ok {
		return 0, travelerr.NewTraversal(travelerr.TraversalNotAnElement, step, "from_/to_ label names an edge, not a node")
	}
	return id, nil
}

func requireEmpty(ctx *ExecCtx, in Stream, step string) error {
	items, err := Drain(in)
	if err != nil {
		return err
	}
	if len(items) != 0 {
		return travelerr.NewQuery(travelerr.QueryNonEmptyStart, step, "start steps require an empty input stream")
	}
	return nil
}
