// Package traversal implements the pipeline of spec §4.4/§4.5: an ordered
// list of bound steps, built once against a graph and then run to
// completion, grounded on cayley's graph/path.Path.BuildIterator /
// Iterate two-phase build-then-run split, adapted from a shape tree to a
// flat step list since this engine's steps do not need an optimizer's
// rewrite passes to be efficient at the sizes spec §1 targets.
package traversal

import (
	"time"

	"github.com/graphwalk/loom/clog"
	"github.com/graphwalk/loom/metrics"
	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

// Optimizer is a no-op extension point: a future rewrite pass can replace
// Traversal.Steps before Build binds them, without callers of Build/Run
// needing to change. The default Optimizer returns its input unchanged.
type Optimizer func(steps []*step.Step) []*step.Step

// IdentityOptimizer is the default Optimizer: it performs no rewriting.
func IdentityOptimizer(steps []*step.Step) []*step.Step { return steps }

// Traversal is a concrete, buildable pipeline bound to one graph.
type Traversal struct {
	Graph     *store.Graph
	Options   step.Options
	Steps     []*step.Step
	Optimize  Optimizer
	built     bool
	needsPath bool
}

// New builds an unbuilt Traversal over steps, in order, starting from an
// empty stream. The first step must be a start step (V/E/addV/addE).
func New(g *store.Graph, opts step.Options, steps ...*step.Step) *Traversal {
	return &Traversal{Graph: g, Options: opts, Steps: steps, Optimize: IdentityOptimizer}
}

// Build resolves every step's sub-traversals and validates the pipeline
// shape, per spec §4.4/§7: until()/emit()/times() placeholders are merged
// into the repeat() that follows them (a placeholder with no following
// repeat() is a QueryError), the pipeline must open on a start step, and
// the NeedsPath OR-reduction is computed here so start steps know whether
// to track paths once Run begins.
func (t *Traversal) Build() error {
	if t.built {
		return nil
	}
	if t.Optimize != nil {
		t.Steps = t.Optimize(t.Steps)
	}
	resolved, err := resolveLoopPlaceholders(t.Steps)
	if err != nil {
		return err
	}
	t.Steps = resolved
	if len(t.Steps) == 0 {
		return travelerr.NewQuery(travelerr.QueryBadArgCount, "traversal", "a traversal must contain at least one step")
	}
	if !t.Steps[0].Flags().Has(step.IsStart) {
		return travelerr.NewQuery(travelerr.QueryDanglingModulator, t.Steps[0].Name(), "a traversal must open with a start step (V/E/addV/addE)")
	}
	for _, s := range t.Steps[1:] {
		if s.Flags().Has(step.IsStart) && s.Name() != "addV" && s.Name() != "addE" {
			return travelerr.NewQuery(travelerr.QueryNonEmptyStart, s.Name(), "start steps may not appear mid-pipeline")
		}
	}
	bctx := &step.BuildCtx{Graph: t.Graph, Options: t.Options}
	for _, s := range t.Steps {
		if err := s.Build(bctx); err != nil {
			return err
		}
	}
	t.needsPath = bctx.NeedsPath
	t.built = true
	return nil
}

// resolveLoopPlaceholders implements spec §4.5/§9's placeholder mechanism:
// until()/emit()/times() steps synthesized with no preceding repeat() sit
// in the step list marked IsPlaceholder; the first repeat() step that
// follows a run of them absorbs their modulator state and runs in
// LoopModeUntilDo (check before acting), since until() preceded it in
// source order. A placeholder with no following repeat() is a QueryError.
func resolveLoopPlaceholders(steps []*step.Step) ([]*step.Step, error) {
	out := make([]*step.Step, 0, len(steps))
	var pending []*step.Step
	for _, s := range steps {
		if s.IsPlaceholder {
			pending = append(pending, s)
			continue
		}
		if s.Name() == "repeat" && len(pending) > 0 {
			for _, p := range pending {
				if p.UntilSub != nil {
					s.UntilSub = p.UntilSub
				}
				if p.EmitSub != nil {
					s.EmitSub = p.EmitSub
				}
				if p.EmitAll {
					s.EmitAll = true
				}
				if p.TimesN != nil {
					s.TimesN = p.TimesN
				}
			}
			s.LoopMode = step.LoopModeUntilDo
			pending = nil
		}
		out = append(out, s)
	}
	if len(pending) > 0 {
		return nil, travelerr.NewQuery(travelerr.QueryDanglingPlaceholder, pending[0].Name(), "until()/emit()/times() was never consumed by a following repeat()")
	}
	return out, nil
}

// NeedsPath reports the pipeline's computed path-tracking requirement.
// Valid only after Build.
func (t *Traversal) NeedsPath() bool { return t.needsPath }

// Run executes the pipeline to completion, honoring Options.Eager by
// materializing the stream between every step instead of staying lazy, and
// dispatching to the last step's terminal handler if it is terminal-shaped,
// defaulting to to_list() semantics otherwise, per spec §4.5.
func (t *Traversal) Run() (interface{}, error) {
	if err := t.Build(); err != nil {
		return nil, err
	}
	ctx := &step.ExecCtx{Graph: t.Graph, Options: t.Options, NeedsPath: t.needsPath}

	start := time.Now()
	defer func() { metrics.ObserveTraversal(time.Since(start)) }()

	steps := t.Steps
	terminal := step.ToList()
	if n := len(steps); n > 0 && steps[n-1].Flags().Has(step.IsTerminal) {
		terminal = steps[n-1]
		steps = steps[:n-1]
	}

	var cur step.Stream = step.EmptyStream()
	for _, s := range steps {
		metrics.StepApplied.WithLabelValues(s.Name()).Inc()
		next, err := s.Apply(ctx, cur)
		if err != nil {
			return nil, travelerr.WrapTraversal(s.Name(), err)
		}
		if s.AsLabel != "" {
			next = saveAs(next, s.AsLabel)
		}
		cur = next
		if t.Options.Eager {
			items, err := step.Drain(cur)
			if err != nil {
				return nil, travelerr.WrapTraversal(s.Name(), err)
			}
			metrics.StepItemsOut.WithLabelValues(s.Name()).Add(float64(len(items)))
			cur = step.SliceStream(items)
		}
	}
	metrics.StepApplied.WithLabelValues(terminal.Name()).Inc()
	clog.Infof("traversal: running terminal step %q over %d bound steps", terminal.Name(), len(steps))
	out, err := terminalApply(ctx, terminal, cur)
	if err != nil {
		return nil, travelerr.WrapTraversal(terminal.Name(), err)
	}
	return out, nil
}

func terminalApply(ctx *step.ExecCtx, terminal *step.Step, in step.Stream) (interface{}, error) {
	return terminal.TerminalFn(ctx, in)
}

// saveAs wraps a stream so every item passing through is recorded under
// label in its own save-cache, implementing the as_() modulator's
// universal applicability (spec §4.4: "every step supports as_").
func saveAs(in step.Stream, label string) step.Stream {
	return step.NewStream(func() (traverser.Item, bool, error) {
		it, ok, err := in.Next()
		if err != nil || !ok {
			return nil, ok, err
		}
		if t, ok := it.(*traverser.Traverser); ok {
			t.Save(label)
		} else {
			it.CacheOf()[label] = it
		}
		return it, true, nil
	})
}
