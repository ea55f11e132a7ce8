// Package step implements the step algebra of spec §4.3: a single concrete
// Step type carrying a flag word and one of five handler closures (map,
// flat-map, filter, side-effect, branch), grounded directly on the
// Name/Apply/Reversal morphism struct in cayley's
// graph/path/morphism_apply_functions.go - there one closure per morphism
// kind stitched onto a shape.Shape tree, here one closure per step kind
// stitched onto a traverser.Item stream.
package step

import (
	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

// Flags is the bitmask describing a step's admissible modulators and
// structural role, per spec §4.3.
type Flags uint32

const (
	IsStart Flags = 1 << iota
	IsTerminal
	NeedsPath
	SupportsBy
	SupportsAnonBy // implies SupportsBy
	SupportsMultipleBy
	SupportsFromTo
	SupportsWith
)

// Has reports whether all of want is set in f.
func (f Flags) Has(want Flags) bool { return f&want == want }

// LoopMode selects which of spec §4.3's two repeat()/until() orderings a
// repeat() step runs: the modulator order at construction time picks it,
// not an explicit argument.
type LoopMode int

const (
	// LoopModeDoUntil runs the loop body first, then checks until() against
	// the result - the order produced when until() is attached directly to
	// an existing repeat() step (repeat(...).until(...)).
	LoopModeDoUntil LoopMode = iota
	// LoopModeUntilDo checks until() before running the loop body - the
	// order produced when until() precedes repeat() and is carried into it
	// as a placeholder (until(...).repeat(...)).
	LoopModeUntilDo
)

// Options mirrors the per-traversal-source configuration of spec §6.4.
type Options struct {
	Eager       bool
	Optimize    bool
	QueryVerify bool
	UseMP       bool

	// MaxIterationDepth bounds repeat() recursion, per spec §4.3/§7.
	MaxIterationDepth int
}

// DefaultOptions mirrors the teacher's default traversal-source flags.
func DefaultOptions() Options {
	return Options{Eager: false, Optimize: true, QueryVerify: true, MaxIterationDepth: 10000}
}

// BuildCtx is threaded through Build: it carries the bound graph, the
// options inherited by sub-traversals, and the accumulating NeedsPath OR.
type BuildCtx struct {
	Graph     *store.Graph
	Options   Options
	NeedsPath bool
}

// ExecCtx is threaded through Apply. NeedsPath is the OR-reduction Build
// computed across every step; start steps consult it to decide whether
// freshly minted Traversers track their path, per spec §4.1's "only
// started if some step downstream needs it" optimization.
type ExecCtx struct {
	Graph     *store.Graph
	Options   Options
	NeedsPath bool
}

// Stream is the pull-iterator contract every step consumes and produces,
// modeled directly on graph.Iterator's Next()/Close() contract in the
// teacher.
type Stream interface {
	// Next advances the stream, returning the next item or false when
	// exhausted.
	Next() (traverser.Item, bool, error)
	Close()
}

// funcStream adapts a plain closure to the Stream interface.
type funcStream struct {
	next  func() (traverser.Item, bool, error)
	close func()
}

func (s *funcStream) Next() (traverser.Item, bool, error) { return s.next() }
func (s *funcStream) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewStream builds a Stream from a next closure.
func NewStream(next func() (traverser.Item, bool, error)) Stream {
	return &funcStream{next: next}
}

// SliceStream materializes items into a Stream, used by start steps and by
// eager-mode re-entry.
func SliceStream(items []traverser.Item) Stream {
	i := 0
	return NewStream(func() (traverser.Item, bool, error) {
		if i >= len(items) {
			return nil, false, nil
		}
		it := items[i]
		i++
		return it, true, nil
	})
}

// EmptyStream is the identity stream (no items).
func EmptyStream() Stream { return SliceStream(nil) }

// Drain materializes every item of s into a slice, closing s when done.
func Drain(s Stream) ([]traverser.Item, error) {
	defer s.Close()
	var out []traverser.Item
	for {
		it, ok, err := s.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, it)
	}
}

// Step is the single concrete type used for every entry of spec §4.3's
// catalog. Exactly one of MapFn/FlatMapFn/FilterFn/SideEffectFn/BranchFn is
// set, matching the step's Flags-implied shape.
type Step struct {
	StepName string
	StepFlags Flags

	MapFn        func(ctx *ExecCtx, it traverser.Item) (traverser.Item, bool, error)
	FlatMapFn    func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error)
	FilterFn     func(ctx *ExecCtx, it traverser.Item) (bool, error)
	SideEffectFn func(ctx *ExecCtx, it traverser.Item) error
	BranchFn     func(ctx *ExecCtx, in Stream) (Stream, error)

	// TerminalFn runs only on IsTerminal steps; it drains in and returns a
	// final Go value (a slice, a bool, a single value, ...).
	TerminalFn func(ctx *ExecCtx, in Stream) (interface{}, error)

	// BuildFn is an optional extra build hook: sub-traversal binding,
	// argument validation (e.g. "branch function must end in a Map-shaped
	// step"), reserved for steps whose Build work is more than mechanical.
	BuildFn func(ctx *BuildCtx) error

	// Subs holds the named anonymous sub-traversals this step closes over
	// (filter args, repeat body, branch options, ...). Built once, in
	// Build, and made available to the handler closures via BuiltSubs.
	Subs      map[string]SubTraversal
	BuiltSubs map[string]BuiltSub

	// Modulator state, mutated by As/By/From/To/With/Until/Emit/Times/Option.
	AsLabel    string
	ByIdx      []Indexer
	FromLabel  string
	ToLabel    string
	FromNode   *store.NodeID
	ToNode     *store.NodeID
	With       map[string]interface{}
	UntilSub   SubTraversal
	BuiltUntil BuiltSub
	TimesN     *int
	EmitAll    bool
	EmitSub    SubTraversal
	BuiltEmit  BuiltSub
	Options    []OptionEntry

	// LoopMode selects repeat()'s two until-checking orders (spec §4.3),
	// set by the Until/Emit/Times modulators or by the placeholder merge in
	// traversal.Build, depending on whether until()/emit()/times() preceded
	// or followed the repeat() call that binds them.
	LoopMode LoopMode

	// IsPlaceholder marks a step synthesized by Until/Emit/Times when no
	// preceding repeat() exists yet to attach to (spec §4.5/§9): it carries
	// modulator state only, is never Built or Applied, and must be merged
	// into the next repeat() step encountered by traversal.Build - or
	// reported as a dangling placeholder if none follows.
	IsPlaceholder bool

	built bool
}

// OptionEntry is one branch()/option() arm: Key is nil for the default arm.
type OptionEntry struct {
	Key     interface{}
	IsDef   bool
	Body    SubTraversal
	BuiltOf BuiltSub
}

func (s *Step) Name() string  { return s.StepName }
func (s *Step) Flags() Flags  { return s.StepFlags }
func (s *Step) IsBuilt() bool { return s.built }

// Build resolves every sub-traversal this step closes over and runs the
// step-specific BuildFn, if any. It is idempotent.
func (s *Step) Build(ctx *BuildCtx) error {
	if s.built {
		return nil
	}
	s.built = true
	if s.StepFlags.Has(NeedsPath) {
		ctx.NeedsPath = true
	}
	if s.BuiltSubs == nil {
		s.BuiltSubs = map[string]BuiltSub{}
	}
	for name, sub := range s.Subs {
		built, err := sub.Build(ctx)
		if err != nil {
			return travelerr.WrapQuery(travelerr.QueryUnknown, s.StepName, err)
		}
		s.BuiltSubs[name] = built
		if built.NeedsPath() {
			ctx.NeedsPath = true
		}
	}
	if s.UntilSub != nil {
		built, err := s.UntilSub.Build(ctx)
		if err != nil {
			return err
		}
		s.BuiltUntil = built
		if built.NeedsPath() {
			ctx.NeedsPath = true
		}
	}
	if s.EmitSub != nil {
		built, err := s.EmitSub.Build(ctx)
		if err != nil {
			return err
		}
		s.BuiltEmit = built
		if built.NeedsPath() {
			ctx.NeedsPath = true
		}
	}
	for i := range s.Options {
		o := &s.Options[i]
		built, err := o.Body.Build(ctx)
		if err != nil {
			return err
		}
		o.BuiltOf = built
		if built.NeedsPath() {
			ctx.NeedsPath = true
		}
	}
	for i := range s.ByIdx {
		if s.ByIdx[i].Anon != nil {
			built, err := s.ByIdx[i].Anon.Build(ctx)
			if err != nil {
				return err
			}
			s.ByIdx[i].BuiltAnon = built
			if built.NeedsPath() {
				ctx.NeedsPath = true
			}
		}
	}
	if s.BuildFn != nil {
		return s.BuildFn(ctx)
	}
	return nil
}

// Apply dispatches to the handler shape implied by which closure is set,
// per spec §4.3's four specializations plus Branch.
func (s *Step) Apply(ctx *ExecCtx, in Stream) (Stream, error) {
	switch {
	case s.BranchFn != nil:
		return s.BranchFn(ctx, in)
	case s.MapFn != nil:
		return s.applyMap(ctx, in), nil
	case s.FlatMapFn != nil:
		return s.applyFlatMap(ctx, in), nil
	case s.FilterFn != nil:
		return s.applyFilter(ctx, in), nil
	case s.SideEffectFn != nil:
		return s.applySideEffect(ctx, in), nil
	default:
		return in, nil
	}
}

func (s *Step) applyMap(ctx *ExecCtx, in Stream) Stream {
	return NewStream(func() (traverser.Item, bool, error) {
		for {
			it, ok, err := in.Next()
			if err != nil || !ok {
				return nil, ok, err
			}
			out, keep, err := s.MapFn(ctx, it)
			if err != nil {
				return nil, false, err
			}
			if !keep {
				continue
			}
			return out, true, nil
		}
	})
}

func (s *Step) applyFlatMap(ctx *ExecCtx, in Stream) Stream {
	var buf []traverser.Item
	bi := 0
	return NewStream(func() (traverser.Item, bool, error) {
		for {
			if bi < len(buf) {
				it := buf[bi]
				bi++
				return it, true, nil
			}
			it, ok, err := in.Next()
			if err != nil || !ok {
				return nil, ok, err
			}
			outs, err := s.FlatMapFn(ctx, it)
			if err != nil {
				return nil, false, err
			}
			buf, bi = outs, 0
		}
	})
}

func (s *Step) applyFilter(ctx *ExecCtx, in Stream) Stream {
	return NewStream(func() (traverser.Item, bool, error) {
		for {
			it, ok, err := in.Next()
			if err != nil || !ok {
				return nil, ok, err
			}
			keep, err := s.FilterFn(ctx, it)
			if err != nil {
				return nil, false, err
			}
			if keep {
				return it, true, nil
			}
		}
	})
}

func (s *Step) applySideEffect(ctx *ExecCtx, in Stream) Stream {
	return NewStream(func() (traverser.Item, bool, error) {
		it, ok, err := in.Next()
		if err != nil || !ok {
			return nil, ok, err
		}
		if err := s.SideEffectFn(ctx, it); err != nil {
			return nil, false, err
		}
		return it, true, nil
	})
}
