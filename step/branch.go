package step

import (
	"fmt"

	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

func runSub(ctx *ExecCtx, built BuiltSub, it traverser.Item) ([]traverser.Item, error) {
	out, err := built.Apply(ctx, SliceStream([]traverser.Item{it}))
	if err != nil {
		return nil, err
	}
	return Drain(out)
}

func holds(ctx *ExecCtx, built BuiltSub, it traverser.Item) (bool, error) {
	items, err := runSub(ctx, built, it)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

// partitionUntil splits items into those for which built holds (done) and
// those for which it doesn't (continuing).
func partitionUntil(ctx *ExecCtx, built BuiltSub, items []traverser.Item) (done, cont []traverser.Item, err error) {
	for _, it := range items {
		ok, err := holds(ctx, built, it)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			done = append(done, it)
		} else {
			cont = append(cont, it)
		}
	}
	return done, cont, nil
}

// Repeat builds repeat(body): loops body over each input item, per spec
// §4.3's repeat/until/emit/times family. Looping is controlled by whichever
// of TimesN/UntilSub the until/emit/times modulators bind onto the returned
// Step before Build; with neither bound, MaxIterationDepth acts as a
// runaway guard and trips TraversalMaxDepthExceeded. When UntilSub is set,
// LoopMode picks which of spec §4.3's two modes applies, per the order
// until() and repeat() were chained in: LoopModeUntilDo checks before
// running body each round (until() preceded repeat(), carried in via a
// placeholder); LoopModeDoUntil runs body first and checks after (until()
// was attached directly to this repeat() step).
func Repeat(body SubTraversal) *Step {
	s := &Step{StepName: "repeat", Subs: map[string]SubTraversal{"body": body}}
	s.BranchFn = func(ctx *ExecCtx, in Stream) (Stream, error) {
		bodyBuilt := s.BuiltSubs["body"]
		items, err := Drain(in)
		if err != nil {
			return nil, err
		}
		var results []traverser.Item
		maxIter := ctx.Options.MaxIterationDepth
		if maxIter <= 0 {
			maxIter = 10000
		}
		for _, start := range items {
			frontier := []traverser.Item{start}
			for iter := 0; ; iter++ {
				if s.TimesN != nil && iter >= *s.TimesN {
					results = append(results, frontier...)
					break
				}
				if len(frontier) == 0 {
					break
				}
				if s.BuiltUntil != nil && s.LoopMode == LoopModeUntilDo {
					done, cont, err := partitionUntil(ctx, s.BuiltUntil, frontier)
					if err != nil {
						return nil, err
					}
					results = append(results, done...)
					frontier = cont
					if len(frontier) == 0 {
						break
					}
				}
				if s.TimesN == nil && s.BuiltUntil == nil && iter >= maxIter {
					return nil, travelerr.NewTraversal(travelerr.TraversalMaxDepthExceeded, "repeat", "repeat() has neither times() nor until() and exceeded the iteration guard")
				}
				if s.BuiltEmit != nil {
					for _, it := range frontier {
						ok, err := holds(ctx, s.BuiltEmit, it)
						if err != nil {
							return nil, err
						}
						if ok {
							results = append(results, it)
						}
					}
				} else if s.EmitAll {
					results = append(results, frontier...)
				}
				var next []traverser.Item
				for _, it := range frontier {
					out, err := runSub(ctx, bodyBuilt, it)
					if err != nil {
						return nil, err
					}
					next = append(next, out...)
				}
				frontier = next
				if s.BuiltUntil != nil && s.LoopMode == LoopModeDoUntil {
					done, cont, err := partitionUntil(ctx, s.BuiltUntil, frontier)
					if err != nil {
						return nil, err
					}
					results = append(results, done...)
					frontier = cont
				}
			}
		}
		return SliceStream(results), nil
	}
	return s
}

// Union builds union(branches...): runs every branch against each input
// item and concatenates their outputs, per spec §4.3. union() with zero
// branches is a construction error, not a silent no-op.
func Union(branches ...SubTraversal) *Step {
	s := &Step{StepName: "union", Subs: map[string]SubTraversal{}}
	names := make([]string, len(branches))
	for i, b := range branches {
		name := itoa(i)
		names[i] = name
		s.Subs[name] = b
	}
	s.BuildFn = func(ctx *BuildCtx) error {
		if len(branches) == 0 {
			return travelerr.NewQuery(travelerr.QueryUnionNoBranches, "union", "union() requires at least one branch")
		}
		return nil
	}
	s.FlatMapFn = func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
		var out []traverser.Item
		for _, name := range names {
			items, err := runSub(ctx, s.BuiltSubs[name], it)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		}
		return out, nil
	}
	return s
}

// Local builds local(sub): runs sub once per input item, scoping any
// internal aggregation (order, limit, range, dedup) to that single item's
// sub-stream rather than the whole traversal, per spec's Scope type.
func Local(sub SubTraversal) *Step {
	s := &Step{StepName: "local", Subs: map[string]SubTraversal{"sub": sub}}
	s.FlatMapFn = func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
		return runSub(ctx, s.BuiltSubs["sub"], it)
	}
	return s
}

// Branch builds branch(selector).option(k1, sub1)...option(k2, sub2), per
// spec §4.3: selector is itself an anonymous sub-traversal whose single
// emitted value is matched against each option()'s key; the default
// option (added via option(nil, sub) / IsDef) runs when no key matches.
// Build rejects a selector body that, taken alone, is not Map-shaped
// (Kind §7 QueryBranchNotMap), and duplicate or multiple default keys.
func Branch(selector SubTraversal) *Step {
	s := &Step{StepName: "branch", Subs: map[string]SubTraversal{"selector": selector}}
	s.BuildFn = func(ctx *BuildCtx) error {
		if !selector.EndsInMapStep() {
			return travelerr.NewQuery(travelerr.QueryBranchNotMap, "branch", "branch() selector must end with a Map-shaped step")
		}
		seen := map[string]bool{}
		defSeen := false
		for _, o := range s.Options {
			if o.IsDef {
				if defSeen {
					return travelerr.NewQuery(travelerr.QueryMultipleDefaultOptions, "branch", "branch() has more than one default option")
				}
				defSeen = true
				continue
			}
			key := quadKeyOf(o.Key)
			if seen[key] {
				return travelerr.NewQuery(travelerr.QueryDuplicateOptionKey, "branch", "duplicate option key "+key)
			}
			seen[key] = true
		}
		return nil
	}
	s.FlatMapFn = func(ctx *ExecCtx, it traverser.Item) ([]traverser.Item, error) {
		selected, err := runSub(ctx, s.BuiltSubs["selector"], it)
		if err != nil {
			return nil, err
		}
		if len(selected) != 1 {
			return nil, travelerr.NewTraversal(travelerr.TraversalTypeMismatch, "branch", "branch() selector must yield exactly one value")
		}
		key := underlyingValue(ctx, selected[0])
		for _, o := range s.Options {
			if !o.IsDef && equalKeys(o.Key, key) {
				return runSub(ctx, o.BuiltOf, it)
			}
		}
		for _, o := range s.Options {
			if o.IsDef {
				return runSub(ctx, o.BuiltOf, it)
			}
		}
		return nil, nil
	}
	return s
}

func quadKeyOf(v interface{}) string { return fmt.Sprint(v) }

func equalKeys(a, b interface{}) bool { return fmt.Sprint(a) == fmt.Sprint(b) }

func itoa(i int) string { return fmt.Sprintf("%d", i) }
