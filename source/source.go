// Package source implements the fluent traversal-source entry points of
// spec §4.5/§6.4: Source.V()/E()/AddV()/AddE() open a Builder that chains
// the step catalog into a traversal.Traversal, mirroring the way cayley's
// graph/path.StartPath opens a chainable *Path whose methods
// (Out/In/Both/Has/...) each append a morphism and return the same *Path
// for further chaining.
package source

import (
	"github.com/graphwalk/loom/anon"
	"github.com/graphwalk/loom/predicate"
	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/traversal"
	"github.com/graphwalk/loom/traverser"
)

// Source is the bound entry point for a graph, carrying the Options every
// traversal opened from it inherits (spec §6.4: Eager/Optimize/QueryVerify/
// UseMP).
type Source struct {
	Graph   *store.Graph
	Options step.Options
}

// New builds a Source over g with the given options.
func New(g *store.Graph, opts step.Options) *Source {
	return &Source{Graph: g, Options: opts}
}

// V opens a traversal at the given node ids, or every node if none given.
func (s *Source) V(ids ...store.NodeID) *Builder {
	return &Builder{graph: s.Graph, opts: s.Options, steps: []*step.Step{step.V(ids...)}}
}

// E opens a traversal at the given edges, or every edge if none given.
func (s *Source) E(refs ...store.EdgeRef) *Builder {
	return &Builder{graph: s.Graph, opts: s.Options, steps: []*step.Step{step.E(refs...)}}
}

// AddV opens a traversal that inserts one new node and positions on it.
func (s *Source) AddV(label, name string, props map[string]interface{}) *Builder {
	return &Builder{graph: s.Graph, opts: s.Options, steps: []*step.Step{step.AddV(label, name, props)}}
}

// AddE opens a traversal that inserts one new edge between from and to and
// positions on it, per spec §4.6's addE(label, from_?, to_?, props) source
// factory.
func (s *Source) AddE(from, to store.NodeID, label string, props map[string]interface{}) *Builder {
	return &Builder{graph: s.Graph, opts: s.Options, steps: []*step.Step{step.AddEFromTo(from, to, label, props)}}
}

// Builder accumulates steps for one traversal and binds them into a
// traversal.Traversal on a terminal call. Every chain method appends a step
// and returns the same *Builder, matching the fluent style of every
// Gremlin-family driver (and of cayley's *path.Path chain methods).
type Builder struct {
	graph *store.Graph
	opts  step.Options
	steps []*step.Step
	err   error
}

func (b *Builder) push(s *step.Step) *Builder {
	if b.err != nil {
		return b
	}
	b.steps = append(b.steps, s)
	return b
}

// AsSub converts the accumulated steps into an anonymous sub-traversal,
// for use as a repeat() body, a not_()/and_()/or_()/filter_() argument, or
// a branch() option() arm, per spec §4.6.
func (b *Builder) AsSub() step.SubTraversal { return anon.New(b.steps...) }

// Out appends out(withLabel).
func (b *Builder) Out(withLabel string) *Builder { return b.push(step.Out(withLabel)) }

// In appends in(withLabel).
func (b *Builder) In(withLabel string) *Builder { return b.push(step.In(withLabel)) }

// Both appends both(withLabel).
func (b *Builder) Both(withLabel string) *Builder { return b.push(step.Both(withLabel)) }

// OutE appends outE(withLabel).
func (b *Builder) OutE(withLabel string) *Builder { return b.push(step.OutE(withLabel)) }

// InE appends inE(withLabel).
func (b *Builder) InE(withLabel string) *Builder { return b.push(step.InE(withLabel)) }

// BothE appends bothE(withLabel).
func (b *Builder) BothE(withLabel string) *Builder { return b.push(step.BothE(withLabel)) }

// OutV appends outV().
func (b *Builder) OutV() *Builder { return b.push(step.OutV()) }

// InV appends inV().
func (b *Builder) InV() *Builder { return b.push(step.InV()) }

// BothV appends bothV().
func (b *Builder) BothV() *Builder { return b.push(step.BothV()) }

// Has appends has(key, pred). Passing a non-Predicate value wraps it with
// predicate.Eq, matching Gremlin's has(key, literal) shorthand.
func (b *Builder) Has(key string, want interface{}) *Builder {
	return b.push(step.Has(key, asPredicate(want)))
}

// HasNot appends has_not(key).
func (b *Builder) HasNot(key string) *Builder { return b.push(step.HasNot(key)) }

// HasKey appends has_key(key).
func (b *Builder) HasKey(key string) *Builder { return b.push(step.HasKey(key)) }

// HasValue appends has_value(pred).
func (b *Builder) HasValue(want interface{}) *Builder {
	return b.push(step.HasValue(asPredicate(want)))
}

// HasID appends has_id(pred).
func (b *Builder) HasID(want interface{}) *Builder { return b.push(step.HasID(asPredicate(want))) }

// HasName appends has_name(pred).
func (b *Builder) HasName(want interface{}) *Builder {
	return b.push(step.HasName(asPredicate(want)))
}

// HasLabel appends has_label(pred).
func (b *Builder) HasLabel(want interface{}) *Builder {
	return b.push(step.HasLabel(asPredicate(want)))
}

// Contains appends contains(pred).
func (b *Builder) Contains(want interface{}) *Builder {
	return b.push(step.Contains(asPredicate(want)))
}

// Within appends within(opts...).
func (b *Builder) Within(opts ...interface{}) *Builder { return b.push(step.Within(opts...)) }

// Is appends is_(pred).
func (b *Builder) Is(want interface{}) *Builder { return b.push(step.Is(asPredicate(want))) }

// SimplePath appends simple_path().
func (b *Builder) SimplePath() *Builder { return b.push(step.SimplePath()) }

// Limit appends limit(n).
func (b *Builder) Limit(n int) *Builder { return b.push(step.Limit(n)) }

// Skip appends skip(n).
func (b *Builder) Skip(n int) *Builder { return b.push(step.Skip(n)) }

// Range appends range(low, high).
func (b *Builder) Range(low, high int) *Builder { return b.push(step.Range(low, high)) }

// Dedup appends dedup().
func (b *Builder) Dedup() *Builder { return b.push(step.Dedup()) }

// Not appends not_(sub).
func (b *Builder) Not(sub step.SubTraversal) *Builder { return b.push(step.Not(sub)) }

// And appends and_(subs...).
func (b *Builder) And(subs ...step.SubTraversal) *Builder {
	return b.push(step.And(subs...))
}

// Or appends or_(subs...).
func (b *Builder) Or(subs ...step.SubTraversal) *Builder {
	return b.push(step.Or(subs...))
}

// Filter appends filter_(sub).
func (b *Builder) Filter(sub step.SubTraversal) *Builder { return b.push(step.Filter(sub)) }

// ID appends id_().
func (b *Builder) ID() *Builder { return b.push(step.ID()) }

// Value appends value().
func (b *Builder) Value() *Builder { return b.push(step.ValueStep()) }

// Key appends key().
func (b *Builder) Key() *Builder { return b.push(step.KeyStep()) }

// Values appends values(keys...).
func (b *Builder) Values(keys ...string) *Builder { return b.push(step.Values(keys...)) }

// Properties appends properties(keys...).
func (b *Builder) Properties(keys ...string) *Builder { return b.push(step.Properties(keys...)) }

// Name appends name().
func (b *Builder) Name() *Builder { return b.push(step.Name()) }

// Label appends label().
func (b *Builder) Label() *Builder { return b.push(step.Label()) }

// Select appends select(labels...).
func (b *Builder) Select(labels ...string) *Builder { return b.push(step.Select(labels...)) }

// Order appends order(); chain .By(...) afterwards to add comparators.
func (b *Builder) Order() *Builder { return b.push(step.Order()) }

// By attaches a by(key) modulator to the most recently appended step.
func (b *Builder) By(key string) *Builder { return b.byIndexer(step.ByKey(key)) }

// ByDesc attaches a by(desc) direction modulator.
func (b *Builder) ByDesc() *Builder { return b.byIndexer(step.ByDir(traverser.Desc)) }

// ByAsc attaches a by(asc) direction modulator.
func (b *Builder) ByAsc() *Builder { return b.byIndexer(step.ByDir(traverser.Asc)) }

// ByAnon attaches a by(anonymous-sub-traversal) modulator.
func (b *Builder) ByAnon(sub step.SubTraversal) *Builder { return b.byIndexer(step.ByAnon(sub)) }

func (b *Builder) byIndexer(idx step.Indexer) *Builder {
	if b.err != nil || len(b.steps) == 0 {
		return b
	}
	tail := b.steps[len(b.steps)-1]
	if _, err := step.By(tail, idx); err != nil {
		b.err = err
	}
	return b
}

// As attaches an as_(label) tag to the most recently appended step.
func (b *Builder) As(label string) *Builder {
	if b.err != nil || len(b.steps) == 0 {
		return b
	}
	step.As(b.steps[len(b.steps)-1], label)
	return b
}

// From attaches from_(label) to the addE() step appended just before it.
func (b *Builder) From(label string) *Builder { return b.fromTo(label, true) }

// To attaches to_(label) to the addE() step appended just before it.
func (b *Builder) To(label string) *Builder { return b.fromTo(label, false) }

func (b *Builder) fromTo(label string, isFrom bool) *Builder {
	if b.err != nil || len(b.steps) == 0 {
		return b
	}
	tail := b.steps[len(b.steps)-1]
	var err error
	if isFrom {
		_, err = step.From(tail, label)
	} else {
		_, err = step.To(tail, label)
	}
	if err != nil {
		b.err = err
	}
	return b
}

// AddE appends addE(label, props); chain .From(label).To(label) afterwards.
func (b *Builder) AddE(label string, props map[string]interface{}) *Builder {
	return b.push(step.AddE(label, props))
}

// Count appends count(global).
func (b *Builder) Count() *Builder { return b.push(step.Count(traverser.Global)) }

// CountLocal appends count(local).
func (b *Builder) CountLocal() *Builder { return b.push(step.Count(traverser.Local)) }

// Min appends min().
func (b *Builder) Min() *Builder { return b.push(step.Min()) }

// Max appends max().
func (b *Builder) Max() *Builder { return b.push(step.Max()) }

// Sum appends sum(global).
func (b *Builder) Sum() *Builder { return b.push(step.Sum(traverser.Global)) }

// SumLocal appends sum(local).
func (b *Builder) SumLocal() *Builder { return b.push(step.Sum(traverser.Local)) }

// Mean appends mean(global).
func (b *Builder) Mean() *Builder { return b.push(step.Mean(traverser.Global)) }

// MeanLocal appends mean(local).
func (b *Builder) MeanLocal() *Builder { return b.push(step.Mean(traverser.Local)) }

// Path appends path().
func (b *Builder) Path() *Builder { return b.push(step.Path()) }

// ElementMap appends element_map().
func (b *Builder) ElementMap() *Builder { return b.push(step.ElementMap()) }

// Fold appends fold(seed, f), reducing the stream left to right with f
// starting from seed.
func (b *Builder) Fold(seed interface{}, f func(acc, val interface{}) interface{}) *Builder {
	return b.push(step.Fold(seed, f))
}

// FoldList appends the no-argument fold() form, collecting every value into
// a single list.
func (b *Builder) FoldList() *Builder { return b.push(step.FoldList()) }

// Repeat appends repeat(body); chain .Until(...)/.Emit(...)/.Times(n)
// afterwards to configure looping in do-until order, or call them before
// Repeat to configure it in until-do order (spec §4.3/§9's placeholder
// mechanism).
func (b *Builder) Repeat(body step.SubTraversal) *Builder { return b.push(step.Repeat(body)) }

// attachLoop calls one of step.Until/Emit/Times against the tail step and
// pushes a new placeholder step onto the chain if one was synthesized
// (tail wasn't already a repeat() or an existing placeholder).
func (b *Builder) attachLoop(attach func(tail *step.Step) (*step.Step, error)) *Builder {
	if b.err != nil || len(b.steps) == 0 {
		return b
	}
	tail := b.steps[len(b.steps)-1]
	ns, err := attach(tail)
	if err != nil {
		b.err = err
		return b
	}
	if ns != tail {
		b.steps = append(b.steps, ns)
	}
	return b
}

// Until attaches until(sub) to the tail step, per spec §4.3/§9.
func (b *Builder) Until(sub step.SubTraversal) *Builder {
	return b.attachLoop(func(tail *step.Step) (*step.Step, error) { return step.Until(tail, sub) })
}

// Emit attaches emit() (sub == nil) or emit(sub) to the tail step, per spec
// §4.3/§9.
func (b *Builder) Emit(sub step.SubTraversal) *Builder {
	return b.attachLoop(func(tail *step.Step) (*step.Step, error) { return step.Emit(tail, sub) })
}

// Times attaches times(n) to the tail step, per spec §4.3/§9.
func (b *Builder) Times(n int) *Builder {
	return b.attachLoop(func(tail *step.Step) (*step.Step, error) { return step.Times(tail, n) })
}

// Union appends union(branches...).
func (b *Builder) Union(branches ...step.SubTraversal) *Builder {
	return b.push(step.Union(branches...))
}

// Local appends local(sub).
func (b *Builder) Local(sub step.SubTraversal) *Builder { return b.push(step.Local(sub)) }

// Branch appends branch(selector); chain .Option(key, sub) afterwards for
// each arm, and .Option(nil, sub) for the default arm.
func (b *Builder) Branch(selector step.SubTraversal) *Builder {
	return b.push(step.Branch(selector))
}

// Option attaches an option(key, sub) arm to the most recently appended
// branch() step. key == nil marks the default arm.
func (b *Builder) Option(key interface{}, sub step.SubTraversal) *Builder {
	if b.err != nil || len(b.steps) == 0 {
		return b
	}
	if _, err := step.Option(b.steps[len(b.steps)-1], key, key == nil, sub); err != nil {
		b.err = err
	}
	return b
}

// SideEffect appends side_effect(sub).
func (b *Builder) SideEffect(sub step.SubTraversal) *Builder { return b.push(step.SideEffect(sub)) }

// Property appends property(key, value, cardinality).
func (b *Builder) Property(key string, value interface{}, card traverser.Cardinality) *Builder {
	return b.push(step.Property(key, value, card))
}

// With attaches with_(key, value) to the most recently appended step.
func (b *Builder) With(key string, value interface{}) *Builder {
	if b.err != nil || len(b.steps) == 0 {
		return b
	}
	if _, err := step.With(b.steps[len(b.steps)-1], key, value); err != nil {
		b.err = err
	}
	return b
}

// Step appends an arbitrary caller-built step, an escape hatch for the
// rarer entries of the catalog this Builder does not special-case.
func (b *Builder) Step(s *step.Step) *Builder { return b.push(s) }

// build assembles the accumulated steps into a traversal.Traversal,
// surfacing any modulator-construction error recorded along the way.
func (b *Builder) build() (*traversal.Traversal, error) {
	if b.err != nil {
		return nil, b.err
	}
	return traversal.New(b.graph, b.opts, b.steps...), nil
}

// ToList terminates the builder with to_list() semantics.
func (b *Builder) ToList() ([]interface{}, error) {
	t, err := b.build()
	if err != nil {
		return nil, err
	}
	out, err := t.Run()
	if err != nil {
		return nil, err
	}
	vals, _ := out.([]interface{})
	return vals, nil
}

// AsPathList terminates the builder with as_path() semantics.
func (b *Builder) AsPathList() ([][]interface{}, error) {
	b.push(step.AsPath())
	t, err := b.build()
	if err != nil {
		return nil, err
	}
	out, err := t.Run()
	if err != nil {
		return nil, err
	}
	paths, _ := out.([][]interface{})
	return paths, nil
}

// HasNext terminates the builder with has_next() semantics.
func (b *Builder) HasNext() (bool, error) {
	b.push(step.HasNext())
	t, err := b.build()
	if err != nil {
		return false, err
	}
	out, err := t.Run()
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Next terminates the builder by returning its first result's value.
func (b *Builder) Next() (interface{}, error) {
	b.push(step.Next())
	t, err := b.build()
	if err != nil {
		return nil, err
	}
	return t.Run()
}

// Iterate terminates the builder, draining it for side effects only.
func (b *Builder) Iterate() error {
	b.push(step.Iterate())
	t, err := b.build()
	if err != nil {
		return err
	}
	_, err = t.Run()
	return err
}

// Traversal exposes the underlying traversal.Traversal without attaching a
// terminal step, letting callers run it with their own terminal semantics
// or inspect NeedsPath after Build.
func (b *Builder) Traversal() (*traversal.Traversal, error) { return b.build() }

func asPredicate(v interface{}) predicate.Predicate {
	if p, ok := v.(predicate.Predicate); ok {
		return p
	}
	return predicate.Eq(v)
}
