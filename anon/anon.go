// Package anon implements the anonymous sub-traversal mechanism of spec
// §4.6: a deferred template of steps with no bound graph, analogous to
// cayley's graph/path.Path in its "IsMorphism" form (a *Path whose qs field
// is nil is a reusable template; binding a QuadStore turns it into a
// concrete, runnable path). Here an *Anon is always a template - it is
// bound into a step.BuiltSub at the parent traversal's Build time and can
// never itself be Run.
package anon

import (
	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/travelerr"
)

// Anon is an ordered, unbound list of steps recorded for later binding,
// the constructor+args "template" spec §4.6 describes.
type Anon struct {
	Steps []*step.Step
}

// New records a template from an ordered list of steps, e.g.
// anon.New(step.Out("knows"), step.Has("age", predicate.Gt(30))).
func New(steps ...*step.Step) *Anon {
	return &Anon{Steps: append([]*step.Step(nil), steps...)}
}

// NumberOfSteps reports how many steps the template records.
func (a *Anon) NumberOfSteps() int { return len(a.Steps) }

// EndsInMapStep reports whether the last recorded step is Map-shaped (its
// MapFn is set), per spec §4.3's requirement on branch() selectors.
func (a *Anon) EndsInMapStep() bool {
	if len(a.Steps) == 0 {
		return false
	}
	return a.Steps[len(a.Steps)-1].MapFn != nil
}

// Build binds every recorded step against ctx, producing an executable
// builtAnon. Build is idempotent per step.Step's own idempotent Build.
func (a *Anon) Build(ctx *step.BuildCtx) (step.BuiltSub, error) {
	for _, s := range a.Steps {
		if err := s.Build(ctx); err != nil {
			return nil, err
		}
	}
	needsPath := false
	for _, s := range a.Steps {
		if s.Flags().Has(step.NeedsPath) {
			needsPath = true
		}
	}
	return &builtAnon{steps: a.Steps, needsPath: needsPath}, nil
}

// Run never executes: per spec §4.6 an anonymous sub-traversal is a
// template, not a runnable pipeline.
func (a *Anon) Run() (interface{}, error) {
	return nil, travelerr.ErrAnonRun
}

type builtAnon struct {
	steps     []*step.Step
	needsPath bool
}

func (b *builtAnon) NeedsPath() bool { return b.needsPath }

// Apply threads in through every bound step in order, wrapping a step's
// Apply error with its name. Unlike traversal.Run it does not record as_()
// labels set on these steps and does not materialize between steps in
// eager mode.
func (b *builtAnon) Apply(ctx *step.ExecCtx, in step.Stream) (step.Stream, error) {
	cur := in
	for _, s := range b.steps {
		next, err := s.Apply(ctx, cur)
		if err != nil {
			return nil, travelerr.WrapTraversal(s.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
