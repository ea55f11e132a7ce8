package step

import (
	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

// As attaches an as_(label) tag: the traversal builder arranges for the
// step's output to be Saved under label after Apply runs, so no flag check
// is needed here - every step supports as_, per spec §4.4.
func As(s *Step, label string) *Step {
	s.AsLabel = label
	return s
}

// By attaches a by(...) modulator. Unsupported on steps lacking SupportsBy.
func By(s *Step, idx Indexer) (*Step, error) {
	if !s.StepFlags.Has(SupportsBy) {
		return s, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, s.StepName, "by() is not supported on this step")
	}
	if idx.Anon != nil && !s.StepFlags.Has(SupportsAnonBy) {
		return s, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, s.StepName, "by(anonymous) is not supported on this step")
	}
	if len(s.ByIdx) > 0 && !s.StepFlags.Has(SupportsMultipleBy) {
		return s, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, s.StepName, "this step accepts only one by()")
	}
	s.ByIdx = append(s.ByIdx, idx)
	return s, nil
}

// From attaches a from_(label) modulator, used by addE.
func From(s *Step, label string) (*Step, error) {
	if !s.StepFlags.Has(SupportsFromTo) {
		return s, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, s.StepName, "from_() is not supported on this step")
	}
	s.FromLabel = label
	return s, nil
}

// To attaches a to_(label) modulator, used by addE.
func To(s *Step, label string) (*Step, error) {
	if !s.StepFlags.Has(SupportsFromTo) {
		return s, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, s.StepName, "to_() is not supported on this step")
	}
	s.ToLabel = label
	return s, nil
}

// With attaches a with_(key, value) modulator, used to configure IO steps.
func With(s *Step, key string, value interface{}) (*Step, error) {
	if !s.StepFlags.Has(SupportsWith) {
		return s, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, s.StepName, "with_() is not supported on this step")
	}
	if s.With == nil {
		s.With = map[string]interface{}{}
	}
	s.With[key] = value
	return s, nil
}

// loopPlaceholderName tags a Step synthesized by Until/Emit/Times when
// called with no repeat() to attach to yet, per spec §4.5/§9.
const loopPlaceholderName = "repeat-placeholder"

func newLoopPlaceholder() *Step {
	return &Step{StepName: loopPlaceholderName, IsPlaceholder: true}
}

// attachLoop implements the shared routing spec §4.3/§9 describes for
// until()/emit()/times(): attached directly to a repeat() step they mutate
// it in place (do-until: act, then check); attached to an existing
// placeholder they extend it; otherwise they synthesize a fresh placeholder
// step that traversal.Build later merges into the next repeat() it finds
// (until-do: check, then act).
func attachLoop(s *Step, mutate func(*Step)) (*Step, error) {
	if s.StepName == "repeat" {
		mutate(s)
		s.LoopMode = LoopModeDoUntil
		return s, nil
	}
	if s.IsPlaceholder {
		mutate(s)
		return s, nil
	}
	ph := newLoopPlaceholder()
	mutate(ph)
	return ph, nil
}

// Until attaches an until(sub) modulator, per spec §4.3/§9's placeholder
// mechanism when no repeat() precedes it yet.
func Until(s *Step, sub SubTraversal) (*Step, error) {
	return attachLoop(s, func(t *Step) { t.UntilSub = sub })
}

// Emit attaches an emit() or emit(sub) modulator, per spec §4.3/§9's
// placeholder mechanism when no repeat() precedes it yet.
func Emit(s *Step, sub SubTraversal) (*Step, error) {
	return attachLoop(s, func(t *Step) {
		if sub == nil {
			t.EmitAll = true
		} else {
			t.EmitSub = sub
		}
	})
}

// Times attaches a times(n) modulator, per spec §4.3/§9's placeholder
// mechanism when no repeat() precedes it yet.
func Times(s *Step, n int) (*Step, error) {
	return attachLoop(s, func(t *Step) { t.TimesN = &n })
}

// Option attaches a branch() arm. isDefault marks the default arm, which
// runs for items whose selector value matches no keyed arm.
func Option(s *Step, key interface{}, isDefault bool, body SubTraversal) (*Step, error) {
	if s.StepName != "branch" {
		return s, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, s.StepName, "option() only applies to branch()")
	}
	s.Options = append(s.Options, OptionEntry{Key: key, IsDef: isDefault, Body: body})
	return s, nil
}

// IO attaches a read()/write() modulator carrying an IOKind and options.
func IO(s *Step, kind traverser.IOKind, opts map[string]interface{}) (*Step, error) {
	if !s.StepFlags.Has(SupportsWith) {
		return s, travelerr.NewQuery(travelerr.QueryUnsupportedModulator, s.StepName, "read()/write() is not supported on this step")
	}
	if s.With == nil {
		s.With = map[string]interface{}{}
	}
	s.With["__io_kind__"] = kind
	for k, v := range opts {
		s.With[k] = v
	}
	return s, nil
}
