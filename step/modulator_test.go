package step_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/traverser"
)

func TestAsAttachesLabelUnconditionally(t *testing.T) {
	s := &step.Step{StepName: "name"}
	step.As(s, "x")
	assert.Equal(t, "x", s.AsLabel)
}

func TestByRejectsUnsupportedStep(t *testing.T) {
	s := &step.Step{StepName: "name"}
	_, err := step.By(s, step.ByKey("age"))
	assert.Error(t, err)
}

func TestByRejectsAnonWithoutSupportsAnonBy(t *testing.T) {
	s := &step.Step{StepName: "order", StepFlags: step.SupportsBy}
	_, err := step.By(s, step.ByAnon(nil))
	assert.Error(t, err)
}

func TestByRejectsSecondByWithoutSupportsMultipleBy(t *testing.T) {
	s := &step.Step{StepName: "order", StepFlags: step.SupportsBy}
	_, err := step.By(s, step.ByKey("age"))
	require.NoError(t, err)
	_, err = step.By(s, step.ByKey("name"))
	assert.Error(t, err, "a second by() requires SupportsMultipleBy")
}

func TestByAcceptsMultipleWhenFlagged(t *testing.T) {
	s := &step.Step{StepName: "path", StepFlags: step.SupportsBy | step.SupportsMultipleBy}
	_, err := step.By(s, step.ByKey("name"))
	require.NoError(t, err)
	_, err = step.By(s, step.ByKey("age"))
	require.NoError(t, err)
	assert.Len(t, s.ByIdx, 2)
}

func TestFromToRequireSupportsFromTo(t *testing.T) {
	s := &step.Step{StepName: "name"}
	_, err := step.From(s, "a")
	assert.Error(t, err)
	_, err = step.To(s, "b")
	assert.Error(t, err)

	s2 := &step.Step{StepName: "addE", StepFlags: step.SupportsFromTo}
	_, err = step.From(s2, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", s2.FromLabel)
}

func TestWithRequiresSupportsWith(t *testing.T) {
	s := &step.Step{StepName: "name"}
	_, err := step.With(s, "k", "v")
	assert.Error(t, err)

	s2 := &step.Step{StepName: "read", StepFlags: step.SupportsWith}
	_, err = step.With(s2, "k", "v")
	require.NoError(t, err)
	assert.Equal(t, "v", s2.With["k"])
}

func TestUntilEmitTimesOnAnyOtherStepSynthesizePlaceholder(t *testing.T) {
	s := &step.Step{StepName: "name"}
	ph, err := step.Until(s, nil)
	require.NoError(t, err, "until() preceding repeat() parks as a placeholder rather than erroring")
	assert.NotSame(t, s, ph, "a placeholder is a new step, not a mutation of its predecessor")
	assert.True(t, ph.IsPlaceholder)

	ph2, err := step.Emit(ph, nil)
	require.NoError(t, err)
	assert.Same(t, ph, ph2, "a second modulator on an existing placeholder extends it in place")
	assert.True(t, ph2.EmitAll, "emit with a nil sub marks emit-all")

	ph3, err := step.Times(ph2, 3)
	require.NoError(t, err)
	assert.Same(t, ph2, ph3)
	require.NotNil(t, ph3.TimesN)
	assert.Equal(t, 3, *ph3.TimesN)
}

func TestUntilEmitTimesOnRepeatMutateItDirectly(t *testing.T) {
	r := &step.Step{StepName: "repeat"}
	out, err := step.Until(r, nil)
	require.NoError(t, err)
	assert.Same(t, r, out, "attached directly to repeat(), the modulator mutates it rather than synthesizing a placeholder")
	assert.Equal(t, step.LoopModeDoUntil, r.LoopMode, "until() attached to an existing repeat() runs do-until: act, then check")

	_, err = step.Emit(r, nil)
	require.NoError(t, err)
	assert.True(t, r.EmitAll, "emit with a nil sub marks emit-all")
	_, err = step.Times(r, 3)
	require.NoError(t, err)
	require.NotNil(t, r.TimesN)
	assert.Equal(t, 3, *r.TimesN)
}

func TestOptionOnlyAppliesToBranch(t *testing.T) {
	s := &step.Step{StepName: "name"}
	_, err := step.Option(s, "k", false, nil)
	assert.Error(t, err)

	b := &step.Step{StepName: "branch"}
	_, err = step.Option(b, "k", false, nil)
	require.NoError(t, err)
	_, err = step.Option(b, nil, true, nil)
	require.NoError(t, err)
	require.Len(t, b.Options, 2)
	assert.True(t, b.Options[1].IsDef)
}

func TestIORequiresSupportsWith(t *testing.T) {
	s := &step.Step{StepName: "read"}
	_, err := step.IO(s, traverser.IOReader, nil)
	assert.Error(t, err)

	s2 := &step.Step{StepName: "read", StepFlags: step.SupportsWith}
	_, err = step.IO(s2, traverser.IOReader, map[string]interface{}{"path": "x"})
	require.NoError(t, err)
	assert.Equal(t, traverser.IOReader, s2.With["__io_kind__"])
	assert.Equal(t, "x", s2.With["path"])
}
