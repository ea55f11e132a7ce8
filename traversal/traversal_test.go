package traversal_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphwalk/loom/internal/fixture"
	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/travelerr"
	"github.com/graphwalk/loom/traversal"
)

func TestBuildRejectsEmptyPipeline(t *testing.T) {
	g, _ := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions())
	err := tr.Build()
	require.Error(t, err)
	var qe *travelerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, travelerr.QueryBadArgCount, qe.Kind)
}

func TestBuildRejectsNonStartFirstStep(t *testing.T) {
	g, _ := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions(), step.Name())
	err := tr.Build()
	require.Error(t, err)
	var qe *travelerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, travelerr.QueryDanglingModulator, qe.Kind)
}

func TestBuildRejectsMidPipelineStartStep(t *testing.T) {
	g, _ := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions(), step.V(), step.V())
	err := tr.Build()
	require.Error(t, err)
	var qe *travelerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, travelerr.QueryNonEmptyStart, qe.Kind)
}

func TestBuildAllowsAddVMidPipeline(t *testing.T) {
	g, _ := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions(), step.V(), step.AddV("Person", "dup", nil))
	require.NoError(t, tr.Build())
}

func TestBuildIsIdempotent(t *testing.T) {
	g, _ := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions(), step.V())
	require.NoError(t, tr.Build())
	require.NoError(t, tr.Build())
}

func TestNeedsPathIsORReducedAcrossSteps(t *testing.T) {
	g, _ := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions(), step.V(), step.Path())
	require.NoError(t, tr.Build())
	assert.True(t, tr.NeedsPath())

	tr2 := traversal.New(g, step.DefaultOptions(), step.V(), step.Name())
	require.NoError(t, tr2.Build())
	assert.False(t, tr2.NeedsPath())
}

func TestRunDefaultsToListWhenLastStepIsNotTerminal(t *testing.T) {
	g, ids := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions(), step.V(ids["marko"]), step.Name())
	out, err := tr.Run()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"marko"}, out)
}

func TestRunHonorsExplicitTerminalStep(t *testing.T) {
	g, ids := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions(), step.V(ids["marko"]), step.Name(), step.Next())
	out, err := tr.Run()
	require.NoError(t, err)
	assert.Equal(t, "marko", out)
}

func TestRunWrapsStepErrorsWithStepName(t *testing.T) {
	g, _ := fixture.Modern(nil)
	// E() positions Traversers on edges; out() requires a node position, so
	// this must fail. Eager mode drains the stream after every step, so the
	// failure surfaces at out() and is wrapped with out()'s name.
	opts := step.DefaultOptions()
	opts.Eager = true
	tr := traversal.New(g, opts, step.E(), step.Out(""))
	_, err := tr.Run()
	require.Error(t, err)
	var te *travelerr.TraversalError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "out", te.Step)
}

func TestAsLabelSavesEveryItemUnderLabel(t *testing.T) {
	g, ids := fixture.Modern(nil)
	tr := traversal.New(g, step.DefaultOptions(), step.V(ids["marko"]), step.Select("m"))
	tr.Steps[0].AsLabel = "m"
	out, err := tr.Run()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{ids["marko"]}, out)
}
