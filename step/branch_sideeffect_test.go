package step_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphwalk/loom/anon"
	"github.com/graphwalk/loom/internal/fixture"
	"github.com/graphwalk/loom/predicate"
	"github.com/graphwalk/loom/source"
	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/traverser"
	"github.com/graphwalk/loom/travelerr"
)

func TestPropertySingleCardinalityOverwrites(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())
	err := src.V(ids["marko"]).Property("age", 99, traverser.CardinalitySingle).Iterate()
	require.NoError(t, err)

	out, err := src.V(ids["marko"]).Values("age").ToList()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{99}, out)
}

func TestPropertyListCardinalityAppends(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())
	err := src.V(ids["marko"]).Property("tags", "a", traverser.CardinalityList).Iterate()
	require.NoError(t, err)
	err = src.V(ids["marko"]).Property("tags", "b", traverser.CardinalityList).Iterate()
	require.NoError(t, err)

	out, err := src.V(ids["marko"]).Values("tags").ToList()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []interface{}{"a", "b"}, out[0])
}

func TestPropertySetCardinalityDeduplicates(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())
	err := src.V(ids["marko"]).Property("tags", "a", traverser.CardinalitySet).Iterate()
	require.NoError(t, err)
	err = src.V(ids["marko"]).Property("tags", "a", traverser.CardinalitySet).Iterate()
	require.NoError(t, err)

	out, err := src.V(ids["marko"]).Values("tags").ToList()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a"}, out[0])
}

func TestSideEffectRunsWithoutAlteringTheStream(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())

	var touched int
	out, err := src.V(ids["marko"]).
		SideEffect(anon.New(step.Property("visited", true, traverser.CardinalitySingle))).
		ID().
		ToList()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{ids["marko"]}, out)

	v, err := src.V(ids["marko"]).Values("visited").ToList()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{true}, v)
	_ = touched
}

func TestUnionConcatenatesEveryBranch(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())

	out, err := src.V(ids["marko"]).
		Union(anon.New(step.Out("knows")), anon.New(step.Out("created"))).
		Values("name").
		ToList()
	require.NoError(t, err)
	assert.ElementsMatch(t, []interface{}{"vadas", "josh", "lop"}, out)
}

func TestBranchFallsBackToDefaultOption(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())

	out, err := src.V(ids["vadas"]).
		Branch(anon.New(step.Name())).
		Option("marko", anon.New(step.Values("age"))).
		Option(nil, anon.New(step.Name())).
		ToList()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"vadas"}, out)
}

func TestBranchWithNoMatchAndNoDefaultYieldsNothing(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())

	out, err := src.V(ids["vadas"]).
		Branch(anon.New(step.Name())).
		Option("marko", anon.New(step.Values("age"))).
		ToList()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBranchRejectsDuplicateOptionKeys(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())

	_, err := src.V(ids["marko"]).
		Branch(anon.New(step.Name())).
		Option("marko", anon.New(step.Values("age"))).
		Option("marko", anon.New(step.Name())).
		ToList()
	require.Error(t, err)
	var qe *travelerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, travelerr.QueryDuplicateOptionKey, qe.Kind)
}

func TestBranchRejectsMultipleDefaultOptions(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())

	_, err := src.V(ids["marko"]).
		Branch(anon.New(step.Name())).
		Option(nil, anon.New(step.Values("age"))).
		Option(nil, anon.New(step.Name())).
		ToList()
	require.Error(t, err)
	var qe *travelerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, travelerr.QueryMultipleDefaultOptions, qe.Kind)
}

func TestBranchRejectsNonMapSelector(t *testing.T) {
	g, ids := fixture.Modern(nil)
	src := source.New(g, step.DefaultOptions())

	_, err := src.V(ids["marko"]).
		Branch(anon.New(step.Out("knows"))).
		Option(nil, anon.New(step.Name())).
		ToList()
	require.Error(t, err)
	var qe *travelerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, travelerr.QueryBranchNotMap, qe.Kind)
}

func TestRepeatWithoutTimesOrUntilTripsMaxDepthGuard(t *testing.T) {
	g, ids := fixture.Modern(nil)
	// josh->ripple->(nothing), so bare repeat(out()) on the modern DAG with
	// no times()/until() stops on its own once the frontier empties; use a
	// self-loop so the frontier never empties and the guard has to trip.
	require.NoError(t, g.AddEdge(ids["marko"], ids["marko"], "self", nil))
	opts := step.DefaultOptions()
	opts.MaxIterationDepth = 3
	src := source.New(g, opts)

	_, err := src.V(ids["marko"]).Repeat(anon.New(step.Out("self"))).ToList()
	require.Error(t, err)
	var te *travelerr.TraversalError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, travelerr.TraversalMaxDepthExceeded, te.Kind)
}

func TestUntilBeforeRepeatChecksBeforeRunningTheBody(t *testing.T) {
	g, ids := fixture.Chain(nil)
	src := source.New(g, step.DefaultOptions())

	out, err := src.V(ids["1"]).
		Until(anon.New(step.HasID(predicate.Eq(ids["1"])))).
		Repeat(anon.New(step.Out(""))).
		ID().
		ToList()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{ids["1"]}, out, "until() preceding repeat() must check before running the body, so the starting item is immediately satisfied")
}

func TestUntilAfterRepeatRunsTheBodyBeforeChecking(t *testing.T) {
	g, ids := fixture.Chain(nil)
	src := source.New(g, step.DefaultOptions())

	out, err := src.V(ids["1"]).
		Repeat(anon.New(step.Out(""))).
		Until(anon.New(step.HasID(predicate.Eq(ids["1"])))).
		ID().
		ToList()
	require.NoError(t, err)
	assert.Empty(t, out, "until() following repeat() runs the body before checking, so the starting item (which already satisfies until()) is never returned on a graph with no path back to it")
}

func TestDanglingLoopPlaceholderIsAConstructionError(t *testing.T) {
	g, ids := fixture.Chain(nil)
	src := source.New(g, step.DefaultOptions())

	_, err := src.V(ids["1"]).
		Until(anon.New(step.HasID(predicate.Eq(ids["1"])))).
		ID().
		ToList()
	require.Error(t, err)
	var qe *travelerr.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, travelerr.QueryDanglingPlaceholder, qe.Kind)
}
