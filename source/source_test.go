package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphwalk/loom/anon"
	"github.com/graphwalk/loom/internal/fixture"
	"github.com/graphwalk/loom/predicate"
	"github.com/graphwalk/loom/source"
	"github.com/graphwalk/loom/step"
	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/travelerr"
	"github.com/graphwalk/loom/traverser"
)

func newModern(t *testing.T) (*source.Source, *store.Graph, map[string]store.NodeID) {
	t.Helper()
	g, ids := fixture.Modern(nil)
	return source.New(g, step.DefaultOptions()), g, ids
}

// Scenario 1: persons aged 30+, by name.
func TestScenarioPersonsAged30Plus(t *testing.T) {
	src, _, _ := newModern(t)
	out, err := src.V().HasLabel("Person").
		Filter(anon.New(step.Values("age"), step.Is(predicate.Gte(30)))).
		Values("name").
		ToList()
	require.NoError(t, err)
	assert.ElementsMatch(t, []interface{}{"josh", "peter"}, out)
}

// Scenario 2: marko's created software names.
func TestScenarioMarkosCreatedSoftware(t *testing.T) {
	src, _, _ := newModern(t)
	out, err := src.V().HasLabel("Person").HasName("marko").Out("created").Values("name").ToList()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"lop"}, out)
}

// Scenario 3: software created by peter, selecting the tagged software.
func TestScenarioSoftwareCreatedByPeter(t *testing.T) {
	src, _, _ := newModern(t)
	out, err := src.V().HasLabel("Software").As("a").In("created").HasName("peter").
		Select("a").
		ToList()
	require.NoError(t, err)
	require.Len(t, out, 1)
}

// Scenario 4: every simple chain walk from 1 to 5, with path().by("name")
// and count(local).
func TestScenarioChainWalkWithPathAndLength(t *testing.T) {
	g, ids := fixture.Chain(nil)
	src := source.New(g, step.DefaultOptions())
	out, err := src.V(ids["1"]).
		Repeat(anon.New(step.Out(""), step.SimplePath())).
		Until(anon.New(step.HasID(predicate.Eq(ids["5"])))).
		Path().By("name").As("p").
		CountLocal().As("length").
		Select("p", "length").
		ToList()
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for _, row := range out {
		m, ok := row.(map[string]interface{})
		require.True(t, ok)
		path, ok := m["p"].([]interface{})
		require.True(t, ok)
		assert.Equal(t, int64(len(path)), m["length"])
		assert.Equal(t, "1", path[0])
		assert.Equal(t, "5", path[len(path)-1])
	}
}

// Scenario 5: branch on name: marko's age, everyone else's name.
func TestScenarioBranchOnName(t *testing.T) {
	src, _, _ := newModern(t)
	out, err := src.V().HasLabel("Person").
		Branch(anon.New(step.Name())).
		Option("marko", anon.New(step.Values("age"))).
		Option(nil, anon.New(step.Name())).
		ToList()
	require.NoError(t, err)
	assert.Contains(t, out, 29) // marko's age, via the "marko" arm
	assert.Contains(t, out, "vadas")
	assert.Contains(t, out, "josh")
	assert.Contains(t, out, "peter")
}

// Scenario 6: addV/addE round trip increases the edge count by exactly one.
func TestScenarioAddVAddE(t *testing.T) {
	src, g, ids := newModern(t)

	before, err := src.E().Count().Next()
	require.NoError(t, err)

	johnVal, err := src.AddV("Person", "john", map[string]interface{}{"age": 30}).Next()
	require.NoError(t, err)
	johnID, ok := johnVal.(store.NodeID)
	require.True(t, ok)
	require.True(t, g.HasNode(johnID))

	after, err := src.E().Count().Next()
	require.NoError(t, err)
	assert.Equal(t, before, after, "addV alone must not create an edge")

	_, err = src.AddE(johnID, ids["vadas"], "knows", nil).Property("likes", true, traverser.CardinalitySingle).Next()
	require.NoError(t, err)

	afterEdge, err := src.E().Count().Next()
	require.NoError(t, err)
	assert.Equal(t, after.(int64)+1, afterEdge)

	likes, err := src.E().HasLabel("knows").Has("likes", true).Properties("likes").Next()
	require.NoError(t, err)
	assert.Equal(t, true, likes)
}

// --- universal invariants / boundary behaviors ---

func TestHasWithAbsentKeyFiltersOutEverything(t *testing.T) {
	src, _, _ := newModern(t)
	out, err := src.V().Has("no-such-key", 1).ToList()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLimitZeroYieldsNothing(t *testing.T) {
	src, _, _ := newModern(t)
	out, err := src.V().Limit(0).ToList()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRangeOpenEndedRunsToCompletion(t *testing.T) {
	src, _, _ := newModern(t)
	all, err := src.V().ToList()
	require.NoError(t, err)

	ranged, err := src.V().Range(0, -1).ToList()
	require.NoError(t, err)
	assert.Equal(t, len(all), len(ranged))
}

func TestDedupIsIdempotent(t *testing.T) {
	src, _, _ := newModern(t)
	once, err := src.V().HasLabel("Person").Out("knows").Dedup().Values("name").ToList()
	require.NoError(t, err)

	twice, err := src.V().HasLabel("Person").Out("knows").Dedup().Dedup().Values("name").ToList()
	require.NoError(t, err)
	assert.ElementsMatch(t, once, twice)
}

func TestSimplePathExcludesRevisitedNodes(t *testing.T) {
	g, ids := fixture.Chain(nil)
	// add a back-edge to create a cycle: 5 -> 1.
	require.NoError(t, g.AddEdge(ids["5"], ids["1"], "next", nil))
	src := source.New(g, step.DefaultOptions())

	out, err := src.V(ids["1"]).
		Repeat(anon.New(step.Out(""), step.SimplePath())).
		Until(anon.New(step.HasID(predicate.Eq(ids["5"])))).
		Path().
		ToList()
	require.NoError(t, err)
	require.NotEmpty(t, out, "the cycle must not prevent simple_path from reaching node 5")
	for _, row := range out {
		path, ok := row.([]interface{})
		require.True(t, ok)
		seen := map[interface{}]bool{}
		for _, p := range path {
			assert.False(t, seen[p], "simple_path must never revisit a node")
			seen[p] = true
		}
	}
}

func TestUnionWithNoBranchesIsAConstructionError(t *testing.T) {
	src, _, _ := newModern(t)
	_, err := src.V().HasLabel("Person").Union().ToList()
	require.Error(t, err)
	var qerr *travelerr.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, travelerr.QueryUnionNoBranches, qerr.Kind)
}

func TestAsSelectRoundTrip(t *testing.T) {
	src, _, _ := newModern(t)
	out, err := src.V().HasLabel("Person").HasName("marko").As("m").Select("m").ToList()
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestRepeatTimesZeroReturnsStartUnchanged(t *testing.T) {
	src, _, ids := newModern(t)
	out, err := src.V(ids["marko"]).
		Repeat(anon.New(step.Out("knows"))).
		Times(0).
		ID().
		ToList()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{ids["marko"]}, out)
}

func TestCountGlobalMatchesListLength(t *testing.T) {
	src, _, _ := newModern(t)
	total, err := src.V().Count().Next()
	require.NoError(t, err)
	all, err := src.V().ToList()
	require.NoError(t, err)
	assert.Equal(t, int64(len(all)), total)
}

func TestFoldReducesWithSeedAndCombiner(t *testing.T) {
	src, _, _ := newModern(t)
	sum, err := src.V().HasLabel("Person").
		Values("age").
		Fold(0, func(acc, val interface{}) interface{} {
			return acc.(int) + val.(int)
		}).
		Next()
	require.NoError(t, err)
	assert.Equal(t, 29+27+32+35, sum)
}

func TestFoldListCollectsEveryValue(t *testing.T) {
	src, _, _ := newModern(t)
	out, err := src.V().HasLabel("Person").Values("name").FoldList().Next()
	require.NoError(t, err)
	assert.ElementsMatch(t, []interface{}{"marko", "vadas", "josh", "peter"}, out)
}
