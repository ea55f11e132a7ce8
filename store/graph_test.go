package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphwalk/loom/store"
)

func TestAddNodeMintsMonotoneIDs(t *testing.T) {
	g := store.NewGraph(nil)
	a, err := g.AddNode("Person", "marko", map[string]interface{}{"age": 29}, nil)
	require.NoError(t, err)
	b, err := g.AddNode("Person", "vadas", map[string]interface{}{"age": 27}, nil)
	require.NoError(t, err)
	assert.Less(t, a, b)
	assert.Equal(t, 2, g.NodeCount())
}

func TestAddNodeRejectsReservedKeys(t *testing.T) {
	g := store.NewGraph(nil)
	_, err := g.AddNode("Person", "marko", map[string]interface{}{"label": "oops"}, nil)
	assert.Error(t, err)
	_, err = g.AddNode("Person", "marko", map[string]interface{}{"name": "oops"}, nil)
	assert.Error(t, err)
}

func TestAddNodeExplicitID(t *testing.T) {
	g := store.NewGraph(nil)
	id := store.NodeID(100)
	got, err := g.AddNode("Person", "marko", nil, &id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = g.AddNode("Person", "again", nil, &id)
	assert.Error(t, err, "re-using an explicit id must fail")

	next, err := g.AddNode("Person", "vadas", nil, nil)
	require.NoError(t, err)
	assert.Greater(t, next, id, "auto ids must stay monotone past an explicit id")
}

func TestAddEdgeRequiresExistingEndpoints(t *testing.T) {
	g := store.NewGraph(nil)
	a, _ := g.AddNode("Person", "marko", nil, nil)
	err := g.AddEdge(a, store.NodeID(999), "knows", nil)
	assert.Error(t, err)
}

func TestAddEdgeRejectsReservedKey(t *testing.T) {
	g := store.NewGraph(nil)
	a, _ := g.AddNode("Person", "marko", nil, nil)
	b, _ := g.AddNode("Person", "vadas", nil, nil)
	err := g.AddEdge(a, b, "knows", map[string]interface{}{"label": "oops"})
	assert.Error(t, err)
}

func TestParallelEdgesDistinguishedByLabel(t *testing.T) {
	g := store.NewGraph(nil)
	a, _ := g.AddNode("Person", "marko", nil, nil)
	b, _ := g.AddNode("Person", "vadas", nil, nil)
	require.NoError(t, g.AddEdge(a, b, "knows", nil))
	require.NoError(t, g.AddEdge(a, b, "likes", nil))

	assert.True(t, g.HasEdge(a, b))
	assert.Len(t, g.EdgesBetween(a, b), 2)
	assert.Equal(t, 2, g.EdgeCount())
}

func TestSuccessorsAndPredecessors(t *testing.T) {
	g := store.NewGraph(nil)
	marko, _ := g.AddNode("Person", "marko", nil, nil)
	vadas, _ := g.AddNode("Person", "vadas", nil, nil)
	josh, _ := g.AddNode("Person", "josh", nil, nil)
	require.NoError(t, g.AddEdge(marko, vadas, "knows", nil))
	require.NoError(t, g.AddEdge(marko, josh, "knows", nil))
	require.NoError(t, g.AddEdge(marko, josh, "created", nil))

	succ := g.Successors(marko, "")
	assert.ElementsMatch(t, []store.NodeID{vadas, josh}, succ)

	succKnows := g.Successors(marko, "knows")
	assert.ElementsMatch(t, []store.NodeID{vadas, josh}, succKnows)

	succCreated := g.Successors(marko, "created")
	assert.Equal(t, []store.NodeID{josh}, succCreated)

	pred := g.Predecessors(josh, "")
	assert.Equal(t, []store.NodeID{marko}, pred)
}

func TestSuccessorsDeduplicatesParallelEdges(t *testing.T) {
	g := store.NewGraph(nil)
	a, _ := g.AddNode("Person", "a", nil, nil)
	b, _ := g.AddNode("Person", "b", nil, nil)
	require.NoError(t, g.AddEdge(a, b, "knows", nil))
	require.NoError(t, g.AddEdge(a, b, "likes", nil))

	succ := g.Successors(a, "")
	assert.Equal(t, []store.NodeID{b}, succ, "the same neighbor reached by two labels must appear once")
}

func TestJoin(t *testing.T) {
	g := store.NewGraph(nil)
	order1, _ := g.AddNode("Order", "o1", map[string]interface{}{"customerID": "c1"}, nil)
	customer1, _ := g.AddNode("Customer", "c1", map[string]interface{}{"key": "c1"}, nil)
	_, _ = g.AddNode("Customer", "c2", map[string]interface{}{"key": "c2"}, nil)

	n, err := g.Join("Order", "Customer", "customerID", "key", "belongsTo")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, g.HasEdge(order1, customer1))
}

func TestJoinFailsUnderInactiveIndexProfile(t *testing.T) {
	cfg := store.DefaultConfig()
	cfg.IndexProfile = store.IndexOff
	g := store.NewGraph(cfg)
	g.AddNode("Order", "o1", map[string]interface{}{"customerID": "c1"}, nil)
	g.AddNode("Customer", "c1", map[string]interface{}{"key": "c1"}, nil)

	_, err := g.Join("Order", "Customer", "customerID", "key", "belongsTo")
	assert.Error(t, err)
}

func TestNodeLabelAndNameFallbacks(t *testing.T) {
	cfg := store.DefaultConfig()
	n := &store.Node{Attrs: store.AttrMap{}}
	assert.Equal(t, cfg.DefaultNodeLabel, n.Label(cfg))
	assert.Equal(t, "", n.Name(cfg))
}
