// Package fixture builds the canonical toy graphs spec §8 exercises its
// worked scenarios against, grounded on the small hand-built quad sets
// cayley's graph/graphtest package loads before running its test suites
// (graphtest.MakeWriter + a literal list of quads) - here a literal list of
// AddNode/AddEdge calls against a store.Graph instead of a quad loader,
// since this engine's store is the graph directly rather than a quadstore.
package fixture

import (
	"strconv"

	"github.com/graphwalk/loom/store"
)

// Modern builds the graph used throughout spec §8's worked scenarios: four
// Person nodes and two Software nodes, connected by knows/created edges.
// Returns the graph along with the minted node ids, keyed by vertex name,
// so callers can build traversals that start from a specific node (e.g.
// V(ids["marko"])).
func Modern(cfg *store.Config) (*store.Graph, map[string]store.NodeID) {
	g := store.NewGraph(cfg)
	ids := map[string]store.NodeID{}

	mustNode := func(name string, age int) store.NodeID {
		id, err := g.AddNode("Person", name, map[string]interface{}{"age": age}, nil)
		if err != nil {
			panic(err)
		}
		ids[name] = id
		return id
	}
	mustSoftware := func(name, lang string) store.NodeID {
		id, err := g.AddNode("Software", name, map[string]interface{}{"lang": lang}, nil)
		if err != nil {
			panic(err)
		}
		ids[name] = id
		return id
	}
	mustEdge := func(src, dst store.NodeID, label string, weight float64) {
		if err := g.AddEdge(src, dst, label, map[string]interface{}{"weight": weight}); err != nil {
			panic(err)
		}
	}

	marko := mustNode("marko", 29)
	vadas := mustNode("vadas", 27)
	josh := mustNode("josh", 32)
	peter := mustNode("peter", 35)
	lop := mustSoftware("lop", "java")
	ripple := mustSoftware("ripple", "java")

	mustEdge(marko, vadas, "knows", 0.5)
	mustEdge(marko, josh, "knows", 1.0)
	mustEdge(marko, lop, "created", 0.4)
	mustEdge(josh, ripple, "created", 1.0)
	mustEdge(josh, lop, "created", 0.4)
	mustEdge(peter, lop, "created", 0.2)

	return g, ids
}

// Chain builds the five-node line 1->2, 2->4, 2->3, 3->4, 4->5 used by spec
// §8 scenario 4 to exercise repeat()/until()/simple_path() together. Nodes
// are named by their decimal position ("1".."5") so has_name()/name()
// assertions in that scenario read naturally.
func Chain(cfg *store.Config) (*store.Graph, map[string]store.NodeID) {
	g := store.NewGraph(cfg)
	ids := map[string]store.NodeID{}

	for i := 1; i <= 5; i++ {
		name := strconv.Itoa(i)
		id, err := g.AddNode("Node", name, nil, nil)
		if err != nil {
			panic(err)
		}
		ids[name] = id
	}
	edge := func(from, to int) {
		if err := g.AddEdge(ids[strconv.Itoa(from)], ids[strconv.Itoa(to)], "next", nil); err != nil {
			panic(err)
		}
	}
	edge(1, 2)
	edge(2, 4)
	edge(2, 3)
	edge(3, 4)
	edge(4, 5)

	return g, ids
}
