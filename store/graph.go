package store

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/graphwalk/loom/metrics"
	lquad "github.com/graphwalk/loom/quad"
	"github.com/graphwalk/loom/travelerr"
)

// Quad aliases quad.Quad so callers of this package rarely need to import
// the quad package directly.
type Quad = lquad.Quad

// edgeKey identifies one parallel edge between two endpoints by its label,
// since the multigraph contract of spec §4.1 allows several edges with
// different labels between the same pair of nodes.
type edgeKey struct {
	Src, Dst NodeID
	Label    string
}

// Graph is an in-memory, labeled, directed multigraph implementing the
// external graph-store contract of spec §4.1, grounded on the adjacency
// bookkeeping in cayley's graph/memstore quadstore (there keyed by quad
// triples; here keyed by node/edge attribute bags directly).
type Graph struct {
	Cfg   *Config
	Index *Index

	nextID  uint64
	nodes   map[NodeID]*Node
	order   []NodeID // insertion order, for deterministic iteration
	edges   map[edgeKey]*Edge
	edgeSeq []edgeKey
	out     map[NodeID]map[string][]edgeKey
	in      map[NodeID]map[string][]edgeKey
}

// NewGraph builds an empty Graph using cfg (or DefaultConfig if nil).
func NewGraph(cfg *Config) *Graph {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Graph{
		Cfg:   cfg,
		Index: NewIndex(cfg.IndexProfile),
		nodes: make(map[NodeID]*Node),
		edges: make(map[edgeKey]*Edge),
		out:   make(map[NodeID]map[string][]edgeKey),
		in:    make(map[NodeID]map[string][]edgeKey),
	}
}

// AddNode creates a node with the given label, name and properties,
// returning its newly minted, monotone id (spec invariant 5) unless
// explicitID is supplied, in which case that id is used (and must not
// already exist).
func (g *Graph) AddNode(label, name string, props map[string]interface{}, explicitID *NodeID) (NodeID, error) {
	if err := checkReserved(props, g.Cfg.LabelField, g.Cfg.NameField); err != nil {
		return 0, err
	}
	var id NodeID
	if explicitID != nil {
		id = *explicitID
		if _, exists := g.nodes[id]; exists {
			return 0, travelerr.NewGraph(travelerr.GraphNoSuchNode,
				fmt.Sprintf("node %d already exists", id))
		}
		if uint64(id) >= g.nextID {
			atomic.StoreUint64(&g.nextID, uint64(id)+1)
		}
	} else {
		id = NodeID(atomic.AddUint64(&g.nextID, 1) - 1)
	}
	attrs := AttrMap{}
	for k, v := range props {
		attrs[k] = v
	}
	attrs[g.Cfg.LabelField] = label
	attrs[g.Cfg.NameField] = name
	n := &Node{ID: id, Attrs: attrs}
	g.nodes[id] = n
	g.order = append(g.order, id)

	idVal := lquad.ToValue(int64(id))
	g.Index.Add(Quad{Subject: idVal, Predicate: lquad.ToValue(g.Cfg.LabelField), Object: lquad.ToValue(label), Graph: lquad.NodeLabel})
	g.Index.Add(Quad{Subject: idVal, Predicate: lquad.ToValue(g.Cfg.NameField), Object: lquad.ToValue(name), Graph: lquad.NodeName})
	for k, v := range props {
		g.Index.Add(Quad{Subject: idVal, Predicate: lquad.ToValue(k), Object: lquad.ToValue(v), Graph: lquad.NodeProperty})
	}
	metrics.GraphNodes.Set(float64(len(g.nodes)))
	return id, nil
}

// AddEdge creates a directed, labeled edge from src to dst with the given
// properties. Fails with a GraphError if either endpoint does not exist.
func (g *Graph) AddEdge(src, dst NodeID, label string, props map[string]interface{}) error {
	if _, ok := g.nodes[src]; !ok {
		return travelerr.NewGraph(travelerr.GraphNoSuchNode, fmt.Sprintf("no such source node %d", src))
	}
	if _, ok := g.nodes[dst]; !ok {
		return travelerr.NewGraph(travelerr.GraphNoSuchNode, fmt.Sprintf("no such target node %d", dst))
	}
	if err := checkReserved(props, g.Cfg.EdgeLabelField); err != nil {
		return err
	}
	key := edgeKey{Src: src, Dst: dst, Label: label}
	attrs := AttrMap{}
	for k, v := range props {
		attrs[k] = v
	}
	attrs[g.Cfg.EdgeLabelField] = label
	e := &Edge{Src: src, Dst: dst, Attrs: attrs}
	g.edges[key] = e
	g.edgeSeq = append(g.edgeSeq, key)

	if g.out[src] == nil {
		g.out[src] = make(map[string][]edgeKey)
	}
	g.out[src][label] = append(g.out[src][label], key)
	if g.in[dst] == nil {
		g.in[dst] = make(map[string][]edgeKey)
	}
	g.in[dst][label] = append(g.in[dst][label], key)

	srcVal, dstVal := lquad.ToValue(int64(src)), lquad.ToValue(int64(dst))
	g.Index.Add(Quad{Subject: srcVal, Predicate: lquad.ToValue(label), Object: dstVal, Graph: lquad.EdgeLink})
	edgeVal := lquad.ToValue(fmt.Sprintf("%d->%d:%s", src, dst, label))
	g.Index.Add(Quad{Subject: edgeVal, Predicate: lquad.ToValue(g.Cfg.EdgeLabelField), Object: lquad.ToValue(label), Graph: lquad.EdgeLabel})
	for k, v := range props {
		g.Index.Add(Quad{Subject: edgeVal, Predicate: lquad.ToValue(k), Object: lquad.ToValue(v), Graph: lquad.EdgeProperty})
	}
	metrics.GraphEdges.Set(float64(len(g.edgeSeq)))
	return nil
}

// HasNode reports whether id names an existing node.
func (g *Graph) HasNode(id NodeID) bool { _, ok := g.nodes[id]; return ok }

// HasEdge reports whether any edge exists from src to dst.
func (g *Graph) HasEdge(src, dst NodeID) bool {
	for _, k := range g.edgeSeq {
		if k.Src == src && k.Dst == dst {
			return true
		}
	}
	return false
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id NodeID) *Node { return g.nodes[id] }

// Edge returns the edge from src to dst with the given label, or nil.
func (g *Graph) Edge(src, dst NodeID, label string) *Edge { return g.edges[edgeKey{src, dst, label}] }

// EdgesBetween returns every parallel edge between src and dst.
func (g *Graph) EdgesBetween(src, dst NodeID) []*Edge {
	var out []*Edge
	for _, k := range g.edgeSeq {
		if k.Src == src && k.Dst == dst {
			out = append(out, g.edges[k])
		}
	}
	return out
}

// Nodes returns every node id in insertion order.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns every (src,dst) pair in insertion order, one per parallel
// edge.
func (g *Graph) Edges() []EdgeRef {
	out := make([]EdgeRef, 0, len(g.edgeSeq))
	for _, k := range g.edgeSeq {
		out = append(out, EdgeRef{k.Src, k.Dst})
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges (counting parallel edges) in the graph.
func (g *Graph) EdgeCount() int { return len(g.edgeSeq) }

// Successors returns the distinct node ids reachable by an outbound edge,
// optionally restricted to withLabel.
func (g *Graph) Successors(id NodeID, withLabel string) []NodeID {
	return g.neighbors(g.out, id, withLabel, func(k edgeKey) NodeID { return k.Dst })
}

// Predecessors returns the distinct node ids reaching id by an inbound edge,
// optionally restricted to withLabel.
func (g *Graph) Predecessors(id NodeID, withLabel string) []NodeID {
	return g.neighbors(g.in, id, withLabel, func(k edgeKey) NodeID { return k.Src })
}

func (g *Graph) neighbors(idx map[NodeID]map[string][]edgeKey, id NodeID, withLabel string, pick func(edgeKey) NodeID) []NodeID {
	labels := idx[id]
	seen := map[NodeID]bool{}
	var out []NodeID
	add := func(keys []edgeKey) {
		for _, k := range keys {
			n := pick(k)
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	if withLabel != "" {
		add(labels[withLabel])
		return out
	}
	// deterministic label order
	var names []string
	for l := range labels {
		names = append(names, l)
	}
	sort.Strings(names)
	for _, l := range names {
		add(labels[l])
	}
	return out
}

// OutEdges returns the outbound edges of id, optionally restricted to withLabel.
func (g *Graph) OutEdges(id NodeID, withLabel string) []EdgeRef {
	return g.edgeRefs(g.out[id], withLabel)
}

// InEdges returns the inbound edges of id, optionally restricted to withLabel.
func (g *Graph) InEdges(id NodeID, withLabel string) []EdgeRef {
	return g.edgeRefs(g.in[id], withLabel)
}

func (g *Graph) edgeRefs(labels map[string][]edgeKey, withLabel string) []EdgeRef {
	var out []EdgeRef
	emit := func(keys []edgeKey) {
		for _, k := range keys {
			out = append(out, EdgeRef{k.Src, k.Dst})
		}
	}
	if withLabel != "" {
		emit(labels[withLabel])
		return out
	}
	var names []string
	for l := range labels {
		names = append(names, l)
	}
	sort.Strings(names)
	for _, l := range names {
		emit(labels[l])
	}
	return out
}

// Join implements the explicit join operation of spec §4.2: for every node
// labeled fromLabel whose joinField equals the targetKey attribute of a node
// labeled toLabel, insert an edgeLabel edge. Fails fast if the index pairs
// it needs are not active under the current profile.
func (g *Graph) Join(fromLabel, toLabel, joinField, targetKey, edgeLabel string) (int, error) {
	if !g.Index.active[PairKey{Predicate, Subject}] || !g.Index.active[PairKey{Object, Subject}] {
		return 0, errMissingIndex(PairKey{Predicate, Subject})
	}
	targets := map[interface{}][]NodeID{}
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Label(g.Cfg) != toLabel {
			continue
		}
		if v, ok := n.Attrs[targetKey]; ok {
			targets[fmt.Sprint(v)] = append(targets[fmt.Sprint(v)], id)
		}
	}
	count := 0
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Label(g.Cfg) != fromLabel {
			continue
		}
		v, ok := n.Attrs[joinField]
		if !ok {
			continue
		}
		for _, dst := range targets[fmt.Sprint(v)] {
			if err := g.AddEdge(id, dst, edgeLabel, nil); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
