// Package store implements the graph-store collaborator contract of spec
// §4.1 as an in-memory, labeled, directed multigraph, plus the quad-index
// subsystem of spec §4.2. It is grounded on cayley's graph/memstore
// quadstore, adapted from a quad-store-of-triples model to the
// node/edge-with-attribute-bag model the traversal core expects.
package store

import "github.com/graphwalk/loom/travelerr"

// NodeID identifies a node. IDs are monotone and stable for the lifetime of
// a Graph, per spec invariant 5.
type NodeID uint64

// EdgeRef identifies an edge by its endpoints; a Graph may hold several
// parallel edges between the same endpoints as long as their labels differ.
type EdgeRef struct {
	Src NodeID
	Dst NodeID
}

// AttrMap is the mutable attribute bag carried by every node and edge.
// Values may be scalars, slices, maps, or nested maps.
type AttrMap map[string]interface{}

// Copy returns a shallow copy of the attribute map.
func (a AttrMap) Copy() AttrMap {
	out := make(AttrMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Node is an element of the graph with a stable id, a label, a name, and an
// attribute bag that always carries at least the reserved label/name keys.
type Node struct {
	ID    NodeID
	Attrs AttrMap
}

// Label returns the node's label under the configured reserved key.
func (n *Node) Label(cfg *Config) string {
	if v, ok := n.Attrs[cfg.LabelField]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return cfg.DefaultNodeLabel
}

// Name returns the node's name under the configured reserved key.
func (n *Node) Name(cfg *Config) string {
	if v, ok := n.Attrs[cfg.NameField]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Edge is a directed, labeled link between two nodes, carrying its own
// attribute bag.
type Edge struct {
	Src, Dst NodeID
	Attrs    AttrMap
}

// Label returns the edge's label under the configured reserved key.
func (e *Edge) Label(cfg *Config) string {
	if v, ok := e.Attrs[cfg.EdgeLabelField]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return cfg.DefaultEdgeLabel
}

// checkReserved fails with a reserved-key GraphError if props sets a
// reserved attribute key explicitly, per spec §4.1.
func checkReserved(props map[string]interface{}, reserved ...string) error {
	for _, key := range reserved {
		if _, ok := props[key]; ok {
			return travelerr.NewGraph(travelerr.GraphReservedKey,
				"property key \""+key+"\" is reserved and may not be set directly")
		}
	}
	return nil
}
