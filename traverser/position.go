// Package traverser implements the Traverser/Value/Property closed sum of
// spec §3: the unit of state that flows through a traversal's steps.
package traverser

import "github.com/graphwalk/loom/store"

// Position is the current walk location of a Traverser: either a single
// node id, or an (src,dst) pair denoting an edge, per spec invariant 1.
type Position struct {
	NodeID store.NodeID
	Src    store.NodeID
	Dst    store.NodeID
	IsEdge bool
}

// NodePosition builds a node-positioned Position.
func NodePosition(id store.NodeID) Position { return Position{NodeID: id} }

// EdgePosition builds an edge-positioned Position.
func EdgePosition(src, dst store.NodeID) Position {
	return Position{Src: src, Dst: dst, IsEdge: true}
}

// Node returns the node id and true if this position names a node.
func (p Position) Node() (store.NodeID, bool) {
	if p.IsEdge {
		return 0, false
	}
	return p.NodeID, true
}

// Edge returns the (src,dst) pair and true if this position names an edge.
func (p Position) Edge() (store.NodeID, store.NodeID, bool) {
	if !p.IsEdge {
		return 0, 0, false
	}
	return p.Src, p.Dst, true
}
