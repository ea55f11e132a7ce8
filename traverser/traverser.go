package traverser

import "github.com/graphwalk/loom/store"

// Item is the closed sum of stream elements a step consumes and produces:
// *Traverser, *Value, or *Property. Steps tell them apart with type
// assertions on the concrete type; Kind reports the same distinction as a
// tag for callers that prefer one.
type Item interface {
	Kind() Kind
	// CacheOf exposes the save-cache so generic steps (as_, select, order
	// by a tag) can operate without knowing the concrete Item type.
	CacheOf() map[string]Item
	PathOf() []Position
}

// Kind tags an Item's concrete type.
type Kind int

const (
	KindTraverser Kind = iota
	KindValue
	KindProperty
)

// Traverser is the unit of walk state defined in spec §3: a current
// position, a labeled save-cache for as_/select, a side-effect scratch
// store, and an optional path history.
type Traverser struct {
	Position  Position
	SaveCache map[string]Item
	Scratch   map[string]interface{}
	Path      []Position
	TrackPath bool
}

// NewAtNode starts a Traverser positioned at a node.
func NewAtNode(id store.NodeID, trackPath bool) *Traverser {
	t := &Traverser{
		Position:  NodePosition(id),
		SaveCache: map[string]Item{},
		Scratch:   map[string]interface{}{},
		TrackPath: trackPath,
	}
	if trackPath {
		t.Path = []Position{t.Position}
	}
	return t
}

// NewAtEdge starts a Traverser positioned at an edge.
func NewAtEdge(src, dst store.NodeID, trackPath bool) *Traverser {
	t := &Traverser{
		Position:  EdgePosition(src, dst),
		SaveCache: map[string]Item{},
		Scratch:   map[string]interface{}{},
		TrackPath: trackPath,
	}
	if trackPath {
		t.Path = []Position{t.Position}
	}
	return t
}

func (t *Traverser) Kind() Kind                 { return KindTraverser }
func (t *Traverser) CacheOf() map[string]Item   { return t.SaveCache }
func (t *Traverser) PathOf() []Position         { return t.Path }

// Copy performs the copy-on-branch deep clone required by spec invariant 3
// and the concurrency model's "Traversers are copy-on-branch" rule: the
// save-cache and path are deep cloned, the position is copied by value.
func (t *Traverser) Copy() *Traverser {
	nt := &Traverser{
		Position:  t.Position,
		TrackPath: t.TrackPath,
		SaveCache: make(map[string]Item, len(t.SaveCache)),
		Scratch:   make(map[string]interface{}, len(t.Scratch)),
	}
	for k, v := range t.SaveCache {
		nt.SaveCache[k] = v
	}
	for k, v := range t.Scratch {
		nt.Scratch[k] = v
	}
	if t.Path != nil {
		nt.Path = append([]Position(nil), t.Path...)
	}
	return nt
}

// MoveTo returns a new Traverser positioned at a node, descending from t;
// used by flat-map navigation steps (out/in/both).
func (t *Traverser) MoveTo(id store.NodeID) *Traverser {
	nt := t.Copy()
	nt.Position = NodePosition(id)
	if nt.TrackPath {
		nt.Path = append(nt.Path, nt.Position)
	}
	return nt
}

// MoveToEdge returns a new Traverser positioned at an edge, descending from t.
func (t *Traverser) MoveToEdge(src, dst store.NodeID) *Traverser {
	nt := t.Copy()
	nt.Position = EdgePosition(src, dst)
	if nt.TrackPath {
		nt.Path = append(nt.Path, nt.Position)
	}
	return nt
}

// Save stores a snapshot of t under label, for later retrieval by Select,
// matching the as_/select contract of spec §4.3.
func (t *Traverser) Save(label string) {
	snap := t.Copy()
	snap.SaveCache = make(map[string]Item, len(t.SaveCache))
	for k, v := range t.SaveCache {
		snap.SaveCache[k] = v
	}
	t.SaveCache[label] = snap
}

// Load retrieves a previously saved Item, and whether it was found.
func (t *Traverser) Load(label string) (Item, bool) {
	v, ok := t.SaveCache[label]
	return v, ok
}
