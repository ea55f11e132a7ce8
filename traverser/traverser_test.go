package traverser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graphwalk/loom/store"
	"github.com/graphwalk/loom/traverser"
)

func TestPositionNodeAndEdge(t *testing.T) {
	np := traverser.NodePosition(store.NodeID(7))
	id, ok := np.Node()
	assert.True(t, ok)
	assert.Equal(t, store.NodeID(7), id)
	_, _, ok = np.Edge()
	assert.False(t, ok)

	ep := traverser.EdgePosition(store.NodeID(1), store.NodeID(2))
	_, ok = ep.Node()
	assert.False(t, ok)
	src, dst, ok := ep.Edge()
	assert.True(t, ok)
	assert.Equal(t, store.NodeID(1), src)
	assert.Equal(t, store.NodeID(2), dst)
}

func TestTraverserCopyIsIndependent(t *testing.T) {
	tr := traverser.NewAtNode(store.NodeID(1), true)
	tr.Save("a")
	tr.Scratch["k"] = "v"

	cp := tr.Copy()
	cp.Save("b")
	cp.Scratch["k"] = "changed"

	_, ok := tr.Load("b")
	assert.False(t, ok, "saving on the copy must not affect the original's save-cache")
	assert.Equal(t, "v", tr.Scratch["k"], "mutating the copy's scratch must not affect the original")
}

func TestMoveToExtendsPathWhenTracking(t *testing.T) {
	tr := traverser.NewAtNode(store.NodeID(1), true)
	moved := tr.MoveTo(store.NodeID(2))
	assert.Len(t, moved.Path, 2)
	assert.Len(t, tr.Path, 1, "moving must not mutate the original's path")

	untracked := traverser.NewAtNode(store.NodeID(1), false)
	movedU := untracked.MoveTo(store.NodeID(2))
	assert.Nil(t, movedU.Path)
}

func TestMoveToEdge(t *testing.T) {
	tr := traverser.NewAtNode(store.NodeID(1), true)
	moved := tr.MoveToEdge(store.NodeID(1), store.NodeID(2))
	src, dst, ok := moved.Position.Edge()
	assert.True(t, ok)
	assert.Equal(t, store.NodeID(1), src)
	assert.Equal(t, store.NodeID(2), dst)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tr := traverser.NewAtNode(store.NodeID(5), false)
	tr.Save("a")
	item, ok := tr.Load("a")
	assert.True(t, ok)
	assert.Equal(t, traverser.KindTraverser, item.Kind())

	_, ok = tr.Load("missing")
	assert.False(t, ok)
}

func TestValueInheritsParentCacheAndPath(t *testing.T) {
	parent := traverser.NewAtNode(store.NodeID(1), true)
	parent.Save("tag")

	v := traverser.NewValue(42, parent)
	assert.Equal(t, traverser.KindValue, v.Kind())
	assert.Equal(t, 42, v.Val)
	_, ok := v.SaveCache["tag"]
	assert.True(t, ok, "a Value built from a parent item inherits its save-cache")
	assert.Equal(t, parent.Path, v.Path)
}

func TestValueWithNilParent(t *testing.T) {
	v := traverser.NewValue("x", nil)
	assert.Empty(t, v.SaveCache)
	assert.Nil(t, v.Path)
}

func TestPropertyCarriesKey(t *testing.T) {
	p := traverser.NewProperty("age", 30, nil)
	assert.Equal(t, traverser.KindProperty, p.Kind())
	assert.Equal(t, "age", p.Key)
	assert.Equal(t, 30, p.Val)
}

func TestValueCopyIsIndependent(t *testing.T) {
	v := traverser.NewValue(1, nil)
	v.SaveCache["a"] = traverser.NewValue(2, nil)
	cp := v.Copy()
	cp.SaveCache["b"] = traverser.NewValue(3, nil)

	_, ok := v.SaveCache["b"]
	assert.False(t, ok)
}
