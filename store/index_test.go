package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lquad "github.com/graphwalk/loom/quad"
	"github.com/graphwalk/loom/store"
)

func TestIndexProfilesActivatePairs(t *testing.T) {
	off := store.NewIndex(store.IndexOff)
	_, active := off.Lookup(store.Subject, store.Predicate, nil)
	assert.False(t, active)

	minimal := store.NewIndex(store.IndexMinimal)
	_, active = minimal.Lookup(store.Subject, store.Predicate, nil)
	assert.True(t, active)
	_, active = minimal.Lookup(store.Predicate, store.Graph, nil)
	assert.False(t, active, "minimal profile does not activate every pair")

	all := store.NewIndex(store.IndexAll)
	_, active = all.Lookup(store.Predicate, store.Graph, nil)
	assert.True(t, active)
}

func TestIndexLookupTracksAdditions(t *testing.T) {
	g := store.NewGraph(nil)
	marko, err := g.AddNode("Person", "marko", nil, nil)
	require.NoError(t, err)

	results, active := g.Index.Lookup(store.Subject, store.Predicate, lquad.ToValue(int64(marko)))
	require.True(t, active)
	assert.NotEmpty(t, results, "marko's subject->predicate pair should list its label/name attribute keys")
}

func TestIndexProfileStringer(t *testing.T) {
	assert.Equal(t, "off", store.IndexOff.String())
	assert.Equal(t, "minimal", store.IndexMinimal.String())
	assert.Equal(t, "all", store.IndexAll.String())
}
