package store

import (
	"fmt"

	boom "github.com/tylertreat/BoomFilters"

	"github.com/graphwalk/loom/metrics"
	lquad "github.com/graphwalk/loom/quad"
	"github.com/graphwalk/loom/travelerr"
)

// Position names one slot of a quad.
type Position int

const (
	Subject Position = iota
	Predicate
	Object
	Graph
)

func (p Position) String() string {
	switch p {
	case Subject:
		return "S"
	case Predicate:
		return "P"
	case Object:
		return "O"
	case Graph:
		return "G"
	default:
		return "?"
	}
}

// PairKey identifies one of the twelve ordered, non-self S/P/O/G pairs.
type PairKey struct{ From, To Position }

func allPairs() []PairKey {
	var out []PairKey
	for _, from := range []Position{Subject, Predicate, Object, Graph} {
		for _, to := range []Position{Subject, Predicate, Object, Graph} {
			if from != to {
				out = append(out, PairKey{from, to})
			}
		}
	}
	return out
}

func minimalPairs() []PairKey {
	return []PairKey{
		{Subject, Predicate}, {Subject, Object}, {Subject, Graph},
		{Predicate, Subject}, {Predicate, Object},
		{Object, Subject}, {Object, Predicate}, {Object, Graph},
	}
}

// Index is the inverted S/P/O/G index described in spec §4.2. Every active
// pair also keeps a tylertreat/BoomFilters scalable bloom filter that Add
// fills with each (from, to) value pair it indexes and bloomMayContain
// tests. Lookup answers from the backing map alone and does not consult
// the filter, so the filter never affects query results or their cost.
type Index struct {
	active map[PairKey]bool
	data   map[PairKey]map[string][]lquad.Value
	bloom  map[PairKey]*boom.ScalableBloomFilter

	hits   uint64
	misses uint64
}

// NewIndex builds an Index configured for the given profile.
func NewIndex(profile IndexProfile) *Index {
	idx := &Index{
		active: make(map[PairKey]bool),
		data:   make(map[PairKey]map[string][]lquad.Value),
		bloom:  make(map[PairKey]*boom.ScalableBloomFilter),
	}
	var pairs []PairKey
	switch profile {
	case IndexOff:
		pairs = nil
	case IndexMinimal:
		pairs = minimalPairs()
	case IndexAll:
		pairs = allPairs()
	default:
		pairs = minimalPairs()
	}
	for _, p := range pairs {
		idx.active[p] = true
		idx.data[p] = make(map[string][]lquad.Value)
		idx.bloom[p] = boom.NewDefaultScalableBloomFilter(0.01)
	}
	return idx
}

func components(q Quad) [4]lquad.Value {
	return [4]lquad.Value{
		q.Subject,
		q.Predicate,
		q.Object,
		graphValue(q.Graph),
	}
}

func graphValue(g lquad.GraphContext) lquad.Value {
	return lquad.ToValue(g.String())
}

func positionOf(c [4]lquad.Value, p Position) lquad.Value { return c[p] }

// Add indexes q into every currently active pair. Called from inside
// AddNode/AddEdge so the index is always consistent with the graph,
// satisfying spec invariant 4.
func (idx *Index) Add(q Quad) {
	c := components(q)
	for pair := range idx.active {
		from := lquad.StringOf(positionOf(c, pair.From))
		to := positionOf(c, pair.To)
		m := idx.data[pair]
		existing := m[from]
		toStr := lquad.StringOf(to)
		dup := false
		for _, v := range existing {
			if lquad.StringOf(v) == toStr {
				dup = true
				break
			}
		}
		if !dup {
			m[from] = append(existing, to)
		}
		idx.bloom[pair].Add([]byte(from + "\x00" + toStr))
	}
}

// Lookup returns the set of to-values reachable from value under the given
// pair. The second return value reports whether the pair is active; a
// caller that does not request it (the step algebra never does, per spec
// §4.2) should treat false as "no acceleration available", not an error.
func (idx *Index) Lookup(from, to Position, value lquad.Value) (results []lquad.Value, active bool) {
	pair := PairKey{from, to}
	if !idx.active[pair] {
		return nil, false
	}
	key := lquad.StringOf(value)
	m := idx.data[pair]
	vals, ok := m[key]
	if !ok {
		idx.hits++
		metrics.IndexBloomHits.Inc()
		return nil, true
	}
	idx.misses++
	metrics.IndexBloomMisses.Inc()
	return vals, true
}

// bloomMayContain tests the pair's bloom filter: a false result guarantees
// the pair holds nothing for (from,to,value); a true result requires the
// real Lookup to confirm. Nothing in the package calls it.
func (idx *Index) bloomMayContain(from, to Position, fromValue, toValue lquad.Value) bool {
	pair := PairKey{from, to}
	f, ok := idx.bloom[pair]
	if !ok {
		return true
	}
	return f.Test([]byte(lquad.StringOf(fromValue) + "\x00" + lquad.StringOf(toValue)))
}

// Stats reports how many Lookups on an active pair found no entry (hits)
// and how many found one (misses), the same counts Lookup adds to
// metrics.IndexBloomHits/IndexBloomMisses.
func (idx *Index) Stats() (hits, misses uint64) { return idx.hits, idx.misses }

// errMissingIndex reports that Join (or another caller requiring a specific
// pair) was asked to use a pair that is not active under the current
// profile.
func errMissingIndex(pair PairKey) error {
	return travelerr.NewQuery(travelerr.QueryBadIndexProfile, "join",
		fmt.Sprintf("index pair %s->%s is not active under the current profile", pair.From, pair.To))
}
