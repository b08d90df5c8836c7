package policy

import "github.com/ashgrove-cache/tinylfu/internal/arena"

// recencyKind distinguishes the three list-order policies that differ only
// in whether a hit reorders the list and which end is evicted.
type recencyKind int

const (
	kindLRU  recencyKind = iota // hit moves key to front; evict from back
	kindFIFO                    // hit does not reorder; evict from back (oldest)
	kindFILO                    // hit does not reorder; evict from front (newest)
)

// Recency implements LRU, FIFO and FILO, which share an arena list and
// differ only in reorder-on-hit and eviction-end behavior.
type Recency[K comparable] struct {
	kind recencyKind
	list *arena.List[record[K]]
	locs map[K]int
}

func newRecency[K comparable](kind recencyKind) *Recency[K] {
	return &Recency[K]{
		kind: kind,
		list: arena.New[record[K]](),
		locs: make(map[K]int),
	}
}

// NewLRU returns a policy that evicts the least recently used key.
func NewLRU[K comparable]() *Recency[K] { return newRecency[K](kindLRU) }

// NewFIFO returns a policy that evicts in strict insertion order, ignoring hits.
func NewFIFO[K comparable]() *Recency[K] { return newRecency[K](kindFIFO) }

// NewFILO returns a policy that evicts the most recently inserted key first.
func NewFILO[K comparable]() *Recency[K] { return newRecency[K](kindFILO) }

func (r *Recency[K]) Add(key K, hash uint64, weight uint32, now int64) {
	idx := r.list.PushFront(record[K]{key: key, hash: hash, weight: weight})
	r.locs[key] = idx
}

func (r *Recency[K]) Touch(key K, hash uint64, now int64) {
	if r.kind != kindLRU {
		return
	}
	if idx, ok := r.locs[key]; ok {
		r.list.MoveToFront(idx)
	}
}

func (r *Recency[K]) Remove(key K) {
	if idx, ok := r.locs[key]; ok {
		r.list.Remove(idx)
		delete(r.locs, key)
	}
}

func (r *Recency[K]) SelectVictim(now int64) (K, bool, bool) {
	var idx int
	var ok bool
	if r.kind == kindFILO {
		idx, ok = r.list.Front()
	} else {
		idx, ok = r.list.Back()
	}
	if !ok {
		var zero K
		return zero, false, false
	}
	rec := r.list.Value(idx)
	r.list.Remove(idx)
	delete(r.locs, rec.key)
	return rec.key, true, false
}

func (r *Recency[K]) Clear() {
	r.list.Clear()
	r.locs = make(map[K]int)
}

func (r *Recency[K]) Len() int { return r.list.Len() }
