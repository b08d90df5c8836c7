// Package sketch implements a Count-Min Sketch with 4-bit saturating
// counters for approximate recent-access frequency, as used by the
// Window-TinyLFU admission policy.
package sketch

import (
	"go.uber.org/atomic"

	"github.com/cespare/xxhash/v2"
)

// Frequency is a lock-free, fixed-size counting sketch. Counter updates are
// atomic read-modify-write on 64-bit words that each pack sixteen 4-bit
// counters; readers may observe slightly stale values, which is acceptable
// because admission decisions are probabilistic.
type Frequency struct {
	table     []atomic.Uint64
	tableMask uint64

	seed1, seed2, seed3, seed4 uint64

	sampleSize     atomic.Int64
	resetThreshold int64
}

// New builds a sketch sized for maxSize tracked items. Table width is the
// next power of two accommodating maxSize/4 words (16 counters per word).
func New(maxSize int) *Frequency {
	tableSize := nextPowerOf2(maxSize / 4)
	if tableSize < 64 {
		tableSize = 64
	}
	return &Frequency{
		table:     make([]atomic.Uint64, tableSize),
		tableMask: uint64(tableSize - 1),
		seed1:     0x9e3779b97f4a7c15,
		seed2:     0xbf58476d1ce4e5b9,
		seed3:     0x94d049bb133111eb,
		seed4:     0xbf58476d1ce4e5b7,
		// Aging runs every 10x maxSize increments, the conventional TinyLFU reset cadence.
		resetThreshold: int64(maxSize * 10),
	}
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// HashString derives the 64-bit hash fed to Increment/Estimate for a string key.
func HashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Increment bumps the four counters addressed by hash, saturating at 15, and
// ages the whole table once the sample count crosses the reset threshold.
func (f *Frequency) Increment(hash uint64) {
	if f.sampleSize.Inc()%f.resetThreshold == 0 {
		f.Age()
	}

	pos1 := f.hash1(hash) & f.tableMask
	pos2 := f.hash2(hash) & f.tableMask
	pos3 := f.hash3(hash) & f.tableMask
	pos4 := f.hash4(hash) & f.tableMask

	sub1 := (hash & 0xF) * 4
	sub2 := ((hash >> 4) & 0xF) * 4
	sub3 := ((hash >> 8) & 0xF) * 4
	sub4 := ((hash >> 12) & 0xF) * 4

	f.incrementCounter(pos1, sub1)
	f.incrementCounter(pos2, sub2)
	f.incrementCounter(pos3, sub3)
	f.incrementCounter(pos4, sub4)
}

func (f *Frequency) incrementCounter(tablePos, subPos uint64) {
	mask := uint64(0xF) << subPos
	word := &f.table[tablePos]
	for {
		old := word.Load()
		counter := (old >> subPos) & 0xF
		if counter >= 15 {
			return
		}
		newWord := (old &^ mask) | ((counter + 1) << subPos)
		if word.CompareAndSwap(old, newWord) {
			return
		}
	}
}

// Estimate returns the Count-Min estimate (minimum of the four counters) for hash.
func (f *Frequency) Estimate(hash uint64) uint64 {
	pos1 := f.hash1(hash) & f.tableMask
	pos2 := f.hash2(hash) & f.tableMask
	pos3 := f.hash3(hash) & f.tableMask
	pos4 := f.hash4(hash) & f.tableMask

	sub1 := (hash & 0xF) * 4
	sub2 := ((hash >> 4) & 0xF) * 4
	sub3 := ((hash >> 8) & 0xF) * 4
	sub4 := ((hash >> 12) & 0xF) * 4

	c1 := (f.table[pos1].Load() >> sub1) & 0xF
	c2 := (f.table[pos2].Load() >> sub2) & 0xF
	c3 := (f.table[pos3].Load() >> sub3) & 0xF
	c4 := (f.table[pos4].Load() >> sub4) & 0xF

	return min4(c1, c2, c3, c4)
}

// Age halves every counter in place. Exported so the maintenance task can
// invoke aging on a schedule independent of the sample-count trigger.
func (f *Frequency) Age() {
	for i := range f.table {
		word := &f.table[i]
		for {
			old := word.Load()
			var aged uint64
			for j := 0; j < 16; j++ {
				shift := uint64(j * 4)
				counter := (old >> shift) & 0xF
				aged |= (counter >> 1) << shift
			}
			if word.CompareAndSwap(old, aged) {
				break
			}
		}
	}
}

// Reset clears every counter and the sample count, used by Cache.Clear.
func (f *Frequency) Reset() {
	for i := range f.table {
		f.table[i].Store(0)
	}
	f.sampleSize.Store(0)
}

func (f *Frequency) hash1(key uint64) uint64 { return (key * f.seed1) >> 32 }
func (f *Frequency) hash2(key uint64) uint64 { return (key * f.seed2) >> 32 }
func (f *Frequency) hash3(key uint64) uint64 { return (key * f.seed3) >> 32 }
func (f *Frequency) hash4(key uint64) uint64 { return (key * f.seed4) >> 32 }

func min4(a, b, c, d uint64) uint64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	if d < m {
		m = d
	}
	return m
}
