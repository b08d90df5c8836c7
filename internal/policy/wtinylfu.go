package policy

import "github.com/ashgrove-cache/tinylfu/internal/arena"

// WindowTinyLFU is the default eviction policy: a small admission Window
// feeding a Segmented LRU Main region (Probationary + Protected), gated by a
// frequency-sketch admission filter. Grounded on the window/main split in
// agilira-metis's WTinyLFUShard, generalized to arena-indexed lists and a
// generic key type.
type WindowTinyLFU[K comparable] struct {
	sketch FrequencySource

	window     *arena.List[record[K]]
	probation  *arena.List[record[K]]
	protected  *arena.List[record[K]]
	locs       map[K]location

	windowCap    int
	probationCap int
	protectedCap int

	admissions     int64
	warmupAdmits   int64
}

type record[K comparable] struct {
	key    K
	hash   uint64
	weight uint32
}

type segment int

const (
	segWindow segment = iota
	segProbation
	segProtected
)

type location struct {
	seg segment
	idx int
}

// NewWindowTinyLFU builds a WindowTinyLFU sized for maxSize total entries,
// split windowRatio to the Window region (clamped to (0,1)) and the
// remainder to Main, itself split 20/80 Probationary/Protected as is
// conventional for W-TinyLFU.
func NewWindowTinyLFU[K comparable](maxSize int, windowRatio float64, sketch FrequencySource) *WindowTinyLFU[K] {
	if windowRatio <= 0 || windowRatio >= 1 {
		windowRatio = 0.01
	}
	windowCap := int(float64(maxSize) * windowRatio)
	if windowCap < 1 {
		windowCap = 1
	}
	mainCap := maxSize - windowCap
	if mainCap < 1 {
		mainCap = 1
	}
	protectedCap := int(float64(mainCap) * 0.8)
	probationCap := mainCap - protectedCap
	if probationCap < 1 {
		probationCap = 1
	}

	return &WindowTinyLFU[K]{
		sketch:       sketch,
		window:       arena.New[record[K]](),
		probation:    arena.New[record[K]](),
		protected:    arena.New[record[K]](),
		locs:         make(map[K]location),
		windowCap:    windowCap,
		probationCap: probationCap,
		protectedCap: protectedCap,
		// Stay in unconditional-admit mode until Main has filled once;
		// comparing against an empty probation tail is meaningless.
		warmupAdmits: int64(mainCap),
	}
}

func (w *WindowTinyLFU[K]) listFor(seg segment) *arena.List[record[K]] {
	switch seg {
	case segWindow:
		return w.window
	case segProbation:
		return w.probation
	default:
		return w.protected
	}
}

func (w *WindowTinyLFU[K]) Add(key K, hash uint64, weight uint32, now int64) {
	idx := w.window.PushFront(record[K]{key: key, hash: hash, weight: weight})
	w.locs[key] = location{seg: segWindow, idx: idx}
}

func (w *WindowTinyLFU[K]) Touch(key K, hash uint64, now int64) {
	loc, ok := w.locs[key]
	if !ok {
		return
	}
	w.sketch.Increment(hash)

	switch loc.seg {
	case segWindow:
		w.window.MoveToFront(loc.idx)
	case segProtected:
		w.protected.MoveToFront(loc.idx)
	case segProbation:
		w.promote(key, loc)
	}
}

// promote moves a probationary hit into Protected, cascading a demotion back
// to Probationary if Protected is now over its share of Main.
func (w *WindowTinyLFU[K]) promote(key K, loc location) {
	rec := w.probation.Value(loc.idx)
	w.probation.Remove(loc.idx)
	newIdx := w.protected.PushFront(rec)
	w.locs[key] = location{seg: segProtected, idx: newIdx}

	if w.protected.Len() <= w.protectedCap {
		return
	}
	tailIdx, ok := w.protected.Back()
	if !ok {
		return
	}
	demoted := w.protected.Value(tailIdx)
	w.protected.Remove(tailIdx)
	probIdx := w.probation.PushFront(demoted)
	w.locs[demoted.key] = location{seg: segProbation, idx: probIdx}
}

func (w *WindowTinyLFU[K]) Remove(key K) {
	loc, ok := w.locs[key]
	if !ok {
		return
	}
	w.listFor(loc.seg).Remove(loc.idx)
	delete(w.locs, key)
}

// SelectVictim implements the admission path: when the Window has grown past
// its share, its LRU tail becomes a candidate for Main. If Main has spare
// room the candidate is admitted outright with no net removal; otherwise it
// is compared against Main Probationary's LRU tail via the frequency
// sketch, and only the winner survives. A no-removal admission reports
// evicted=false, retry=true: the Window shrank, so calling SelectVictim
// again immediately can make further progress toward a real eviction,
// unlike an empty policy (retry=false) where nothing will change until a
// Touch or Add happens.
func (w *WindowTinyLFU[K]) SelectVictim(now int64) (K, bool, bool) {
	var zero K

	if w.window.Len() > w.windowCap {
		return w.evictFromWindow()
	}

	// Defensive fallback for configurations where Window never overflows
	// (e.g. weight-driven overflow, or MaxSize so small windowCap==mainCap).
	if w.probation.Len() > 0 {
		return w.evictTail(w.probation, segProbation)
	}
	if w.protected.Len() > 0 {
		return w.evictTail(w.protected, segProtected)
	}
	if w.window.Len() > 0 {
		return w.evictTail(w.window, segWindow)
	}
	return zero, false, false
}

func (w *WindowTinyLFU[K]) evictTail(list *arena.List[record[K]], seg segment) (K, bool, bool) {
	var zero K
	idx, ok := list.Back()
	if !ok {
		return zero, false, false
	}
	rec := list.Value(idx)
	list.Remove(idx)
	delete(w.locs, rec.key)
	return rec.key, true, false
}

func (w *WindowTinyLFU[K]) evictFromWindow() (K, bool, bool) {
	candIdx, ok := w.window.Back()
	if !ok {
		var zero K
		return zero, false, false
	}
	candidate := w.window.Value(candIdx)
	w.window.Remove(candIdx)
	delete(w.locs, candidate.key)

	if w.probation.Len()+w.protected.Len() < w.probationCap+w.protectedCap {
		w.admissions++
		w.admitToProbation(candidate)
		var zero K
		return zero, false, true
	}

	victimIdx, ok := w.probation.Back()
	if !ok {
		// Probation empty but Protected is full: admit candidate directly,
		// nothing to compare against.
		w.admitToProbation(candidate)
		var zero K
		return zero, false, true
	}
	victim := w.probation.Value(victimIdx)

	w.admissions++
	if w.admissions <= w.warmupAdmits || w.sketch.Estimate(candidate.hash) > w.sketch.Estimate(victim.hash) {
		w.probation.Remove(victimIdx)
		delete(w.locs, victim.key)
		w.admitToProbation(candidate)
		return victim.key, true, false
	}

	// Candidate loses the contest: it is discarded, never having occupied Main.
	return candidate.key, true, false
}

func (w *WindowTinyLFU[K]) admitToProbation(rec record[K]) {
	idx := w.probation.PushFront(rec)
	w.locs[rec.key] = location{seg: segProbation, idx: idx}
}

func (w *WindowTinyLFU[K]) Clear() {
	w.window.Clear()
	w.probation.Clear()
	w.protected.Clear()
	w.locs = make(map[K]location)
	w.admissions = 0
}

func (w *WindowTinyLFU[K]) Len() int {
	return w.window.Len() + w.probation.Len() + w.protected.Len()
}
