package policy

// Composite chains several policies, mirroring every Add/Touch/Remove/Clear
// call to all of them and asking each in turn to name a victim. This lets a
// cache combine, for example, WeightBased pressure relief with a plain LRU
// fallback once the weight-skewed candidates run out.
type Composite[K comparable] struct {
	policies []Policy[K]
}

// NewComposite chains policies in priority order: SelectVictim consults them
// left to right, returning the first one that has a candidate.
func NewComposite[K comparable](policies ...Policy[K]) *Composite[K] {
	return &Composite[K]{policies: policies}
}

func (c *Composite[K]) Add(key K, hash uint64, weight uint32, now int64) {
	for _, p := range c.policies {
		p.Add(key, hash, weight, now)
	}
}

func (c *Composite[K]) Touch(key K, hash uint64, now int64) {
	for _, p := range c.policies {
		p.Touch(key, hash, now)
	}
}

func (c *Composite[K]) Remove(key K) {
	for _, p := range c.policies {
		p.Remove(key)
	}
}

func (c *Composite[K]) SelectVictim(now int64) (K, bool, bool) {
	for _, p := range c.policies {
		key, evicted, retry := p.SelectVictim(now)
		if evicted {
			// Keep the other policies' bookkeeping consistent with the
			// eviction the chosen policy just committed to.
			for _, other := range c.policies {
				if other != p {
					other.Remove(key)
				}
			}
			return key, true, false
		}
		if retry {
			return key, false, true
		}
	}
	var zero K
	return zero, false, false
}

func (c *Composite[K]) Clear() {
	for _, p := range c.policies {
		p.Clear()
	}
}

func (c *Composite[K]) Len() int {
	if len(c.policies) == 0 {
		return 0
	}
	return c.policies[0].Len()
}
