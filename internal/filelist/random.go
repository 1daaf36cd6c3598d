package filelist

import "math/rand/v2"

// Randomizer picks list indices at random, by default without replacement:
// every index of [0, n) is handed out once before any repeats.
type Randomizer struct {
	rng  *rand.Rand
	perm []int
	next int
}

// NewRandomizer wraps rng; nil seeds a fresh generator.
func NewRandomizer(rng *rand.Rand) *Randomizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Randomizer{rng: rng, next: -1}
}

// Index returns a random index below n.
func (r *Randomizer) Index(n int, replace bool) int {
	if n <= 0 {
		return 0
	}
	if replace {
		return r.rng.IntN(n)
	}
	if len(r.perm) != n {
		r.perm = make([]int, n)
		r.next = -1
	}
	if r.next < 0 {
		r.reshuffle()
	}
	v := r.perm[r.next]
	r.next--
	return v
}

func (r *Randomizer) reshuffle() {
	for i := range r.perm {
		r.perm[i] = i
	}
	for i := len(r.perm) - 1; i > 0; i-- {
		j := r.rng.IntN(i + 1)
		r.perm[i], r.perm[j] = r.perm[j], r.perm[i]
	}
	r.next = len(r.perm) - 1
}
