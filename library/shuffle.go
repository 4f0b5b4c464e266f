package library

import (
	"math/rand/v2"
	"sync"

	"github.com/yhkl-dev/lofi/domain"
)

// Shuffle is an infinite, non-restartable sequence over a fixed set of tracks.
// Each cycle is a fresh permutation without replacement; repeats only happen
// across cycle boundaries.
type Shuffle struct {
	mu     sync.Mutex
	tracks []domain.TrackRef
	unique int
	order  []int
	pos    int
	cycle  int
	rng    *rand.Rand
}

// NewShuffle creates a shuffled iterator. A nil rng uses the runtime's
// securely seeded generator.
func NewShuffle(tracks []domain.TrackRef, rng *rand.Rand) *Shuffle {
	seen := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		seen[t.Locator] = struct{}{}
	}
	return &Shuffle{
		tracks: append([]domain.TrackRef(nil), tracks...),
		unique: len(seen),
		rng:    rng,
	}
}

// Next returns the next track, reshuffling when the permutation runs out
func (s *Shuffle) Next() domain.TrackRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.order) {
		s.reshuffle()
	}
	ref := s.tracks[s.order[s.pos]]
	s.pos++
	return ref
}

// Len returns the number of distinct locators; duplicate entries count once
func (s *Shuffle) Len() int {
	return s.unique
}

// cycles returns how many permutations have been started
func (s *Shuffle) cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle
}

func (s *Shuffle) reshuffle() {
	if s.rng != nil {
		s.order = s.rng.Perm(len(s.tracks))
	} else {
		s.order = rand.Perm(len(s.tracks))
	}
	s.pos = 0
	s.cycle++
}
