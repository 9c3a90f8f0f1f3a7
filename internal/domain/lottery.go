package domain

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

var ErrTooManyWinners = errors.New("cannot select more winners than available entrants")

// Lottery selects winners by uniform random sampling without replacement.
// A single Lottery is shared across requests, so draws serialize on mu.
type Lottery struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLottery builds a lottery around the given source. A nil source is
// seeded from the clock; tests pass a fixed seed for deterministic draws.
func NewLottery(src rand.Source) *Lottery {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &Lottery{
		rng: rand.New(src),
	}
}

// Draw picks k distinct winners from pool. The input slice is never
// mutated; the non-winning remainder comes back as rest, in the pool's
// original relative order, so callers can treat it as the "losers" list.
func (l *Lottery) Draw(pool []Entrant, k int) (winners, rest []Entrant, err error) {
	if k > len(pool) {
		return nil, nil, ErrTooManyWinners
	}

	rest = make([]Entrant, len(pool))
	copy(rest, pool)

	winners = make([]Entrant, 0, k)
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < k; i++ {
		j := l.rng.Intn(len(rest))
		winners = append(winners, rest[j])
		rest = append(rest[:j], rest[j+1:]...)
	}

	return winners, rest, nil
}
