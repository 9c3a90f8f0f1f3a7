package domain

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePool(n int) []Entrant {
	pool := make([]Entrant, n)
	for i := range pool {
		pool[i] = Entrant{ID: uint(i + 1)}
	}

	return pool
}

func TestLottery_Draw(t *testing.T) {
	l := NewLottery(rand.NewSource(42))
	pool := makePool(10)

	winners, rest, err := l.Draw(pool, 4)
	require.NoError(t, err)
	assert.Len(t, winners, 4)
	assert.Len(t, rest, 6)

	// Winners and rest partition the pool.
	seen := map[uint]int{}
	for _, e := range winners {
		seen[e.ID]++
	}
	for _, e := range rest {
		seen[e.ID]++
	}
	require.Len(t, seen, 10)
	for id, count := range seen {
		assert.Equalf(t, 1, count, "entrant %d appeared %d times", id, count)
	}
}

func TestLottery_Draw_TooManyWinners(t *testing.T) {
	l := NewLottery(rand.NewSource(1))

	_, _, err := l.Draw(makePool(3), 4)
	assert.ErrorIs(t, err, ErrTooManyWinners)
}

func TestLottery_Draw_WholePool(t *testing.T) {
	l := NewLottery(rand.NewSource(1))

	winners, rest, err := l.Draw(makePool(5), 5)
	require.NoError(t, err)
	assert.Len(t, winners, 5)
	assert.Empty(t, rest)
}

func TestLottery_Draw_ZeroWinners(t *testing.T) {
	l := NewLottery(rand.NewSource(1))

	winners, rest, err := l.Draw(makePool(3), 0)
	require.NoError(t, err)
	assert.Empty(t, winners)
	assert.Len(t, rest, 3)
}

func TestLottery_Draw_InputNotMutated(t *testing.T) {
	l := NewLottery(rand.NewSource(7))
	pool := makePool(8)

	_, _, err := l.Draw(pool, 5)
	require.NoError(t, err)

	for i, e := range pool {
		assert.Equal(t, uint(i+1), e.ID)
	}
}

func TestLottery_Draw_RestPreservesOrder(t *testing.T) {
	l := NewLottery(rand.NewSource(99))

	_, rest, err := l.Draw(makePool(20), 8)
	require.NoError(t, err)

	for i := 1; i < len(rest); i++ {
		assert.Less(t, rest[i-1].ID, rest[i].ID)
	}
}

func TestLottery_Draw_Deterministic(t *testing.T) {
	first, _, err := NewLottery(rand.NewSource(123)).Draw(makePool(30), 10)
	require.NoError(t, err)

	second, _, err := NewLottery(rand.NewSource(123)).Draw(makePool(30), 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// One lottery serves every request, so draws for different events run
// concurrently against the same rng.
func TestLottery_Draw_Concurrent(t *testing.T) {
	l := NewLottery(rand.NewSource(1))
	pool := makePool(10)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				winners, rest, err := l.Draw(pool, 3)
				assert.NoError(t, err)
				assert.Len(t, winners, 3)
				assert.Len(t, rest, 7)
			}
		}()
	}
	wg.Wait()
}

// Every entrant should win roughly equally often over many draws.
func TestLottery_Draw_Uniformity(t *testing.T) {
	const (
		poolSize = 10
		k        = 3
		rounds   = 10000
	)

	l := NewLottery(rand.NewSource(2024))
	pool := makePool(poolSize)

	wins := map[uint]int{}
	for i := 0; i < rounds; i++ {
		winners, _, err := l.Draw(pool, k)
		require.NoError(t, err)
		for _, w := range winners {
			wins[w.ID]++
		}
	}

	expected := float64(rounds*k) / float64(poolSize)
	for id, count := range wins {
		assert.InDeltaf(t, expected, float64(count), expected*0.1,
			"entrant %d won %d times, expected about %.0f", id, count, expected)
	}
}
