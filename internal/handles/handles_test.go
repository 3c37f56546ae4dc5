package handles

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scope struct{ name string }

func TestClaimAndUnclaim(t *testing.T) {
	s := &scope{"claim"}

	require.True(t, Claim(s, 42), "first claim should succeed")
	assert.True(t, Owned(s, 42))
	assert.False(t, Claim(s, 42), "second claim of the same identifier must fail")

	require.True(t, Unclaim(s, 42))
	assert.False(t, Owned(s, 42))
	assert.False(t, Unclaim(s, 42), "unclaim without owner should report false")

	// Identifier may be reused by the runtime once released
	require.True(t, Claim(s, 42))
	Unclaim(s, 42)
}

func TestScopesAreIndependent(t *testing.T) {
	a, b := &scope{"a"}, &scope{"b"}

	require.True(t, Claim(a, 7))
	require.True(t, Claim(b, 7), "same identifier in another runtime is a different object")
	assert.Equal(t, 1, CountScope(a))
	assert.Equal(t, 1, CountScope(b))

	Unclaim(a, 7)
	Unclaim(b, 7)
	assert.Zero(t, CountScope(a))
}

func TestConcurrentClaims(t *testing.T) {
	const numGoroutines = 100
	s := &scope{"concurrent"}

	var (
		wg      sync.WaitGroup
		winners int
		mu      sync.Mutex
	)
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			if Claim(s, 1) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one goroutine may own an identifier")
	Unclaim(s, 1)
}

func TestCountTracksClaims(t *testing.T) {
	s := &scope{"count"}
	before := Count()

	for i := int64(0); i < 1000; i++ {
		require.True(t, Claim(s, i))
	}
	assert.Equal(t, before+1000, Count())

	for i := int64(0); i < 1000; i++ {
		Unclaim(s, i)
	}
	assert.Equal(t, before, Count())
}
