package idgen

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Next(t *testing.T) {
	now := int64(Epoch + 1000)
	sf, err := New(1, ClockFunc(func() int64 { return now }))
	require.NoError(t, err)

	id1, err := sf.Next()
	require.NoError(t, err)
	id2, err := sf.Next()
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Less(t, id1, id2, "IDs must be monotonic increasing")
}

func TestSnowflake_NodeIDOutOfRange(t *testing.T) {
	_, err := New(1024, nil)
	assert.ErrorIs(t, err, ErrNodeIDTooLarge)

	_, err = New(-1, nil)
	assert.ErrorIs(t, err, ErrNodeIDTooLarge)
}

func TestSnowflake_ClockMovedBack(t *testing.T) {
	now := int64(Epoch + 2000)
	sf, err := New(1, ClockFunc(func() int64 { return now }))
	require.NoError(t, err)

	_, err = sf.Next()
	require.NoError(t, err)

	now = Epoch + 1000
	_, err = sf.Next()
	assert.ErrorIs(t, err, ErrClockMovedBack)
}

func TestSnowflake_Decompose(t *testing.T) {
	now := int64(Epoch + 123456)
	sf, err := New(7, ClockFunc(func() int64 { return now }))
	require.NoError(t, err)

	_, _ = sf.Next()
	id, err := sf.Next()
	require.NoError(t, err)

	ts, node, seq := Decompose(id)
	assert.Equal(t, now, ts)
	assert.Equal(t, int64(7), node)
	assert.Equal(t, int64(1), seq)
}

func TestSnowflake_NextString(t *testing.T) {
	sf, err := New(1, nil)
	require.NoError(t, err)

	s, err := sf.NextString()
	require.NoError(t, err)

	id, err := strconv.ParseInt(s, 36, 64)
	require.NoError(t, err)
	_, node, _ := Decompose(id)
	assert.Equal(t, int64(1), node)
}

func TestSnowflake_Concurrency(t *testing.T) {
	sf, err := New(1, SystemClock{})
	require.NoError(t, err)

	const goroutines, perGoroutine = 20, 500
	var mu sync.Mutex
	seen := make(map[int64]struct{}, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				id, err := sf.Next()
				if err != nil {
					t.Errorf("concurrent generation failed: %v", err)
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
}
