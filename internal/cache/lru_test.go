package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsOldest(t *testing.T) {
	c := New[string, int](2)
	var evicted []string
	c.OnEvict(func(k string, _ int) { evicted = append(evicted, k) })

	c.Add("a", 1)
	c.Add("b", 2)
	_, ok := c.Get("a") // a becomes MRU
	require.True(t, ok)
	c.Add("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "b should be evicted")
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Len())
}

func TestLRUUpdateAndRemove(t *testing.T) {
	c := New[int, string](4)
	c.Add(1, "one")
	c.Add(1, "uno")
	v, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "uno", v)

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 0, c.Len())
}

func TestLRURangeAndPurge(t *testing.T) {
	c := New[int, int](3)
	for i := 1; i <= 3; i++ {
		c.Add(i, i*10)
	}
	var keys []int
	c.Range(func(k, _ int) bool { keys = append(keys, k); return true })
	assert.Equal(t, []int{3, 2, 1}, keys)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestLRUConcurrent(t *testing.T) {
	c := New[int, int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Add(i%32, g)
				c.Get(i % 7)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}

func TestNewPanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { New[int, int](0) })
}
