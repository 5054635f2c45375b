package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecencyCache_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		c, err := NewRecencyCache(capacity)
		assert.Error(t, err)
		assert.Nil(t, c)
	}
}

func TestRecencyCache_RecordAndContains(t *testing.T) {
	c, err := NewRecencyCache(3)
	require.NoError(t, err)

	assert.False(t, c.Contains("a"))
	c.Record("a")
	assert.True(t, c.Contains("a"))
	assert.Equal(t, 1, c.Len())
}

func TestRecencyCache_RecordIsIdempotent(t *testing.T) {
	c, err := NewRecencyCache(3)
	require.NoError(t, err)

	c.Record("a")
	c.Record("a")
	assert.Equal(t, 1, c.Len())
}

func TestRecencyCache_EvictsOldest(t *testing.T) {
	c, err := NewRecencyCache(3)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c", "d"} {
		c.Record(id)
	}

	assert.False(t, c.Contains("a"), "oldest entry should be evicted")
	assert.True(t, c.Contains("b"))
	assert.True(t, c.Contains("d"))
	assert.Equal(t, 3, c.Len())
}

func TestRecencyCache_DuplicateDoesNotRefresh(t *testing.T) {
	c, err := NewRecencyCache(2)
	require.NoError(t, err)

	c.Record("a")
	c.Record("b")
	c.Record("a") // no-op; "a" stays oldest
	c.Record("c")

	assert.False(t, c.Contains("a"))
	assert.True(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
}

func TestRecencyCache_NeverExceedsCapacity(t *testing.T) {
	c, err := NewRecencyCache(10)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		c.Record(fmt.Sprintf("id-%d", i))
		assert.LessOrEqual(t, c.Len(), c.Capacity())
	}
	assert.True(t, c.Contains("id-99"))
	assert.True(t, c.Contains("id-90"))
	assert.False(t, c.Contains("id-89"))
}
