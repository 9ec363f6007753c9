package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespaceLRU_SetGet(t *testing.T) {
	// Arrange
	c := NewNamespaceLRU(4)

	// Act
	c.Set("QR", "ABC-1", 1)
	c.Set("FONT", "ABC-1", 2)

	// Assert
	v, ok := c.Get("QR", "ABC-1")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = c.Get("FONT", "ABC-1")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = c.Get("QR", "missing")
	assert.False(t, ok)
}

func TestNamespaceLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	// Arrange
	c := NewNamespaceLRU(2)
	c.Set("QR", "a", "a")
	c.Set("QR", "b", "b")

	// Act - touch "a" so "b" becomes the oldest
	_, _ = c.Get("QR", "a")
	c.Set("QR", "c", "c")

	// Assert
	assert.Equal(t, 2, c.Size())
	_, ok := c.Get("QR", "b")
	assert.False(t, ok)
	_, ok = c.Get("QR", "a")
	assert.True(t, ok)
	_, ok = c.Get("QR", "c")
	assert.True(t, ok)
}

func TestNamespaceLRU_UpdateKeepsSize(t *testing.T) {
	c := NewNamespaceLRU(2)

	c.Set("QR", "a", 1)
	c.Set("QR", "a", 2)

	assert.Equal(t, 1, c.Size())
	v, _ := c.Get("QR", "a")
	assert.Equal(t, 2, v)
}

func TestNamespaceLRU_ZeroCapacity(t *testing.T) {
	c := NewNamespaceLRU(0)

	c.Set("QR", "a", 1)
	c.Set("QR", "b", 2)

	assert.Equal(t, 1, c.Size())
}

func TestNamespaceLRU_ConcurrentAccess(t *testing.T) {
	c := NewNamespaceLRU(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", i, j%20)
				c.Set("QR", key, j)
				c.Get("QR", key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 16)
}
