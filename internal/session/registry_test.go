package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndValidate(t *testing.T) {
	r := NewRegistry()

	id, err := r.Create("user:1", "alice")
	require.NoError(t, err)
	assert.Len(t, id, 64, "expected a 32-byte hex token")

	ident, ok := r.Validate(id)
	require.True(t, ok)
	assert.Equal(t, "user:1", ident.UserID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_TokensAreUnique(t *testing.T) {
	r := NewRegistry()

	a, err := r.Create("user:1", "alice")
	require.NoError(t, err)
	b, err := r.Create("user:1", "alice")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_DestroyInvalidatesSession(t *testing.T) {
	r := NewRegistry()

	id, err := r.Create("user:1", "alice")
	require.NoError(t, err)

	r.Destroy(id)

	_, ok := r.Validate(id)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	// Destroying again is a no-op.
	r.Destroy(id)
}

func TestRegistry_ValidateUnknownID(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Validate("not-a-session")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.Create("user:1", "alice")
			assert.NoError(t, err)
			_, ok := r.Validate(id)
			assert.True(t, ok)
			r.Destroy(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
