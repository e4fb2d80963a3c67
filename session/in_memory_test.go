package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/casemesh/core"
)

var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_LazyGet(t *testing.T) {
	s := NewInMemoryStore()

	sess, err := s.Get("ctx-1")
	require.NoError(t, err)
	assert.Equal(t, "ctx-1", sess.ID)
	assert.Equal(t, []string{"ctx-1"}, s.IDs())
}

func TestInMemoryStore_AppendAndDelta(t *testing.T) {
	s := NewInMemoryStore()

	require.NoError(t, s.AppendEvent("ctx-1", core.NewMessageEvent("run-1", "Detective", "hola")))
	require.NoError(t, s.ApplyDelta("ctx-1", map[string]any{"last_case": "CASO-003"}))

	sess, err := s.Get("ctx-1")
	require.NoError(t, err)
	assert.Len(t, sess.GetEvents(), 1)

	v, ok := sess.GetState("last_case")
	require.True(t, ok)
	assert.Equal(t, "CASO-003", v)
}

func TestInMemoryStore_ReturnsClones(t *testing.T) {
	s := NewInMemoryStore()
	sess, err := s.Create("ctx-1")
	require.NoError(t, err)

	sess.ApplyStateDelta(map[string]any{"x": 1})
	sess.AddEvent(core.NewEvent("r", "a"))

	fresh, err := s.Get("ctx-1")
	require.NoError(t, err)

	_, ok := fresh.GetState("x")
	assert.False(t, ok)
	assert.Empty(t, fresh.GetEvents())
}

func TestInMemoryStore_CreateResets(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.AppendEvent("ctx-1", core.NewEvent("r", "a")))

	sess, err := s.Create("ctx-1")
	require.NoError(t, err)
	assert.Empty(t, sess.GetEvents())

	s.Delete("ctx-1")
	assert.Empty(t, s.IDs())
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	s := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = s.AppendEvent("shared", core.NewEvent("r", "a"))
			_ = s.ApplyDelta("shared", map[string]any{fmt.Sprintf("k%d", i): i})
			_, _ = s.Get(fmt.Sprintf("ctx-%d", i%4))
		}()
	}

	wg.Wait()

	sess, err := s.Get("shared")
	require.NoError(t, err)
	assert.Len(t, sess.GetEvents(), 40)
	assert.Len(t, sess.StateSnapshot(), 40)
	assert.Len(t, s.IDs(), 5)
}
