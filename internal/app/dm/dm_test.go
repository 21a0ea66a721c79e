package dm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKeyIsCanonical(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	assert.Equal(t, "alice|bob", PairKey("bob", "alice"))
}

func TestHistoryIsSymmetric(t *testing.T) {
	r := NewRouter(10)

	r.Append("alice", "bob", "hi")
	r.Append("bob", "alice", "hey")
	r.Append("alice", "bob", "how are you")

	forward := r.History("alice", "bob")
	reverse := r.History("bob", "alice")

	require.Len(t, forward, 3)
	assert.Equal(t, forward, reverse)

	// chronological, interleaving both directions
	assert.Equal(t, "hi", forward[0].Body)
	assert.Equal(t, "bob", forward[1].From)
	assert.Equal(t, "how are you", forward[2].Body)
}

func TestThreadsAreIsolated(t *testing.T) {
	r := NewRouter(10)

	r.Append("alice", "bob", "for bob")
	r.Append("alice", "carol", "for carol")

	assert.Len(t, r.History("alice", "bob"), 1)
	assert.Len(t, r.History("alice", "carol"), 1)
	assert.Empty(t, r.History("bob", "carol"))
}

func TestRetentionBound(t *testing.T) {
	r := NewRouter(5)

	for i := 0; i < 8; i++ {
		r.Append("alice", "bob", fmt.Sprintf("msg %d", i))
	}

	thread := r.History("alice", "bob")
	require.Len(t, thread, 5)

	// the oldest entries were evicted
	assert.Equal(t, "msg 3", thread[0].Body)
	assert.Equal(t, "msg 7", thread[4].Body)
}

func TestAppendAssignsUniqueIDs(t *testing.T) {
	r := NewRouter(10)

	first := r.Append("alice", "bob", "one")
	second := r.Append("alice", "bob", "two")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Time.After(second.Time))
}

func TestHistoryReturnsCopy(t *testing.T) {
	r := NewRouter(10)
	r.Append("alice", "bob", "original")

	thread := r.History("alice", "bob")
	thread[0].Body = "tampered"

	assert.Equal(t, "original", r.History("alice", "bob")[0].Body)
}
