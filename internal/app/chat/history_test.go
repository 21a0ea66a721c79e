package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := newHistory(3)

	for i := 0; i < 5; i++ {
		h.append(Message{ID: fmt.Sprintf("m%d", i), Body: fmt.Sprintf("msg %d", i)})
	}

	msgs := h.list()
	require.Len(t, msgs, 3)
	assert.Equal(t, "m2", msgs[0].ID)
	assert.Equal(t, "m4", msgs[2].ID)

	// the evicted message is gone
	_, found := h.find("m0")
	assert.False(t, found)
}

func TestHistoryEditMarksEdited(t *testing.T) {
	h := newHistory(10)
	h.append(Message{ID: "m1", Body: "original"})

	updated, ok := h.edit("m1", "changed")
	require.True(t, ok)
	assert.True(t, updated.Edited)
	assert.Equal(t, "changed", updated.Body)

	stored, found := h.find("m1")
	require.True(t, found)
	assert.True(t, stored.Edited)

	_, ok = h.edit("missing", "whatever")
	assert.False(t, ok)
}

func TestHistoryRemove(t *testing.T) {
	h := newHistory(10)
	h.append(Message{ID: "m1"})
	h.append(Message{ID: "m2"})

	assert.True(t, h.remove("m1"))
	assert.False(t, h.remove("m1"))

	msgs := h.list()
	require.Len(t, msgs, 1)
	assert.Equal(t, "m2", msgs[0].ID)
}

func TestParseKindDefaultsToText(t *testing.T) {
	kind, ok := ParseKind("")
	require.True(t, ok)
	assert.Equal(t, KindText, kind)

	for _, name := range []string{"text", "image", "audio", "video"} {
		kind, ok := ParseKind(name)
		require.True(t, ok)
		assert.Equal(t, Kind(name), kind)
	}

	_, ok = ParseKind("hologram")
	assert.False(t, ok)
}
