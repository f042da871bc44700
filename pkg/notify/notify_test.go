package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedFIFODropsOldest(t *testing.T) {
	q := New()
	for i := 0; i < capacity+5; i++ {
		q.Push(Notification{Title: fmt.Sprintf("n%d", i), Kind: Warning}, fmt.Sprintf("path%d:warn", i))
	}
	assert.Equal(t, capacity, q.Len())

	n, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "n5", n.Title)
}

func TestDecideSkipAllSetsManagerWideDefault(t *testing.T) {
	q := New()
	_, waiting := q.SetPending(Duplicate, "/a")
	assert.True(t, waiting)

	entry := q.Decide(ChoiceSkipAll)
	require.NotNil(t, entry)
	assert.Equal(t, Skip, entry.Decision)

	resolved, waiting2 := q.SetPending(Duplicate, "/b")
	assert.False(t, waiting2)
	require.NotNil(t, resolved)
	assert.Equal(t, Skip, resolved.Decision)
}

func TestDecideReplaceAllSetsManagerWideDefault(t *testing.T) {
	q := New()
	q.SetPending(Modified, "/a")
	q.Decide(ChoiceReplaceAll)

	resolved, waiting := q.SetPending(Modified, "/c")
	assert.False(t, waiting)
	assert.Equal(t, Replace, resolved.Decision)
}

func TestWaitBlocksUntilDecided(t *testing.T) {
	q := New()
	entry, waiting := q.SetPending(Duplicate, "/a")
	require.True(t, waiting)

	done := make(chan Decision, 1)
	go func() { done <- q.Wait(entry) }()

	decided := q.Decide(ChoiceReplace)
	require.NotNil(t, decided)
	assert.Equal(t, Replace, <-done)
}

func TestDedupSuppressesRepeatNonDecisionNotifications(t *testing.T) {
	q := New()
	q.Push(Notification{Title: "dup", Kind: Info}, "samekey")
	q.Push(Notification{Title: "dup again", Kind: Info}, "samekey")
	assert.Equal(t, 1, q.Len())
}

func TestDecisionBearingNotificationsBypassDedup(t *testing.T) {
	q := New()
	q.Push(Notification{Title: "conflict", Kind: Warning, Action: ActionDuplicate}, "samekey")
	q.Push(Notification{Title: "conflict2", Kind: Warning, Action: ActionDuplicate}, "samekey")
	assert.Equal(t, 2, q.Len())
}
