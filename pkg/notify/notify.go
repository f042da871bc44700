// Package notify implements the bounded notification FIFO and the pending
// decision slot for overwrite/skip conflicts, plus a bloom-filter dedup
// pass for non-decision notifications (C18).
package notify

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Kind classifies a Notification's severity.
type Kind int

const (
	Info Kind = iota
	Warning
	Error
)

// Action describes what, if anything, the host should prompt for.
type Action int

const (
	ActionNone Action = iota
	ActionSelect
	ActionDuplicate
)

// Notification is a single user-visible event.
type Notification struct {
	ID      string
	Title   string
	Body    string
	Kind    Kind
	Action  Action
	Options []string // at most 4, used with ActionSelect
}

// Decision is a user's resolution of a pending conflict.
type Decision int

const (
	NeedInput Decision = iota
	Skip
	Replace
)

// UserChoice is the raw choice surfaced to the host; "All" variants also
// set the manager-wide default.
type UserChoice int

const (
	ChoiceSkip UserChoice = iota
	ChoiceSkipAll
	ChoiceReplace
	ChoiceReplaceAll
)

// resolve maps a UserChoice to the Decision recorded on the entry: the All
// variants resolve the same as their non-All counterpart but additionally
// flip the queue's manager-wide default.
func resolve(c UserChoice) Decision {
	switch c {
	case ChoiceSkip, ChoiceSkipAll:
		return Skip
	default:
		return Replace
	}
}

// EntryKind distinguishes why a DecisionEntry exists.
type EntryKind int

const (
	Duplicate EntryKind = iota
	Modified
)

// DecisionEntry is a pending conflict awaiting a user decision.
type DecisionEntry struct {
	Kind     EntryKind
	Path     string
	Decision Decision

	done chan struct{} // nil once already resolved at creation
}

const capacity = 25

// Queue is the process-wide (but here, injected) notification FIFO plus
// the single pending decision slot.
type Queue struct {
	mu          sync.Mutex
	items       []Notification
	pending     *DecisionEntry
	defaultSkip *bool // nil until an "All" choice has been made
	filter      *bloom.BloomFilter
}

// New creates an empty queue with a dedup filter sized for ~10k distinct
// path+kind keys at a 1% false-positive rate.
func New() *Queue {
	return &Queue{filter: bloom.NewWithEstimates(10_000, 0.01)}
}

// Push appends a notification, dropping the oldest on overflow. Decision-
// bearing notifications (Action == ActionDuplicate) and notifications
// pushed with an empty dedupKey always bypass the dedup filter; every other
// notification, whatever its Kind, is dropped if its dedupKey was seen
// before.
func (q *Queue) Push(n Notification, dedupKey string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n.Action != ActionDuplicate && dedupKey != "" {
		if q.filter.TestString(dedupKey) {
			return
		}
		q.filter.AddString(dedupKey)
	}

	q.items = append(q.items, n)
	if len(q.items) > capacity {
		q.items = q.items[len(q.items)-capacity:]
	}
}

// Pop removes and returns the oldest notification, if any.
func (q *Queue) Pop() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Notification{}, false
	}
	n := q.items[0]
	q.items = q.items[1:]
	return n, true
}

// Len reports the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// SetPending installs a new pending decision and reports whether the
// caller must wait for a user choice. If a manager-wide default has been
// set by a prior "All" choice, the entry is resolved immediately and
// waiting is false; otherwise the returned entry is installed as pending
// and the caller should block on Wait until it is decided.
func (q *Queue) SetPending(kind EntryKind, path string) (entry *DecisionEntry, waiting bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.defaultSkip != nil {
		d := Skip
		if !*q.defaultSkip {
			d = Replace
		}
		return &DecisionEntry{Kind: kind, Path: path, Decision: d}, false
	}

	entry = &DecisionEntry{Kind: kind, Path: path, Decision: NeedInput, done: make(chan struct{})}
	q.pending = entry
	return entry, true
}

// Wait blocks until entry is resolved via Decide, then returns its final
// Decision. It returns immediately if entry was already resolved by
// SetPending (the manager-wide default case).
func (q *Queue) Wait(entry *DecisionEntry) Decision {
	if entry.done == nil {
		return entry.Decision
	}
	<-entry.done
	q.mu.Lock()
	defer q.mu.Unlock()
	return entry.Decision
}

// Decide consumes the pending entry, resolving it by the user's choice.
// "All" choices additionally set the manager-wide default.
func (q *Queue) Decide(choice UserChoice) *DecisionEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending == nil {
		return nil
	}
	entry := q.pending
	q.pending = nil
	entry.Decision = resolve(choice)

	if choice == ChoiceSkipAll {
		v := true
		q.defaultSkip = &v
	} else if choice == ChoiceReplaceAll {
		v := false
		q.defaultSkip = &v
	}
	if entry.done != nil {
		close(entry.done)
	}
	return entry
}

// Pending returns the currently outstanding decision entry, if any.
func (q *Queue) Pending() *DecisionEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}
