// Package progress accumulates bytes processed across concurrent workers
// and emits callbacks only on percentage transitions, plus Reader/Writer
// wrappers that report as they stream.
package progress

import "sync"

// OnPercent is invoked once per distinct percentage value, never with a
// decreasing value.
type OnPercent func(percent int)

// Tracker accumulates byte counts toward a known or unknown total.
type Tracker struct {
	mu            sync.Mutex
	total         int64
	current       int64
	lastPct       int
	onPercent     OnPercent
	indeterminate bool
}

// NewDeterministic tracks progress toward a known total size.
func NewDeterministic(total int64, onPercent OnPercent) *Tracker {
	return &Tracker{total: total, lastPct: -1, onPercent: onPercent}
}

// NewIndeterminate tracks progress with no known total; Percent always
// reports -1 and Update only accumulates current, until SetTotal installs
// a total and transitions it to Deterministic.
func NewIndeterminate(onPercent OnPercent) *Tracker {
	return &Tracker{indeterminate: true, lastPct: -1, onPercent: onPercent}
}

// SetTotal installs a known total, transitioning an Indeterminate tracker
// to Deterministic, and emits the percentage for the bytes already counted
// right away (100 if current already exceeds total).
func (t *Tracker) SetTotal(total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indeterminate = false
	t.total = total
	t.emitLocked()
}

// emitLocked recomputes and, if changed, emits the percentage for the
// current total/current pair. Callers must hold mu.
func (t *Tracker) emitLocked() {
	if t.total <= 0 {
		return
	}
	pct := int(float64(t.current) / float64(t.total) * 100)
	if pct > 100 {
		pct = 100
	}
	if pct > t.lastPct {
		t.lastPct = pct
		if t.onPercent != nil {
			t.onPercent(pct)
		}
	}
}

// Update advances current by n bytes (never decreasing) and fires
// onPercent if the percentage changed.
func (t *Tracker) Update(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 0 {
		return
	}
	t.current += n
	if t.indeterminate {
		return
	}
	t.emitLocked()
}

// Current returns the accumulated byte count.
func (t *Tracker) Current() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Percent returns the last emitted percentage, or -1 before any update.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastPct
}

// Reader wraps an io.Reader, reporting every Read to a Tracker.
type Reader struct {
	R       readerFunc
	tracker *Tracker
}

type readerFunc interface {
	Read(p []byte) (int, error)
}

// NewReader wraps r so every successful Read reports its byte count.
func NewReader(r readerFunc, t *Tracker) *Reader {
	return &Reader{R: r, tracker: t}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	if n > 0 {
		r.tracker.Update(int64(n))
	}
	return n, err
}

// Writer wraps an io.Writer, reporting every Write to a Tracker.
type Writer struct {
	W       writerFunc
	tracker *Tracker
}

type writerFunc interface {
	Write(p []byte) (int, error)
}

// NewWriter wraps w so every successful Write reports its byte count.
func NewWriter(w writerFunc, t *Tracker) *Writer {
	return &Writer{W: w, tracker: t}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.W.Write(p)
	if n > 0 {
		w.tracker.Update(int64(n))
	}
	return n, err
}
