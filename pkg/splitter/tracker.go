package splitter

// Tracker records the read/write offset pair for one part-task's pump
// loop, independent of the Progress tracker's percentage math: it exists
// for diagnostics, not for the host-facing progress callback.
type Tracker struct {
	src, dst  string
	startRead uint64
	endRead   uint64
	readPos   uint64
	writePos  uint64
}

// NewTracker creates a Tracker for the given part's src/dst pair.
func NewTracker(src, dst string) *Tracker {
	return &Tracker{src: src, dst: dst}
}

// SetStart records the part's starting read offset.
func (t *Tracker) SetStart(start uint64) *Tracker {
	t.startRead = start
	t.readPos = start
	return t
}

// SetEnd records the part's ending read offset.
func (t *Tracker) SetEnd(end uint64) *Tracker {
	t.endRead = end
	return t
}

// Update records the offsets reached after the most recent chunk.
func (t *Tracker) Update(readPos, writePos uint64) {
	t.readPos = readPos
	t.writePos = writePos
}

// ReadPos returns the last recorded read offset.
func (t *Tracker) ReadPos() uint64 { return t.readPos }

// WritePos returns the last recorded write offset.
func (t *Tracker) WritePos() uint64 { return t.writePos }
