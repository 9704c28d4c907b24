package logging

import (
	"sync"
	"time"
)

// Recorder keeps every record in memory. It is used by tests and the
// simulator to observe the diagnostic stream.
type Recorder struct {
	mu      sync.Mutex
	records []Record
	notify  chan Record
}

// NewRecorder returns a recorder that also publishes each record on a
// channel of the given depth. A zero depth disables publishing.
func NewRecorder(depth int) *Recorder {
	r := new(Recorder)
	if depth > 0 {
		r.notify = make(chan Record, depth)
	}
	return r
}

// Emit stores the record.
func (r *Recorder) Emit(rec Record) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	if r.notify != nil {
		select {
		case r.notify <- rec:
		default:
		}
	}
}

// Records returns a copy of the stored records.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Tagged returns the stored records carrying tag.
func (r *Recorder) Tagged(tag string) []Record {
	var out []Record
	for _, rec := range r.Records() {
		if rec.Tag == tag {
			out = append(out, rec)
		}
	}
	return out
}

// Next waits up to timeout for the next published record.
func (r *Recorder) Next(timeout time.Duration) (Record, bool) {
	if r.notify == nil {
		return Record{}, false
	}
	select {
	case rec := <-r.notify:
		return rec, true
	case <-time.After(timeout):
		return Record{}, false
	}
}

// NextTagged waits up to timeout for the next published record with tag,
// skipping others.
func (r *Recorder) NextTagged(tag string, timeout time.Duration) (Record, bool) {
	deadline := time.Now().Add(timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return Record{}, false
		}
		rec, ok := r.Next(left)
		if !ok {
			return Record{}, false
		}
		if rec.Tag == tag {
			return rec, true
		}
	}
}
