package pipeline

import "strings"

// stopFilter is a single-use stream transformer: it consumes raw fragments
// from the engine, emits cleaned deltas, and detects completion. No emitted
// byte sequence ever contains a complete configured stop sequence, no matter
// how fragments split it.
//
// State is one held-back suffix buffer of at most maxHold bytes (the longest
// stop sequence length minus one): bytes that might be the start of a stop
// sequence but are not yet confirmed.
type stopFilter struct {
	stops   []string
	maxHold int
	limit   int // max emitted bytes; 0 = unlimited
	held    []byte
	emitted int
	done    bool
	reason  string
}

func newStopFilter(stops []string, limit int) *stopFilter {
	f := &stopFilter{limit: limit}
	for _, s := range stops {
		if s == "" {
			continue
		}
		f.stops = append(f.stops, s)
		if len(s)-1 > f.maxHold {
			f.maxHold = len(s) - 1
		}
	}
	return f
}

// feed appends one raw fragment and returns the delta safe to emit now,
// plus whether the stream is complete. Once done, the caller must stop
// pulling fragments from the engine.
func (f *stopFilter) feed(fragment string) (string, bool) {
	if f.done || fragment == "" {
		return "", f.done
	}
	cand := string(f.held) + fragment
	if p, ok := f.earliestStop(cand); ok {
		// Everything from the match onward is discarded.
		f.held = nil
		f.done = true
		f.reason = ReasonStop
		return f.emit(cand[:p]), true
	}
	k := f.holdLen(cand)
	f.held = []byte(cand[len(cand)-k:])
	delta := f.emit(cand[:len(cand)-k])
	return delta, f.done
}

// finish flushes the held buffer when the engine signals natural end. The
// held bytes were never confirmed to be part of a stop sequence, so they are
// legitimate output.
func (f *stopFilter) finish() string {
	if f.done {
		return ""
	}
	delta := f.emit(string(f.held))
	f.held = nil
	if !f.done {
		f.done = true
		f.reason = ReasonEOS
	}
	return delta
}

func (f *stopFilter) Done() bool     { return f.done }
func (f *stopFilter) Reason() string { return f.reason }
func (f *stopFilter) Emitted() int   { return f.emitted }

// emit accounts delta against the output cap. If the cap lands mid-delta,
// emission stops at the boundary and the held buffer is discarded: it is
// unconfirmed content beyond the cap.
func (f *stopFilter) emit(delta string) string {
	if f.limit > 0 && f.emitted+len(delta) >= f.limit {
		if f.emitted+len(delta) > f.limit {
			delta = delta[:f.limit-f.emitted]
			f.reason = ReasonLength
		} else if f.reason == "" {
			f.reason = ReasonLength
		}
		f.held = nil
		f.done = true
	}
	f.emitted += len(delta)
	return delta
}

// earliestStop returns the earliest starting position of any complete stop
// sequence in cand. Which sequence matched is immaterial; only the position
// determines the truncation point.
func (f *stopFilter) earliestStop(cand string) (int, bool) {
	best := -1
	for _, s := range f.stops {
		if i := strings.Index(cand, s); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best, best >= 0
}

// holdLen returns the length of the longest suffix of cand that is a strict
// prefix of some stop sequence.
func (f *stopFilter) holdLen(cand string) int {
	max := f.maxHold
	if len(cand) < max {
		max = len(cand)
	}
	for k := max; k > 0; k-- {
		suffix := cand[len(cand)-k:]
		for _, s := range f.stops {
			if len(s) > k && s[:k] == suffix {
				return k
			}
		}
	}
	return 0
}
