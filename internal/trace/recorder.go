package trace

// Recorder accumulates the ordered steps of one operation invocation.
// Simulators call Reset at the start of every public operation and hand
// callers a copy from Steps; the live buffer never leaves the recorder.
//
// A Recorder is not safe for concurrent use. Simulators guard it with the
// same lock that guards their structure.
type Recorder struct {
	steps []Step
}

// Reset drops the previous trace.
func (r *Recorder) Reset() {
	r.steps = r.steps[:0]
}

// Record appends one step. The state slice is owned by the step from here
// on; callers build a fresh one per call. A nil metadata map is replaced
// with an empty one so consumers can always index it.
func (r *Recorder) Record(op Tag, description string, state []Snapshot, highlighted string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	if state == nil {
		state = []Snapshot{}
	}
	r.steps = append(r.steps, Step{
		Operation:   op,
		Description: description,
		State:       state,
		Highlighted: highlighted,
		Metadata:    metadata,
	})
}

// Len returns the number of steps recorded since the last Reset.
func (r *Recorder) Len() int {
	return len(r.steps)
}

// Steps returns a copy of the current trace.
func (r *Recorder) Steps() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}
