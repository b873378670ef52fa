// Package window implements the per-stay trailing-window aggregations:
// the worst-value window over each sub-score and the rolling urine sum
// feeding the renal rule. Both scan the hour sequence once instead of
// recomputing the full window at every step.
package window

// Span is the trailing window width in slots: the current hour plus the
// 24 preceding ones, clipped at the start of the timeline.
const Span = 25

// TrailingMax returns, for each position, the maximum value over the
// trailing Span entries with nil treated as 0. This is the final
// windowing step: it is the only place the no-data/confirmed-normal
// distinction collapses. Results are always >= 0.
func TrailingMax(values []*int) []int {
	out := make([]int, len(values))
	// Monotonic deque of indices whose values decrease front to back.
	deque := make([]int, 0, len(values))
	at := func(i int) int {
		if values[i] == nil {
			return 0
		}
		return *values[i]
	}
	for i := range values {
		for len(deque) > 0 && deque[0] <= i-Span {
			deque = deque[1:]
		}
		for len(deque) > 0 && at(deque[len(deque)-1]) <= at(i) {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)
		out[i] = at(deque[0])
	}
	return out
}

// TrailingSum returns, for each position, the sum of the non-nil values
// over the trailing Span entries, or nil when the window holds no value
// at all. Nil stays nil here: an unmeasured urine stream must not read
// as anuria.
func TrailingSum(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	var sum float64
	var count int
	for i := range values {
		if values[i] != nil {
			sum += *values[i]
			count++
		}
		if j := i - Span; j >= 0 && values[j] != nil {
			sum -= *values[j]
			count--
		}
		if count > 0 {
			s := sum
			out[i] = &s
		}
	}
	return out
}
