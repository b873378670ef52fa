package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int       { return &v }
func fp(v float64) *float64 { return &v }

func TestTrailingMax_NullCollapsesToZero(t *testing.T) {
	// Neurological scenario: GCS scored 0, 3, then missing.
	got := TrailingMax([]*int{ip(0), ip(3), nil})
	assert.Equal(t, []int{0, 3, 3}, got)
}

func TestTrailingMax_AllNull(t *testing.T) {
	got := TrailingMax([]*int{nil, nil, nil})
	assert.Equal(t, []int{0, 0, 0}, got)
}

func TestTrailingMax_ValueExpiresAfterWindow(t *testing.T) {
	values := make([]*int, Span+1)
	values[0] = ip(4)

	got := TrailingMax(values)
	// Index Span-1 is the 25th hour, still inside the window.
	assert.Equal(t, 4, got[Span-1])
	assert.Equal(t, 0, got[Span])
}

func TestTrailingMax_MatchesNaiveWindow(t *testing.T) {
	values := []*int{ip(1), nil, ip(4), ip(2), nil, ip(0), ip(3)}

	naive := func(span int) []int {
		out := make([]int, len(values))
		for i := range values {
			lo := i - span + 1
			if lo < 0 {
				lo = 0
			}
			max := 0
			for j := lo; j <= i; j++ {
				if values[j] != nil && *values[j] > max {
					max = *values[j]
				}
			}
			out[i] = max
		}
		return out
	}

	got := TrailingMax(values)
	require.Equal(t, naive(Span), got)

	// Widening the window never decreases a windowed value.
	narrow := naive(2)
	for i := range got {
		assert.GreaterOrEqual(t, got[i], narrow[i])
	}
}

func TestTrailingSum_NilUntilFirstValue(t *testing.T) {
	got := TrailingSum([]*float64{nil, nil, fp(50), fp(30)})

	assert.Nil(t, got[0])
	assert.Nil(t, got[1])
	require.NotNil(t, got[2])
	assert.Equal(t, 50.0, *got[2])
	require.NotNil(t, got[3])
	assert.Equal(t, 80.0, *got[3])
}

func TestTrailingSum_Accumulates(t *testing.T) {
	values := []*float64{fp(50), fp(50), fp(50), fp(50), fp(50)}
	got := TrailingSum(values)

	for i, want := range []float64{50, 100, 150, 200, 250} {
		require.NotNil(t, got[i])
		assert.Equal(t, want, *got[i])
	}
}

func TestTrailingSum_ValueLeavesWindow(t *testing.T) {
	values := make([]*float64, Span+1)
	values[0] = fp(100)
	values[Span] = fp(40)

	got := TrailingSum(values)
	require.NotNil(t, got[Span-1])
	assert.Equal(t, 100.0, *got[Span-1])
	// At index Span the first value has aged out; only the new one counts.
	require.NotNil(t, got[Span])
	assert.Equal(t, 40.0, *got[Span])
}
