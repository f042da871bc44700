package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicEmitsOnlyOnTransition(t *testing.T) {
	var emitted []int
	tr := NewDeterministic(100, func(pct int) { emitted = append(emitted, pct) })

	tr.Update(10)
	tr.Update(0) // no-op
	tr.Update(10)
	tr.Update(80)

	assert.Equal(t, []int{10, 20, 100}, emitted)
}

func TestMonotonicity(t *testing.T) {
	var last = -1
	tr := NewDeterministic(1000, func(pct int) {
		assert.GreaterOrEqual(t, pct, last)
		last = pct
	})
	for i := 0; i < 1000; i += 7 {
		tr.Update(7)
	}
}

func TestIndeterminateAccumulatesOnly(t *testing.T) {
	called := false
	tr := NewIndeterminate(func(int) { called = true })
	tr.Update(500)
	assert.Equal(t, int64(500), tr.Current())
	assert.False(t, called)
}

func TestClampAtHundred(t *testing.T) {
	var last int
	tr := NewDeterministic(10, func(pct int) { last = pct })
	tr.Update(1000)
	assert.Equal(t, 100, last)
}

func TestSetTotalTransitionsIndeterminateToDeterministic(t *testing.T) {
	var emitted []int
	tr := NewIndeterminate(func(pct int) { emitted = append(emitted, pct) })

	tr.Update(50)
	assert.Empty(t, emitted)

	tr.SetTotal(100)
	assert.Equal(t, []int{50}, emitted)

	tr.Update(50)
	assert.Equal(t, []int{50, 100}, emitted)
}
