package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedTuningTriples(t *testing.T) {
	cases := []struct {
		level       Level
		workers     int
		maxParts    int
		compression CompressionLevel
	}{
		{Fast, 4, 256, Best},
		{Average, 3, 170, Default},
		{Slow, 2, 128, Fastest},
	}
	for _, c := range cases {
		s := &Settings{Performance: c.level}
		assert.Equal(t, c.workers, s.WorkerThreads())
		assert.Equal(t, c.maxParts, s.MaxParts())
		assert.Equal(t, c.compression, s.CompressionLevel())
	}
}

func TestParseLevel(t *testing.T) {
	_, err := ParseLevel("bogus")
	assert.Error(t, err)

	l, err := ParseLevel("fast")
	assert.NoError(t, err)
	assert.Equal(t, Fast, l)
}
