package algorithm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parcelfs/parcel/pkg/perf"
)

func TestSelect(t *testing.T) {
	cases := []struct {
		name string
		size int64
		mime string
		ext  string
		perf perf.Level
		want Algorithm
	}{
		{"S1 text file", 10_000, "text/plain", "txt", perf.Fast, Brotli},
		{"S2 small binary", 50_000_000, "application/octet-stream", "bin", perf.Average, Zstd},
		{"S3 huge binary fast", 2_000_000_000, "video/mp4", "mp4", perf.Fast, Xz},
		{"S4 huge binary slow", 2_000_000_000, "video/mp4", "mp4", perf.Slow, Bzip2},
		{"iso extension", 200_000_000, "application/octet-stream", "iso", perf.Average, Brotli},
		{"exact xz cutoff falls to bzip2", 1_500_000_000, "video/mp4", "mp4", perf.Fast, Bzip2},
		{"application/json mime", 200_000_000, "application/json", "json", perf.Average, Brotli},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Select(c.size, c.mime, c.ext, c.perf))
		})
	}
}

func TestAlgorithmExtAndPartedExt(t *testing.T) {
	assert.Equal(t, "bz", Bzip2.Ext())
	assert.Equal(t, "xz", Xz.Ext())
	assert.Equal(t, "br", Brotli.Ext())
	assert.Equal(t, "zst", Zstd.Ext())
	assert.Equal(t, "", None.Ext())

	assert.Equal(t, "zst3", Zstd.PartedExt(3))
	assert.Equal(t, "0", None.PartedExt(0))
}

func TestParseRoundTripsString(t *testing.T) {
	for _, a := range []Algorithm{None, Bzip2, Xz, Brotli, Zstd} {
		got, ok := Parse(a.String())
		assert.True(t, ok)
		assert.Equal(t, a, got)
	}
	_, ok := Parse("gzip")
	assert.False(t, ok)
}

func TestIsEnabled(t *testing.T) {
	assert.False(t, None.IsEnabled())
	for _, a := range []Algorithm{Bzip2, Xz, Brotli, Zstd} {
		assert.True(t, a.IsEnabled())
	}
}
