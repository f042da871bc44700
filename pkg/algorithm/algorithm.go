// Package algorithm implements the compression algorithm tagged union and
// the pure size/MIME/extension/performance selection policy. The streaming
// codec adapters that wrap byte sinks/sources for each algorithm live in
// pkg/codec.
package algorithm

import (
	"strconv"
	"strings"

	"github.com/parcelfs/parcel/pkg/perf"
)

// Algorithm is the compression algorithm tagged union.
type Algorithm int

const (
	None Algorithm = iota
	Bzip2
	Xz
	Brotli
	Zstd
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Bzip2:
		return "bzip2"
	case Xz:
		return "xz"
	case Brotli:
		return "brotli"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Ext is the canonical file extension for the algorithm ("" for None).
func (a Algorithm) Ext() string {
	switch a {
	case Bzip2:
		return "bz"
	case Xz:
		return "xz"
	case Brotli:
		return "br"
	case Zstd:
		return "zst"
	default:
		return ""
	}
}

// PartedExt forms the per-part extension by appending the decimal part
// index to the canonical extension; for Algorithm::None the parted
// extension is the bare index.
func (a Algorithm) PartedExt(partIndex int) string {
	idx := strconv.Itoa(partIndex)
	if a == None {
		return idx
	}
	return a.Ext() + idx
}

// IsEnabled reports whether the algorithm performs compression. Only None
// is disabled.
func (a Algorithm) IsEnabled() bool {
	return a != None
}

var brotliMimePrefixes = []string{
	"text/",
	"application/vnd.",
	"application/pdf",
	"application/x-tar",
	"application/x-iso9660-image",
	"image/svg+xml",
	"application/javascript",
	"application/json",
	"application/xml",
}

const (
	zstdSizeCeiling = 100_000_000
	xzSizeFloor     = 1_500_000_000
)

// Parse maps a canonical name (as produced by String) back to an
// Algorithm, for overriding the policy from configuration. The empty
// string and "none" both map to None.
func Parse(name string) (Algorithm, bool) {
	switch strings.ToLower(name) {
	case "", "none":
		return None, true
	case "bzip2":
		return Bzip2, true
	case "xz":
		return Xz, true
	case "brotli":
		return Brotli, true
	case "zstd":
		return Zstd, true
	default:
		return None, false
	}
}

// Select applies the pure selection policy: MIME prefix and ".iso" always
// win to Brotli; below the Zstd ceiling everything is Zstd; above the Xz
// floor with Fast performance it's Xz; otherwise Bzip2. The Xz comparison
// is strict (">" ), so a file of exactly 1.5 GB falls through to Bzip2.
func Select(size int64, mime, ext string, performance perf.Level) Algorithm {
	for _, prefix := range brotliMimePrefixes {
		if strings.HasPrefix(mime, prefix) {
			return Brotli
		}
	}
	if strings.EqualFold(ext, "iso") {
		return Brotli
	}
	if size < zstdSizeCeiling {
		return Zstd
	}
	if size > xzSizeFloor && performance == perf.Fast {
		return Xz
	}
	return Bzip2
}
