// Package pathutil provides the leaf-level path helpers every other
// component builds on: normalization, absolutization, parent/current
// labeling for error context, and non-colliding copy-name generation.
package pathutil

import (
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Normalize cleans a path and converts it to slash-separated form,
// independent of the host path separator.
func Normalize(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// Absolutize resolves p against base (the process working directory if
// base is empty) and returns a cleaned absolute path.
func Absolutize(base, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	if base == "" {
		return filepath.Abs(p)
	}
	return filepath.Clean(filepath.Join(base, p)), nil
}

// ParentCurrent splits p into the parent/current label pair used by
// errno's with-path error variants.
func ParentCurrent(p string) (parent, current string) {
	clean := filepath.Clean(p)
	return filepath.Dir(clean), filepath.Base(clean)
}

// RelativeDepth returns the number of path components in rel, the depth a
// traversal entry sits at relative to its root.
func RelativeDepth(rel string) int {
	rel = Normalize(rel)
	if rel == "." || rel == "" {
		return 0
	}
	return len(strings.Split(rel, "/"))
}

// CopyName derives a non-colliding name for dst by inserting " (copy)"
// before the extension; while exists still reports a collision it tries
// " (copy 2)", " (copy 3)" and so on, and after " (copy 1001)" falls back
// to a short random suffix.
func CopyName(dst string, exists func(string) bool) string {
	dir, base := filepath.Split(dst)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidate := filepath.Join(dir, stem+" (copy)"+ext)
	if !exists(candidate) {
		return candidate
	}

	for i := 2; ; i++ {
		candidate = filepath.Join(dir, stem+" (copy "+itoa(i)+")"+ext)
		if !exists(candidate) {
			return candidate
		}
		if i > 1000 {
			return filepath.Join(dir, stem+"-"+randomSuffix()+ext)
		}
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func randomSuffix() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
