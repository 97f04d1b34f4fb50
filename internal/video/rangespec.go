package video

import (
	"fmt"
	"strconv"
	"strings"
)

// RangeSpec is a fully-bounded, inclusive byte window into an asset whose
// total size is known at request time. Invariant: 0 <= Start <= End < Size.
type RangeSpec struct {
	Start int64
	End   int64
	Size  int64
}

// Length returns the number of bytes the window covers.
func (r RangeSpec) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the Content-Range response header value.
func (r RangeSpec) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Size)
}

// ParseRange validates a Range header against the asset size. Only the exact
// form "bytes=<start>-<end>" with both bounds present is accepted; open-ended
// and multi-range forms get ErrRangeNotSatisfiable. An absent header gets
// ErrRangeRequired.
func ParseRange(header string, size int64) (RangeSpec, error) {
	if header == "" {
		return RangeSpec{}, ErrRangeRequired
	}

	raw, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return RangeSpec{}, fmt.Errorf("%w: %q", ErrRangeNotSatisfiable, header)
	}

	startStr, endStr, ok := strings.Cut(raw, "-")
	if !ok || !isDigits(startStr) || !isDigits(endStr) {
		return RangeSpec{}, fmt.Errorf("%w: %q", ErrRangeNotSatisfiable, header)
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("%w: %q", ErrRangeNotSatisfiable, header)
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("%w: %q", ErrRangeNotSatisfiable, header)
	}

	if start < 0 || start > end || end >= size {
		return RangeSpec{}, fmt.Errorf("%w: bytes %d-%d of %d", ErrRangeNotSatisfiable, start, end, size)
	}

	return RangeSpec{Start: start, End: end, Size: size}, nil
}

// isDigits reports whether s is one or more ASCII digits. Bounds carrying an
// explicit sign (e.g. "+5") are not part of the contract.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
