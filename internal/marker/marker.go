// Package marker finds the region between two sentinel strings in a file
// and splices replacement content into it.
package marker

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/starford/assetfill/internal/apperr"
)

// Region delimits the replaceable span of a file. Start is the offset just
// past the start sentinel, TailOffset the offset of the stop sentinel, and
// Tail every byte from TailOffset to end of file.
type Region struct {
	Start      int64
	TailOffset int64
	Tail       []byte
}

// Locate scans r byte by byte from its current position for start and then
// stop, and captures the tail. It fails with apperr.ErrMarkerNotFound when
// end of file is reached before either sentinel matches.
//
// A single progress counter tracks the match; on mismatch it falls back to
// the longest sentinel prefix that is still matched, so overlapping partial
// matches such as "/// START" are not missed and the scan stays linear.
func Locate(r io.ReadSeeker, start, stop string) (Region, error) {
	if start == "" || stop == "" {
		return Region{}, errors.New("marker: empty sentinel")
	}

	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Region{}, fmt.Errorf("marker: position: %w", err)
	}
	br := bufio.NewReader(r)

	var region Region
	target, fail := start, prefixTable(start)
	seenStart := false
	i := 0
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return Region{}, fmt.Errorf("marker: %w: %q", apperr.ErrMarkerNotFound, target)
		}
		if err != nil {
			return Region{}, fmt.Errorf("marker: scan: %w", err)
		}
		pos++

		for i > 0 && b != target[i] {
			i = fail[i-1]
		}
		if b != target[i] {
			continue
		}
		i++
		if i < len(target) {
			continue
		}

		if !seenStart {
			region.Start = pos
			seenStart = true
			target, fail = stop, prefixTable(stop)
			i = 0
			continue
		}
		region.TailOffset = pos - int64(len(stop))
		break
	}

	if _, err := r.Seek(region.TailOffset, io.SeekStart); err != nil {
		return Region{}, fmt.Errorf("marker: seek tail: %w", err)
	}
	tail, err := io.ReadAll(r)
	if err != nil {
		return Region{}, fmt.Errorf("marker: read tail: %w", err)
	}
	region.Tail = tail
	return region, nil
}

// prefixTable returns, for each prefix of s, the length of its longest
// proper prefix that is also a suffix.
func prefixTable(s string) []int {
	t := make([]int, len(s))
	k := 0
	for i := 1; i < len(s); i++ {
		for k > 0 && s[i] != s[k] {
			k = t[k-1]
		}
		if s[i] == s[k] {
			k++
		}
		t[i] = k
	}
	return t
}

// Splice returns data with the bytes between region.Start and
// region.TailOffset replaced by content. The head and tail are copied
// verbatim, so the result is correct for any content length.
func Splice(data []byte, region Region, content []byte) ([]byte, error) {
	if region.Start < 0 || region.Start > region.TailOffset || region.TailOffset > int64(len(data)) {
		return nil, fmt.Errorf("marker: region [%d, %d) out of range for %d bytes",
			region.Start, region.TailOffset, len(data))
	}
	out := make([]byte, 0, int(region.Start)+len(content)+len(region.Tail))
	out = append(out, data[:region.Start]...)
	out = append(out, content...)
	out = append(out, region.Tail...)
	return out, nil
}
