package rle

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode compresses a binary raster into alternating run lengths.
//
// The raster is flattened in row-major order and emitted as comma-separated
// run counts, starting with the background (zero) run. The first token is
// always a background count, even when it is 0, so a raster whose first
// pixel is foreground encodes unambiguously. Any nonzero byte counts as
// foreground.
func Encode(mask []byte, height, width int) (string, error) {
	if height < 0 || width < 0 {
		return "", fmt.Errorf("rle encode: negative shape %dx%d", height, width)
	}
	if len(mask) != height*width {
		return "", fmt.Errorf("rle encode: mask has %d elements, want %d", len(mask), height*width)
	}
	if len(mask) == 0 {
		return "0", nil
	}

	var b strings.Builder
	current := byte(0)
	count := 0
	for _, px := range mask {
		val := byte(0)
		if px != 0 {
			val = 1
		}
		if val == current {
			count++
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(count))
		current = val
		count = 1
	}
	if b.Len() > 0 {
		b.WriteByte(',')
	}
	b.WriteString(strconv.Itoa(count))
	return b.String(), nil
}

// Decode expands a run-length string back into a binary raster of the given
// shape. Runs alternate starting from background; output is truncated or
// zero-padded to exactly height*width elements, mirroring the tolerance of
// the encoder's callers toward slightly malformed payloads.
func Decode(rleString string, height, width int) ([]byte, error) {
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("rle decode: negative shape %dx%d", height, width)
	}
	size := height * width
	mask := make([]byte, size)
	if strings.TrimSpace(rleString) == "" {
		return mask, nil
	}

	pos := 0
	current := byte(0)
	for _, token := range strings.Split(rleString, ",") {
		count, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, fmt.Errorf("rle decode: bad run %q: %w", token, err)
		}
		if count < 0 {
			return nil, fmt.Errorf("rle decode: negative run %d", count)
		}
		for i := 0; i < count && pos < size; i++ {
			mask[pos] = current
			pos++
		}
		current = 1 - current
		if pos >= size {
			break
		}
	}
	return mask, nil
}

// Area counts foreground pixels.
func Area(mask []byte) int {
	area := 0
	for _, px := range mask {
		if px != 0 {
			area++
		}
	}
	return area
}
