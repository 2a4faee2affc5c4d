// internal/harp/scan.go
package harp

import (
	"bufio"
	"io"
)

// ScanFrames is a bufio.SplitFunc yielding one complete, checksum-valid frame
// per token. Bytes that cannot start a valid frame are skipped one at a time,
// so the scanner resynchronises after line noise or a truncated frame.
//
// A header whose declared length runs past the buffered data does not stall
// the scan: if a complete valid frame is already buffered behind it, the
// header is treated as noise and that frame is returned.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	pending := -1
	for start := 0; start < len(data); start++ {
		n, ok := frameAt(data[start:])
		switch {
		case n == 0:
			if pending < 0 {
				pending = start
			}
		case ok:
			return start + n, data[start : start+n], nil
		}
	}
	if pending >= 0 && !atEOF {
		// need more bytes to decide
		return pending, nil, nil
	}
	return len(data), nil, nil
}

// frameAt inspects data[0:] as a frame candidate.
// Returns (0, false) when more data is required, (size, true) for a valid
// frame and (1, false) when data[0] cannot start a frame.
func frameAt(data []byte) (int, bool) {
	if len(data) < 2 {
		return 0, false
	}
	if !MessageType(data[0] &^ errorFlag).valid() {
		return 1, false
	}
	if int(data[1]) < MinFrameSize-2 {
		return 1, false
	}
	size := int(data[1]) + 2
	if len(data) < size {
		return 0, false
	}
	if Checksum(data[:size-1]) != data[size-1] {
		return 1, false
	}
	return size, true
}

// NewScanner wraps r in a frame scanner.
func NewScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, MaxFrameSize*4), MaxFrameSize*16)
	s.Split(ScanFrames)
	return s
}

// ReadMessage reads exactly one frame from r without resynchronising.
// Suitable for request/response exchanges on a clean stream.
func ReadMessage(r io.Reader) (Message, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Message{}, err
	}
	frame := make([]byte, int(head[1])+2)
	copy(frame, head[:])
	if _, err := io.ReadFull(r, frame[2:]); err != nil {
		return Message{}, err
	}
	return Parse(frame)
}
