package stream

import (
	"bufio"
	"bytes"
	"context"
	"io"
)

// lineChunks frames newline-delimited JSON from a byte stream, the wire
// format the generate endpoint produces.
type lineChunks struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
}

// NewLineChunks wraps an NDJSON byte stream as a ChunkReader. Blank lines are
// skipped; everything else is delivered verbatim as one chunk per line.
func NewLineChunks(rc io.ReadCloser) ChunkReader {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &lineChunks{rc: rc, scanner: scanner}
}

func (l *lineChunks) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !l.scanner.Scan() {
			if err := l.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		line := bytes.TrimSpace(l.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		chunk := make([]byte, len(line))
		copy(chunk, line)
		return chunk, nil
	}
}

func (l *lineChunks) Close() {
	_ = l.rc.Close()
}
