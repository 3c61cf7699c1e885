package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
)

// CompleteJSON turns a prefix of a JSON document, as accumulated from a model
// token stream, into a complete self-contained JSON value. Partial string
// values are closed so streaming prose surfaces incrementally; truncated keys,
// dangling colons/commas and unfinished escapes are trimmed back to the last
// complete member; open containers are closed. Returns false when the prefix
// cannot be repaired into valid JSON yet.
func CompleteJSON(partial []byte) ([]byte, bool) {
	s := bytes.TrimSpace(partial)
	if len(s) == 0 {
		return nil, false
	}

	const (
		stWantKey = iota
		stWantColon
		stWantValue
		stAfterValue
	)

	type frame struct {
		container byte // '{' or '['
		state     int
		lastGood  int // index just past the last complete member/element
	}

	var stack []frame
	top := func() *frame {
		if len(stack) == 0 {
			return nil
		}
		return &stack[len(stack)-1]
	}

	inString := false
	isKey := false
	escapeStart := -1 // start of an in-progress escape sequence
	unicodeLeft := 0
	literalStart := -1

	// endLiteral marks a scalar literal complete at index i (exclusive).
	endLiteral := func(i int) {
		literalStart = -1
		if f := top(); f != nil {
			f.state = stAfterValue
			f.lastGood = i
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			if escapeStart >= 0 {
				if unicodeLeft > 0 {
					unicodeLeft--
					if unicodeLeft == 0 {
						escapeStart = -1
					}
					continue
				}
				if c == 'u' {
					unicodeLeft = 4
					continue
				}
				escapeStart = -1
				continue
			}
			switch c {
			case '\\':
				escapeStart = i
			case '"':
				inString = false
				if f := top(); f != nil {
					if isKey {
						f.state = stWantColon
					} else {
						f.state = stAfterValue
						f.lastGood = i + 1
					}
				}
			}
			continue
		}

		if literalStart >= 0 {
			switch c {
			case ',', '}', ']', ' ', '\t', '\n', '\r':
				endLiteral(i)
			default:
				continue
			}
		}

		switch c {
		case ' ', '\t', '\n', '\r':
		case '"':
			inString = true
			f := top()
			isKey = f != nil && f.container == '{' && f.state == stWantKey
		case '{':
			stack = append(stack, frame{container: '{', state: stWantKey, lastGood: i + 1})
		case '[':
			stack = append(stack, frame{container: '[', state: stWantValue, lastGood: i + 1})
		case '}', ']':
			if len(stack) == 0 {
				return nil, false
			}
			stack = stack[:len(stack)-1]
			if f := top(); f != nil {
				f.state = stAfterValue
				f.lastGood = i + 1
			}
		case ':':
			if f := top(); f != nil {
				f.state = stWantValue
			}
		case ',':
			if f := top(); f != nil {
				if f.container == '{' {
					f.state = stWantKey
				} else {
					f.state = stWantValue
				}
			}
		default:
			literalStart = i
		}
	}

	out := make([]byte, len(s))
	copy(out, s)

	switch {
	case inString && isKey:
		// A truncated key is useless; drop it and any preceding comma.
		if f := top(); f != nil {
			out = out[:f.lastGood]
			f.state = stAfterValue
		}
	case inString:
		if escapeStart >= 0 {
			out = out[:escapeStart]
		}
		out = append(out, '"')
		if f := top(); f != nil {
			f.state = stAfterValue
		}
	case literalStart >= 0:
		tok := string(out[literalStart:])
		if completed, ok := completeLiteral(tok); ok {
			out = append(out[:literalStart], completed...)
			if f := top(); f != nil {
				f.state = stAfterValue
			}
		} else if f := top(); f != nil {
			out = out[:f.lastGood]
			f.state = stAfterValue
		} else {
			return nil, false
		}
	}

	// A frame left mid-member (key without value, trailing comma) rolls back
	// to its last complete member before closing.
	if f := top(); f != nil && f.state != stAfterValue {
		if f.lastGood <= len(out) {
			out = out[:f.lastGood]
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].container == '{' {
			out = append(out, '}')
		} else {
			out = append(out, ']')
		}
	}

	if !json.Valid(out) {
		return nil, false
	}
	return out, true
}

// completeLiteral finishes a bare scalar token: prefixes of true/false/null
// are completed, numbers are trimmed of trailing partial syntax.
func completeLiteral(tok string) (string, bool) {
	for _, kw := range []string{"true", "false", "null"} {
		if strings.HasPrefix(kw, tok) {
			return kw, true
		}
	}
	trimmed := strings.TrimRight(tok, "+-.eE")
	if trimmed == "" || trimmed == "-" {
		return "", false
	}
	return trimmed, true
}

// snapshotStream adapts a push-based token stream into a pull-based chunk
// reader whose chunks are complete JSON snapshot documents. It implements
// stream.ChunkReader.
type snapshotStream struct {
	ch     chan []byte
	errCh  chan error
	cancel context.CancelFunc

	closeOnce sync.Once
	done      chan struct{}

	buf      strings.Builder
	lastEmit string
}

func newSnapshotStream(cancel context.CancelFunc) *snapshotStream {
	return &snapshotStream{
		ch:     make(chan []byte, 16),
		errCh:  make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// write accumulates a token delta and emits a new snapshot when the repaired
// prefix decodes and differs from the last emitted document. Called from the
// provider goroutine.
func (s *snapshotStream) write(token string) error {
	s.buf.WriteString(token)

	raw := stripFences(s.buf.String())
	completed, ok := CompleteJSON([]byte(raw))
	if !ok || string(completed) == s.lastEmit {
		return nil
	}
	s.lastEmit = string(completed)

	select {
	case s.ch <- completed:
		return nil
	case <-s.done:
		return context.Canceled
	}
}

// finish terminates the stream, recording err when non-nil.
func (s *snapshotStream) finish(err error) {
	if err != nil {
		select {
		case s.errCh <- err:
		default:
		}
	}
	close(s.ch)
}

func (s *snapshotStream) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case chunk, ok := <-s.ch:
		if !ok {
			select {
			case err := <-s.errCh:
				return nil, err
			default:
				return nil, io.EOF
			}
		}
		return chunk, nil
	}
}

func (s *snapshotStream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
	})
}

// stripFences removes a markdown code fence some models wrap JSON output in.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
