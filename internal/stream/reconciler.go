// Package stream decodes a sequence of byte chunks, each a complete JSON
// encoding of the entire response object as known so far, into a sequence of
// partial structured responses.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
	"github.com/capitalize-ai/extension-chat/pkg/metrics"
)

// ErrNoContent is returned when the underlying stream ends without ever
// producing a successfully parsed chunk.
var ErrNoContent = errors.New("no content received")

// ProtocolError marks a chunk that violated the wire protocol: either invalid
// JSON or an explicit {"error": ...} signal from the transport.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// ChunkReader yields transport chunks in receipt order. Next blocks until the
// next chunk arrives, returns io.EOF at normal stream end, and honors context
// cancellation. A ChunkReader is finite and not restartable.
type ChunkReader interface {
	Next(ctx context.Context) ([]byte, error)
	Close()
}

// SnapshotFunc receives each decoded partial response, strictly in chunk
// receipt order.
type SnapshotFunc func(model.StructuredResponse)

// Reconciler consumes chunk streams into snapshot sequences.
type Reconciler struct {
	log *logger.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(log *logger.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Consume drains the chunk stream, publishing one snapshot per chunk and
// returning the final value. Each chunk fully supersedes the previous decoded
// value; there is no diffing, reordering or batching.
//
// Termination:
//   - stream end after at least one parsed chunk: final value, nil error
//   - stream end with zero parsed chunks: ErrNoContent
//   - chunk that is not valid JSON, or an {"error": ...} chunk: ProtocolError
//   - context cancellation: ctx.Err(), no further snapshots published
func (r *Reconciler) Consume(ctx context.Context, chunks ChunkReader, publish SnapshotFunc) (*model.StructuredResponse, error) {
	defer chunks.Close()

	var latest *model.StructuredResponse

	for {
		data, err := chunks.Next(ctx)
		if errors.Is(err, io.EOF) {
			if latest == nil {
				return nil, ErrNoContent
			}
			return latest, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read chunk: %w", err)
		}

		// An explicit error signal terminates the sequence with a failure
		// rather than being treated as response content.
		if reason, isErr := errorChunk(data); isErr {
			return nil, &ProtocolError{Reason: reason}
		}

		var snapshot model.StructuredResponse
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, &ProtocolError{Reason: fmt.Sprintf("chunk is not a valid response document: %v", err)}
		}

		// Never publish after abandonment.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		value := snapshot.Clone()
		latest = &value
		metrics.SnapshotsApplied.Inc()
		if publish != nil {
			publish(value)
		}
	}
}

// errorChunk reports whether the chunk is an explicit error signal. Only
// objects carrying an error message and no response content qualify.
func errorChunk(data []byte) (string, bool) {
	var probe struct {
		Error    string          `json:"error"`
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", false
	}
	if probe.Error != "" && probe.Response == nil {
		return probe.Error, true
	}
	return "", false
}
