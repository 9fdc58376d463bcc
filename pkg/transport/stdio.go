// Package transport contains the two front-ends that drive the shared
// JSON-RPC dispatcher: a line-delimited stdio loop and an HTTP listener.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

const maxLineSize = 1024 * 1024

// Dispatcher handles one raw JSON-RPC message; a nil return means the
// message was a notification and no response is written.
type Dispatcher interface {
	Handle(ctx context.Context, raw []byte) []byte
}

// Stdio is the line-delimited stdio transport: one request per line, one
// response per line, strictly in order.
type Stdio struct {
	dispatcher Dispatcher
}

// NewStdio creates a stdio transport over the given dispatcher.
func NewStdio(d Dispatcher) *Stdio {
	return &Stdio{dispatcher: d}
}

// Run reads requests from r until EOF or ctx cancellation, writing each
// response to w before reading the next line.
func (s *Stdio) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.dispatcher.Handle(ctx, line)
		if resp == nil {
			continue
		}
		resp = append(resp, '\n')
		if _, err := w.Write(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}
