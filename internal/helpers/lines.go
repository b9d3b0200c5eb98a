package helpers

import (
	"strings"
	"sync"
)

// LineWriter is an io.Writer that splits a byte stream into lines and hands
// each complete line to a callback. The unterminated tail is buffered until
// the next Write or Flush.
type LineWriter struct {
	mu      sync.Mutex
	pending strings.Builder
	onLine  func(line string)
}

// NewLineWriter creates a LineWriter calling onLine for every line.
func NewLineWriter(onLine func(line string)) *LineWriter {
	return &LineWriter{onLine: onLine}
}

// Write implements io.Writer
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending.Write(p)
	buf := w.pending.String()

	idx := strings.LastIndexByte(buf, '\n')
	if idx < 0 {
		return len(p), nil
	}

	complete, tail := buf[:idx], buf[idx+1:]
	w.pending.Reset()
	w.pending.WriteString(tail)

	for _, line := range strings.Split(complete, "\n") {
		w.onLine(strings.TrimSuffix(line, "\r"))
	}

	return len(p), nil
}

// Flush emits the buffered tail, if any.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending.Len() == 0 {
		return
	}
	tail := strings.TrimSuffix(w.pending.String(), "\r")
	w.pending.Reset()
	w.onLine(tail)
}
