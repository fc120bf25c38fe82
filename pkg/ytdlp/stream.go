package ytdlp

import (
	"bytes"
	"strings"
	"sync"
)

// LineFunc receives one output line. It is called from the reader loop of a
// single stream, so calls for one stream never overlap.
type LineFunc func(line string)

// streamWriter splits written bytes into lines and hands each non-empty line
// to a callback. The raw bytes are also kept for error reporting.
type streamWriter struct {
	callback LineFunc
	buffer   *bytes.Buffer
	pending  []byte

	mu    sync.Mutex
	lines []string
}

func (w *streamWriter) Write(p []byte) (n int, err error) {
	if w.buffer != nil {
		w.buffer.Write(p)
	}

	w.pending = append(w.pending, p...)

	// yt-dlp progress output often uses carriage returns (\r) to update the same
	// console line. Treat both \n and \r as line boundaries.
	for {
		idx := bytes.IndexAny(w.pending, "\r\n")
		if idx < 0 {
			break
		}

		line := string(w.pending[:idx])

		// Consume delimiter(s). If this is a CRLF sequence, consume both.
		consume := 1
		if w.pending[idx] == '\r' && idx+1 < len(w.pending) && w.pending[idx+1] == '\n' {
			consume = 2
		}
		w.pending = w.pending[idx+consume:]

		w.emit(line)
	}

	return len(p), nil
}

// Flush emits a trailing line that was not terminated by a delimiter.
func (w *streamWriter) Flush() {
	if len(w.pending) == 0 {
		return
	}
	line := string(w.pending)
	w.pending = nil
	w.emit(line)
}

func (w *streamWriter) emit(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	w.mu.Lock()
	w.lines = append(w.lines, trimmed)
	w.mu.Unlock()
	if w.callback != nil {
		w.callback(trimmed)
	}
}

// Lines returns a copy of the captured lines.
func (w *streamWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}
