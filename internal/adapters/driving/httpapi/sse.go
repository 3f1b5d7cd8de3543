package httpapi

import (
	"fmt"
	"net/http"
	"strings"
)

// SSE payload markers.
const (
	sseDone        = "[DONE]"
	sseErrorPrefix = "[ERROR] "
	sseNewline     = "[NEWLINE]"
)

// sseStream frames payloads as server-sent events. Every unit goes out
// as "data: <payload>\n\n" with payload newlines replaced by the
// [NEWLINE] marker so one event is always one line.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEStream prepares w for event streaming. Returns an error when
// the connection cannot flush incrementally.
func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseStream{w: w, flusher: flusher}, nil
}

// Send frames one payload and flushes it to the client.
func (s *sseStream) Send(payload string) {
	escaped := strings.ReplaceAll(payload, "\n", sseNewline)
	fmt.Fprintf(s.w, "data: %s\n\n", escaped)
	s.flusher.Flush()
}

// Progress sends a pipeline progress marker.
func (s *sseStream) Progress(note string) {
	s.Send("<think>" + note + "</think>")
}

// Error sends the terminal error marker.
func (s *sseStream) Error(msg string) {
	s.Send(sseErrorPrefix + msg)
}

// Done sends the terminal success sentinel.
func (s *sseStream) Done() {
	s.Send(sseDone)
}
