package arkclient

import (
	"bufio"
	"io"
	"strings"
)

const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"
)

// sseStream frames a server-sent-event response body into raw data
// payloads. Lines without the data prefix (keep-alives, comments, blank
// lines) are skipped; the [DONE] marker ends the stream. Decoding the
// payloads is the caller's concern.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
	closed  bool
}

func newSSEStream(body io.ReadCloser) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{body: body, scanner: scanner}
}

// Read returns the next data payload. It reports io.EOF at the end
// marker or transport close, and the transport error when the body
// fails mid stream.
func (s *sseStream) Read() ([]byte, error) {
	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimPrefix(line, dataPrefix)
		if data == doneMarker {
			s.done = true
			return nil, io.EOF
		}
		return []byte(data), nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close releases the underlying response body.
func (s *sseStream) Close() error {
	s.closed = true
	return s.body.Close()
}
