package output

import "io"

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// flushIfPossible pushes streamed lines out immediately so NDJSON consumers
// and the console see each repository as soon as it completes.
func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
