package ghaction

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/runoshun/cardflow/internal/domain"
)

// Ensure OutputWriter implements domain.OutputWriter.
var _ domain.OutputWriter = (*OutputWriter)(nil)

// OutputWriter appends step outputs to the file named by GITHUB_OUTPUT.
// With no file configured every call is a no-op, so local runs need no runner.
type OutputWriter struct {
	path string
	mu   sync.Mutex
}

// NewOutputWriter creates a writer appending to path.
func NewOutputWriter(path string) *OutputWriter {
	return &OutputWriter{path: path}
}

// OutputWriterFromEnv creates a writer for the GITHUB_OUTPUT file.
func OutputWriterFromEnv() *OutputWriter {
	return NewOutputWriter(os.Getenv(EnvOutput))
}

// SetOutput appends name=value. Multi-line values use a random heredoc delimiter.
func (w *OutputWriter) SetOutput(name, value string) error {
	if w.path == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(formatOutput(name, value)); err != nil {
		return fmt.Errorf("write output %s: %w", name, err)
	}
	return nil
}

func formatOutput(name, value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return name + "=" + value + "\n"
	}
	delimiter := "ghadelimiter_" + uuid.NewString()
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
}
