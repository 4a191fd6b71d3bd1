package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Classification outcomes that stop processing before extraction.
var (
	// ErrClassificationPending means the spreadsheet engine is still warming
	// up. It is a retry signal, not a failure.
	ErrClassificationPending = errors.New("layout detection pending: spreadsheet engine still initializing")

	// ErrUnknownLayout means the content matched no known carrier layout.
	ErrUnknownLayout = errors.New("unknown layout: content matched no known carrier")

	// ErrUnreadableContent means no content could be obtained for detection.
	ErrUnreadableContent = errors.New("unreadable content: file could not be scanned")

	// ErrNoExtractor means a layout has no registered extraction strategy.
	ErrNoExtractor = errors.New("no extractor registered for layout")

	// ErrEngineNotReady means a spreadsheet layout was processed before the
	// readiness latch was set.
	ErrEngineNotReady = errors.New("spreadsheet engine not ready")
)

// ReadError is returned when every loading strategy failed.
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: no loading strategy succeeded: %v", e.Path, e.Cause)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}

// ExtractionError is returned when a required header row or column is
// missing. Columns lists the column names that were actually present.
type ExtractionError struct {
	Layout  LayoutKind
	Reason  string
	Columns []string
}

func (e *ExtractionError) Error() string {
	if len(e.Columns) == 0 {
		return fmt.Sprintf("extract %s: %s", e.Layout, e.Reason)
	}
	return fmt.Sprintf("extract %s: %s (columns in file: [%s])", e.Layout, e.Reason, strings.Join(e.Columns, ", "))
}

// ProcessingError wraps any failure surfaced by Pipeline.Process.
type ProcessingError struct {
	Path   string
	Layout LayoutKind
	Err    error
}

func (e *ProcessingError) Error() string {
	if e.Layout == "" {
		return fmt.Sprintf("process %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("process %s as %s: %v", e.Path, e.Layout, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// kindError maps a non-extractable classification outcome to its error.
func kindError(k LayoutKind) error {
	switch k {
	case LayoutPendingInit:
		return ErrClassificationPending
	case LayoutError:
		return ErrUnreadableContent
	case LayoutUnknown:
		return ErrUnknownLayout
	}
	return fmt.Errorf("%w: %s", ErrNoExtractor, k)
}
