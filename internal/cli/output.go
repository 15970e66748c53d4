package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The last observed fetch failed
	ExitCommandError = 2 // Bad flags, config or arguments
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Observation is one settled state as printed by watch.
type Observation struct {
	Seq     int           `json:"seq"`
	URL     string        `json:"url"`
	OK      bool          `json:"ok"`
	Status  int           `json:"status,omitempty"`
	Bytes   int64         `json:"bytes,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
	Retries int           `json:"retries,omitempty"`
	Error   string        `json:"error,omitempty"`
	Stale   bool          `json:"stale,omitempty"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Observe writes one observation in the configured format.
func (f *OutputFormatter) Observe(o Observation) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(o)
	}
	if !o.OK {
		stale := ""
		if o.Stale {
			stale = " (showing stale data)"
		}
		_, err := fmt.Fprintf(f.Writer, "#%d error %s retries=%d%s\n", o.Seq, o.Error, o.Retries, stale)
		return err
	}
	_, err := fmt.Fprintf(f.Writer, "#%d ok %d %dB %s\n", o.Seq, o.Status, o.Bytes, o.Elapsed.Round(time.Millisecond))
	return err
}
