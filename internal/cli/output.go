package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // request rejected, violations found, scenarios failed
	ExitCommandError = 2 // bad flags, unreadable config or database
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported marks errors already written to the command output, so main
	// does not print them a second time.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err; ExitFailure for plain errors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Envelope is the document every command writes with --format json.
type Envelope struct {
	Status string   `json:"status"` // "ok" or "error"
	Data   any      `json:"data,omitempty"`
	Error  *Problem `json:"error,omitempty"`
}

// Problem is the error half of an Envelope.
type Problem struct {
	Code    string `json:"code"` // booking code such as NOT_FOUND, or TEST_FAILED
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as a JSON Envelope.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// JSON reports whether results are written as Envelopes.
func (f *OutputFormatter) JSON() bool { return f.Format == "json" }

// Print writes text, or data inside an ok Envelope.
func (f *OutputFormatter) Print(text string, data any) error {
	if f.JSON() {
		return f.Encode(Envelope{Status: "ok", Data: data})
	}
	_, err := io.WriteString(f.Writer, text)
	return err
}

// Reject writes "Error [CODE]: message", or an error Envelope carrying
// details.
func (f *OutputFormatter) Reject(code, message string, details any) error {
	if f.JSON() {
		return f.Encode(Envelope{
			Status: "error",
			Error:  &Problem{Code: code, Message: message, Details: details},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

// Encode writes env as indented JSON.
func (f *OutputFormatter) Encode(env Envelope) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
