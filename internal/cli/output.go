package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/roach88/blabel/internal/canonjson"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Processing failure (collision, failed scenarios, failed documents)
	ExitCommandError = 2 // Command error (bad flags, unreadable input, invalid config)
)

// Error codes reported in CLI output.
const (
	ErrCodeConfig    = "E001" // invalid configuration or flags
	ErrCodeInput     = "E002" // unreadable or malformed input
	ErrCodeCollision = "E003" // hash collision while labelling
	ErrCodeProcess   = "E004" // labelling or leaning failed
	ErrCodeStore     = "E005" // run store unavailable
	ErrCodeOutput    = "E006" // output could not be written
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set once the error has been written to the output, so
	// the caller does not print it again.
	Reported bool
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
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported reports whether err has already been written to the output.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// OutputFormatter handles JSON vs text output for CLI commands.
//
// JSON responses are RFC 8785 canonical JSON, so identical results produce
// identical bytes.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostics (defaults to Writer)
	Verbose   bool
}

// Success outputs a successful result in the configured format.
//
// In JSON mode data must be canonical-JSON compatible: strings, ints,
// bools, and slices or maps of those.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.writeJSON(map[string]any{"status": "ok", "data": data})
	}

	switch d := data.(type) {
	case string:
		if d == "" {
			return nil
		}
		_, err := fmt.Fprintln(f.Writer, d)
		return err
	case map[string]any:
		for _, k := range sortedKeys(d) {
			if _, err := fmt.Fprintf(f.Writer, "%s: %v\n", k, d[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details map[string]any) error {
	if f.Format == "json" {
		e := map[string]any{"code": code, "message": message}
		if len(details) > 0 {
			e["details"] = details
		}
		return f.writeJSON(map[string]any{"status": "error", "error": e})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && len(details) > 0 {
		for _, k := range sortedKeys(details) {
			fmt.Fprintf(w, "  %s: %v\n", k, details[k])
		}
	}
	return nil
}

// Fail reports an error and returns it as a reported ExitError.
func (f *OutputFormatter) Fail(exit int, code, message string, err error) error {
	var details map[string]any
	if err != nil {
		details = map[string]any{"cause": err.Error()}
	}
	if werr := f.Error(code, message, details); werr != nil {
		return WrapExitError(exit, message, err)
	}
	e := WrapExitError(exit, message, err)
	e.Reported = true
	return e
}

// VerboseLog outputs a message only if verbose mode is enabled.
// It always writes to the diagnostic writer so JSON output stays intact.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) writeJSON(v map[string]any) error {
	data, err := canonjson.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintf(f.Writer, "%s\n", data)
	return err
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
