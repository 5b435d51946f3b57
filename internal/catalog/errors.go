package catalog

import (
	"github.com/pkg/errors"

	"tacore/pkg/indicator"
)

// Process exit codes for the CLI.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitBadParameter = 2
	ExitBadData      = 3
	ExitShortData    = 4
	ExitNaN          = 5
)

var kinds = []struct {
	err  error
	name string
	code int
	hint string
}{
	{ErrUnknownIndicator, "unknown_indicator", ExitBadParameter, "no indicator by that name; run `tacli catalog` for the list"},
	{indicator.ErrInvalidParameter, "invalid_parameter", ExitBadParameter, "a parameter is out of range"},
	{indicator.ErrConversion, "conversion", ExitBadParameter, "a parameter could not be represented"},
	{indicator.ErrInvalidData, "invalid_data", ExitBadData, "the input series is empty or malformed"},
	{indicator.ErrLengthMismatch, "length_mismatch", ExitBadData, "input or output columns differ in length"},
	{indicator.ErrInsufficientData, "insufficient_data", ExitShortData, "the series is not longer than the lookback"},
	{indicator.ErrNaNDetected, "nan_detected", ExitNaN, "the input holds NaN or Inf; clean it or lower the check level"},
}

// ExitCode maps an error to the CLI's exit status by its core kind.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return ExitFailure
}

// Describe renders err with a hint for its kind.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.hint + ": " + err.Error()
		}
	}
	return err.Error()
}

// Kind names the error's core kind for metric labels. Unclassified errors
// are "other"; nil is "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}
