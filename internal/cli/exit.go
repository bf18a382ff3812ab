package cli

import (
	"context"
	"errors"

	apperrors "github.com/matzehuels/mapwright/pkg/errors"
)

// Process exit statuses returned by ExitCode.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitBadInput    = 2
	ExitInterrupted = 130
)

// ExitCode maps a command error to a process exit status. Errors caused
// by the input (bad flags, malformed canvases, dangling references) exit
// with ExitBadInput so scripts can tell them apart from runtime failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidReference,
		apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeValidation,
		apperrors.ErrCodeNotFound, apperrors.ErrCodeUnsupported:
		return ExitBadInput
	}
	return ExitFailure
}

// ErrorMessage is the line printed to stderr for a failed command.
func ErrorMessage(err error) string {
	return "error: " + apperrors.UserMessage(err)
}
