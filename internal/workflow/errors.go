package workflow

import (
	"errors"
	"fmt"
)

// Kind tags the stage a failure came from
type Kind string

const (
	DetectionError Kind = "DetectionError"
	AuthError      Kind = "AuthError"
	UploadError    Kind = "UploadError"
	AppendError    Kind = "AppendError"
)

// Error is a failure of one workflow stage
type Error struct {
	Kind Kind
	Op   string
	// FileID is set when the photo was uploaded before the failure
	FileID string
	Err    error
}

func (e *Error) Error() string {
	if e.FileID != "" {
		return fmt.Sprintf("%s: %s (uploaded file %s): %v", e.Kind, e.Op, e.FileID, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the stage tag of err, or "" when err is not a workflow error
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// IsKind reports whether err is a workflow error of the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage is the generic text shown to the user for a failure kind
func UserMessage(kind Kind) string {
	switch kind {
	case DetectionError:
		return "Error during inference. Enter the pallet count manually."
	case AuthError:
		return "Failed to save data: could not authorize with the storage service."
	case UploadError:
		return "Failed to save data: the photo could not be uploaded."
	case AppendError:
		return "Failed to save data: the log row could not be written."
	default:
		return "Failed to save data."
	}
}

func stageError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
