package auditor

import (
	"errors"
	"fmt"
)

var (
	// ErrInferenceTransport indicates the model could not be reached or
	// failed to answer in time.
	ErrInferenceTransport = errors.New("inference transport failure")

	// ErrInferenceContract indicates the model answered with something that
	// is not a valid grading result.
	ErrInferenceContract = errors.New("inference contract violation")
)

// ValidationError reports an essay that fails the minimum-length rules.
type ValidationError struct {
	Message    string
	Lines      int
	Characters int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ContractError wraps a rejected model reply together with the raw payload,
// which is meant for internal logs only.
type ContractError struct {
	Raw    string
	Reason error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInferenceContract, e.Reason)
}

func (e *ContractError) Unwrap() []error {
	return []error{ErrInferenceContract, e.Reason}
}
