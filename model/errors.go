package model

import "errors"

// FailureKind classifies terminal pipeline failures
type FailureKind string

// The pipeline failure taxonomy. Everything below the stage boundary is
// caught, logged, and retried through fallbacks; these are the outcomes
// that abort the pipeline itself.
const (
	LocationUnresolved      FailureKind = "LocationUnresolved"
	NoCandidateAcquisitions FailureKind = "NoCandidateAcquisitions"
	UnauthorizedAsset       FailureKind = "UnauthorizedAsset"
	IncompleteBandStack     FailureKind = "IncompleteBandStack"
	WriteFailure            FailureKind = "WriteFailure"
)

// PipelineFailure is a terminal failure of one pipeline stage. Status is the
// short human-readable string shown to the caller; Err carries the underlying
// cause for logs only, never for display.
type PipelineFailure struct {
	Kind   FailureKind
	Status string
	Err    error
}

func (f *PipelineFailure) Error() string {
	return f.Status
}

func (f *PipelineFailure) Unwrap() error {
	return f.Err
}

// NewPipelineFailure builds a terminal failure with its user-facing status
func NewPipelineFailure(kind FailureKind, status string, err error) *PipelineFailure {
	return &PipelineFailure{Kind: kind, Status: status, Err: err}
}

// FailureKindOf extracts the failure kind from an error chain
func FailureKindOf(err error) (FailureKind, bool) {
	var failure *PipelineFailure
	if errors.As(err, &failure) {
		return failure.Kind, true
	}
	return "", false
}

// IsFailureKind reports whether the error chain contains a pipeline failure
// of the given kind
func IsFailureKind(err error, kind FailureKind) bool {
	found, ok := FailureKindOf(err)
	return ok && found == kind
}
