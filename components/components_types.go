package components

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Stage names the step of a submission in which a failure happened.
type Stage string

const (
	StageEncoding   Stage = "encoding"
	StageSubmitting Stage = "submitting"
	StageLogging    Stage = "logging"
	StageDone       Stage = "done"
)

// Receipt is the result of a submission the relay accepted.
// LogErr is set when the signature could not be written to the signature
// log; the signature is valid regardless.
type Receipt struct {
	Signature solana.Signature
	// Stage is StageDone once the submission has passed every stage.
	Stage     Stage
	LogErr    error
}

func (r Receipt) Logged() bool {
	return r.LogErr == nil
}

// SubmitError reports which stage of a submission failed and why.
type SubmitError struct {
	Stage Stage
	// Kind is one of the Err* kind sentinels of this package.
	Kind error
	Err  error
	// StatusCode and Raw describe the relay reply, when there was one.
	StatusCode int
	Raw        string
}

func NewSubmitError(stage Stage, kind error, err error) *SubmitError {
	return &SubmitError{
		Stage: stage,
		Kind:  kind,
		Err:   err,
	}
}

const maxRawInError = 256

func (e *SubmitError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Raw != "" {
		raw := e.Raw
		if len(raw) > maxRawInError {
			raw = raw[:maxRawInError] + "..."
		}
		msg += fmt.Sprintf(" response: %q", raw)
	}

	return msg
}

func (e *SubmitError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}
