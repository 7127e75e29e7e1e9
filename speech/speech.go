package speech

import (
	"context"
	"fmt"
)

// Request to synthesize Text with the named Voice.
type Request struct {
	Text  string
	Voice string
}

// Synthesizer writes synthesized audio for a request to filename.
//
// A rejected or failed synthesis is reported as a Result with ReasonCanceled
// and a nil error. The error is reserved for local failures, such as being
// unable to write the output file.
type Synthesizer interface {
	SynthesizeToFile(ctx context.Context, req Request, filename string) (Result, error)
}

type Reason int

const (
	ReasonSynthesizingAudioCompleted Reason = iota + 1
	ReasonCanceled
)

func (r Reason) String() string {
	switch r {
	case ReasonSynthesizingAudioCompleted:
		return "SynthesizingAudioCompleted"
	case ReasonCanceled:
		return "Canceled"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

type CancellationReason string

const (
	CancellationReasonError CancellationReason = "Error"
)

type CancellationErrorCode string

const (
	ErrorCodeConnectionFailure     CancellationErrorCode = "ConnectionFailure"
	ErrorCodeAuthenticationFailure CancellationErrorCode = "AuthenticationFailure"
	ErrorCodeForbidden             CancellationErrorCode = "Forbidden"
	ErrorCodeBadRequest            CancellationErrorCode = "BadRequest"
	ErrorCodeTooManyRequests       CancellationErrorCode = "TooManyRequests"
	ErrorCodeServiceTimeout        CancellationErrorCode = "ServiceTimeout"
	ErrorCodeServiceError          CancellationErrorCode = "ServiceError"
	ErrorCodeServiceUnavailable    CancellationErrorCode = "ServiceUnavailable"
)

type CancellationDetails struct {
	Reason       CancellationReason
	ErrorCode    CancellationErrorCode
	ErrorDetails string
}

type Result struct {
	Reason Reason
	// AudioLength is the number of bytes written to the output file.
	AudioLength  int64
	Cancellation *CancellationDetails
}

func (r Result) Completed() bool {
	return r.Reason == ReasonSynthesizingAudioCompleted
}

// Message describes a result that did not complete.
func (r Result) Message() string {
	msg := fmt.Sprintf("speech synthesis failed: %s", r.Reason)
	if r.Reason == ReasonCanceled && r.Cancellation != nil {
		msg += fmt.Sprintf(" - %s: %s", r.Cancellation.Reason, r.Cancellation.ErrorDetails)
	}
	return msg
}

func canceled(code CancellationErrorCode, details string) Result {
	return Result{
		Reason: ReasonCanceled,
		Cancellation: &CancellationDetails{
			Reason:       CancellationReasonError,
			ErrorCode:    code,
			ErrorDetails: details,
		},
	}
}
