// Package speechtest provides a speech.Synthesizer for tests.
package speechtest

import (
	"context"
	"os"
	"sync"

	"github.com/a-h/ttsserver/speech"
)

// WAV is a minimal RIFF header, enough to look like audio.
var WAV = []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\xc0\x5d\x00\x00\x80\xbb\x00\x00\x02\x00\x10\x00data\x00\x00\x00\x00")

// New returns a Synthesizer that writes WAV to the output file.
func New() *Synthesizer {
	return &Synthesizer{Audio: WAV}
}

// Canceled returns a Synthesizer that always reports a canceled result.
func Canceled(details string) *Synthesizer {
	return &Synthesizer{
		Result: &speech.Result{
			Reason: speech.ReasonCanceled,
			Cancellation: &speech.CancellationDetails{
				Reason:       speech.CancellationReasonError,
				ErrorCode:    speech.ErrorCodeAuthenticationFailure,
				ErrorDetails: details,
			},
		},
	}
}

type Synthesizer struct {
	Audio []byte
	// Result overrides the result of every call when set.
	Result *speech.Result
	Err    error

	m        sync.Mutex
	requests []speech.Request
	files    []string
}

var _ speech.Synthesizer = (*Synthesizer)(nil)

func (s *Synthesizer) SynthesizeToFile(ctx context.Context, req speech.Request, filename string) (speech.Result, error) {
	s.m.Lock()
	s.requests = append(s.requests, req)
	s.files = append(s.files, filename)
	s.m.Unlock()
	if s.Err != nil {
		return speech.Result{}, s.Err
	}
	if s.Result != nil {
		return *s.Result, nil
	}
	if err := os.WriteFile(filename, s.Audio, 0o600); err != nil {
		return speech.Result{}, err
	}
	return speech.Result{
		Reason:      speech.ReasonSynthesizingAudioCompleted,
		AudioLength: int64(len(s.Audio)),
	}, nil
}

func (s *Synthesizer) Requests() []speech.Request {
	s.m.Lock()
	defer s.m.Unlock()
	return append([]speech.Request(nil), s.requests...)
}

// Files returns the output file names the synthesizer was asked to write.
func (s *Synthesizer) Files() []string {
	s.m.Lock()
	defer s.m.Unlock()
	return append([]string(nil), s.files...)
}
