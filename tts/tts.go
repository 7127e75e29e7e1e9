package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/a-h/ttsserver/models"
	"github.com/a-h/ttsserver/speech"
	"github.com/samber/lo"
)

const DefaultMaxTextLength = 1000

var (
	ErrEmptyText   = errors.New("text to convert is empty")
	ErrTextTooLong = errors.New("text is too long")
	ErrNoAIMessage = errors.New("no AI message in chat answer")
	ErrInvalidBody = errors.New("failed to decode body")
)

// MaxBodyBytes limits the size of request bodies.
const MaxBodyBytes = 1 << 20

// SynthesisError is returned when the speech service did not produce audio.
type SynthesisError struct {
	Message string
}

func (e *SynthesisError) Error() string {
	return e.Message
}

func New(log *slog.Logger, synthesizer speech.Synthesizer, defaultVoice string, maxTextLength int, tempDir string) Converter {
	return Converter{
		log:           log,
		synthesizer:   synthesizer,
		defaultVoice:  defaultVoice,
		maxTextLength: lo.Ternary(maxTextLength > 0, maxTextLength, DefaultMaxTextLength),
		tempDir:       tempDir,
	}
}

type Converter struct {
	log           *slog.Logger
	synthesizer   speech.Synthesizer
	defaultVoice  string
	maxTextLength int
	tempDir       string
}

func (c Converter) DefaultVoice() string {
	return c.defaultVoice
}

func (c Converter) MaxTextLength() int {
	return c.maxTextLength
}

func (c Converter) Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > c.maxTextLength {
		return fmt.Errorf("%w (max %d characters)", ErrTextTooLong, c.maxTextLength)
	}
	return nil
}

// Audio is a synthesized WAV file on disk. Callers must call Remove once the
// file is no longer needed.
type Audio struct {
	Path       string
	VoiceName  string
	TextLength int
	Size       int64
}

func (a Audio) Remove() error {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Convert synthesizes text into a new temporary WAV file. The voice falls
// back to the default voice when empty.
func (c Converter) Convert(ctx context.Context, text, voice string) (audio Audio, err error) {
	if strings.TrimSpace(text) == "" {
		return audio, ErrEmptyText
	}
	voice = lo.CoalesceOrEmpty(voice, c.defaultVoice)

	f, err := os.CreateTemp(c.tempDir, "tts-*.wav")
	if err != nil {
		return audio, fmt.Errorf("failed to create temporary file: %w", err)
	}
	audio = Audio{
		Path:       f.Name(),
		VoiceName:  voice,
		TextLength: utf8.RuneCountInString(text),
	}
	if err = f.Close(); err != nil {
		c.Remove(audio)
		return Audio{}, fmt.Errorf("failed to close temporary file: %w", err)
	}

	c.log.Info("synthesizing speech", slog.String("voice", voice), slog.Int("length", audio.TextLength), slog.String("text", Preview(text, 50)))
	result, err := c.synthesizer.SynthesizeToFile(ctx, speech.Request{Text: text, Voice: voice}, audio.Path)
	if err != nil {
		c.Remove(audio)
		return Audio{}, &SynthesisError{Message: fmt.Sprintf("speech synthesis error: %v", err)}
	}
	if !result.Completed() {
		c.Remove(audio)
		c.log.Error("speech synthesis canceled", slog.String("reason", result.Reason.String()), slog.String("message", result.Message()))
		return Audio{}, &SynthesisError{Message: result.Message()}
	}
	audio.Size = result.AudioLength
	c.log.Info("speech synthesized", slog.String("voice", voice), slog.Int64("bytes", audio.Size))
	return audio, nil
}

// Remove deletes the audio file, logging any failure.
func (c Converter) Remove(audio Audio) {
	if err := audio.Remove(); err != nil {
		c.log.Warn("failed to remove temporary file", slog.String("path", audio.Path), slog.Any("error", err))
	}
}

// AIMessage returns the first assistant turn of the answer.
func AIMessage(answer models.ChatAnswer) (string, error) {
	turn, ok := lo.Find(answer.Messages, func(m models.ChatTurn) bool {
		return m.AIMessage != ""
	})
	if !ok || strings.TrimSpace(turn.AIMessage) == "" {
		return "", ErrNoAIMessage
	}
	return turn.AIMessage, nil
}

// ReadChatAnswer reads the request body, returning the raw bytes alongside
// the decoded answer.
func ReadChatAnswer(w http.ResponseWriter, r *http.Request) (body []byte, answer models.ChatAnswer, err error) {
	body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, answer, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err = json.Unmarshal(body, &answer); err != nil {
		return nil, answer, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return body, answer, nil
}

// StatusCode maps conversion errors to HTTP status codes.
func StatusCode(err error) int {
	if errors.Is(err, ErrEmptyText) || errors.Is(err, ErrTextTooLong) || errors.Is(err, ErrNoAIMessage) || errors.Is(err, ErrInvalidBody) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Preview returns the first n characters of s, followed by "..." if s was
// truncated.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// HeaderValue encodes s as an RFC 2047 word if it is not plain ASCII.
func HeaderValue(s string) string {
	return mime.QEncoding.Encode("utf-8", strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, s))
}
