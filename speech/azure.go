package speech

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	// DefaultOutputFormat is 24kHz 16-bit mono PCM in a RIFF (WAV) container.
	DefaultOutputFormat = "riff-24khz-16bit-mono-pcm"
	defaultLang         = "en-US"
	defaultUserAgent    = "ttsserver"
	maxErrorBodyBytes   = 4096
)

type AzureOption func(*Azure)

func WithEndpoint(endpoint string) AzureOption {
	return func(a *Azure) {
		a.endpoint = endpoint
	}
}

func WithHTTPClient(client *http.Client) AzureOption {
	return func(a *Azure) {
		a.client = client
	}
}

func WithOutputFormat(format string) AzureOption {
	return func(a *Azure) {
		a.outputFormat = format
	}
}

func WithUserAgent(userAgent string) AzureOption {
	return func(a *Azure) {
		a.userAgent = userAgent
	}
}

// NewAzure creates a Synthesizer backed by the Azure Cognitive Services
// Speech REST API.
func NewAzure(subscriptionKey, region string, opts ...AzureOption) (*Azure, error) {
	if subscriptionKey == "" {
		return nil, errors.New("speech: subscription key is required")
	}
	if region == "" {
		return nil, errors.New("speech: region is required")
	}
	a := &Azure{
		subscriptionKey: subscriptionKey,
		region:          region,
		client:          &http.Client{Timeout: 60 * time.Second},
		outputFormat:    DefaultOutputFormat,
		userAgent:       defaultUserAgent,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type Azure struct {
	subscriptionKey string
	region          string
	endpoint        string
	client          *http.Client
	outputFormat    string
	userAgent       string
}

var _ Synthesizer = (*Azure)(nil)

func (a *Azure) Region() string {
	return a.region
}

func (a *Azure) Endpoint() string {
	return lo.CoalesceOrEmpty(a.endpoint, fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", a.region))
}

func (a *Azure) SynthesizeToFile(ctx context.Context, req Request, filename string) (result Result, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint(), strings.NewReader(SSML(req.Text, req.Voice)))
	if err != nil {
		return result, fmt.Errorf("speech: failed to create request: %w", err)
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", a.subscriptionKey)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", a.outputFormat)
	httpReq.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return canceled(ErrorCodeServiceTimeout, err.Error()), nil
		}
		return canceled(ErrorCodeConnectionFailure, err.Error()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		details := resp.Status
		if msg := strings.TrimSpace(string(body)); msg != "" {
			details += ": " + msg
		}
		return canceled(errorCodeForStatus(resp.StatusCode), details), nil
	}

	f, err := os.Create(filename)
	if err != nil {
		return result, fmt.Errorf("speech: failed to create output file: %w", err)
	}
	defer f.Close()
	fw := &fileWriter{w: f}
	n, err := io.Copy(fw, resp.Body)
	if fw.err != nil {
		return result, fmt.Errorf("speech: failed to write output file: %w", fw.err)
	}
	if err != nil {
		if isTimeout(ctx, err) {
			return canceled(ErrorCodeServiceTimeout, fmt.Sprintf("failed to read audio: %v", err)), nil
		}
		return canceled(ErrorCodeConnectionFailure, fmt.Sprintf("failed to read audio: %v", err)), nil
	}
	if n == 0 {
		return canceled(ErrorCodeServiceError, "no audio data received"), nil
	}
	if err = f.Sync(); err != nil {
		return result, fmt.Errorf("speech: failed to write output file: %w", err)
	}
	return Result{
		Reason:      ReasonSynthesizingAudioCompleted,
		AudioLength: n,
	}, nil
}

// fileWriter records write errors so that they can be told apart from
// errors reading the response.
type fileWriter struct {
	w   io.Writer
	err error
}

func (fw *fileWriter) Write(p []byte) (n int, err error) {
	n, err = fw.w.Write(p)
	if err != nil {
		fw.err = err
	}
	return n, err
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func errorCodeForStatus(status int) CancellationErrorCode {
	switch status {
	case http.StatusBadRequest:
		return ErrorCodeBadRequest
	case http.StatusUnauthorized:
		return ErrorCodeAuthenticationFailure
	case http.StatusForbidden:
		return ErrorCodeForbidden
	case http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrorCodeServiceTimeout
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return ErrorCodeServiceUnavailable
	}
	return ErrorCodeServiceError
}

// SSML wraps text in a speak document for the given voice. The language is
// taken from the voice name prefix, e.g. ko-KR for ko-KR-SunHiNeural.
func SSML(text, voice string) string {
	lang := VoiceLang(voice)
	return fmt.Sprintf(`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'><voice name='%s'>%s</voice></speak>`,
		escape(lang), escape(voice), escape(text))
}

func VoiceLang(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" {
		return defaultLang
	}
	return parts[0] + "-" + parts[1]
}

// escape replaces XML special characters with entities. Characters that
// are not allowed in XML, such as form feeds, become U+FFFD.
func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
