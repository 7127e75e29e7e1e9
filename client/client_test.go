package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/jsonapi"
	"github.com/a-h/ttsserver/auth"
	convertpost "github.com/a-h/ttsserver/handlers/convert/post"
	convertjsonpost "github.com/a-h/ttsserver/handlers/convertjson/post"
	healthget "github.com/a-h/ttsserver/handlers/health/get"
	ragresponsepost "github.com/a-h/ttsserver/handlers/ragresponse/post"
	ragresponsefilepost "github.com/a-h/ttsserver/handlers/ragresponsefile/post"
	ragresponsejsonpost "github.com/a-h/ttsserver/handlers/ragresponsejson/post"
	"github.com/a-h/ttsserver/models"
	"github.com/a-h/ttsserver/speech/speechtest"
	"github.com/a-h/ttsserver/tts"
)

func newServer(t *testing.T) *httptest.Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	converter := tts.New(log, speechtest.New(), "ko-KR-SunHiNeural", 1000, t.TempDir())
	mux := http.NewServeMux()
	mux.Handle("GET /health", healthget.New("koreacentral", converter.DefaultVoice()))
	mux.Handle("POST /tts/convert", convertpost.New(log, converter))
	mux.Handle("POST /tts/convert-json", convertjsonpost.New(log, converter))
	mux.Handle("POST /tts/convert-rag-response", ragresponsepost.New(log, converter))
	mux.Handle("POST /tts/convert-rag-response-file", ragresponsefilepost.New(log, converter))
	mux.Handle("POST /tts/convert-rag-response-json", ragresponsejsonpost.New(log, converter))
	srv := httptest.NewServer(auth.New(map[string]string{"test-api-key": "test-user"}, mux))
	t.Cleanup(srv.Close)
	return srv
}

const chatAnswer = `{"success": true, "messages": [{"HumanMessage": "q"}, {"AIMessage": "answer"}], "citations": [{"title": "Handbook", "page": "3"}]}`

func TestClient(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, "test-api-key")
	ctx := context.Background()

	t.Run("Health", func(t *testing.T) {
		resp, err := c.Health(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != "healthy" || resp.DefaultVoice != "ko-KR-SunHiNeural" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})
	t.Run("Convert", func(t *testing.T) {
		audio, err := c.Convert(ctx, models.TextToSpeechRequest{Text: "hello"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(audio.Data, speechtest.WAV) {
			t.Error("unexpected audio")
		}
		if audio.Header.Get("X-Voice-Name") != "ko-KR-SunHiNeural" {
			t.Errorf("unexpected voice %q", audio.Header.Get("X-Voice-Name"))
		}
	})
	t.Run("ConvertJSON", func(t *testing.T) {
		resp, err := c.ConvertJSON(ctx, models.TextToSpeechRequest{Text: "hello", VoiceName: "en-US-AvaNeural"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.Success || resp.VoiceName != "en-US-AvaNeural" || resp.TextLength != 5 {
			t.Errorf("unexpected response: %+v", resp)
		}
	})
	t.Run("ConvertRAGResponse", func(t *testing.T) {
		resp, err := c.ConvertRAGResponse(ctx, []byte(chatAnswer))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.JSON) != chatAnswer {
			t.Errorf("expected the chat answer to be returned unchanged, got %s", resp.JSON)
		}
		if !bytes.Equal(resp.Audio, speechtest.WAV) {
			t.Error("unexpected audio")
		}
	})
	t.Run("ConvertRAGResponseFile", func(t *testing.T) {
		audio, err := c.ConvertRAGResponseFile(ctx, []byte(chatAnswer))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if audio.Header.Get("X-First-Citation") != "Handbook::3" {
			t.Errorf("unexpected citation header %q", audio.Header.Get("X-First-Citation"))
		}
	})
	t.Run("ConvertRAGResponseJSON", func(t *testing.T) {
		resp, err := c.ConvertRAGResponseJSON(ctx, models.ChatAnswer{
			Success:  true,
			Messages: []models.ChatTurn{{AIMessage: "answer"}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.AudioFile == "" || resp.VoiceInfo.AudioFormat != "wav" {
			t.Errorf("unexpected response: %+v", resp.VoiceInfo)
		}
	})
}

func TestClientErrors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	t.Run("invalid API keys are rejected", func(t *testing.T) {
		_, err := New(srv.URL, "wrong").Convert(ctx, models.TextToSpeechRequest{Text: "hello"})
		var ise jsonapi.InvalidStatusError
		if !errors.As(err, &ise) || ise.Status != http.StatusUnauthorized {
			t.Errorf("expected 401 error, got %v", err)
		}
	})
	t.Run("validation errors are returned", func(t *testing.T) {
		_, err := New(srv.URL, "test-api-key").Convert(ctx, models.TextToSpeechRequest{Text: ""})
		var ise jsonapi.InvalidStatusError
		if !errors.As(err, &ise) || ise.Status != http.StatusBadRequest {
			t.Errorf("expected 400 error, got %v", err)
		}
	})
	t.Run("chat answers without an AI message are rejected", func(t *testing.T) {
		_, err := New(srv.URL, "test-api-key").ConvertRAGResponse(ctx, []byte(`{"success": true, "messages": []}`))
		var ise jsonapi.InvalidStatusError
		if !errors.As(err, &ise) || ise.Status != http.StatusBadRequest {
			t.Errorf("expected 400 error, got %v", err)
		}
	})
}
