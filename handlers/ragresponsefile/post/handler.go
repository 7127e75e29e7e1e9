package post

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/respond"
	"github.com/a-h/ttsserver/tts"
)

const (
	Filename      = "rag_answer.wav"
	previewLength = 100
)

func New(log *slog.Logger, converter tts.Converter) Handler {
	return Handler{
		log:       log,
		converter: converter,
	}
}

type Handler struct {
	log       *slog.Logger
	converter tts.Converter
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, answer, err := tts.ReadChatAnswer(w, r)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	text, err := tts.AIMessage(answer)
	if err != nil {
		respond.WithError(w, err.Error(), tts.StatusCode(err))
		return
	}

	audio, err := h.converter.Convert(r.Context(), text, "")
	if err != nil {
		h.log.Error("failed to convert chat answer", slog.Any("error", err))
		respond.WithError(w, err.Error(), tts.StatusCode(err))
		return
	}
	defer h.converter.Remove(audio)

	headers := w.Header()
	headers.Set("X-Voice-Name", audio.VoiceName)
	headers.Set("X-Text-Length", strconv.Itoa(audio.TextLength))
	headers.Set("X-RAG-Success", strconv.FormatBool(answer.Success))
	headers.Set("X-Citations-Count", strconv.Itoa(len(answer.Citations)))
	if len(answer.Citations) > 0 {
		first := answer.Citations[0]
		headers.Set("X-First-Citation", tts.HeaderValue(first.Title+"::"+first.Page))
	}
	headers.Set("X-TTS-Success", "true")
	headers.Set("X-AI-Message-Preview", tts.HeaderValue(tts.Preview(text, previewLength)))
	headers.Set("X-RAG-Messages-Count", strconv.Itoa(len(answer.Messages)))
	if err = tts.WriteAudio(w, r, audio, Filename); err != nil {
		h.log.Error("failed to write audio", slog.Any("error", err))
		respond.WithError(w, "failed to write audio", http.StatusInternalServerError)
		return
	}
}
