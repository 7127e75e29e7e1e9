package post

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/respond"
	"github.com/a-h/ttsserver/models"
	"github.com/a-h/ttsserver/tts"
)

const Filename = "tts_output.wav"

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
	var req models.TextToSpeechRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, tts.MaxBodyBytes)).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	if err = h.converter.Validate(req.Text); err != nil {
		h.log.Info("invalid request", slog.Any("error", err))
		respond.WithError(w, err.Error(), tts.StatusCode(err))
		return
	}

	audio, err := h.converter.Convert(r.Context(), req.Text, req.VoiceName)
	if err != nil {
		h.log.Error("failed to convert text", slog.Any("error", err))
		respond.WithError(w, err.Error(), tts.StatusCode(err))
		return
	}
	defer h.converter.Remove(audio)

	w.Header().Set("X-Voice-Name", audio.VoiceName)
	w.Header().Set("X-Text-Length", strconv.Itoa(audio.TextLength))
	w.Header().Set("X-TTS-Success", "true")
	w.Header().Set("X-TTS-Message", "speech synthesis completed")
	if err = tts.WriteAudio(w, r, audio, Filename); err != nil {
		h.log.Error("failed to write audio", slog.Any("error", err))
		respond.WithError(w, "failed to write audio", http.StatusInternalServerError)
		return
	}
}
