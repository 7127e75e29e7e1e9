package post

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/a-h/respond"
	"github.com/a-h/ttsserver/models"
	"github.com/a-h/ttsserver/tts"
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
	// The audio is not kept once the acknowledgement has been sent.
	defer h.converter.Remove(audio)

	respond.WithJSON(w, models.TextToSpeechResponse{
		Success:    true,
		Message:    "speech synthesis completed",
		Filename:   filepath.Base(audio.Path),
		VoiceName:  audio.VoiceName,
		TextLength: audio.TextLength,
	}, http.StatusOK)
}
