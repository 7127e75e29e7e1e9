package post

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"os"

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

	audioData, err := os.ReadFile(audio.Path)
	if err != nil {
		h.log.Error("failed to read audio", slog.Any("error", err))
		respond.WithError(w, "failed to read audio", http.StatusInternalServerError)
		return
	}

	respond.WithJSON(w, models.ChatAnswerWithAudio{
		ChatAnswer: answer,
		AudioFile:  base64.StdEncoding.EncodeToString(audioData),
		VoiceInfo: models.VoiceInfo{
			VoiceName:   audio.VoiceName,
			TextLength:  audio.TextLength,
			AudioFormat: "wav",
			AudioBytes:  len(audioData),
		},
	}, http.StatusOK)
}
