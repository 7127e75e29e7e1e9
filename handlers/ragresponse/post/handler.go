package post

import (
	"bytes"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"

	"github.com/a-h/respond"
	"github.com/a-h/ttsserver/tts"
)

const (
	Boundary      = "----WebKitFormBoundary7MA4YWxkTrZu0gW"
	JSONPartName  = "json"
	AudioPartName = "audio"
	AudioFilename = "answer.wav"
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
	body, answer, err := tts.ReadChatAnswer(w, r)
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

	buf := new(bytes.Buffer)
	mw, err := newMultipartWriter(buf)
	if err != nil {
		h.log.Error("failed to create multipart writer", slog.Any("error", err))
		respond.WithError(w, "failed to create multipart response", http.StatusInternalServerError)
		return
	}
	if err = writePart(mw, partHeader(JSONPartName, "", "application/json"), body); err != nil {
		h.log.Error("failed to write JSON part", slog.Any("error", err))
		respond.WithError(w, "failed to create multipart response", http.StatusInternalServerError)
		return
	}
	if err = writePart(mw, partHeader(AudioPartName, AudioFilename, tts.WAVContentType), audioData); err != nil {
		h.log.Error("failed to write audio part", slog.Any("error", err))
		respond.WithError(w, "failed to create multipart response", http.StatusInternalServerError)
		return
	}
	if err = mw.Close(); err != nil {
		h.log.Error("failed to close multipart writer", slog.Any("error", err))
		respond.WithError(w, "failed to create multipart response", http.StatusInternalServerError)
		return
	}

	h.log.Info("chat answer converted", slog.Int("textLength", audio.TextLength), slog.Int("audioBytes", len(audioData)))

	w.Header().Set("Content-Type", mw.FormDataContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-RAG-Success", strconv.FormatBool(answer.Success))
	w.Header().Set("X-Voice-Name", audio.VoiceName)
	w.Header().Set("X-Citations-Count", strconv.Itoa(len(answer.Citations)))
	w.Header().Set("X-Audio-Format", "wav")
	w.Header().Set("X-Response-Type", "multipart")
	w.WriteHeader(http.StatusOK)
	if _, err = buf.WriteTo(w); err != nil {
		h.log.Warn("failed to write response", slog.Any("error", err))
	}
}

func newMultipartWriter(buf *bytes.Buffer) (*multipart.Writer, error) {
	mw := multipart.NewWriter(buf)
	if err := mw.SetBoundary(Boundary); err != nil {
		return nil, err
	}
	return mw, nil
}

func partHeader(name, filename, contentType string) textproto.MIMEHeader {
	disposition := `form-data; name="` + name + `"`
	if filename != "" {
		disposition += `; filename="` + filename + `"`
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", disposition)
	h.Set("Content-Type", contentType)
	return h
}

func writePart(mw *multipart.Writer, header textproto.MIMEHeader, data []byte) error {
	pw, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = pw.Write(data)
	return err
}
