package tts

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

const WAVContentType = "audio/wav"

// WriteAudio writes the audio file as a WAV attachment. Headers set on w
// before the call are sent with the response.
func WriteAudio(w http.ResponseWriter, r *http.Request, audio Audio, filename string) error {
	f, err := os.Open(audio.Path)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()
	w.Header().Set("Content-Type", WAVContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	http.ServeContent(w, r, filename, time.Time{}, f)
	return nil
}
