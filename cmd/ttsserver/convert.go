package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/a-h/ttsserver/client"
	"github.com/a-h/ttsserver/models"
)

type ConvertCommand struct {
	TTSServerURL    string `help:"The URL of the TTS server." env:"TTS_SERVER_URL" default:"http://localhost:8003"`
	TTSServerAPIKey string `help:"The API key for the TTS server." env:"TTS_SERVER_API_KEY" default:""`
	Text            string `help:"The text to convert." required:""`
	Voice           string `help:"The voice to use. The server default is used if empty." default:""`
	Out             string `help:"The WAV file to write." default:"tts_output.wav"`
	LogLevel        string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ConvertCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	tsc := client.New(c.TTSServerURL, c.TTSServerAPIKey)
	audio, err := tsc.Convert(ctx, models.TextToSpeechRequest{
		Text:      c.Text,
		VoiceName: c.Voice,
	})
	if err != nil {
		return fmt.Errorf("failed to convert text: %w", err)
	}
	if err = os.WriteFile(c.Out, audio.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	log.Info("audio written", slog.String("file", c.Out), slog.Int("bytes", len(audio.Data)), slog.String("voice", audio.Header.Get("X-Voice-Name")))
	return nil
}
