package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/ttsserver/client"
	"github.com/a-h/ttsserver/models"
	"gopkg.in/yaml.v3"
)

type RAGCommand struct {
	TTSServerURL    string `help:"The URL of the TTS server." env:"TTS_SERVER_URL" default:"http://localhost:8003"`
	TTSServerAPIKey string `help:"The API key for the TTS server." env:"TTS_SERVER_API_KEY" default:""`
	Input           string `help:"The chat answer to convert, as a JSON or YAML file." required:"" type:"existingfile"`
	Out             string `help:"The WAV file to write." default:"answer.wav"`
	PrintJSON       bool   `help:"Print the chat answer returned alongside the audio." default:"true" negatable:""`
	LogLevel        string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c RAGCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	answer, err := readChatAnswer(c.Input)
	if err != nil {
		return err
	}

	tsc := client.New(c.TTSServerURL, c.TTSServerAPIKey)
	resp, err := tsc.ConvertRAGResponse(ctx, answer)
	if err != nil {
		return fmt.Errorf("failed to convert chat answer: %w", err)
	}
	if err = os.WriteFile(c.Out, resp.Audio, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	log.Info("audio written", slog.String("file", c.Out), slog.Int("bytes", len(resp.Audio)), slog.String("citations", resp.Header.Get("X-Citations-Count")))
	if c.PrintJSON {
		fmt.Println(string(resp.JSON))
	}
	return nil
}

// readChatAnswer reads a chat answer file. JSON files are sent unchanged,
// YAML files are converted to JSON.
func readChatAnswer(name string) (answer []byte, err error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat answer: %w", err)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var ca models.ChatAnswer
		if err = yaml.Unmarshal(data, &ca); err != nil {
			return nil, fmt.Errorf("failed to parse YAML chat answer: %w", err)
		}
		return json.Marshal(ca)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("chat answer %s is not valid JSON", name)
	}
	return data, nil
}
