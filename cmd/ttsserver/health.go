package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/a-h/ttsserver/client"
)

type HealthCommand struct {
	TTSServerURL    string `help:"The URL of the TTS server." env:"TTS_SERVER_URL" default:"http://localhost:8003"`
	TTSServerAPIKey string `help:"The API key for the TTS server." env:"TTS_SERVER_API_KEY" default:""`
	Pretty          bool   `help:"Pretty print the JSON output." default:"true" negatable:""`
}

func (c HealthCommand) Run(ctx context.Context) (err error) {
	tsc := client.New(c.TTSServerURL, c.TTSServerAPIKey)
	resp, err := tsc.Health(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
