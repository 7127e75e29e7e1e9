package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a-h/ttsserver/auth"
	convertpost "github.com/a-h/ttsserver/handlers/convert/post"
	convertjsonpost "github.com/a-h/ttsserver/handlers/convertjson/post"
	healthget "github.com/a-h/ttsserver/handlers/health/get"
	ragresponsepost "github.com/a-h/ttsserver/handlers/ragresponse/post"
	ragresponsefilepost "github.com/a-h/ttsserver/handlers/ragresponsefile/post"
	ragresponsejsonpost "github.com/a-h/ttsserver/handlers/ragresponsejson/post"
	"github.com/a-h/ttsserver/middleware"
	"github.com/a-h/ttsserver/speech"
	"github.com/a-h/ttsserver/tts"
	"github.com/rs/cors"
)

type ServeCommand struct {
	AzureSpeechKey      string        `help:"The Azure Speech subscription key." env:"AZURE_SPEECH_KEY" required:""`
	AzureSpeechRegion   string        `help:"The Azure Speech region, e.g. koreacentral." env:"AZURE_SPEECH_REGION" required:""`
	AzureSpeechEndpoint string        `help:"Override the Azure Speech synthesis endpoint." env:"AZURE_SPEECH_ENDPOINT" default:""`
	DefaultVoice        string        `help:"The voice to use when none is requested." env:"DEFAULT_VOICE" default:"ko-KR-SunHiNeural"`
	MaxTextLength       int           `help:"The maximum number of characters that can be converted in one request." env:"MAX_TEXT_LENGTH" default:"1000"`
	SynthesisTimeout    time.Duration `help:"The timeout for calls to the speech service." env:"SYNTHESIS_TIMEOUT" default:"60s"`
	TempDir             string        `help:"The directory for temporary audio files. Defaults to the OS temp dir." env:"TEMP_DIR" default:""`
	ListenAddr          string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:8003"`
	TLSCertFile         string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile          string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	APIKeysFile         string        `help:"The file containing a JSON map of API keys to usernames. Authentication is disabled if empty." env:"API_KEYS_FILE" default:""`
	LogLevel            string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	log.Info("creating speech client", slog.String("region", c.AzureSpeechRegion), slog.String("defaultVoice", c.DefaultVoice))
	synthesizer, err := speech.NewAzure(c.AzureSpeechKey, c.AzureSpeechRegion,
		speech.WithEndpoint(c.AzureSpeechEndpoint),
		speech.WithHTTPClient(&http.Client{Timeout: c.SynthesisTimeout}))
	if err != nil {
		return fmt.Errorf("failed to create speech client: %w", err)
	}

	apiKeyToUserName, err := auth.LoadFromFile(c.APIKeysFile)
	if err != nil {
		return fmt.Errorf("failed to load API keys: %w", err)
	}
	if len(apiKeyToUserName) == 0 {
		log.Warn("authentication is disabled")
	}

	converter := tts.New(log, synthesizer, c.DefaultVoice, c.MaxTextLength, c.TempDir)
	handler := newHandler(log, converter, c.AzureSpeechRegion, apiKeyToUserName)

	s := &http.Server{
		Addr:              c.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.Info("Listening", slog.String("addr", c.ListenAddr))
		if s.TLSConfig != nil {
			errs <- s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
			return
		}
		errs <- s.ListenAndServe()
	}()

	select {
	case err = <-errs:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err = <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var exposedHeaders = []string{
	"Content-Disposition",
	middleware.RequestIDHeader,
	"X-Voice-Name",
	"X-Text-Length",
	"X-TTS-Success",
	"X-TTS-Message",
	"X-RAG-Success",
	"X-Citations-Count",
	"X-First-Citation",
	"X-AI-Message-Preview",
	"X-RAG-Messages-Count",
	"X-Audio-Format",
	"X-Response-Type",
}

func newHandler(log *slog.Logger, converter tts.Converter, region string, apiKeyToUserName map[string]string) http.Handler {
	ttsMux := http.NewServeMux()
	ttsMux.Handle("POST /tts/convert", convertpost.New(log, converter))
	ttsMux.Handle("POST /tts/convert-json", convertjsonpost.New(log, converter))
	ttsMux.Handle("POST /tts/convert-rag-response", ragresponsepost.New(log, converter))
	ttsMux.Handle("POST /tts/convert-rag-response-file", ragresponsefilepost.New(log, converter))
	ttsMux.Handle("POST /tts/convert-rag-response-json", ragresponsejsonpost.New(log, converter))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", healthget.Root)
	mux.Handle("GET /health", healthget.New(region, converter.DefaultVoice()))
	mux.Handle("/tts/", auth.New(apiKeyToUserName, ttsMux))

	withCORS := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: false,
	}).Handler(mux)

	return middleware.RequestID(middleware.AccessLog(log, withCORS))
}
