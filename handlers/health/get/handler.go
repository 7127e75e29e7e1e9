package get

import (
	"net/http"

	"github.com/a-h/respond"
	"github.com/a-h/ttsserver"
	"github.com/a-h/ttsserver/models"
)

const ServiceName = "TTS Service"

func New(region, defaultVoice string) Handler {
	return Handler{
		region:       region,
		defaultVoice: defaultVoice,
	}
}

type Handler struct {
	region       string
	defaultVoice string
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.WithJSON(w, models.HealthResponse{
		Status:            "healthy",
		Service:           ServiceName,
		Version:           ttsserver.Version,
		AzureSpeechRegion: h.region,
		DefaultVoice:      h.defaultVoice,
	}, http.StatusOK)
}

// Root reports that the service is running.
func Root(w http.ResponseWriter, r *http.Request) {
	respond.WithJSON(w, models.RootResponse{
		Message: ServiceName + " is running",
		Status:  "healthy",
	}, http.StatusOK)
}
