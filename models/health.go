package models

type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Status            string `json:"status"`
	Service           string `json:"service"`
	Version           string `json:"version"`
	AzureSpeechRegion string `json:"azure_speech_region"`
	DefaultVoice      string `json:"default_voice"`
}
