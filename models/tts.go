package models

type TextToSpeechRequest struct {
	// Text to synthesize.
	Text string `json:"text" yaml:"text"`

	// VoiceName selects the cloud voice, e.g. ko-KR-SunHiNeural.
	// The server default is used when empty.
	VoiceName string `json:"voice_name,omitempty" yaml:"voice_name,omitempty"`
}

type TextToSpeechResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Filename   string `json:"filename,omitempty"`
	VoiceName  string `json:"voice_name,omitempty"`
	TextLength int    `json:"text_length,omitempty"`
}
