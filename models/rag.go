package models

// ChatTurn is a single turn of a RAG chat answer. Either field may be empty.
type ChatTurn struct {
	HumanMessage string `json:"HumanMessage,omitempty" yaml:"HumanMessage,omitempty"`
	AIMessage    string `json:"AIMessage,omitempty" yaml:"AIMessage,omitempty"`
}

type Citation struct {
	Title        string `json:"title" yaml:"title"`
	Page         string `json:"page" yaml:"page"`
	DownloadLink string `json:"download_link" yaml:"download_link"`
}

type ChatAnswer struct {
	Success   bool       `json:"success" yaml:"success"`
	Messages  []ChatTurn `json:"messages" yaml:"messages"`
	Citations []Citation `json:"citations" yaml:"citations"`
}

type ChatAnswerWithAudio struct {
	ChatAnswer

	// AudioFile is the base64 encoded WAV audio.
	AudioFile string    `json:"audio_file"`
	VoiceInfo VoiceInfo `json:"voice_info"`
}

type VoiceInfo struct {
	VoiceName   string `json:"voice_name"`
	TextLength  int    `json:"text_length"`
	AudioFormat string `json:"audio_format"`
	AudioBytes  int    `json:"audio_bytes"`
}
