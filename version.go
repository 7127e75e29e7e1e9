package ttsserver

const Version = "1.0.0"
