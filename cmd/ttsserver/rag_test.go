package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadChatAnswer(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("JSON files are sent unchanged", func(t *testing.T) {
		content := `{"success": true,   "messages": [{"AIMessage": "hi"}]}`
		actual, err := readChatAnswer(write("answer.json", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(actual) != content {
			t.Errorf("expected %q, got %q", content, actual)
		}
	})
	t.Run("YAML files are converted to JSON", func(t *testing.T) {
		content := `success: true
messages:
  - HumanMessage: question
  - AIMessage: answer
citations:
  - title: Handbook
    page: "3"
`
		actual, err := readChatAnswer(write("answer.yaml", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := `{"success":true,"messages":[{"HumanMessage":"question"},{"AIMessage":"answer"}],"citations":[{"title":"Handbook","page":"3","download_link":""}]}`
		if string(actual) != expected {
			t.Errorf("expected %s, got %s", expected, actual)
		}
	})
	t.Run("invalid JSON is rejected", func(t *testing.T) {
		if _, err := readChatAnswer(write("bad.json", `{`)); err == nil {
			t.Error("expected error")
		}
	})
}
