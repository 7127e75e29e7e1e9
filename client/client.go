package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/a-h/jsonapi"
	"github.com/a-h/ttsserver/models"
)

func New(baseURL, apiKey string) Client {
	return Client{
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type Client struct {
	baseURL string
	apiKey  string
}

// Audio is a WAV download, along with the response headers that describe it.
type Audio struct {
	Data   []byte
	Header http.Header
}

// RAGResponse is the multipart response of the RAG conversion endpoint.
type RAGResponse struct {
	// JSON is the chat answer, exactly as it was sent.
	JSON   []byte
	Audio  []byte
	Header http.Header
}

func (c Client) Health(ctx context.Context) (resp models.HealthResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("health").String()
	if err != nil {
		return resp, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resp, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := c.do(httpReq)
	if err != nil {
		return resp, err
	}
	defer res.Body.Close()
	if err = json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func (c Client) Convert(ctx context.Context, req models.TextToSpeechRequest) (audio Audio, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("tts", "convert").String()
	if err != nil {
		return audio, err
	}
	return c.postAudio(ctx, url, req)
}

func (c Client) ConvertJSON(ctx context.Context, req models.TextToSpeechRequest) (resp models.TextToSpeechResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("tts", "convert-json").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.TextToSpeechRequest, models.TextToSpeechResponse](ctx, url, req, jsonapi.WithRequestHeader("Authorization", c.apiKey))
}

// ConvertRAGResponse sends the chat answer JSON as-is.
func (c Client) ConvertRAGResponse(ctx context.Context, answer []byte) (resp RAGResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("tts", "convert-rag-response").String()
	if err != nil {
		return resp, err
	}
	res, err := c.post(ctx, url, answer)
	if err != nil {
		return resp, err
	}
	defer res.Body.Close()
	resp.Header = res.Header

	mediaType, params, err := mime.ParseMediaType(res.Header.Get("Content-Type"))
	if err != nil {
		return resp, fmt.Errorf("failed to parse content type: %w", err)
	}
	if mediaType != "multipart/form-data" {
		return resp, fmt.Errorf("unexpected content type %q", mediaType)
	}
	mr := multipart.NewReader(res.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return resp, fmt.Errorf("failed to read part: %w", err)
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return resp, fmt.Errorf("failed to read part %q: %w", part.FormName(), err)
		}
		switch part.FormName() {
		case "json":
			resp.JSON = data
		case "audio":
			resp.Audio = data
		}
	}
	return resp, nil
}

func (c Client) ConvertRAGResponseFile(ctx context.Context, answer []byte) (audio Audio, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("tts", "convert-rag-response-file").String()
	if err != nil {
		return audio, err
	}
	res, err := c.post(ctx, url, answer)
	if err != nil {
		return audio, err
	}
	defer res.Body.Close()
	audio.Header = res.Header
	if audio.Data, err = io.ReadAll(res.Body); err != nil {
		return audio, fmt.Errorf("failed to read response body: %w", err)
	}
	return audio, nil
}

func (c Client) ConvertRAGResponseJSON(ctx context.Context, answer models.ChatAnswer) (resp models.ChatAnswerWithAudio, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("tts", "convert-rag-response-json").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.ChatAnswer, models.ChatAnswerWithAudio](ctx, url, answer, jsonapi.WithRequestHeader("Authorization", c.apiKey))
}

func (c Client) postAudio(ctx context.Context, url string, req any) (audio Audio, err error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return audio, fmt.Errorf("failed to marshal request: %w", err)
	}
	res, err := c.post(ctx, url, buf)
	if err != nil {
		return audio, err
	}
	defer res.Body.Close()
	audio.Header = res.Header
	if audio.Data, err = io.ReadAll(res.Body); err != nil {
		return audio, fmt.Errorf("failed to read response body: %w", err)
	}
	return audio, nil
}

func (c Client) post(ctx context.Context, url string, body []byte) (res *http.Response, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.do(httpReq)
}

func (c Client) do(httpReq *http.Request) (res *http.Response, err error) {
	res, err = jsonapi.Raw(httpReq, jsonapi.WithRequestHeader("Authorization", c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		body, _ := io.ReadAll(res.Body)
		return nil, jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	return res, nil
}
