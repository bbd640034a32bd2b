package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const systemPrompt = `You extract ticket booking requests. Reply with one JSON object and nothing else:
{"event": string or null, "tickets": integer or null, "intent": "book", "list" or null}`

// OpenAI extracts intents through any API that speaks the OpenAI chat
// completions wire format.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewOpenAI creates an OpenAI-compatible extractor. baseURL is the API root,
// e.g. https://api.openai.com/v1.
func NewOpenAI(httpClient *http.Client, baseURL, apiKey, model string) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponseFormat struct {
	Type string `json:"type"`
}

type openaiRequest struct {
	Model          string               `json:"model"`
	Messages       []openaiMessage      `json:"messages"`
	Temperature    float64              `json:"temperature"`
	ResponseFormat openaiResponseFormat `json:"response_format"`
}

// Extract sends text to the chat completions endpoint and decodes the
// model's answer. Every failure is returned as an error; the [Resolver]
// decides to fall back.
func (o *OpenAI) Extract(ctx context.Context, text string) (*Extraction, error) {
	body, err := json.Marshal(openaiRequest{
		Model: o.model,
		Messages: []openaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		ResponseFormat: openaiResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("intent/openai: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("intent/openai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intent/openai: sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("intent/openai: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intent/openai: unexpected status code: %d", resp.StatusCode)
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return nil, fmt.Errorf("intent/openai: response has no message content")
	}
	return decodeExtraction(content.String())
}

// decodeExtraction strictly decodes the JSON object the model produced,
// tolerating a surrounding Markdown code fence.
func decodeExtraction(content string) (*Extraction, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var ext Extraction
	if err := dec.Decode(&ext); err != nil {
		return nil, fmt.Errorf("intent/openai: decoding model output: %w", err)
	}
	return &ext, nil
}
