package intent_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/intent"
)

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id": "chatcmpl-1",
		"choices": []any{
			map[string]any{
				"index":   0,
				"message": map[string]any{"role": "assistant", "content": content},
			},
		},
	})
	return string(body)
}

func TestOpenAI_Extract(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = io.WriteString(w, chatCompletion(`{"event": "Jazz Night", "tickets": 2, "intent": "book"}`))
	}))
	defer server.Close()

	o := intent.NewOpenAI(server.Client(), server.URL+"/v1/", "sk-test", "test-model")
	ext, err := o.Extract(context.Background(), "two for jazz night")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "test-model", gotBody["model"])

	require.NotNil(t, ext.Event)
	require.NotNil(t, ext.Tickets)
	assert.Equal(t, "Jazz Night", *ext.Event)
	assert.Equal(t, 2, *ext.Tickets)
}

func TestOpenAI_Extract_CodeFenceAndNulls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, chatCompletion("```json\n{\"event\": null, \"tickets\": null, \"intent\": null}\n```"))
	}))
	defer server.Close()

	ext, err := intent.NewOpenAI(server.Client(), server.URL, "", "m").Extract(context.Background(), "hello")
	require.NoError(t, err)
	assert.Nil(t, ext.Event)
	assert.Nil(t, ext.Tickets)
	assert.Nil(t, ext.Intent)
}

func TestOpenAI_Extract_Errors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"no content": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"choices": []}`)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, chatCompletion("Sure! You want Jazz Night."))
		},
		"unknown field": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, chatCompletion(`{"event": "Jazz Night", "tickets": 2, "seat": "A1"}`))
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			_, err := intent.NewOpenAI(server.Client(), server.URL, "", "m").Extract(context.Background(), "x")
			require.Error(t, err)
		})
	}
}

// A slow extractor is cut off by the resolver's timeout and the request is
// answered by the fallback parser.
func TestResolver_SlowOpenAI(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	r := intent.NewResolver(intent.NewOpenAI(server.Client(), server.URL, "", "m"), 50*time.Millisecond)

	got, err := r.Resolve(context.Background(), "book 3 tickets for Jazz Night")
	require.NoError(t, err)
	assert.Equal(t, intent.Book{Event: "Jazz Night", Tickets: 3}, got)
}
