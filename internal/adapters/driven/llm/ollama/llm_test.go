package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
)

func testMessages() []driven.ChatMessage {
	return []driven.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
	}
}

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "hi there"},
			Done:    true,
		})
	}))
	defer server.Close()

	s := NewCompletionService(Config{BaseURL: server.URL})
	reply, err := s.Chat(context.Background(), testMessages(), driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
}

func TestChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		enc := json.NewEncoder(w)
		enc.Encode(chatResponse{Message: chatMessage{Content: "Hel"}})
		enc.Encode(chatResponse{Message: chatMessage{Content: "lo"}})
		enc.Encode(chatResponse{Done: true})
	}))
	defer server.Close()

	s := NewCompletionService(Config{BaseURL: server.URL})

	var deltas []string
	reply, err := s.ChatStream(context.Background(), testMessages(), driven.ChatOptions{}, func(d string) {
		deltas = append(deltas, d)
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello", reply)
	assert.Equal(t, []string{"Hel", "lo"}, deltas)
}

func TestChatStream_TruncatedStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Deltas but never a done marker.
		enc := json.NewEncoder(w)
		enc.Encode(chatResponse{Message: chatMessage{Content: "partial"}})
	}))
	defer server.Close()

	s := NewCompletionService(Config{BaseURL: server.URL})

	var deltas []string
	_, err := s.ChatStream(context.Background(), testMessages(), driven.ChatOptions{}, func(d string) {
		deltas = append(deltas, d)
	})

	assert.ErrorIs(t, err, domain.ErrStreamInterrupted)
	// The delta already escaped; only the accumulated answer is discarded.
	assert.Equal(t, []string{"partial"}, deltas)
}

func TestChatStream_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Error: "model not found"})
	}))
	defer server.Close()

	s := NewCompletionService(Config{BaseURL: server.URL})
	_, err := s.ChatStream(context.Background(), testMessages(), driven.ChatOptions{}, func(string) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestChat_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewCompletionService(Config{BaseURL: server.URL})
	_, err := s.Chat(context.Background(), testMessages(), driven.ChatOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestChat_ServiceUnreachable(t *testing.T) {
	s := NewCompletionService(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := s.Chat(context.Background(), testMessages(), driven.ChatOptions{})

	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewCompletionService(Config{BaseURL: server.URL})
	assert.NoError(t, s.Ping(context.Background()))
}
