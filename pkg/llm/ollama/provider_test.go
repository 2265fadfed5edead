package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-chat-be/pkg/llm"
)

// A stalled upstream plus a cancelled context must still surface an Err
// chunk before the channel closes, otherwise the partial content would be
// persisted as a genuine reply.
func TestChatStreamCancellationYieldsErrChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer does not support flushing")
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)

		w.Write([]byte(`{"message":{"content":"par"},"done":false}` + "\n"))
		flusher.Flush()
		w.Write([]byte(`{"message":{"content":"tial"},"done":false}` + "\n"))
		flusher.Flush()

		// Stall until the client gives up.
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := NewOllamaProvider(server.URL, "llama3")
	chunks, err := provider.ChatStream(ctx, []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	first, open := <-chunks
	if !open {
		t.Fatal("channel closed before the first chunk")
	}
	if first.Err != nil {
		t.Fatalf("first chunk carried an error: %v", first.Err)
	}

	cancel()

	var sawErr bool
	accumulated := first.Content
	deadline := time.After(5 * time.Second)
	for open {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				open = false
				break
			}
			if chunk.Err != nil {
				sawErr = true
			}
			accumulated += chunk.Content
		case <-deadline:
			t.Fatal("stream did not terminate after cancellation")
		}
	}

	if !sawErr {
		t.Fatalf("cancelled stream closed without an Err chunk (accumulated %q)", accumulated)
	}
}

func TestChatStreamStopsAtDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":{"content":"hello"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"content":" world"},"done":true}` + "\n"))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3")
	chunks, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	var accumulated string
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("unexpected stream error: %v", chunk.Err)
		}
		accumulated += chunk.Content
	}
	if accumulated != "hello world" {
		t.Fatalf("accumulated = %q, want %q", accumulated, "hello world")
	}
}
