package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewOllamaProvider(Config{BaseURL: srv.URL, Model: "llama3.1:8b", Timeout: 5 * time.Second})
	p.limiter.SetLimit(1000)
	p.limiter.SetBurst(1000)
	return p
}

func TestGenerateReturnsResponseField(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("expected non-streaming request")
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "hello there", Done: true})
	})

	got, err := p.Generate(context.Background(), "hi", "be terse", 0.5, 100)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello there" {
		t.Errorf("Generate = %q, want %q", got, "hello there")
	}
}

func TestChatReturnsMessageContent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Message: Message{Role: "assistant", Content: "an answer"}, Done: true})
	})

	got, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.5, 100)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "an answer" {
		t.Errorf("Chat = %q, want %q", got, "an answer")
	}
}

func TestEmbedReturnsFirstVector(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.1, 0.2, 0.3}}})
	})

	got, err := p.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 3 || got[0] != 0.1 {
		t.Errorf("Embed = %v", got)
	}
}

func TestEmbedDegradesToNilOnErrorStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got, err := p.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("expected Embed to swallow the error, got %v", err)
	}
	if got != nil {
		t.Errorf("Embed = %v, want nil", got)
	}
}

func TestPostWrapsNonOKStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := p.Generate(context.Background(), "hi", "", 0.5, 100)
	if err == nil {
		t.Fatal("expected an error for a non-OK status")
	}
}

func TestStreamDeliversChunksUntilDone(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		flusher, _ := w.(http.Flusher)
		enc := json.NewEncoder(w)
		enc.Encode(generateResponse{Response: "foo"})
		if flusher != nil {
			flusher.Flush()
		}
		enc.Encode(generateResponse{Response: "bar", Done: true})
	})

	ch, err := p.Stream(context.Background(), "hi", "", 0.5)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var chunks []string
	for c := range ch {
		chunks = append(chunks, c)
	}
	if len(chunks) != 2 || chunks[0] != "foo" || chunks[1] != "bar" {
		t.Fatalf("chunks = %v, want [foo bar]", chunks)
	}
}

func TestModelNameReturnsConfiguredModel(t *testing.T) {
	p := NewOllamaProvider(Config{Model: "llama3.1:70b"})
	if p.ModelName() != "llama3.1:70b" {
		t.Errorf("ModelName() = %q", p.ModelName())
	}
}

func TestNewOllamaProviderAppliesDefaultTimeout(t *testing.T) {
	p := NewOllamaProvider(Config{Model: "m"})
	if p.client.Timeout != 15*time.Minute {
		t.Errorf("default timeout = %v, want 15m", p.client.Timeout)
	}
}
