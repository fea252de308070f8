package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avelldro/converse-backend/internal/platform/fault"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()
	t.Setenv("OPENAI_BASE_URL", baseURL)
	t.Setenv("OPENAI_MODEL", "gpt-3.5-turbo")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	return NewClient(testLogger(t))
}

func TestCompleteHappyPath(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path=%q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Hi there"}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "Hello"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Hi there" {
		t.Fatalf("content=%q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("authorization=%q", gotAuth)
	}
	if gotBody.Model != "gpt-3.5-turbo" || len(gotBody.Messages) != 1 {
		t.Fatalf("request body=%+v", gotBody)
	}
}

func TestCompleteMissingCredential(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "http://127.0.0.1:0")
	t.Setenv("OPENAI_API_KEY", "")
	c := NewClient(testLogger(t))
	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "Hello"}})
	if fault.KindOf(err) != fault.KindConfiguration {
		t.Fatalf("kind=%q, want configuration_error (err=%v)", fault.KindOf(err), err)
	}
}

func TestCompleteNon2xxCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "Hello"}})
	if fault.KindOf(err) != fault.KindUpstream {
		t.Fatalf("kind=%q, want upstream_failure", fault.KindOf(err))
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("error should carry status and body: %v", err)
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "Hello"}})
	if fault.KindOf(err) != fault.KindUpstream {
		t.Fatalf("kind=%q, want upstream_failure", fault.KindOf(err))
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "Hello"}})
	if fault.KindOf(err) != fault.KindUpstream {
		t.Fatalf("kind=%q, want upstream_failure", fault.KindOf(err))
	}
}

func TestCompleteEmptyWindow(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0")
	_, err := c.Complete(context.Background(), nil)
	if fault.KindOf(err) != fault.KindValidation {
		t.Fatalf("kind=%q, want validation_failure", fault.KindOf(err))
	}
}
