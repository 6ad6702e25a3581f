package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, status int, body string, capture *generateRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if capture != nil {
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, capture); err != nil {
				t.Errorf("request body is not json: %v", err)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGenerateRawText(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "  hello\n", nil)
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/generate", DefaultOptions(), srv.Client(), zap.NewNop())
	gen, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, KindRaw, gen.Kind)
	assert.Equal(t, "hello", gen.Text)
}

func TestGenerateStructuredJSON(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"a": 1}`, nil)
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/generate", DefaultOptions(), srv.Client(), zap.NewNop())
	gen, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.True(t, gen.IsStructured())
	assert.JSONEq(t, `{"a":1}`, string(gen.JSON))
	assert.Equal(t, `{"a":1}`, gen.String())
}

func TestGenerateSendsFixedPayloadAndNormalizesQuotes(t *testing.T) {
	var captured generateRequest
	srv := newTestServer(t, http.StatusOK, "ok", &captured)
	defer srv.Close()

	client := NewHTTPClient(srv.URL, Options{}, srv.Client(), nil)
	client.opts.Temperature = 0.3
	_, err := client.Generate(context.Background(), "оцени 'сотрудника'")
	require.NoError(t, err)

	assert.Equal(t, []string{`оцени "сотрудника"`}, captured.Prompt)
	assert.True(t, captured.ApplyChatTemplate)
	assert.Equal(t, "You are a helpful assistant.", captured.SystemPrompt)
	assert.Equal(t, 2000, captured.MaxTokens)
	assert.Equal(t, 1, captured.N)
	assert.Equal(t, 0.3, captured.Temperature)
}

func TestGenerateNon2xxIsRequestFailed(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, "upstream down", nil)
	defer srv.Close()

	client := NewHTTPClient(srv.URL, DefaultOptions(), srv.Client(), zap.NewNop())
	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
	assert.Contains(t, reqErr.Error(), "upstream down")
}

func TestGenerateNetworkFailureIsRequestFailed(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "never", nil)
	url := srv.URL
	srv.Close()

	client := NewHTTPClient(url, DefaultOptions(), nil, zap.NewNop())
	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestParseGeneration(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind Kind
		want string
	}{
		{name: "object", body: "{\n  \"x\": [1, 2]\n}", kind: KindStructured, want: `{"x":[1,2]}`},
		{name: "json string", body: `"texto"`, kind: KindStructured, want: `"texto"`},
		{name: "fenced json is raw", body: "```json\n{\"x\":1}\n```", kind: KindRaw, want: "```json\n{\"x\":1}\n```"},
		{name: "empty", body: "   ", kind: KindRaw, want: ""},
		{name: "broken json", body: `{"x": 1`, kind: KindRaw, want: `{"x": 1`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := parseGeneration([]byte(tc.body))
			assert.Equal(t, tc.kind, gen.Kind)
			assert.Equal(t, tc.want, gen.String())
		})
	}
}
