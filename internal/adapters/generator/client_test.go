package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/patchwork/internal/testutil"
)

const testKeyEnv = "PATCHWORK_TEST_KEY"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv(testKeyEnv, "secret")

	c, err := New(domain.GeneratorSettings{
		BaseURL:   srv.URL + "/",
		Model:     "test-model",
		APIKeyEnv: testKeyEnv,
	}, &testutil.Logger{})
	require.NoError(t, err)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

// reply answers every request with content as the assistant message.
func reply(t *testing.T, content string, inspect func(chatRequest)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, completionsPath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if inspect != nil {
			inspect(req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := New(domain.GeneratorSettings{APIKeyEnv: testKeyEnv}, &testutil.Logger{})
	assert.ErrorIs(t, err, domain.ErrGeneratorNotConfigured)
	assert.Contains(t, err.Error(), testKeyEnv)
}

func TestClient_ProposeEdits(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, reply(t,
		`{"edits":[{"originalCode":"a := 1","newCode":"a := 2"}]}`,
		func(r chatRequest) { got = r },
	))

	proposal, err := c.ProposeEdits(t.Context(), ports.EditRequest{
		Path:    "main.go",
		Spec:    "bump a",
		Content: "a := 1\n",
		Exists:  true,
		History: []domain.Message{{Role: domain.RoleUser, Content: "Findings from earlier tasks:\nnone"}},
		CodeContext: []ports.Snippet{
			{Path: "util.go", StartLine: 3, Content: "func helper() {}"},
		},
	})
	require.NoError(t, err)
	require.Len(t, proposal.Edits, 1)
	assert.Equal(t, "e1", proposal.Edits[0].ID)
	assert.Equal(t, "a := 2", proposal.Edits[0].NewCode)

	assert.Equal(t, "test-model", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Findings from earlier tasks:\nnone", got.Messages[1].Content)
	last := got.Messages[2].Content
	assert.Contains(t, last, "bump a")
	assert.Contains(t, last, "File: main.go")
	assert.Contains(t, last, "```\na := 1\n```")
	assert.Contains(t, last, "util.go:3")
}

func TestClient_ProposeEditsWholeFile(t *testing.T) {
	c := newTestClient(t, reply(t, "```json\n{\"code\":\"package x\\n\"}\n```", nil))

	proposal, err := c.ProposeEdits(t.Context(), ports.EditRequest{Path: "x.go", Spec: "create"})
	require.NoError(t, err)
	require.True(t, proposal.IsWholeFile())
	assert.Equal(t, "package x\n", *proposal.Code)
}

func TestClient_PlanActions(t *testing.T) {
	c := newTestClient(t, reply(t, `{"actions":[
		{"type":"create_file","path":"a.go","content":"package a"},
		{"type":"edit_code","path":"b.go"},
		{"type":"run_command","command":"go mod tidy"},
		{"type":"delete_file","path":"c.go"},
		{"type":"pass","reason":"done"}]}`, func(r chatRequest) {
		assert.Contains(t, r.Messages[len(r.Messages)-1].Content, "Pseudocode:\nadd a")
	}))

	actions, err := c.PlanActions(t.Context(), ports.ActionRequest{
		Task: &domain.Task{ID: "t1", Title: "Add a", Pseudocode: "add a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Action{
		domain.CreateFile{Path: "a.go", Content: "package a"},
		domain.EditCode{Path: "b.go"},
		domain.RunCommand{Command: "go mod tidy"},
		domain.DeleteFile{Path: "c.go"},
		domain.Pass{Reason: "done"},
	}, actions)
}

func TestClient_Summarize(t *testing.T) {
	c := newTestClient(t, reply(t, "  The parser lives in parse.go.\n", func(r chatRequest) {
		assert.Nil(t, r.ResponseFormat)
		assert.Equal(t, "Findings from earlier tasks:\nearlier", r.Messages[1].Content)
	}))

	answer, err := c.Summarize(t.Context(), ports.AnalysisRequest{
		Task: &domain.Task{ID: "q", Title: "Where is the parser?", BackgroundContext: "earlier"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The parser lives in parse.go.", answer)
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	ok := reply(t, `{"edits":[]}`, nil)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		ok(w, r)
	})

	proposal, err := c.ProposeEdits(t.Context(), ports.EditRequest{Path: "a.go"})
	require.NoError(t, err)
	assert.Empty(t, proposal.Edits)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad model", http.StatusBadRequest)
	})

	_, err := c.ProposeEdits(t.Context(), ports.EditRequest{Path: "a.go"})
	require.ErrorIs(t, err, domain.ErrGeneratorRequestFailed)
	assert.Contains(t, err.Error(), "bad model")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoWithRetryHonorsCanceledContext(t *testing.T) {
	c := newTestClient(t, reply(t, "{}", nil))
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, "http://example.com", nil)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryDelayForAttemptIsCapped(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryDelayForAttempt(1))
	assert.Equal(t, 8*time.Second, retryDelayForAttempt(3))
	assert.Equal(t, maxRetryDelay, retryDelayForAttempt(7))
}

func TestRetryAfterDelay(t *testing.T) {
	d, ok := retryAfterDelay("3")
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	future := time.Now().Add(2 * time.Minute).UTC().Format(http.TimeFormat)
	d, ok = retryAfterDelay(future)
	assert.True(t, ok)
	assert.Equal(t, maxRetryDelay, d)

	_, ok = retryAfterDelay("soon")
	assert.False(t, ok)
}

func TestRetryableStatuses(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, isRetryableStatus(code), code)
	}
	assert.False(t, isRetryableStatus(http.StatusBadRequest))
}
