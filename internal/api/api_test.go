package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/leit/internal/docservice"
	"github.com/starford/leit/internal/index"
	"github.com/starford/leit/internal/nlp"
	"github.com/starford/leit/internal/testutil"
)

// testEnv sets up a temp vault, index, service, and router for testing.
// Files are written to the vault and indexed before the router is returned.
// authToken="" means disabled mode.
func testEnv(t *testing.T, files map[string]string, authToken string) (*docservice.Service, http.Handler) {
	t.Helper()

	vaultDir, store := testutil.TestVault(t)
	testutil.SeedVault(t, vaultDir, files)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := index.New(nlp.NewEngine(), index.WithLogger(logger), index.WithRebuildWorkers(1))
	svc := docservice.NewService(store, ix, nil, logger)
	if len(files) > 0 {
		if _, err := svc.Reindex(context.Background()); err != nil {
			t.Fatalf("Reindex: %v", err)
		}
	}

	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func doRequest(t *testing.T, router http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, map[string]string{
		"find.md": "the uniquetoken lives here",
	}, "")

	w := doRequest(t, router, http.MethodGet, "/search?q=uniquetoken", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Path != "find.md" {
		t.Errorf("path = %q", resp.Results[0].Path)
	}
	if resp.Notice != "" {
		t.Errorf("notice = %q, want empty", resp.Notice)
	}
}

func TestSearchEndpoint_ShortQuery(t *testing.T) {
	_, router := testEnv(t, map[string]string{"a.md": "text"}, "")

	for _, target := range []string{"/search?q=x", "/search"} {
		w := doRequest(t, router, http.MethodGet, target, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s = %d, want 200", target, w.Code)
		}
		var resp SearchResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if len(resp.Results) != 0 {
			t.Errorf("%s results = %d, want 0", target, len(resp.Results))
		}
		if resp.Notice == "" {
			t.Errorf("%s should carry a notice", target)
		}
	}
}

func TestListDocumentsEndpoint(t *testing.T) {
	_, router := testEnv(t, map[string]string{
		"a.md": "alpha #keep",
		"b.md": "bravo",
	}, "")

	w := doRequest(t, router, http.MethodGet, "/documents?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp DocumentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Documents) != 2 {
		t.Errorf("total = %d, len = %d, want 2/2", resp.Total, len(resp.Documents))
	}

	w = doRequest(t, router, http.MethodGet, "/documents?tag=keep", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Documents[0].Path != "a.md" {
		t.Errorf("tag filter: total = %d, docs = %v", resp.Total, resp.Documents)
	}
}

func TestGetDocumentEndpoint(t *testing.T) {
	_, router := testEnv(t, map[string]string{
		"plans/q3.md": "---\ntitle: Q3\n---\n# Roadmap\nShip it. #planning",
	}, "")

	w := doRequest(t, router, http.MethodGet, "/documents/plans/q3.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d, body = %s", w.Code, w.Body.String())
	}
	var doc DocumentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Path != "plans/q3.md" {
		t.Errorf("path = %q", doc.Path)
	}
	if !doc.Indexed {
		t.Error("document should be indexed")
	}
	if doc.Frontmatter["title"] != "Q3" {
		t.Errorf("frontmatter = %v", doc.Frontmatter)
	}
}

func TestGetDocumentEndpoint_NotFound(t *testing.T) {
	_, router := testEnv(t, map[string]string{"a.md": "x"}, "")

	w := doRequest(t, router, http.MethodGet, "/documents/nope.md", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing document = %d, want 404", w.Code)
	}
}

func TestReindexEndpoint(t *testing.T) {
	_, router := testEnv(t, map[string]string{
		"a.md": "one",
		"b.md": "two",
	}, "")

	w := doRequest(t, router, http.MethodPost, "/reindex", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reindex = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ReindexResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Stats.Total != 2 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	// Unchanged files are skipped on the second run.
	if resp.Stats.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", resp.Stats.Skipped)
	}
}

// busyIndex reports a rebuild permanently in flight.
type busyIndex struct {
	index.DocumentIndex
}

func (busyIndex) Rebuilding() bool { return true }

func TestReindexEndpoint_Conflict(t *testing.T) {
	_, store := testutil.TestVault(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := docservice.NewService(store, busyIndex{}, nil, logger)
	router := NewRouter(svc, false, "", nil)

	w := doRequest(t, router, http.MethodPost, "/reindex", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("reindex while running = %d, want 409", w.Code)
	}
}

func TestExclusionsEndpoint(t *testing.T) {
	svc, router := testEnv(t, map[string]string{
		"keep.md":        "stays",
		"private/out.md": "goes",
	}, "")

	body, _ := json.Marshal(ExclusionsRequest{Folders: []string{"private"}})
	w := doRequest(t, router, http.MethodPut, "/exclusions", body)
	if w.Code != http.StatusNoContent {
		t.Fatalf("exclusions = %d, body = %s", w.Code, w.Body.String())
	}

	// Rules apply on the next reindex.
	if _, err := svc.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	var resp DocumentListResponse
	w = doRequest(t, router, http.MethodGet, "/documents", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Documents[0].Path != "keep.md" {
		t.Errorf("after exclusion: total = %d, docs = %v", resp.Total, resp.Documents)
	}
}

func TestExclusionsEndpoint_BadBody(t *testing.T) {
	_, router := testEnv(t, map[string]string{"a.md": "x"}, "")

	w := doRequest(t, router, http.MethodPut, "/exclusions", []byte("{nope"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body = %d, want 400", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	_, router := testEnv(t, map[string]string{"a.md": "x", "b.md": "y"}, "")

	w := doRequest(t, router, http.MethodGet, "/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st StatusResponse
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.Documents != 2 {
		t.Errorf("documents = %d, want 2", st.Documents)
	}
	if st.Rebuilding {
		t.Error("rebuilding should be false")
	}
	if st.LastRebuild == nil {
		t.Error("last rebuild stats missing")
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, map[string]string{"a.md": "x"}, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, map[string]string{"a.md": "x"}, "secret123")

	w := doRequest(t, router, http.MethodGet, "/status", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, map[string]string{"a.md": "x"}, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, map[string]string{"a.md": "x"}, "")

	w := doRequest(t, router, http.MethodGet, "/status", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()

	_, store := testutil.TestVault(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := index.New(nlp.NewEngine(), index.WithLogger(logger))
	svc := docservice.NewService(store, ix, nil, logger)

	// Minimal SSE handler stub: writes headers and blocks until context done.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	return NewRouter(svc, authEnabled, token, sseHandler)
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	w := doRequest(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "")

	// Disabled mode should not 401. The stub blocks, so cancel shortly.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
