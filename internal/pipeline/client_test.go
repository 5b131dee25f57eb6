package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeEngine imitates the engine's queue API: upload, queue, history
// polling, and artifact download.
type fakeEngine struct {
	t              *testing.T
	pollsUntilDone int
	polls          int
	statusStr      string
	images         []ImageRef
	queuedBody     []byte
}

func (f *fakeEngine) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/image", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file.Close()
		json.NewEncoder(w).Encode(ImageRef{Name: header.Filename, Subfolder: "uploads", Type: "input"})
	})
	mux.HandleFunc("POST /prompt", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Prompt   json.RawMessage `json:"prompt"`
			ClientID string          `json:"client_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.queuedBody = payload.Prompt
		json.NewEncoder(w).Encode(map[string]string{"prompt_id": "run-1"})
	})
	mux.HandleFunc("GET /history/run-1", func(w http.ResponseWriter, r *http.Request) {
		f.polls++
		if f.polls < f.pollsUntilDone {
			fmt.Fprint(w, "{}")
			return
		}
		entry := map[string]any{
			"run-1": map[string]any{
				"status": map[string]any{"completed": true, "status_str": f.statusStr},
				"outputs": map[string]any{
					"3": map[string]any{"images": f.images},
				},
			},
		}
		json.NewEncoder(w).Encode(entry)
	})
	mux.HandleFunc("GET /view", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "bytes-of-%s", r.URL.Query().Get("filename"))
	})
	return mux
}

func newTestClient(t *testing.T, srv *httptest.Server, awaitTimeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Options{
		BaseURL:      srv.URL,
		HTTPClient:   srv.Client(),
		Logger:       zerolog.Nop(),
		AwaitTimeout: awaitTimeout,
		PollInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestUploadImage(t *testing.T) {
	engine := &fakeEngine{t: t, pollsUntilDone: 1, statusStr: "success"}
	srv := httptest.NewServer(engine.handler())
	defer srv.Close()

	c := newTestClient(t, srv, time.Second)
	ref, err := c.UploadImage(context.Background(), "sketch.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadImage returned error: %v", err)
	}
	if ref.Name != "sketch.png" || ref.Subfolder != "uploads" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.InputName() != "uploads/sketch.png" {
		t.Fatalf("InputName() = %q, want %q", ref.InputName(), "uploads/sketch.png")
	}
}

func TestSubmitAndAwaitReturnsArtifacts(t *testing.T) {
	engine := &fakeEngine{
		t:              t,
		pollsUntilDone: 3,
		statusStr:      "success",
		images: []ImageRef{
			{Name: "render_00001_.png", Subfolder: "", Type: "output"},
			{Name: "render_00002_.png", Subfolder: "", Type: "output"},
		},
	}
	srv := httptest.NewServer(engine.handler())
	defer srv.Close()

	wf, err := ParseWorkflow([]byte(testGraph))
	if err != nil {
		t.Fatalf("ParseWorkflow returned error: %v", err)
	}

	c := newTestClient(t, srv, time.Second)
	results, err := c.SubmitAndAwait(context.Background(), wf, "Save Image")
	if err != nil {
		t.Fatalf("SubmitAndAwait returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(results))
	}
	if string(results["render_00001_.png"]) != "bytes-of-render_00001_.png" {
		t.Fatalf("unexpected artifact bytes: %q", results["render_00001_.png"])
	}
	if engine.polls < 3 {
		t.Fatalf("engine polled %d times, want at least 3", engine.polls)
	}
}

func TestSubmitAndAwaitEmptyOutputs(t *testing.T) {
	engine := &fakeEngine{t: t, pollsUntilDone: 1, statusStr: "success"}
	srv := httptest.NewServer(engine.handler())
	defer srv.Close()

	wf, _ := ParseWorkflow([]byte(testGraph))
	c := newTestClient(t, srv, time.Second)
	results, err := c.SubmitAndAwait(context.Background(), wf, "Save Image")
	if err != nil {
		t.Fatalf("SubmitAndAwait returned error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d artifacts, want 0", len(results))
	}
}

func TestSubmitAndAwaitTimesOut(t *testing.T) {
	engine := &fakeEngine{t: t, pollsUntilDone: 1 << 30, statusStr: "success"}
	srv := httptest.NewServer(engine.handler())
	defer srv.Close()

	wf, _ := ParseWorkflow([]byte(testGraph))
	c := newTestClient(t, srv, 50*time.Millisecond)
	_, err := c.SubmitAndAwait(context.Background(), wf, "Save Image")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "context deadline exceeded") {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestSubmitAndAwaitFailedRun(t *testing.T) {
	engine := &fakeEngine{t: t, pollsUntilDone: 1, statusStr: "error"}
	srv := httptest.NewServer(engine.handler())
	defer srv.Close()

	wf, _ := ParseWorkflow([]byte(testGraph))
	c := newTestClient(t, srv, time.Second)
	if _, err := c.SubmitAndAwait(context.Background(), wf, "Save Image"); err == nil {
		t.Fatal("expected error for failed run status")
	}
}

func TestSubmitAndAwaitUnknownOutputStage(t *testing.T) {
	engine := &fakeEngine{t: t, pollsUntilDone: 1, statusStr: "success"}
	srv := httptest.NewServer(engine.handler())
	defer srv.Close()

	wf, _ := ParseWorkflow([]byte(testGraph))
	c := newTestClient(t, srv, time.Second)
	if _, err := c.SubmitAndAwait(context.Background(), wf, "Preview Image"); err == nil {
		t.Fatal("expected error for unknown output stage")
	}
}
