package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/nex/internal/nexstore"
)

func newTestEcho(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	root := t.TempDir()
	if err := nexstore.WriteSample(filepath.Join(root, "sample.nex"), "", 0); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "junk.nex"), []byte("not a nex file"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	e := echo.New()
	NewServer(root, nil).Register(e)
	return e, root
}

func doGet(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v body=%s", err, rec.Body.String())
	}
	return out
}

func TestListFiles(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doGet(t, e, "/v1/files")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody[struct {
		Data []fileSummary `json:"data"`
	}](t, rec)
	if len(body.Data) != 2 || body.Data[0].Name != "junk.nex" || body.Data[1].Name != "sample.nex" {
		t.Fatalf("files: %+v", body.Data)
	}
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("missing request id header")
	}
}

func TestRequestIDIsKept(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/version", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "req-123" {
		t.Fatalf("request id: got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("version status: %d", rec.Code)
	}
}

func TestFileInfo(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doGet(t, e, "/v1/files/sample.nex")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody[fileResponse](t, rec)
	if body.File.NumVars != 6 || body.File.TEnd != 10 || len(body.Variables) != 6 {
		t.Fatalf("file response: %+v", body)
	}
	if body.Variables[5].Type != "marker" || body.Variables[5].MarkerFields != 2 {
		t.Fatalf("marker entry: %+v", body.Variables[5])
	}
}

func TestVariablesByType(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doGet(t, e, "/v1/files/sample.nex/variables/neuron?index=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeBody[struct {
		Data []nexstore.NeuronData `json:"data"`
	}](t, rec)
	if len(body.Data) != 1 || body.Data[0].Name != "neuron2" {
		t.Fatalf("neuron 1: %+v", body.Data)
	}
	if len(body.Data[0].Timestamps) != 2 || body.Data[0].Timestamps[0] != 5 {
		t.Fatalf("neuron2 timestamps: %v", body.Data[0].Timestamps)
	}

	rec = doGet(t, e, "/v1/files/sample.nex/variables/continuous")
	cont := decodeBody[struct {
		Data []nexstore.ContinuousData `json:"data"`
	}](t, rec)
	if len(cont.Data) != 1 || len(cont.Data[0].FragmentStarts) != 2 {
		t.Fatalf("continuous: %+v", cont.Data)
	}
}

func TestVariablesErrors(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	tests := []struct {
		path   string
		status int
	}{
		{"/v1/files/sample.nex/variables/spikes", http.StatusBadRequest},
		{"/v1/files/sample.nex/variables/neuron?index=x", http.StatusBadRequest},
		{"/v1/files/sample.nex/variables/neuron?index=0,9", http.StatusBadRequest},
		{"/v1/files/missing.nex", http.StatusNotFound},
		{"/v1/files/junk.nex", http.StatusUnprocessableEntity},
		{"/v1/files/sample.nex/intervals/nothing", http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := doGet(t, e, tc.path)
		if rec.Code != tc.status {
			t.Fatalf("%s: got %d want %d body=%s", tc.path, rec.Code, tc.status, rec.Body.String())
		}
		body := decodeBody[struct {
			Error ResponseError `json:"error"`
		}](t, rec)
		if body.Error.Message == "" || body.Error.Type == "" {
			t.Fatalf("%s: missing error body: %s", tc.path, rec.Body.String())
		}
	}
}

func TestIntervals(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doGet(t, e, "/v1/files/sample.nex/intervals")
	names := decodeBody[struct {
		Data []string `json:"data"`
	}](t, rec)
	if len(names.Data) != 1 || names.Data[0] != "interval1" {
		t.Fatalf("interval names: %v", names.Data)
	}

	rec = doGet(t, e, "/v1/files/sample.nex/intervals/INTERVAL1")
	if rec.Code != http.StatusOK {
		t.Fatalf("case insensitive: got %d body=%s", rec.Code, rec.Body.String())
	}
	iv := decodeBody[nexstore.IntervalData](t, rec)
	if len(iv.Durations) != 2 || iv.Durations[1] != 2 {
		t.Fatalf("interval: %+v", iv)
	}

	rec = doGet(t, e, "/v1/files/sample.nex/intervals/INTERVAL1?case_sensitive=true")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("case sensitive: got %d", rec.Code)
	}
}
