package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"go.uber.org/zap"

	"github.com/storysense-dev/storysense/internal/export"
	"github.com/storysense-dev/storysense/internal/log"
	"github.com/storysense-dev/storysense/internal/rating"
	"github.com/storysense-dev/storysense/internal/session"
	"github.com/storysense-dev/storysense/internal/testutil"
	"github.com/storysense-dev/storysense/internal/workflow"
)

type testEnv struct {
	handler http.Handler
	ctrl    *workflow.Controller
	events  *log.Logger
	outPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	events, err := log.NewLogger(root)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	out := filepath.Join(root, "ratings.json")
	ctrl := workflow.New(session.NewStore())
	s := NewServer(ctrl, export.NewPublisher(export.FileSink{Path: out}), events, zap.NewNop())
	return &testEnv{handler: s.Routes(), ctrl: ctrl, events: events, outPath: out}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func ratingBody(t *testing.T, rec rating.Record) []byte {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestLoadDatasetStatuses(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		code  int
		phase string
	}{
		{"valid", string(testutil.DatasetJSON(2)), http.StatusOK, "browsing"},
		{"malformed", `{"stories": 3}`, http.StatusBadRequest, "empty"},
		{"missing id", `{"stories": [{"original": {}}]}`, http.StatusBadRequest, "empty"},
		{"empty", `{"stories": []}`, http.StatusUnprocessableEntity, "no_stories"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			rec := e.do(t, http.MethodPost, "/dataset", []byte(tt.body))
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			var body struct {
				Phase string `json:"phase"`
			}
			decode(t, rec, &body)
			if body.Phase != tt.phase {
				t.Errorf("phase = %q, want %q", body.Phase, tt.phase)
			}
		})
	}
}

func TestLoadDatasetBodyErrors(t *testing.T) {
	old := maxDatasetBytes
	maxDatasetBytes = 64
	t.Cleanup(func() { maxDatasetBytes = old })

	tests := []struct {
		name string
		body func() *http.Request
		code int
	}{
		{
			name: "too large",
			body: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/dataset", strings.NewReader(strings.Repeat(" ", 65)))
			},
			code: http.StatusRequestEntityTooLarge,
		},
		{
			name: "read failure",
			body: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/dataset", iotest.ErrReader(errors.New("connection reset")))
			},
			code: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			rec := httptest.NewRecorder()
			e.handler.ServeHTTP(rec, tt.body())
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			if e.ctrl.Store().Loaded() {
				t.Error("nothing should be loaded")
			}
		})
	}
}

func TestNavigateAndRate(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/dataset", testutil.DatasetJSON(2))

	var cur currentResp
	decode(t, e.do(t, http.MethodGet, "/current", nil), &cur)
	if cur.Position != 1 || cur.Total != 2 || cur.Story == nil || cur.Story.StoryID != "S1" {
		t.Fatalf("current = %+v", cur)
	}
	if cur.Form == nil || cur.Form.Winner != rating.ABetter {
		t.Errorf("form = %+v, want defaults", cur.Form)
	}

	r := rating.NewRecord()
	r.Winner = rating.BBetter
	rec := e.do(t, http.MethodPost, "/ratings", ratingBody(t, r))
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}
	var saved saveResp
	decode(t, rec, &saved)
	if saved.StoryID != "S1" || !saved.Advanced || saved.Progress.Rated != 1 || saved.Progress.Fraction != 0.5 {
		t.Errorf("save = %+v", saved)
	}

	decode(t, e.do(t, http.MethodPost, "/next", nil), &cur)
	if cur.Story.StoryID != "S2" {
		t.Errorf("next at last moved to %s", cur.Story.StoryID)
	}
	decode(t, e.do(t, http.MethodPost, "/previous", nil), &cur)
	if cur.Story.StoryID != "S1" || cur.Form.Winner != rating.BBetter {
		t.Errorf("previous = %+v, want S1 with saved form", cur)
	}
}

func TestSaveRatingRejections(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/ratings", ratingBody(t, rating.NewRecord()))
	if rec.Code != http.StatusConflict {
		t.Errorf("save without dataset = %d, want 409", rec.Code)
	}

	e.do(t, http.MethodPost, "/dataset", testutil.DatasetJSON(1))
	bad := rating.NewRecord()
	bad.ArmA[rating.Small] = 7
	if rec := e.do(t, http.MethodPost, "/ratings", ratingBody(t, bad)); rec.Code != http.StatusBadRequest {
		t.Errorf("out of range = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/ratings", []byte(`{"winner": "tie"}`)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad winner = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/ratings", []byte(`not json`)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", rec.Code)
	}
	if e.ctrl.Progress().Rated != 0 {
		t.Error("rejected ratings should not be stored")
	}
}

func TestProgressAndRater(t *testing.T) {
	e := newTestEnv(t)

	var p progressResp
	decode(t, e.do(t, http.MethodGet, "/progress", nil), &p)
	if p.Rated != 0 || p.Total != 0 || p.Fraction != 0 {
		t.Errorf("progress = %+v", p)
	}

	rec := e.do(t, http.MethodPut, "/rater", []byte(`{"name": "  "}`))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), session.AnonymousRater) {
		t.Errorf("blank rater = %d %s", rec.Code, rec.Body.String())
	}
	long := `{"name": "` + strings.Repeat("x", 201) + `"}`
	if rec := e.do(t, http.MethodPut, "/rater", []byte(long)); rec.Code != http.StatusBadRequest {
		t.Errorf("long rater = %d, want 400", rec.Code)
	}
}

func TestExport(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/dataset", testutil.DatasetJSON(2))
	e.do(t, http.MethodPut, "/rater", []byte(`{"name": "dana"}`))
	e.do(t, http.MethodPost, "/ratings", ratingBody(t, rating.NewRecord()))

	rec := e.do(t, http.MethodGet, "/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "ratings.json") {
		t.Errorf("Content-Disposition = %q", got)
	}
	var doc session.ExportDocument
	decode(t, rec, &doc)
	if doc.Metadata.Rater != "dana" || doc.Metadata.TotalRated != 1 {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if _, err := os.Stat(e.outPath); !os.IsNotExist(err) {
		t.Error("plain export should not run the sinks")
	}

	rec = e.do(t, http.MethodGet, "/export?publish=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Export-Targets") != e.outPath {
		t.Errorf("X-Export-Targets = %q", rec.Header().Get("X-Export-Targets"))
	}
	if _, err := os.Stat(e.outPath); err != nil {
		t.Errorf("publish should write the file: %v", err)
	}

	events, err := e.events.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	kinds := map[string]int{}
	for _, ev := range events {
		kinds[ev.Event]++
	}
	if kinds[log.EventDatasetLoaded] != 1 || kinds[log.EventRatingSaved] != 1 || kinds[log.EventRatingsExported] != 1 {
		t.Errorf("events = %v", kinds)
	}
}
