package inject

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/deckstorm/internal/app"
	"github.com/dshills/deckstorm/internal/config"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/render"
	"github.com/dshills/deckstorm/internal/storage"
)

type fakeBackend struct {
	mu       sync.Mutex
	injected []string
	saveErr  error
	retries  int
	deck     *render.Result
	nav      *navigation.Controller
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nav: navigation.New(navigation.Options{TotalSlides: 3})}
}

func (f *fakeBackend) Inject(content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.injected = append(f.injected, content)
	return nil
}

func (f *fakeBackend) Save(context.Context) error { return f.saveErr }

func (f *fakeBackend) RetryRender() {
	f.mu.Lock()
	f.retries++
	f.mu.Unlock()
}

func (f *fakeBackend) Navigate(action string) (navigation.State, error) {
	switch action {
	case "next":
		f.nav.GoToNext()
	case "last":
		f.nav.GoToLast()
	default:
		return f.nav.State(), app.ErrUnknownAction
	}
	return f.nav.State(), nil
}

func (f *fakeBackend) Status() app.Status {
	return app.Status{
		Render:     render.Status{State: render.StateError, Err: &render.Error{Type: render.ErrorParse, Message: "bad", Line: 3}},
		Navigation: f.nav.State(),
	}
}

func (f *fakeBackend) Deck() *render.Result { return f.deck }

func (f *fakeBackend) Thumbnails() []navigation.Thumbnail { return f.nav.Thumbnails() }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth_RequestID(t *testing.T) {
	s := NewServer(newFakeBackend())
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("no request id assigned")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc" {
		t.Error("client request id not kept")
	}
}

func TestInject(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"markdown", `{"content":"# Hi","format":"markdown"}`, http.StatusAccepted, "# Hi"},
		{"default format", `{"content":"# Hi"}`, http.StatusAccepted, "# Hi"},
		{"html", `{"content":"<h1>Title</h1><p>Body</p>","format":"html"}`, http.StatusAccepted, "# Title"},
		{"bad format", `{"content":"x","format":"pdf"}`, http.StatusBadRequest, ""},
		{"bad json", `{"content":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			s := NewServer(b)
			rec := do(t, s.Handler(), http.MethodPost, "/api/v1/inject", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			if tt.want == "" {
				if len(b.injected) != 0 {
					t.Error("rejected request reached the backend")
				}
				return
			}
			if len(b.injected) != 1 || !strings.Contains(b.injected[0], tt.want) {
				t.Errorf("injected = %q", b.injected)
			}
			resp := decode[injectResponse](t, rec)
			if resp.RequestID == "" || resp.Length != len(b.injected[0]) {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestInject_BodyLimit(t *testing.T) {
	s := NewServer(newFakeBackend(), WithMaxBodyBytes(16))
	rec := do(t, s.Handler(), http.MethodPost, "/api/v1/inject", `{"content":"`+strings.Repeat("x", 64)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestDeck(t *testing.T) {
	b := newFakeBackend()
	s := NewServer(b)

	if rec := do(t, s.Handler(), http.MethodGet, "/api/v1/deck", ""); rec.Code != http.StatusNotFound {
		t.Errorf("no deck status = %d", rec.Code)
	}

	b.deck = &render.Result{
		HTML:       "<section>a</section>",
		SlideCount: 1,
		Slides:     []render.Slide{{Content: "a", Title: "A", Notes: "n"}},
	}
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/deck", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	v := decode[deckView](t, rec)
	if v.SlideCount != 1 || v.Slides[0].Title != "A" || v.Slides[0].Notes != "n" || v.Comments == nil {
		t.Errorf("deck = %+v", v)
	}
}

func TestStatus(t *testing.T) {
	s := NewServer(newFakeBackend())
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/status", "")
	v := decode[statusView](t, rec)
	if v.Render.State != render.StateError || v.Render.ErrorType != string(render.ErrorParse) || v.Render.Line != 3 {
		t.Errorf("render = %+v", v.Render)
	}
	if v.Navigation.TotalSlides != 3 {
		t.Errorf("navigation = %+v", v.Navigation)
	}
}

func TestNavigate(t *testing.T) {
	s := NewServer(newFakeBackend())

	rec := do(t, s.Handler(), http.MethodPost, "/api/v1/navigate/last", "")
	if rec.Code != http.StatusOK || decode[navigationView](t, rec).CurrentSlide != 2 {
		t.Errorf("last: %d %s", rec.Code, rec.Body)
	}
	if rec := do(t, s.Handler(), http.MethodPost, "/api/v1/navigate/spin", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown action status = %d", rec.Code)
	}
	if rec := do(t, s.Handler(), http.MethodGet, "/api/v1/navigate/next", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d", rec.Code)
	}
}

func TestSaveAndRetry(t *testing.T) {
	b := newFakeBackend()
	s := NewServer(b)

	if rec := do(t, s.Handler(), http.MethodPost, "/api/v1/save", ""); rec.Code != http.StatusOK {
		t.Errorf("save status = %d", rec.Code)
	}
	b.saveErr = errors.New("disk full")
	rec := do(t, s.Handler(), http.MethodPost, "/api/v1/save", "")
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "disk full") {
		t.Errorf("failed save: %d %s", rec.Code, rec.Body)
	}

	if rec := do(t, s.Handler(), http.MethodPost, "/api/v1/render/retry", ""); rec.Code != http.StatusAccepted {
		t.Errorf("retry status = %d", rec.Code)
	}
	if b.retries != 1 {
		t.Errorf("retries = %d", b.retries)
	}
}

func TestServer_WithApplication(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Delay = config.Duration(5 * time.Millisecond)
	cfg.Sync.Delay = config.Duration(5 * time.Millisecond)
	a, err := app.New(app.Options{Config: cfg, KV: storage.NewMemory()})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close(context.Background())
	a.Start(context.Background(), "")

	srv := httptest.NewServer(NewServer(a).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/inject", "application/json",
		strings.NewReader(`{"content":"<h1>One</h1><hr><h1>Two</h1>","format":"html"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("inject status = %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for a.Navigation().State().TotalSlides != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("deck not rendered, total = %d", a.Navigation().State().TotalSlides)
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err = http.Get(srv.URL + "/api/v1/thumbnails")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var thumbs []thumbnailView
	if err := json.NewDecoder(resp.Body).Decode(&thumbs); err != nil {
		t.Fatal(err)
	}
	if len(thumbs) != 2 || thumbs[0].Title != "One" || !thumbs[0].IsActive {
		t.Errorf("thumbnails = %+v", thumbs)
	}
}

func TestConverter_HorizontalRuleSplitsSlides(t *testing.T) {
	md, err := NewConverter().ToMarkup("<h1>A</h1><hr><h1>B</h1>", FormatHTML)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "\n---\n") {
		t.Errorf("markup = %q", md)
	}
}
