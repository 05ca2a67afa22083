package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/eventmap/internal/database"
	"github.com/playperu/eventmap/internal/migrations"
	"github.com/playperu/eventmap/internal/store"
)

const testSecret = "festival-admin"

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *store.DocStore
}

func newTestAPI(t *testing.T, tweak ...func(*Options)) *testAPI {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.MemoryPath)
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	st := store.New(db)
	if _, err := st.SeedDemo(ctx); err != nil {
		t.Fatalf("seeding demo: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testSecret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing secret: %v", err)
	}
	opts := Options{
		Store:           st,
		AdminSecretHash: string(hash),
		CORSOrigins:     []string{"*"},
		QuizLimit:       5,
	}
	for _, f := range tweak {
		f(&opts)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testAPI{t: t, handler: NewHandler(logger, opts, nil), store: st}
}

// do sends a request with an optional JSON body and returns the recorder.
func (a *testAPI) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("encoding body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

// login returns the admin session cookies.
func (a *testAPI) login() []*http.Cookie {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/admin/login", AdminLoginRequest{Secret: testSecret})
	if w.Code != http.StatusOK {
		a.t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %s: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
