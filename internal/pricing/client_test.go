package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/me/pricedesk/internal/logging"
	"github.com/me/pricedesk/internal/session"
	"github.com/me/pricedesk/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", session.NewWithToken("tok-123"), testLogger())
	body, err := c.Get(context.Background(), "/admin/pricings/airtime", url.Values{"page": {"2"}, "limit": {"10"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"data":[]}` {
		t.Errorf("body = %s", body)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotQuery != "limit=10&page=2" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestClient_PostSendsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"created"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, session.NewWithToken("t"), testLogger())
	if _, err := c.Post(context.Background(), "/admin/pricings/cable", map[string]any{"name": "DStv Compact"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["name"] != "DStv Compact" {
		t.Errorf("body = %v", got)
	}
}

func TestClient_UnauthorizedInvalidatesSessionOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthenticated."}`))
	}))
	defer srv.Close()

	store := &session.MemoryStore{}
	sess, _ := session.New(store)
	sess.SetToken("stale")

	var redirects atomic.Int32
	sess.OnInvalidate(func() { redirects.Add(1) })

	c := NewClient(srv.URL, sess, testLogger())
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "/admin/pricings/data", nil)
		if !errors.Is(err, model.ErrSessionExpired) {
			t.Fatalf("call %d: err = %v, want ErrSessionExpired", i, err)
		}
	}

	if n := redirects.Load(); n != 1 {
		t.Errorf("redirect hook fired %d times, want 1", n)
	}
	if sess.Token() != "" {
		t.Error("token should be cleared")
	}
	if tok, _ := store.Load(); tok != "" {
		t.Errorf("persisted token = %q, want cleared", tok)
	}
}

func TestClient_ValidationErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The given data was invalid.","errors":{"buy_price":["The buy price field is required."],"network_id":"The selected network id is invalid."}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, session.NewWithToken("t"), testLogger())
	_, err := c.Post(context.Background(), "/admin/pricings/airtime", map[string]any{})

	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %T %v, want *ValidationError", err, err)
	}
	if verr.Message != "The given data was invalid." {
		t.Errorf("Message = %q", verr.Message)
	}
	if len(verr.Fields["buy_price"]) != 1 || len(verr.Fields["network_id"]) != 1 {
		t.Errorf("Fields = %v", verr.Fields)
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"database is down"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, session.NewWithToken("t"), testLogger())
	_, err := c.Delete(context.Background(), "/admin/pricings/crypto/3")

	var serr *model.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %T %v, want *ServerError", err, err)
	}
	if serr.Status != http.StatusInternalServerError || serr.Message != "database is down" {
		t.Errorf("ServerError = %+v", serr)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, session.NewWithToken("t"), testLogger())
	_, err := c.Get(context.Background(), "/admin/pricings/giftcard", nil)

	var terr *model.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %T %v, want *TransportError", err, err)
	}
	if terr.Method != http.MethodGet || terr.Path != "/admin/pricings/giftcard" {
		t.Errorf("TransportError = %+v", terr)
	}
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "admin@example.com" || creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"status":true,"data":{"token":"fresh-token"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, testLogger())
	tok, err := c.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok != "fresh-token" {
		t.Errorf("token = %q", tok)
	}

	if _, err := c.Login(context.Background(), "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad credentials err = %v", err)
	}
}

func TestClient_FailedLoginKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login request should not carry the stored token")
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := &session.MemoryStore{}
	sess, _ := session.New(store)
	sess.SetToken("still-good")
	fired := false
	sess.OnInvalidate(func() { fired = true })

	c := NewClient(srv.URL, sess, testLogger())
	if _, err := c.Login(context.Background(), "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
	if fired || sess.Token() != "still-good" {
		t.Errorf("session invalidated by a failed login: fired=%v token=%q", fired, sess.Token())
	}
}

func TestClient_DebugLogRedactsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"token":"sekret-token-xyz","user":"a@b.c"}}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := logging.NewLoggerWithWriter(slog.LevelDebug, "text", &buf)
	c := NewClient(srv.URL, nil, logger)

	tok, err := c.Login(context.Background(), "a@b.c", "hunter2-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok != "sekret-token-xyz" {
		t.Errorf("token = %q", tok)
	}

	out := buf.String()
	for _, secret := range []string{"hunter2-pass", "sekret-token-xyz"} {
		if strings.Contains(out, secret) {
			t.Errorf("debug log leaks %q:\n%s", secret, out)
		}
	}
	if !strings.Contains(out, "a@b.c") {
		t.Errorf("debug log lost non-sensitive fields:\n%s", out)
	}
}
