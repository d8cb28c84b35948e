// Package apitest drives Fiber handlers end to end against a SQLite database.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-practice-backend/internal/auth"
	"github.com/aldoetobex/legal-practice-backend/pkg/database/dbtest"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

// Secret signs every token issued in tests.
const Secret = "test-secret"

type Env struct {
	DB     *gorm.DB
	App    *fiber.App
	Tokens *auth.Tokens
	// Auth is the real RequireAuth middleware bound to DB.
	Auth fiber.Handler
}

func New(t *testing.T) *Env {
	t.Helper()
	db := dbtest.Open(t)
	tokens := auth.NewTokens(Secret)
	app := fiber.New(fiber.Config{
		ErrorHandler: auth.ErrorHandler(zerolog.Nop()),
		BodyLimit:    12 * 1024 * 1024,
	})
	return &Env{DB: db, App: app, Tokens: tokens, Auth: auth.RequireAuth(db, tokens)}
}

type Response struct {
	Status int
	Body   map[string]any
	Raw    []byte
	Header http.Header
}

// Message returns the envelope message.
func (r Response) Message() string {
	s, _ := r.Body["message"].(string)
	return s
}

// Data returns the envelope data as an object.
func (r Response) Data() map[string]any {
	m, _ := r.Body["data"].(map[string]any)
	return m
}

// List returns the envelope data as an array.
func (r Response) List() []any {
	l, _ := r.Body["data"].([]any)
	return l
}

// Do sends a JSON request, authenticated as user when non-nil.
func (e *Env) Do(t *testing.T, method, path string, body any, as *models.User) Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return e.Send(t, req, as)
}

// Send runs a prepared request, adding a Bearer token for user when non-nil.
func (e *Env) Send(t *testing.T, req *http.Request, as *models.User) Response {
	t.Helper()
	if as != nil {
		tok, err := e.Tokens.Issue(as.ID, as.Role)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	}
	resp, err := e.App.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	out := Response{Status: resp.StatusCode, Raw: raw, Header: resp.Header}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}
