package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SignedURLTTL is how long a download link handed to a client stays valid.
const SignedURLTTL = 5 * time.Minute

// Supabase keeps evidence in a private Supabase Storage bucket over its REST API.
// The key may be a service_role JWT or an sb_secret_ API key; both are sent
// as apikey and Bearer.
type Supabase struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

// APIError is a non-2xx answer from Supabase Storage.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase %s: %d %s", e.Op, e.Status, e.Body)
}

func NewSupabase(baseURL, apiKey, bucket string) *Supabase {
	return &Supabase{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Supabase) endpoint(kind, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s%s/%s", s.baseURL, kind, s.bucket, key)
}

// send performs req and turns any status >= 300 into an *APIError.
func (s *Supabase) send(op string, req *http.Request) (*http.Response, error) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase %s: %w", op, err)
	}
	if res.StatusCode >= 300 {
		defer res.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &APIError{Op: op, Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return res, nil
}

// Put uploads a new object. The location it returns is the object key.
func (s *Supabase) Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("", key), r)
	if err != nil {
		return "", err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	res, err := s.send("upload", req)
	if err != nil {
		return "", err
	}
	res.Body.Close()
	return key, nil
}

// SignedURL returns an absolute download URL for key valid for ttl.
func (s *Supabase) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	body, _ := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("sign/", key), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.send("sign", req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("supabase sign: decode: %w", err)
	}
	if out.SignedURL == "" {
		return "", errors.New("supabase sign: empty signedURL")
	}
	// relative to /storage/v1
	return s.baseURL + "/storage/v1" + out.SignedURL, nil
}

func (s *Supabase) URL(ctx context.Context, location string) (string, error) {
	return s.SignedURL(ctx, location, SignedURLTTL)
}

// Delete removes an object. A missing object is not an error.
func (s *Supabase) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint("", key), nil)
	if err != nil {
		return err
	}
	res, err := s.send("delete", req)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}
