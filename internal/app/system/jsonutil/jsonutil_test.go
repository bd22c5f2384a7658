package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		wantBody string
	}{
		{"object", map[string]string{"message": "hello"}, `{"message":"hello"}`},
		{"array", []int{1, 2}, `[1,2]`},
		{"nil data", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSON(rec, http.StatusAccepted, tt.data)

			if rec.Code != http.StatusAccepted {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusAccepted)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if body := strings.TrimSpace(rec.Body.String()); body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name  string
		write func(http.ResponseWriter)
		code  int
		body  string
	}{
		{"OK", func(w http.ResponseWriter) { OK(w, map[string]int{"n": 1}) }, http.StatusOK, `{"n":1}`},
		{"Created", func(w http.ResponseWriter) { Created(w, map[string]string{"id": "x"}) }, http.StatusCreated, `{"id":"x"}`},
		{"Error", func(w http.ResponseWriter) { Error(w, http.StatusMethodNotAllowed, "Method not allowed") }, http.StatusMethodNotAllowed, `{"error":"Method not allowed","message":"Method not allowed"}`},
		{"BadRequest", func(w http.ResponseWriter) { BadRequest(w, "Invalid JSON payload") }, http.StatusBadRequest, `{"error":"Invalid JSON payload","message":"Invalid JSON payload"}`},
		{"Unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "Authentication required") }, http.StatusUnauthorized, `{"error":"Authentication required","message":"Authentication required"}`},
		{"Forbidden", func(w http.ResponseWriter) { Forbidden(w, "Forbidden") }, http.StatusForbidden, `{"error":"Forbidden","message":"Forbidden"}`},
		{"NotFound", func(w http.ResponseWriter) { NotFound(w, "Blog not found") }, http.StatusNotFound, `{"error":"Blog not found","message":"Blog not found"}`},
		{"Conflict", func(w http.ResponseWriter) { Conflict(w, "exists") }, http.StatusConflict, `{"error":"exists","message":"exists"}`},
		{"TooManyRequests", func(w http.ResponseWriter) { TooManyRequests(w, "slow down") }, http.StatusTooManyRequests, `{"error":"slow down","message":"slow down"}`},
		{"InternalError", func(w http.ResponseWriter) { InternalError(w, "Something went wrong") }, http.StatusInternalServerError, `{"error":"Something went wrong","message":"Something went wrong"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if body := strings.TrimSpace(rec.Body.String()); body != tt.body {
				t.Errorf("body = %s, want %s", body, tt.body)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		fields      map[string]string
		wantMessage string
	}{
		{"one field", map[string]string{"title": "Title is required."}, "Title is required."},
		{"first by name", map[string]string{"title": "Title is required.", "content": "Content is required."}, "Content is required."},
		{"no fields", nil, "validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ValidationError(rec, tt.fields)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			var got struct {
				Error   string            `json:"error"`
				Message string            `json:"message"`
				Fields  map[string]string `json:"fields"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Error != "validation failed" || got.Message != tt.wantMessage {
				t.Errorf("error/message = %q/%q, want %q/%q", got.Error, got.Message, "validation failed", tt.wantMessage)
			}
			for k, v := range tt.fields {
				if got.Fields[k] != v {
					t.Errorf("fields[%q] = %q, want %q", k, got.Fields[k], v)
				}
			}
		})
	}
}

func TestDecode(t *testing.T) {
	type input struct {
		Title    string   `json:"title"`
		Keywords []string `json:"keywords"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr error
		want    input
	}{
		{"valid", `{"title":"Hello","keywords":["go"]}`, nil, input{Title: "Hello", Keywords: []string{"go"}}},
		{"unknown fields ignored", `{"title":"Hello","createdAt":"1999-01-01T00:00:00Z","slug":"posts/x/y","_id":"abc"}`, nil, input{Title: "Hello"}},
		{"trailing whitespace", "{\"title\":\"Hello\"}\n", nil, input{Title: "Hello"}},
		{"empty body", "", ErrEmptyBody, input{}},
		{"trailing value", `{"title":"a"}{"title":"b"}`, ErrTrailingData, input{Title: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got input
			err := Decode(req, &got)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if got.Title != tt.want.Title || len(got.Keywords) != len(tt.want.Keywords) {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, body := range []string{`{invalid}`, `{"title": 5}`, `[`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var v struct {
			Title string `json:"title"`
		}
		if err := Decode(req, &v); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", body)
		}
	}
}

func TestDecode_NilBody(t *testing.T) {
	req := &http.Request{Method: http.MethodPost}
	var v map[string]any
	if err := Decode(req, &v); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("Decode() error = %v, want ErrEmptyBody", err)
	}
}
