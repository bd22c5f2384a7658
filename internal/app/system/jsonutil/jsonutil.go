// Package jsonutil writes JSON API responses and decodes JSON request bodies.
//
// Every error response has the shape {"error": message, "message": message};
// the browser client reads "message". Validation failures add a "fields"
// object keyed by JSON field name.
package jsonutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
)

// ErrEmptyBody is returned by Decode when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// ErrTrailingData is returned by Decode when the body holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after JSON body")

// JSON writes data as a JSON response with the given status code.
// A nil data writes the status with an empty body.
//
// Usage:
//
//	jsonutil.JSON(w, http.StatusOK, map[string]any{
//	    "blogs":      items,
//	    "pagination": page,
//	})
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 OK JSON response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created JSON response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error writes {"error": message, "message": message} with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message, Message: message})
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden writes a 403 error response.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict writes a 409 error response.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

// TooManyRequests writes a 429 error response.
// Set Retry-After before calling when the wait is known.
func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, message)
}

// InternalError writes a 500 error response. Never put internal details in
// message; log the actual error separately.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// ValidationError writes a 400 response with field-level messages. "message"
// carries the message of the first field in name order:
//
//	{"error": "validation failed", "message": "Title is required.",
//	 "fields": {"title": "Title is required."}}
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	body := errorBody{Error: "validation failed", Message: "validation failed", Fields: fields}
	if len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		body.Message = fields[names[0]]
	}
	JSON(w, http.StatusBadRequest, body)
}

// Decode reads exactly one JSON value from the request body into v.
// Unknown fields are ignored.
//
// Usage:
//
//	var in postRequest
//	if err := jsonutil.Decode(r, &in); err != nil {
//	    jsonutil.BadRequest(w, "Invalid JSON payload")
//	    return
//	}
func Decode(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}
