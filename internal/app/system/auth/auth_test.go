package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "k3v9-Qx7w2Lr8Zp4Tn6Ym1Bc5Hd0Jf3S"

func newTestManager(t *testing.T, clk clockwork.Clock) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecret, "", time.Hour, true, clk, zap.NewNop())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

// stubFetcher returns users from a map; missing IDs behave like disabled users.
type stubFetcher map[string]*User

func (f stubFetcher) FetchUser(_ context.Context, userID string) *User {
	return f[userID]
}

func TestCurrentUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	user, ok := CurrentUser(req)
	if ok {
		t.Error("CurrentUser() should return false for request without user")
	}
	if user != nil {
		t.Error("CurrentUser() should return nil for request without user")
	}

	testUser := &User{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test User",
		LoginID: "test@example.com",
		Role:    "admin",
	}
	reqWithUser := WithTestUser(req, testUser)

	user, ok = CurrentUser(reqWithUser)
	if !ok || user == nil {
		t.Fatal("CurrentUser() should return the injected user")
	}
	if user.ID != testUser.ID {
		t.Errorf("CurrentUser() ID = %q, want %q", user.ID, testUser.ID)
	}
	if !IsAdmin(reqWithUser) {
		t.Error("IsAdmin() = false, want true")
	}
	if IsAdmin(req) {
		t.Error("IsAdmin() without a user = true, want false")
	}
}

func TestUser_UserID(t *testing.T) {
	oid := primitive.NewObjectID()
	user := &User{ID: oid.Hex()}
	if user.UserID() != oid {
		t.Errorf("UserID() = %v, want %v", user.UserID(), oid)
	}

	if !(&User{ID: "invalid"}).UserID().IsZero() {
		t.Error("UserID() should return zero ObjectID for invalid ID")
	}
	if !(&User{}).UserID().IsZero() {
		t.Error("UserID() should return zero ObjectID for empty ID")
	}
}

func TestLoadBearerUser(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC))
	tokens := newTestManager(t, clk)

	admin := &User{ID: primitive.NewObjectID().Hex(), Name: "Admin", LoginID: "admin@example.com", Role: "admin"}
	gone := &User{ID: primitive.NewObjectID().Hex(), Name: "Gone", Role: "admin"}
	fetcher := stubFetcher{admin.ID: admin}

	adminToken, _, err := tokens.Issue(admin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	goneToken, _, err := tokens.Issue(gone)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name     string
		header   string
		fetcher  UserFetcher
		wantUser string
	}{
		{"no header", "", fetcher, ""},
		{"wrong scheme", "Basic " + adminToken, fetcher, ""},
		{"garbage token", "Bearer not.a.jwt", fetcher, ""},
		{"valid token", "Bearer " + adminToken, fetcher, admin.ID},
		{"lowercase scheme", "bearer " + adminToken, fetcher, admin.ID},
		{"user no longer active", "Bearer " + goneToken, fetcher, ""},
		{"claims only without fetcher", "Bearer " + goneToken, nil, gone.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewMiddleware(tokens, tt.fetcher, zap.NewNop())

			var got *User
			handler := mw.LoadBearerUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = CurrentUser(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/api/blogs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
			}
			gotID := ""
			if got != nil {
				gotID = got.ID
			}
			if gotID != tt.wantUser {
				t.Errorf("user ID = %q, want %q", gotID, tt.wantUser)
			}
		})
	}
}

func TestLoadBearerUser_ExpiredToken(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC))
	tokens := newTestManager(t, clk)
	u := &User{ID: primitive.NewObjectID().Hex(), Role: "admin"}

	token, _, err := tokens.Issue(u)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	clk.Advance(time.Hour + time.Second)

	mw := NewMiddleware(tokens, nil, zap.NewNop())
	handler := mw.LoadBearerUser(mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an expired token")
	})))

	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth(t *testing.T) {
	mw := NewMiddleware(newTestManager(t, nil), nil, zap.NewNop())

	called := false
	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("unauthenticated", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest("GET", "/protected", nil))

		if called {
			t.Error("Handler should not be called for unauthenticated request")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		called = false
		req := WithTestUser(httptest.NewRequest("GET", "/protected", nil), &User{
			ID:   primitive.NewObjectID().Hex(),
			Role: "author",
		})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if !called {
			t.Error("Handler should be called for authenticated request")
		}
	})
}

func TestRequireRole(t *testing.T) {
	mw := NewMiddleware(newTestManager(t, nil), nil, zap.NewNop())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name    string
		allowed []string
		user    *User
		want    int
	}{
		{"no user", []string{"admin"}, nil, http.StatusUnauthorized},
		{"correct role", []string{"admin"}, &User{ID: "a", Role: "admin"}, http.StatusOK},
		{"role case folded", []string{"Admin"}, &User{ID: "a", Role: " ADMIN "}, http.StatusOK},
		{"wrong role", []string{"admin"}, &User{ID: "b", Role: "author"}, http.StatusForbidden},
		{"one of many", []string{"admin", "author"}, &User{ID: "b", Role: "author"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/api/blogs/posts/x/y", nil)
			if tt.user != nil {
				req = WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			mw.RequireRole(tt.allowed...)(handler).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("Status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				var body map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
					t.Errorf("body = %q, want a JSON error", rec.Body.String())
				}
			}
		})
	}
}

func TestIsDefaultKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"dev-only-jwt-secret-not-for-production", true},
		{"please-change-me-before-deploying-it", true},
		{"my-DEFAULT-signing-key-0123456789ab", true},
		{"hunter2password-and-some-more-chars", true},
		{testSecret, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isDefaultKey(tt.key); got != tt.want {
				t.Errorf("isDefaultKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"Bearer abc", "abc", true},
		{"BEARER  abc ", "abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := bearerToken(req)
			if got != tt.want || ok != tt.ok {
				t.Errorf("bearerToken() = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
