package validators

import (
	"errors"
	"testing"

	"github.com/dalemusser/stratablog/internal/testutil/mongotest"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEnsureAll(t *testing.T) {
	db := mongotest.EmptyDB(t)
	ctx, cancel := mongotest.Context()
	defer cancel()

	// Twice: the second run must find everything in place.
	for i := 0; i < 2; i++ {
		if err := EnsureAll(ctx, db); err != nil {
			t.Fatalf("EnsureAll() run %d error = %v", i+1, err)
		}
	}

	names, err := collectionNames(ctx, db)
	if err != nil {
		t.Fatalf("collectionNames() error = %v", err)
	}
	for _, c := range collections() {
		if !names[c.name] {
			t.Errorf("collection %s should exist after EnsureAll", c.name)
		}
	}
}

func TestCreateCollection(t *testing.T) {
	db := mongotest.EmptyDB(t)
	ctx, cancel := mongotest.Context()
	defer cancel()

	if err := createCollection(ctx, db, "scratch"); err != nil {
		t.Fatalf("first createCollection() error = %v", err)
	}
	if err := createCollection(ctx, db, "scratch"); err != nil {
		t.Fatalf("second createCollection() error = %v, want nil", err)
	}

	names, err := collectionNames(ctx, db)
	if err != nil {
		t.Fatalf("collectionNames() error = %v", err)
	}
	if !names["scratch"] || names["missing"] {
		t.Errorf("collectionNames() = %v", names)
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		namespaceExists bool
		unsupported     bool
	}{
		{"nil", nil, false, false},
		{"generic", errors.New("connection reset"), false, false},
		{"exists code", mongo.CommandError{Code: 48, Message: "exists"}, true, false},
		{"exists message", errors.New("Collection already exists. NS: blog.posts"), true, false},
		{"namespace message", errors.New("namespace exists"), true, false},
		{"command not found code", mongo.CommandError{Code: 59, Message: "cmd"}, false, true},
		{"no such command message", errors.New("NO SUCH COMMAND: collMod"), false, true},
		{"not implemented code", mongo.CommandError{Code: 115, Message: "impl"}, false, true},
		{"not supported message", mongo.CommandError{Message: "validator not supported"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNamespaceExists(tt.err); got != tt.namespaceExists {
				t.Errorf("isNamespaceExists() = %v, want %v", got, tt.namespaceExists)
			}
			if got := isUnsupported(tt.err); got != tt.unsupported {
				t.Errorf("isUnsupported() = %v, want %v", got, tt.unsupported)
			}
		})
	}
}

func requiredFields(t *testing.T, schema bson.M) map[string]bool {
	t.Helper()
	js, ok := schema["$jsonSchema"].(bson.M)
	if !ok {
		t.Fatalf("$jsonSchema should be a bson.M, got %T", schema["$jsonSchema"])
	}
	required, ok := js["required"].(bson.A)
	if !ok {
		t.Fatalf("required should be a bson.A, got %T", js["required"])
	}
	set := make(map[string]bool, len(required))
	for _, r := range required {
		if s, ok := r.(string); ok {
			set[s] = true
		}
	}
	return set
}

func TestSchemas_Required(t *testing.T) {
	tests := []struct {
		name   string
		schema bson.M
		want   []string
	}{
		{"posts", postsSchema(), []string{"title", "content", "slug", "meta_description", "keywords", "created_at"}},
		{"users", usersSchema(), []string{"full_name", "login_id", "password_hash", "role", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requiredFields(t, tt.schema)
			for _, f := range tt.want {
				if !got[f] {
					t.Errorf("%s schema should require %q", tt.name, f)
				}
			}
		})
	}
}

func TestPostsValidator_RejectsIncompleteDocument(t *testing.T) {
	db := mongotest.EmptyDB(t)
	ctx, cancel := mongotest.Context()
	defer cancel()

	if err := EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll() error = %v", err)
	}

	_, err := db.Collection("posts").InsertOne(ctx, bson.M{"title": "No slug"})
	if err == nil {
		t.Skip("server accepted the document; validators unsupported on this deployment")
	}
	var we mongo.WriteException
	if !errors.As(err, &we) {
		t.Fatalf("InsertOne() error = %T %v, want WriteException", err, err)
	}
	if len(we.WriteErrors) == 0 || we.WriteErrors[0].Code != 121 {
		t.Errorf("InsertOne() write errors = %v, want DocumentValidationFailure (121)", we.WriteErrors)
	}
}
