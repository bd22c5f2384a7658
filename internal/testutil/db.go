// Package testutil provides database setup, fixtures and HTTP helpers for
// feature and store tests.
package testutil

import (
	"context"
	"testing"

	"github.com/dalemusser/stratablog/internal/app/system/indexes"
	"github.com/dalemusser/stratablog/internal/testutil/mongotest"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupTestDB returns a fresh database for the test with the production
// indexes in place, so unique slug and login conflicts behave as they do in
// the running service. Skipped when MongoDB is unreachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	db := mongotest.EmptyDB(t)

	ctx, cancel := mongotest.Context()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}

// TestContext returns a context with a reasonable timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return mongotest.Context()
}
