// Package mongotest hands out throwaway MongoDB databases for tests. It has no
// dependencies on the app, so schema and index packages can test against it
// without an import cycle; most tests want testutil.SetupTestDB instead.
package mongotest

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultURI is used when STRATABLOG_TEST_MONGO_URI is unset.
	DefaultURI = "mongodb://localhost:27017"
	// DBPrefix starts every test database name.
	DBPrefix = "stratablog_test_"

	// MongoDB database names are limited to 63 bytes.
	maxDBName = 63
)

var (
	once      sync.Once
	client    *mongo.Client
	clientErr error
)

// URI returns the server tests connect to.
func URI() string {
	if uri := os.Getenv("STRATABLOG_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultURI
}

func shared() (*mongo.Client, error) {
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(URI()).
			SetMaxPoolSize(200).
			SetMinPoolSize(10).
			SetMaxConnIdleTime(30 * time.Second).
			SetConnectTimeout(5 * time.Second).
			SetServerSelectionTimeout(5 * time.Second)

		client, clientErr = mongo.Connect(ctx, opts)
		if clientErr != nil {
			return
		}
		clientErr = client.Ping(ctx, nil)
	})
	return client, clientErr
}

// EmptyDB returns an empty database named after the test, dropped again when
// the test ends. The test is skipped when no server is reachable.
func EmptyDB(t *testing.T) *mongo.Database {
	t.Helper()

	c, err := shared()
	if err != nil {
		t.Skipf("MongoDB not available at %s: %v", URI(), err)
	}

	db := c.Database(DBName(t.Name()))

	ctx, cancel := Context()
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop test database: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: drop test database on cleanup: %v", err)
		}
	})
	return db
}

// DBName maps a test name onto a valid, length-limited database name.
func DBName(testName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, testName)
	name = DBPrefix + name
	if len(name) > maxDBName {
		name = name[:maxDBName]
	}
	return name
}

// Context returns a context with a generous deadline for test setup and queries.
func Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
