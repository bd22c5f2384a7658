// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Window is a fixed-window counter for one key (for example "create:203.0.113.9"
// or "login-failure:admin").
type Window struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Key         string             `bson:"key"`
	Count       int                `bson:"count"`        // Hits in the current window
	WindowStart time.Time          `bson:"window_start"` // When the current window started
	LastHit     time.Time          `bson:"last_hit"`     // Most recent hit (for TTL cleanup)
}

// Decision is the outcome of counting a hit against a limit.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time // end of the current window
}

// RetryAfter returns how long a caller should wait before the window resets.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.IsZero() || !d.ResetAt.After(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

// Store keeps fixed-window request counters in the rate_limits collection.
type Store struct {
	c     *mongo.Collection
	clock clockwork.Clock
}

// New creates a rate limit Store. A nil clock uses the real clock.
func New(db *mongo.Database, clk clockwork.Clock) *Store {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Store{
		c:     db.Collection("rate_limits"),
		clock: clk,
	}
}

// Hit counts one request for key and reports whether it is within limit.
// The window starts at the first hit and lasts for window; the first hit
// after it ends starts a new one.
func (s *Store) Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := s.clock.Now().UTC()
	cutoff := now.Add(-window)

	// A concurrent first hit can win the insert; the retry then lands in its window.
	for attempt := 0; ; attempt++ {
		var w Window
		err := s.c.FindOneAndUpdate(ctx,
			bson.M{"key": key, "window_start": bson.M{"$gt": cutoff}},
			bson.M{
				"$inc": bson.M{"count": 1},
				"$set": bson.M{"last_hit": now},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&w)
		if err == nil {
			return decide(w, limit, window, w.Count <= limit), nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return Decision{}, err
		}

		// No live window: reset an expired one or create the first.
		_, err = s.c.UpdateOne(ctx,
			bson.M{"key": key, "window_start": bson.M{"$lte": cutoff}},
			bson.M{
				"$set": bson.M{"count": 1, "window_start": now, "last_hit": now},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			w = Window{Key: key, Count: 1, WindowStart: now, LastHit: now}
			return decide(w, limit, window, w.Count <= limit), nil
		}
		if !isDuplicateKeyErr(err) || attempt > 0 {
			return Decision{}, err
		}
	}
}

// Peek reports the state of key's current window without counting a hit.
// Allowed is true when one more hit would still be within limit.
func (s *Store) Peek(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := s.clock.Now().UTC()

	var w Window
	err := s.c.FindOne(ctx, bson.M{"key": key, "window_start": bson.M{"$gt": now.Add(-window)}}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	if err != nil {
		return Decision{}, err
	}
	return decide(w, limit, window, w.Count < limit), nil
}

// Reset removes the counter for key, e.g. after a successful login.
func (s *Store) Reset(ctx context.Context, key string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"key": key})
	return err
}

// Get returns the stored counter for key, or nil if there is none.
func (s *Store) Get(ctx context.Context, key string) (*Window, error) {
	var w Window
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func decide(w Window, limit int, window time.Duration, allowed bool) Decision {
	remaining := limit - w.Count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   allowed,
		Count:     w.Count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   w.WindowStart.Add(window),
	}
}

func isDuplicateKeyErr(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
