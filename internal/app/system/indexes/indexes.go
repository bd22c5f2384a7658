// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// rateLimitTTL bounds how long an idle counter document survives. Windows are
// at most hours long, so a day is plenty.
const rateLimitTTL int32 = 24 * 60 * 60

// collectionIndexes is the desired index set of one collection.
type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

// desired returns every index the service relies on, per collection.
func desired() []collectionIndexes {
	return []collectionIndexes{
		{"posts", []mongo.IndexModel{
			// Slugs are permanent URLs; two posts may never share one.
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_posts_slug"),
			},
			// Public listing: visible posts, newest first
			{
				Keys:    bson.D{{Key: "hidden", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_posts_hidden_createdat"),
			},
			// Admin listing and timeline: every post, newest first
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_posts_createdat"),
			},
		}},
		{"users", []mongo.IndexModel{
			// login_id is stored lowercase
			{
				Keys:    bson.D{{Key: "login_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_login_id"),
			},
		}},
		{"rate_limits", []mongo.IndexModel{
			// One counter per bucket and client
			{
				Keys:    bson.D{{Key: "key", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_ratelimit_key"),
			},
			{
				Keys:    bson.D{{Key: "last_hit", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(rateLimitTTL).SetName("idx_ratelimit_ttl"),
			},
		}},
	}
}

/*
EnsureAll is called at startup. It is idempotent: indexes that already exist
with the same keys and options are reused, ones whose options changed are
dropped and rebuilt. Errors are aggregated so every problem is visible and
startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var errs []error
	for _, ci := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(ci.collection), ci.models); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ci.collection, err))
		}
	}
	return errors.Join(errs...)
}

// indexInfo is the subset of listIndexes output compared against the desired set.
type indexInfo struct {
	Name        string `bson:"name"`
	Key         bson.D `bson:"key"`
	Unique      bool   `bson:"unique,omitempty"`
	ExpireAfter *int32 `bson:"expireAfterSeconds,omitempty"`
}

func infoFor(m mongo.IndexModel) indexInfo {
	info := indexInfo{Key: m.Keys.(bson.D)}
	if o := m.Options; o != nil {
		if o.Name != nil {
			info.Name = *o.Name
		}
		if o.Unique != nil {
			info.Unique = *o.Unique
		}
		info.ExpireAfter = o.ExpireAfterSeconds
	}
	return info
}

// keySig renders a key pattern as "field:dir, field:dir".
func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// sameOptions reports whether an existing index can stand in for the desired one.
func sameOptions(want, have indexInfo) bool {
	if want.Unique != have.Unique {
		return false
	}
	switch {
	case want.ExpireAfter == nil && have.ExpireAfter == nil:
		return true
	case want.ExpireAfter == nil || have.ExpireAfter == nil:
		return false
	default:
		return *want.ExpireAfter == *have.ExpireAfter
	}
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]indexInfo, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bySig := make(map[string]indexInfo)
	for cur.Next(ctx) {
		var idx indexInfo
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		bySig[keySig(idx.Key)] = idx
	}
	return bySig, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A missing collection lists nothing; anything else is reported by CreateOne.
		existing = map[string]indexInfo{}
	}

	var errs []error
	for _, m := range models {
		want := infoFor(m)
		sig := keySig(want.Key)
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", want.Name),
			zap.String("keys", sig),
		)

		if have, ok := existing[sig]; ok {
			if sameOptions(want, have) {
				log.Debug("reusing existing index", zap.String("existing_name", have.Name))
				continue
			}
			// Options changed (e.g. now unique, or a new TTL). Drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, have.Name); err != nil {
				log.Warn("drop existing index failed", zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: drop %s: %w", want.Name, have.Name, err))
				continue
			}
			log.Info("dropped index with outdated options", zap.String("existing_name", have.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if want.Unique && mongo.IsDuplicateKeyError(err) {
				err = errors.New("cannot create unique index, duplicates present")
			}
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", want.Name, err))
			continue
		}
		log.Info("index ensured",
			zap.Bool("unique", want.Unique),
			zap.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}
