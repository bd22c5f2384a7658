// internal/app/store/users/fetcher.go
package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/stratablog/internal/app/system/auth"
	"github.com/dalemusser/stratablog/internal/app/system/normalize"
	"github.com/dalemusser/stratablog/internal/app/system/timeouts"
	"github.com/dalemusser/stratablog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// principalFields is all the middleware needs; password hashes stay in the database.
var principalFields = bson.M{"full_name": 1, "login_id": 1, "role": 1, "status": 1}

// Fetcher implements auth.UserFetcher so a bearer token only authenticates
// while its user still exists and is active.
type Fetcher struct {
	users  *mongo.Collection
	logger *zap.Logger
}

func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{users: db.Collection(UsersCollection), logger: logger}
}

// FetchUser returns nil for a malformed id, a missing or disabled account,
// or a failed lookup. Lookup failures are logged.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.User {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	err = f.users.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(principalFields)).Decode(&u)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil
	case err != nil:
		f.logger.Warn("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}

	if normalize.Status(u.Status) == models.StatusDisabled {
		return nil
	}
	return &auth.User{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		LoginID: u.LoginID,
		Role:    normalize.Role(u.Role),
	}
}
