// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/stratablog/internal/app/store/users"
	"github.com/dalemusser/stratablog/internal/app/system/authutil"
	"github.com/dalemusser/stratablog/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Admin describes the bootstrap administrator taken from configuration.
type Admin struct {
	LoginID  string
	Password string
	Name     string
}

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, admin Admin, logger *zap.Logger) error {
	if err := seedAdmin(ctx, userstore.New(db), admin, logger); err != nil {
		return err
	}
	return nil
}

// seedAdmin makes sure the configured administrator exists and holds the
// admin role. An existing account keeps its password; only the role and
// status are corrected. Nothing happens when no admin is configured.
func seedAdmin(ctx context.Context, store *userstore.Store, admin Admin, logger *zap.Logger) error {
	if admin.LoginID == "" || admin.Password == "" {
		logger.Debug("no bootstrap admin configured")
		return nil
	}

	existing, err := store.GetByLoginID(ctx, admin.LoginID)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			if err := store.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				logger.Error("failed to promote bootstrap admin", zap.String("login_id", existing.LoginID), zap.Error(err))
				return err
			}
			logger.Info("promoted bootstrap admin", zap.String("login_id", existing.LoginID))
		}
		if !existing.IsActive() {
			if err := store.UpdateStatus(ctx, existing.ID, models.StatusActive); err != nil {
				logger.Error("failed to re-enable bootstrap admin", zap.String("login_id", existing.LoginID), zap.Error(err))
				return err
			}
			logger.Info("re-enabled bootstrap admin", zap.String("login_id", existing.LoginID))
		}
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		logger.Error("failed to look up bootstrap admin", zap.String("login_id", admin.LoginID), zap.Error(err))
		return err
	}

	hash, err := authutil.NewPasswordHash(admin.Password, admin.LoginID)
	if err != nil {
		logger.Error("bootstrap admin password rejected", zap.Error(err))
		return err
	}

	name := admin.Name
	if name == "" {
		name = "Administrator"
	}
	u, err := store.Create(ctx, models.User{
		FullName:     name,
		LoginID:      admin.LoginID,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if errors.Is(err, userstore.ErrDuplicateLoginID) {
		// Another instance seeded it first.
		return nil
	}
	if err != nil {
		logger.Error("failed to seed bootstrap admin", zap.String("login_id", admin.LoginID), zap.Error(err))
		return err
	}
	logger.Info("seeded bootstrap admin", zap.String("login_id", u.LoginID))
	return nil
}
