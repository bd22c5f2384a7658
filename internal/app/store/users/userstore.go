// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratablog/internal/app/system/normalize"
	"github.com/dalemusser/stratablog/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UsersCollection is the MongoDB collection holding accounts.
const UsersCollection = "users"

var (
	// ErrDuplicateLoginID is returned by Create when the email is already registered.
	ErrDuplicateLoginID = errors.New("a user with this login ID already exists")

	errNoLoginID = errors.New("login ID is required")
	errBadRole   = errors.New("invalid role")
	errBadStatus = errors.New(`status must be "active" or "disabled"`)
)

// Store reads and writes blog accounts. Lookups by login ID are
// case-insensitive because login IDs are stored lowercase.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection(UsersCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetByID returns mongo.ErrNoDocuments when no account has the id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByLoginID returns mongo.ErrNoDocuments when the email is unknown.
func (s *Store) GetByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"login_id": normalize.LoginID(loginID)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create stores a new account. A blank status means active.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.FullName = normalize.Name(u.FullName)
	u.LoginID = normalize.LoginID(u.LoginID)
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	switch {
	case u.LoginID == "":
		return models.User{}, errNoLoginID
	case !models.IsValidRole(u.Role):
		return models.User{}, errBadRole
	case !validStatus(u.Status):
		return models.User{}, errBadStatus
	}

	u.ID = primitive.NewObjectID()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateLoginID
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdatePassword replaces the stored bcrypt hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return s.set(ctx, id, bson.M{"password_hash": passwordHash})
}

// UpdateRole is used to promote the bootstrap admin.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if role = normalize.Role(role); !models.IsValidRole(role) {
		return errBadRole
	}
	return s.set(ctx, id, bson.M{"role": role})
}

// UpdateStatus enables or disables an account. Tokens of a disabled account
// stop working on their next request.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if status = normalize.Status(status); !validStatus(status) {
		return errBadStatus
	}
	return s.set(ctx, id, bson.M{"status": status})
}

// set applies fields and bumps updated_at; mongo.ErrNoDocuments when id is unknown.
func (s *Store) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = s.now()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountActiveAdmins counts enabled admin accounts.
func (s *Store) CountActiveAdmins(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"role":   models.RoleAdmin,
		"status": models.StatusActive,
	})
}

func validStatus(status string) bool {
	return status == models.StatusActive || status == models.StatusDisabled
}
