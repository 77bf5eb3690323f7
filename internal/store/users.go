package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nattapon/inkwell/internal/models"
)

// UserStore handles account CRUD in the MongoDB users collection.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

// EnsureIndexes creates the unique email index and the reset-token
// lookup index. Called once at startup.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	return err
}

// CreateUser inserts a new account. Returns ErrConflict when the email
// is already registered.
func (s *UserStore) CreateUser(ctx context.Context, name, email, hashedPw string) (*models.User, error) {
	u := &models.User{
		Name:      name,
		Email:     email,
		Password:  hashedPw,
		Posts:     []primitive.ObjectID{},
		CreatedAt: time.Now(),
	}
	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetUserByResetToken looks up the account holding the given reset token.
func (s *UserStore) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"reset_token": token})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// SetResetToken stores a reset token and its expiry on the user,
// overwriting any previously issued token.
func (s *UserStore) SetResetToken(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) error {
	res, err := s.col.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"reset_token": token, "reset_token_expires_at": expiresAt},
	})
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword replaces the password hash and clears the reset token in
// a single update, so a consumed token can never be used again.
func (s *UserStore) ResetPassword(ctx context.Context, userID primitive.ObjectID, newHash string) error {
	res, err := s.col.UpdateByID(ctx, userID, bson.M{
		"$set":   bson.M{"password": newHash},
		"$unset": bson.M{"reset_token": "", "reset_token_expires_at": ""},
	})
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushPost appends a post id to the user's posts index.
func (s *UserStore) PushPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	res, err := s.col.UpdateByID(ctx, userID, bson.M{"$push": bson.M{"posts": postID}})
	if err != nil {
		return fmt.Errorf("push post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullPost removes a post id from the user's posts index.
func (s *UserStore) PullPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	res, err := s.col.UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"posts": postID}})
	if err != nil {
		return fmt.Errorf("pull post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
