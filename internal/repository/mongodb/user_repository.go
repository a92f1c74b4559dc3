package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"account-api/internal/domain"
	"account-api/internal/repository"
)

const usersCollection = "users"

type profileDocument struct {
	Name     string `bson:"name"`
	Gender   string `bson:"gender"`
	Location string `bson:"location"`
	Website  string `bson:"website"`
}

type userDocument struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Email                string             `bson:"email"`
	Password             string             `bson:"password"`
	Profile              profileDocument    `bson:"profile"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
}

// UserRepository stores users as documents in a MongoDB collection.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &UserRepository{col: db.Collection(usersCollection)}
}

func (r *UserRepository) Init(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "passwordResetToken", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("mongo create indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	doc := toDocument(user)
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("mongo insert: %w", repository.ErrDuplicateEmail)
		}
		return fmt.Errorf("mongo insert: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	if token == "" {
		return nil, repository.ErrUserNotFound
	}
	return r.findOne(ctx, resetTokenFilter(token, now))
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()

	doc := toDocument(user)
	doc.ID = oid

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("mongo replace: %w", repository.ErrDuplicateEmail)
		}
		return fmt.Errorf("mongo replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("mongo delete: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return fromDocument(&doc), nil
}

func resetTokenFilter(token string, now time.Time) bson.M {
	return bson.M{
		"passwordResetToken":   token,
		"passwordResetExpires": bson.M{"$gt": now},
	}
}

func toDocument(user *domain.User) *userDocument {
	return &userDocument{
		Email:    user.Email,
		Password: user.PasswordHash,
		Profile: profileDocument{
			Name:     user.Profile.Name,
			Gender:   user.Profile.Gender,
			Location: user.Profile.Location,
			Website:  user.Profile.Website,
		},
		PasswordResetToken:   user.PasswordResetToken,
		PasswordResetExpires: user.PasswordResetExpires,
		CreatedAt:            user.CreatedAt,
		UpdatedAt:            user.UpdatedAt,
	}
}

func fromDocument(doc *userDocument) *domain.User {
	user := &domain.User{
		Email:        doc.Email,
		PasswordHash: doc.Password,
		Profile: domain.Profile{
			Name:     doc.Profile.Name,
			Gender:   doc.Profile.Gender,
			Location: doc.Profile.Location,
			Website:  doc.Profile.Website,
		},
		PasswordResetToken:   doc.PasswordResetToken,
		PasswordResetExpires: doc.PasswordResetExpires,
		CreatedAt:            doc.CreatedAt,
		UpdatedAt:            doc.UpdatedAt,
	}
	if !doc.ID.IsZero() {
		user.ID = doc.ID.Hex()
	}
	return user
}
