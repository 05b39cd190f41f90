package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/auth-core/internal/core/domain"
)

const (
	accountCollection = "accounts"
	usernameIndex     = "username_1"
	emailIndex        = "email_1"
)

type MongoAccountRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
	now  func() time.Time
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{db: db, coll: db.Collection(accountCollection), now: time.Now}
}

type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

// EnsureIndexes creates the unique indexes that enforce username and email
// uniqueness. It is safe to call on every start.
func (r *MongoAccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(usernameIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(emailIndex).SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, username, email, passwordHash string) (*domain.Account, error) {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := mongoAccount{
		ID:           primitive.NewObjectID(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now.UnixMilli(),
		UpdatedAt:    now.UnixMilli(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if conflict := classifyDuplicate(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByUsernameOrEmail fetches both candidates in one round trip and
// prefers the document whose username matched.
func (r *MongoAccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.Account, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetLimit(2))
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	picked := pickPreferred(docs, username)
	if picked == nil {
		return nil, domain.ErrAccountNotFound
	}
	return picked.toDomain(), nil
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	var doc mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoAccountRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func pickPreferred(docs []mongoAccount, username string) *mongoAccount {
	if len(docs) == 0 {
		return nil
	}
	for i := range docs {
		if docs[i].Username == username {
			return &docs[i]
		}
	}
	return &docs[0]
}

func (d mongoAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    millisToTime(d.CreatedAt),
		UpdatedAt:    millisToTime(d.UpdatedAt),
	}
}

// classifyDuplicate maps a duplicate-key write error to the taken kind of
// the index that fired. Other errors yield nil.
func classifyDuplicate(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, usernameIndex):
		return domain.ErrUsernameTaken
	case strings.Contains(msg, emailIndex):
		return domain.ErrEmailTaken
	default:
		return domain.ErrAccountExists
	}
}

func millisToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ts).UTC()
}
