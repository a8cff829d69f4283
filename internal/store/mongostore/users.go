package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/AelaNieve/appsalon/internal/account"
)

const userCollection = "users"

// Field names per token kind. A token field and its expiry move together
// in every update; verification has no expiry.
const (
	fieldVerificationToken = "token"
	fieldDeletionToken     = "delete_token"
	fieldDeletionExpiry    = "delete_token_expires"
	fieldResetToken        = "password_reset_token"
	fieldResetExpiry       = "password_reset_token_expires"
)

type userDoc struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	Name             string        `bson:"name"`
	Email            string        `bson:"email"`
	PasswordHash     string        `bson:"password_hash"`
	Admin            bool          `bson:"admin"`
	Verified         bool          `bson:"verified"`
	FailedLoginCount int           `bson:"failed_login_count"`
	Token            string        `bson:"token,omitempty"`
	DeleteToken      string        `bson:"delete_token,omitempty"`
	DeleteExpiry     time.Time     `bson:"delete_token_expires,omitempty"`
	ResetToken       string        `bson:"password_reset_token,omitempty"`
	ResetExpiry      time.Time     `bson:"password_reset_token_expires,omitempty"`
	CreatedAt        time.Time     `bson:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at"`
}

func (d *userDoc) toRecord() *account.UserRecord {
	return &account.UserRecord{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Email:             d.Email,
		PasswordHash:      d.PasswordHash,
		Admin:             d.Admin,
		Verified:          d.Verified,
		FailedLoginCount:  d.FailedLoginCount,
		VerificationToken: d.Token,
		DeletionToken:     d.DeleteToken,
		DeletionExpiry:    d.DeleteExpiry,
		ResetToken:        d.ResetToken,
		ResetExpiry:       d.ResetExpiry,
	}
}

// Users implements [account.UserStore] on a MongoDB collection with a
// unique index on email.
type Users struct {
	coll *mongo.Collection
}

// NewUsers binds the users collection and ensures the unique email
// index exists.
func NewUsers(ctx context.Context, db *mongo.Database) (*Users, error) {
	coll := db.Collection(userCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create users email index: %w", err)
	}

	return &Users{coll: coll}, nil
}

func tokenFields(kind account.TokenKind) (tokenField, expiryField string, err error) {
	switch kind {
	case account.TokenVerification:
		return fieldVerificationToken, "", nil
	case account.TokenDeletion:
		return fieldDeletionToken, fieldDeletionExpiry, nil
	case account.TokenReset:
		return fieldResetToken, fieldResetExpiry, nil
	default:
		return "", "", fmt.Errorf("unknown token kind %d", kind)
	}
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*account.UserRecord, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Users) FindByToken(ctx context.Context, kind account.TokenKind, token string) (*account.UserRecord, error) {
	field, _, err := tokenFields(kind)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, account.ErrStoreNotFound
	}
	return s.findOne(ctx, bson.M{field: token})
}

func (s *Users) findOne(ctx context.Context, filter bson.M) (*account.UserRecord, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, account.ErrStoreNotFound
		}
		return nil, err
	}
	return doc.toRecord(), nil
}

func (s *Users) Create(ctx context.Context, u *account.UserRecord) error {
	now := time.Now()
	doc := userDoc{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Admin:        u.Admin,
		Verified:     u.Verified,
		Token:        u.VerificationToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.ErrStoreDuplicate
		}
		return err
	}

	if oid, ok := result.InsertedID.(bson.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

func (s *Users) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return account.ErrStoreNotFound
	}

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return account.ErrStoreNotFound
	}
	return nil
}

// SetToken stamps token+expiry conditional on the token field currently
// holding prev; prev == "" matches an absent field. A failed condition
// on an existing record reports [account.ErrStoreConflict].
func (s *Users) SetToken(ctx context.Context, id string, kind account.TokenKind, token string, expiry time.Time, prev string) error {
	tokenField, expiryField, err := tokenFields(kind)
	if err != nil {
		return err
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return account.ErrStoreNotFound
	}

	filter := bson.M{"_id": oid}
	if prev == "" {
		filter[tokenField] = bson.M{"$in": bson.A{nil, ""}}
	} else {
		filter[tokenField] = prev
	}

	set := bson.M{tokenField: token, "updated_at": time.Now()}
	if expiryField != "" {
		set[expiryField] = expiry
	}

	return s.conditionalUpdate(ctx, oid, filter, bson.M{"$set": set})
}

// ClearToken removes token+expiry conditional on the field still holding
// token.
func (s *Users) ClearToken(ctx context.Context, id string, kind account.TokenKind, token string) error {
	tokenField, expiryField, err := tokenFields(kind)
	if err != nil {
		return err
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return account.ErrStoreNotFound
	}

	unset := bson.M{tokenField: ""}
	if expiryField != "" {
		unset[expiryField] = ""
	}

	update := bson.M{
		"$unset": unset,
		"$set":   bson.M{"updated_at": time.Now()},
	}
	return s.conditionalUpdate(ctx, oid, bson.M{"_id": oid, tokenField: token}, update)
}

func (s *Users) MarkVerified(ctx context.Context, id string, token string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return account.ErrStoreNotFound
	}

	filter := bson.M{"_id": oid, fieldVerificationToken: token, "verified": false}
	update := bson.M{
		"$set":   bson.M{"verified": true, "updated_at": time.Now()},
		"$unset": bson.M{fieldVerificationToken: ""},
	}
	return s.conditionalUpdate(ctx, oid, filter, update)
}

func (s *Users) CompletePasswordReset(ctx context.Context, id string, token string, newHash string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return account.ErrStoreNotFound
	}

	filter := bson.M{"_id": oid, fieldResetToken: token}
	update := bson.M{
		"$set": bson.M{
			"password_hash":      newHash,
			"failed_login_count": 0,
			"updated_at":         time.Now(),
		},
		"$unset": bson.M{fieldResetToken: "", fieldResetExpiry: ""},
	}
	return s.conditionalUpdate(ctx, oid, filter, update)
}

func (s *Users) IncrementFailedLogins(ctx context.Context, id string) (int, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, account.ErrStoreNotFound
	}

	var doc userDoc
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{
			"$inc": bson.M{"failed_login_count": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, account.ErrStoreNotFound
		}
		return 0, err
	}

	return doc.FailedLoginCount, nil
}

func (s *Users) ResetFailedLogins(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return account.ErrStoreNotFound
	}

	_, err = s.coll.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"failed_login_count": 0, "updated_at": time.Now()}},
	)
	return err
}

// conditionalUpdate runs an update whose filter carries a condition
// beyond _id. No match on an existing record means the condition lost a
// race; no record at all means it was deleted.
func (s *Users) conditionalUpdate(ctx context.Context, oid bson.ObjectID, filter, update bson.M) error {
	result, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if count == 0 {
		return account.ErrStoreNotFound
	}
	return account.ErrStoreConflict
}
