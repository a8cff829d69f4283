package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/AelaNieve/appsalon/internal/catalog"
)

const serviceCollection = "services"

type serviceDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Price     float64       `bson:"price"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func (d *serviceDoc) toService() catalog.Service {
	return catalog.Service{
		ID:    d.ID.Hex(),
		Name:  d.Name,
		Price: d.Price,
	}
}

// Services implements [catalog.Repository] on a MongoDB collection.
type Services struct {
	coll *mongo.Collection
}

// NewServices binds the services collection.
func NewServices(db *mongo.Database) *Services {
	return &Services{coll: db.Collection(serviceCollection)}
}

func (s *Services) Insert(ctx context.Context, svc *catalog.Service) error {
	now := time.Now()
	doc := serviceDoc{
		Name:      svc.Name,
		Price:     svc.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(bson.ObjectID); ok {
		svc.ID = oid.Hex()
	}
	return nil
}

func (s *Services) List(ctx context.Context) ([]catalog.Service, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []serviceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]catalog.Service, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toService())
	}
	return out, nil
}

func (s *Services) Get(ctx context.Context, id string) (*catalog.Service, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, catalog.ErrInvalidID
	}

	var doc serviceDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}

	svc := doc.toService()
	return &svc, nil
}

func (s *Services) Update(ctx context.Context, svc *catalog.Service) error {
	oid, err := bson.ObjectIDFromHex(svc.ID)
	if err != nil {
		return catalog.ErrInvalidID
	}

	update := bson.M{"$set": bson.M{
		"name":       svc.Name,
		"price":      svc.Price,
		"updated_at": time.Now(),
	}}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Services) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return catalog.ErrInvalidID
	}

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
