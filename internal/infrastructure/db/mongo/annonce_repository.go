package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ema-residences/rental-system/internal/core/domain"
)

const collectionAnnonces = "annonces"

// AnnonceRepository is the MongoDB-backed store for the secondary listing type.
type AnnonceRepository struct {
	col *mongo.Collection
}

func NewAnnonceRepository(db *mongo.Database) *AnnonceRepository {
	return &AnnonceRepository{col: db.Collection(collectionAnnonces)}
}

type annonceDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Location    string             `bson:"location"`
	Address     string             `bson:"address,omitempty"`
	Type        string             `bson:"type"`
	Price       float64            `bson:"price"`
	Media       []domain.Media     `bson:"media"`
	Amenities   []string           `bson:"amenities"`
	Owner       string             `bson:"owner"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d annonceDoc) toDomain() *domain.Annonce {
	return &domain.Annonce{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Address:     d.Address,
		Type:        d.Type,
		Price:       d.Price,
		Media:       d.Media,
		Amenities:   d.Amenities,
		Owner:       domain.UserID(d.Owner),
		CreatedAt:   d.CreatedAt,
	}
}

func (r *AnnonceRepository) Create(ctx context.Context, a *domain.Annonce) (*domain.Annonce, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := annonceDoc{
		Title:       a.Title,
		Description: a.Description,
		Location:    a.Location,
		Address:     a.Address,
		Type:        a.Type,
		Price:       a.Price,
		Media:       a.Media,
		Amenities:   a.Amenities,
		Owner:       string(a.Owner),
		CreatedAt:   a.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert annonce: %w", err)
	}

	created := *a
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *AnnonceRepository) FindByID(ctx context.Context, id string) (*domain.Annonce, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAnnonceNotFound
	}

	var doc annonceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAnnonceNotFound
		}
		return nil, fmt.Errorf("find annonce: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AnnonceRepository) FindAll(ctx context.Context) ([]*domain.Annonce, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list annonces: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []annonceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode annonces: %w", err)
	}

	out := make([]*domain.Annonce, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
