package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

const collectionResidences = "residences"

// ResidenceRepository is the MongoDB-backed listing store.
type ResidenceRepository struct {
	col *mongo.Collection
}

func NewResidenceRepository(db *mongo.Database) *ResidenceRepository {
	return &ResidenceRepository{col: db.Collection(collectionResidences)}
}

type residenceDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Location    string             `bson:"location"`
	Address     string             `bson:"address,omitempty"`
	Reference   string             `bson:"reference,omitempty"`
	Type        string             `bson:"type"`
	Price       float64            `bson:"price"`
	Media       []domain.Media     `bson:"media"`
	Amenities   []string           `bson:"amenities"`
	Owner       string             `bson:"owner"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func residenceToDoc(r *domain.Residence) residenceDoc {
	return residenceDoc{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Address:     r.Address,
		Reference:   r.Reference,
		Type:        r.Type,
		Price:       r.Price,
		Media:       r.Media,
		Amenities:   r.Amenities,
		Owner:       string(r.Owner),
		CreatedAt:   r.CreatedAt,
	}
}

func (d residenceDoc) toDomain() *domain.Residence {
	return &domain.Residence{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Address:     d.Address,
		Reference:   d.Reference,
		Type:        d.Type,
		Price:       d.Price,
		Media:       d.Media,
		Amenities:   d.Amenities,
		Owner:       domain.UserID(d.Owner),
		CreatedAt:   d.CreatedAt,
	}
}

func (r *ResidenceRepository) Create(ctx context.Context, residence *domain.Residence) (*domain.Residence, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, residenceToDoc(residence))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateReference
		}
		return nil, fmt.Errorf("insert residence: %w", err)
	}

	created := *residence
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ResidenceRepository) FindByID(ctx context.Context, id string) (*domain.Residence, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrResidenceNotFound
	}

	var doc residenceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResidenceNotFound
		}
		return nil, fmt.Errorf("find residence: %w", err)
	}
	return doc.toDomain(), nil
}

// Find returns listings matching filter, newest first. City and title match
// case-insensitively on a quoted substring.
func (r *ResidenceRepository) Find(ctx context.Context, filter ports.ResidenceFilter) ([]*domain.Residence, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.City != "" {
		query["location"] = bson.M{"$regex": regexp.QuoteMeta(filter.City), "$options": "i"}
	}
	if filter.Title != "" {
		query["title"] = bson.M{"$regex": regexp.QuoteMeta(filter.Title), "$options": "i"}
	}
	if filter.MaxPrice > 0 {
		query["price"] = bson.M{"$lte": filter.MaxPrice}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list residences: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []residenceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode residences: %w", err)
	}

	out := make([]*domain.Residence, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ResidenceRepository) Update(ctx context.Context, residence *domain.Residence) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(residence.ID)
	if err != nil {
		return domain.ErrResidenceNotFound
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, residenceToDoc(residence))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("update residence: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrResidenceNotFound
	}
	return nil
}

func (r *ResidenceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrResidenceNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete residence: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrResidenceNotFound
	}
	return nil
}

func (r *ResidenceRepository) ReferenceExists(ctx context.Context, reference, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"reference": reference}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			query["_id"] = bson.M{"$ne": oid}
		}
	}

	n, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return false, fmt.Errorf("count reference: %w", err)
	}
	return n > 0, nil
}

func (r *ResidenceRepository) FindIDsByOwner(ctx context.Context, owner domain.UserID) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.col.Find(ctx, bson.M{"owner": string(owner)}, opts)
	if err != nil {
		return nil, fmt.Errorf("list owner residences: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode owner residences: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}

// EnsureIndexes creates the residence indexes. The reference index is partial
// so listings without a reference do not collide.
func (r *ResidenceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{
			Keys: bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"reference": bson.M{"$type": "string"}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
