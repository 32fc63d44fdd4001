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
	"github.com/ema-residences/rental-system/internal/core/ports"
)

const collectionReservations = "reservations"

// ReservationRepository is the MongoDB-backed reservation store.
type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection(collectionReservations)}
}

type reservationDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ResidenceID string             `bson:"residence_id"`
	UserID      string             `bson:"user_id"`
	StartDate   time.Time          `bson:"start_date"`
	EndDate     time.Time          `bson:"end_date"`
	TotalPrice  float64            `bson:"total_price"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d reservationDoc) toDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:          d.ID.Hex(),
		ResidenceID: d.ResidenceID,
		UserID:      domain.UserID(d.UserID),
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		TotalPrice:  d.TotalPrice,
		Status:      domain.ReservationStatus(d.Status),
		CreatedAt:   d.CreatedAt,
	}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := reservationDoc{
		ResidenceID: reservation.ResidenceID,
		UserID:      string(reservation.UserID),
		StartDate:   reservation.StartDate,
		EndDate:     reservation.EndDate,
		TotalPrice:  reservation.TotalPrice,
		Status:      string(reservation.Status),
		CreatedAt:   reservation.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	created := *reservation
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReservationNotFound
	}

	var doc reservationDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus performs a compare-and-swap: the filter includes the expected
// current status, so a concurrent transition that already moved the record
// makes this write match nothing.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, expected, next domain.ReservationStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrReservationNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(expected)},
		bson.M{"$set": bson.M{"status": string(next)}},
	)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the reservation is gone or its status moved under us.
		n, countErr := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if countErr == nil && n == 0 {
			return domain.ErrReservationNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrReservationNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByResidenceIDs(ctx context.Context, residenceIDs []string) ([]*domain.Reservation, error) {
	return r.list(ctx, bson.M{"residence_id": bson.M{"$in": residenceIDs}})
}

func (r *ReservationRepository) ListByUser(ctx context.Context, user domain.UserID) ([]*domain.Reservation, error) {
	return r.list(ctx, bson.M{"user_id": string(user)})
}

func (r *ReservationRepository) list(ctx context.Context, query bson.M) ([]*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reservationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}

	out := make([]*domain.Reservation, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// AggregateStats groups reservations against the given residences by status,
// counting rows and summing total_price, in one aggregation pipeline. A
// single read keeps the counts and revenue mutually consistent.
func (r *ReservationRepository) AggregateStats(ctx context.Context, residenceIDs []string) ([]ports.StatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"residence_id": bson.M{"$in": residenceIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$status",
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$total_price"},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate reservation stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status  string  `bson:"_id"`
		Count   int64   `bson:"count"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode reservation stats: %w", err)
	}

	out := make([]ports.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.StatusCount{
			Status:  domain.ReservationStatus(row.Status),
			Count:   row.Count,
			Revenue: row.Revenue,
		})
	}
	return out, nil
}

// EnsureIndexes creates the reservation indexes.
func (r *ReservationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "residence_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
