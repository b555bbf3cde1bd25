package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

const auditCollection = "booking_events"

// auditDocument is the stored shape of a domain.BookingEvent.
type auditDocument struct {
	Type       string    `bson:"type"`
	BookingID  int64     `bson:"booking_id"`
	PlaceID    int64     `bson:"place_id"`
	UserID     int64     `bson:"user_id"`
	ActorID    int64     `bson:"actor_id"`
	Status     string    `bson:"status"`
	StartTime  time.Time `bson:"start_time"`
	EndTime    time.Time `bson:"end_time"`
	TotalPrice float64   `bson:"total_price"`
	OccurredAt time.Time `bson:"occurred_at"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// AuditRepository implements ports.AuditLog on a MongoDB collection. It is
// also an event handler, so the dispatcher feeds it every booking event.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

var (
	_ ports.AuditLog     = (*AuditRepository)(nil)
	_ ports.EventHandler = (*AuditRepository)(nil)
)

// EnsureIndexes creates the index backing ListByBooking.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "occurred_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

// Insert appends one event to the trail.
func (r *AuditRepository) Insert(ctx context.Context, event domain.BookingEvent) error {
	doc := auditDocument{
		Type:       string(event.Type),
		BookingID:  event.BookingID,
		PlaceID:    event.PlaceID,
		UserID:     event.UserID,
		ActorID:    event.ActorID,
		Status:     string(event.Status),
		StartTime:  event.StartTime.UTC(),
		EndTime:    event.EndTime.UTC(),
		TotalPrice: event.TotalPrice,
		OccurredAt: event.OccurredAt.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

// ListByBooking returns the trail of one booking, oldest first.
func (r *AuditRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("audit find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("audit decode: %w", err)
	}

	events := make([]domain.BookingEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toDomain())
	}
	return events, nil
}

func (r *AuditRepository) Name() string { return "audit" }

func (r *AuditRepository) Handle(ctx context.Context, event domain.BookingEvent) error {
	return r.Insert(ctx, event)
}

func (d auditDocument) toDomain() domain.BookingEvent {
	return domain.BookingEvent{
		Type:       domain.BookingEventType(d.Type),
		BookingID:  d.BookingID,
		PlaceID:    d.PlaceID,
		UserID:     d.UserID,
		ActorID:    d.ActorID,
		Status:     domain.BookingStatus(d.Status),
		StartTime:  d.StartTime.UTC(),
		EndTime:    d.EndTime.UTC(),
		TotalPrice: d.TotalPrice,
		OccurredAt: d.OccurredAt.UTC(),
	}
}
