package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/theatre-reservations/internal/domain"
	"github.com/robertarktes/theatre-reservations/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger records admin mutations and reservation commits to a
// mongo collection. Audit writes are best-effort: failures are logged
// and never fail the request that triggered them.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    int64     `bson:"user_id"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) Record(ctx context.Context, action string, userID int64, data map[string]interface{}) error {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

func (a *AuditLogger) RecordReservation(ctx context.Context, res domain.Reservation) error {
	seats := make([]bson.M, len(res.Tickets))
	for i, t := range res.Tickets {
		seats[i] = bson.M{"performance_id": t.PerformanceID, "row": t.Row, "seat": t.Seat}
	}
	data := map[string]interface{}{
		"reservation_id": res.ID,
		"tickets":        seats,
		"created_at":     res.CreatedAt.Format(time.RFC3339),
	}
	return a.Record(ctx, "reservation.created", res.UserID, data)
}
