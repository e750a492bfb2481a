package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"relay/pkg/errors"
	"relay/pkg/metrics"
	"relay/pkg/models"
)

const (
	auditContext  = "audit"
	metricsDBName = "mongodb"
)

// Record is the persisted copy of an outbound message. Data holds the JSON
// text of the outbound data block.
type Record struct {
	AppID       string `bson:"app_id"`
	MessageID   string `bson:"message_id"`
	MessageType string `bson:"message_type"`
	Data        string `bson:"data"`
	CreatedAt   string `bson:"created_at"`
	UserID      string `bson:"user_id"`
}

// NewRecord snapshots msg for persistence.
func NewRecord(msg models.OutboundMessage) (Record, error) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return Record{}, errors.NonRetryable(errors.ErrSerialization, auditContext, err)
	}
	return Record{
		AppID:       msg.AppID,
		MessageID:   msg.MessageID,
		MessageType: msg.MessageType,
		Data:        string(data),
		CreatedAt:   msg.CreatedAt,
		UserID:      msg.UserID,
	}, nil
}

type Store interface {
	Save(ctx context.Context, msg models.OutboundMessage) error
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database, collectionName string) *Repository {
	return &Repository{
		collection: db.Collection(collectionName),
	}
}

// Save inserts one audit record. Records are never updated.
func (r *Repository) Save(ctx context.Context, msg models.OutboundMessage) error {
	record, err := NewRecord(msg)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = r.collection.InsertOne(ctx, record)
	metrics.ObserveDatabaseQueryDuration(metricsDBName, "insert", time.Since(start))

	if err != nil {
		metrics.IncDatabaseQuery(metricsDBName, "insert", "error")
		return errors.NonRetryable(errors.ErrPersistence, auditContext, err)
	}

	metrics.IncDatabaseQuery(metricsDBName, "insert", "success")
	return nil
}
