package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/agentmesh/core/envelope"
)

type mongoStateDoc struct {
	AgentID   string    `bson:"agent_id"`
	Version   int64     `bson:"version"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoDocumentStore is an alternate pluggable document-store driver: one
// collection per state type, each document keyed by agent_id, mirroring
// DocumentStore's relational layout.
type MongoDocumentStore[S any] struct {
	coll *mongo.Collection
}

// NewMongoDocumentStore creates a MongoDocumentStore backed by
// db.Collection(stateType).
func NewMongoDocumentStore[S any](db *mongo.Database, stateType string) *MongoDocumentStore[S] {
	return &MongoDocumentStore[S]{coll: db.Collection(stateType)}
}

// NewMongoDocumentStoreFor derives the collection name from S's
// fully-qualified type name.
func NewMongoDocumentStoreFor[S any](db *mongo.Database) *MongoDocumentStore[S] {
	var zero S
	return NewMongoDocumentStore[S](db, envelope.TypeNameOf(&zero))
}

func (m *MongoDocumentStore[S]) Load(ctx context.Context, id envelope.AgentID) (S, bool, error) {
	var zero S
	var doc mongoStateDoc

	err := m.coll.FindOne(ctx, bson.M{"agent_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("state: mongo load: %w", err)
	}

	out, err := decodeState[S](doc.Data)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (m *MongoDocumentStore[S]) Save(ctx context.Context, id envelope.AgentID, st S) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}

	_, err = m.coll.UpdateOne(ctx,
		bson.M{"agent_id": id.String()},
		bson.M{
			"$set": bson.M{"data": data, "updated_at": time.Now()},
			"$inc": bson.M{"version": int64(1)},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("state: mongo save: %w", err)
	}
	return nil
}

func (m *MongoDocumentStore[S]) Delete(ctx context.Context, id envelope.AgentID) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"agent_id": id.String()})
	if err != nil {
		return fmt.Errorf("state: mongo delete: %w", err)
	}
	return nil
}

func (m *MongoDocumentStore[S]) Exists(ctx context.Context, id envelope.AgentID) (bool, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{"agent_id": id.String()})
	if err != nil {
		return false, fmt.Errorf("state: mongo exists: %w", err)
	}
	return n > 0, nil
}

func (m *MongoDocumentStore[S]) SaveVersioned(ctx context.Context, id envelope.AgentID, st S, expectedVersion int64) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}

	if expectedVersion == 0 {
		doc := mongoStateDoc{AgentID: id.String(), Version: 1, Data: data, UpdatedAt: time.Now()}
		_, err := m.coll.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return ErrVersionConflict
		}
		if err != nil {
			return fmt.Errorf("state: mongo save versioned: %w", err)
		}
		return nil
	}

	res, err := m.coll.UpdateOne(ctx,
		bson.M{"agent_id": id.String(), "version": expectedVersion},
		bson.M{"$set": bson.M{"data": data, "updated_at": time.Now(), "version": expectedVersion + 1}},
	)
	if err != nil {
		return fmt.Errorf("state: mongo save versioned: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (m *MongoDocumentStore[S]) CurrentVersion(ctx context.Context, id envelope.AgentID) (int64, error) {
	var doc mongoStateDoc
	err := m.coll.FindOne(ctx, bson.M{"agent_id": id.String()},
		options.FindOne().SetProjection(bson.M{"version": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("state: mongo current version: %w", err)
	}
	return doc.Version, nil
}

var (
	_ Store[struct{}]          = (*MongoDocumentStore[struct{}])(nil)
	_ VersionedStore[struct{}] = (*MongoDocumentStore[struct{}])(nil)
)
