package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CapIot.readings/internal/config"
	"CapIot.readings/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

type readingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Value1    interface{}        `bson:"value1"`
	Value2    interface{}        `bson:"value2"`
	Value3    interface{}        `bson:"value3"`
	Value4    interface{}        `bson:"value4"`
	Value5    interface{}        `bson:"value5"`
	Timestamp string             `bson:"timestamp"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d readingDocument) toModel() models.Reading {
	reading := models.Reading{
		ID:        d.ID.Hex(),
		Timestamp: d.Timestamp,
		CreatedAt: d.CreatedAt.UTC(),
	}
	reading.SetValues([5]any{
		plainValue(d.Value1),
		plainValue(d.Value2),
		plainValue(d.Value3),
		plainValue(d.Value4),
		plainValue(d.Value5),
	})
	return reading
}

// plainValue converts decoded BSON containers into plain maps and slices.
func plainValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = plainValue(item)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}

// MongoRepository stores readings in the collection "<account>.readings".
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoRepository connects and pings the server before returning.
func NewMongoRepository(ctx context.Context, cfg config.MongoConfig, account string) (*MongoRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	// decode nested documents as maps so they encode back to plain JSON objects
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(account + ".readings"),
		now:        time.Now,
	}, nil
}

func (r *MongoRepository) Create(ctx context.Context, in models.NewReading) (*models.Reading, error) {
	doc := readingDocument{
		ID:        primitive.NewObjectID(),
		Value1:    in.Values[0],
		Value2:    in.Values[1],
		Value3:    in.Values[2],
		Value4:    in.Values[3],
		Value5:    in.Values[4],
		Timestamp: in.Timestamp,
		// BSON dates carry millisecond precision
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("error writing to MongoDB: %w", err)
	}
	reading := doc.toModel()
	return &reading, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Reading, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc readingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading from MongoDB: %w", err)
	}
	reading := doc.toModel()
	return &reading, nil
}

func (r *MongoRepository) Query(ctx context.Context, q Query) ([]models.Reading, error) {
	filter := bson.M{}
	if q.From != nil || q.To != nil {
		bounds := bson.M{}
		if q.From != nil {
			bounds["$gte"] = *q.From
		}
		if q.To != nil {
			bounds["$lte"] = *q.To
		}
		filter[models.FieldCreatedAt] = bounds
	}

	dir := 1
	if q.Descending {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{
		{Key: q.orderField(), Value: dir},
		{Key: "_id", Value: dir},
	})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying MongoDB: %w", err)
	}
	var docs []readingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding MongoDB results: %w", err)
	}

	readings := make([]models.Reading, 0, len(docs))
	for _, doc := range docs {
		readings = append(readings, doc.toModel())
	}
	return readings, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("error deleting from MongoDB: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
