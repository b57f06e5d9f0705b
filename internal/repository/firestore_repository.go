package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CapIot.readings/internal/config"
	"CapIot.readings/internal/models"
	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreRepository stores readings under <root>/<account>/<sub>.
type FirestoreRepository struct {
	client   *firestore.Client
	readings *firestore.CollectionRef
	// now replaces the server timestamp when set
	now func() time.Time
}

func NewFirestoreRepository(ctx context.Context, cfg config.FirestoreConfig, account string) (*FirestoreRepository, error) {
	creds, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, err
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return newFirestoreRepository(client, cfg, account), nil
}

func newFirestoreRepository(client *firestore.Client, cfg config.FirestoreConfig, account string) *FirestoreRepository {
	return &FirestoreRepository{
		client:   client,
		readings: client.Collection(cfg.RootCollection).Doc(account).Collection(cfg.SubCollection),
	}
}

// serviceAccountJSON builds the credential document the Google client libraries expect.
func serviceAccountJSON(cfg config.FirestoreConfig) ([]byte, error) {
	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  cfg.PrivateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding service account: %w", err)
	}
	return creds, nil
}

func (r *FirestoreRepository) Create(ctx context.Context, in models.NewReading) (*models.Reading, error) {
	ref := r.readings.NewDoc()
	data := map[string]interface{}{
		models.FieldTimestamp: in.Timestamp,
		models.FieldCreatedAt: firestore.ServerTimestamp,
	}
	var createdAt time.Time
	if r.now != nil {
		createdAt = r.now().UTC().Truncate(time.Microsecond)
		data[models.FieldCreatedAt] = createdAt
	}
	for i, field := range models.RequiredFields {
		data[field] = in.Values[i]
	}

	wr, err := ref.Create(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("error writing to Firestore: %w", err)
	}
	if createdAt.IsZero() {
		createdAt = wr.UpdateTime.UTC()
	}

	reading := models.Reading{
		ID:        ref.ID,
		Timestamp: in.Timestamp,
		CreatedAt: createdAt,
	}
	reading.SetValues(in.Values)
	return &reading, nil
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*models.Reading, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, ErrNotFound
	}

	snap, err := r.readings.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading from Firestore: %w", err)
	}
	reading := readingFromSnapshot(snap)
	return &reading, nil
}

func (r *FirestoreRepository) Query(ctx context.Context, q Query) ([]models.Reading, error) {
	if q.inverted() {
		return []models.Reading{}, nil
	}
	fq := r.readings.Query
	if q.From != nil {
		fq = fq.Where(models.FieldCreatedAt, ">=", *q.From)
	}
	if q.To != nil {
		fq = fq.Where(models.FieldCreatedAt, "<=", *q.To)
	}

	dir := firestore.Asc
	if q.Descending {
		dir = firestore.Desc
	}
	fq = fq.OrderBy(q.orderField(), dir)
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	snaps, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("error querying Firestore: %w", err)
	}

	readings := make([]models.Reading, 0, len(snaps))
	for _, snap := range snaps {
		readings = append(readings, readingFromSnapshot(snap))
	}
	return readings, nil
}

func (r *FirestoreRepository) Delete(ctx context.Context, id string) error {
	if id == "" || strings.Contains(id, "/") {
		return ErrNotFound
	}

	if _, err := r.readings.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting from Firestore: %w", err)
	}
	return nil
}

func (r *FirestoreRepository) Close(context.Context) error {
	return r.client.Close()
}

func readingFromSnapshot(snap *firestore.DocumentSnapshot) models.Reading {
	data := snap.Data()
	reading := models.Reading{
		ID:        snap.Ref.ID,
		CreatedAt: snap.CreateTime.UTC(),
	}
	if ts, ok := data[models.FieldTimestamp].(string); ok {
		reading.Timestamp = ts
	}
	if created, ok := data[models.FieldCreatedAt].(time.Time); ok {
		reading.CreatedAt = created.UTC()
	}

	var values [5]any
	for i, field := range models.RequiredFields {
		values[i] = data[field]
	}
	reading.SetValues(values)
	return reading
}
