// internal/repository/influxDB_repository.go

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CapIot.readings/internal/config"
	"CapIot.readings/internal/models"
	"github.com/google/uuid"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"go.uber.org/zap"
)

const readingsMeasurement = "readings"

// InfluxDBRepository keeps readings as points in a bucket named after the account.
// Each value is written as a JSON-encoded string field so arbitrary values survive.
type InfluxDBRepository struct {
	client influxdb2.Client
	org    string
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

// NewInfluxDBRepository connects, checks server health and makes sure the account bucket exists.
func NewInfluxDBRepository(ctx context.Context, cfg config.InfluxConfig, account string, logger *zap.Logger) (*InfluxDBRepository, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return nil, fmt.Errorf("InfluxDB health check failed: %s", msg)
	}

	repo := &InfluxDBRepository{
		client: client,
		org:    cfg.Org,
		bucket: account,
		logger: logger,
		now:    time.Now,
	}

	exists, err := repo.BucketExists(ctx, account)
	if err != nil {
		client.Close()
		return nil, err
	}
	if !exists {
		logger.Info("bucket does not exist, creating it", zap.String("bucket", account))
		if err := repo.CreateBucket(ctx, account); err != nil {
			client.Close()
			return nil, fmt.Errorf("error creating bucket '%s': %w", account, err)
		}
	}
	return repo, nil
}

// BucketExists checks if a bucket exists in InfluxDB.
func (r *InfluxDBRepository) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := r.client.BucketsAPI().FindBucketByName(ctx, name)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, fmt.Errorf("error checking bucket existence: %w", err)
	}
	return true, nil
}

// CreateBucket creates a new bucket in the configured organization.
func (r *InfluxDBRepository) CreateBucket(ctx context.Context, name string) error {
	org, err := r.client.OrganizationsAPI().FindOrganizationByName(ctx, r.org)
	if err != nil {
		return fmt.Errorf("error finding organization '%s': %w", r.org, err)
	}
	if org == nil {
		return fmt.Errorf("organization '%s' not found", r.org)
	}

	if _, err := r.client.BucketsAPI().CreateBucketWithName(ctx, org, name); err != nil {
		return fmt.Errorf("error creating bucket: %w", err)
	}
	r.logger.Info("bucket created", zap.String("bucket", name))
	return nil
}

func (r *InfluxDBRepository) Create(ctx context.Context, in models.NewReading) (*models.Reading, error) {
	reading := models.Reading{
		ID:        uuid.NewString(),
		Timestamp: in.Timestamp,
		CreatedAt: r.now().UTC(),
	}
	reading.SetValues(in.Values)

	fields := map[string]interface{}{models.FieldTimestamp: reading.Timestamp}
	for i, value := range in.Values {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s: %w", models.RequiredFields[i], err)
		}
		fields[models.RequiredFields[i]] = string(encoded)
	}

	p := influxdb2.NewPoint(
		readingsMeasurement,
		map[string]string{models.FieldID: reading.ID},
		fields,
		reading.CreatedAt,
	)
	if err := r.client.WriteAPIBlocking(r.org, r.bucket).WritePoint(ctx, p); err != nil {
		return nil, fmt.Errorf("error writing to InfluxDB: %w", err)
	}
	r.logger.Debug("reading written to InfluxDB", zap.String("bucket", r.bucket), zap.String("id", reading.ID))
	return &reading, nil
}

func (r *InfluxDBRepository) Get(ctx context.Context, id string) (*models.Reading, error) {
	// ids are generated here, so anything that is not a uuid cannot exist
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	readings, err := r.run(ctx, buildGetFlux(r.bucket, id))
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrNotFound
	}
	return &readings[0], nil
}

func (r *InfluxDBRepository) Query(ctx context.Context, q Query) ([]models.Reading, error) {
	// flux rejects a range whose start is after its stop
	if q.inverted() {
		return []models.Reading{}, nil
	}
	return r.run(ctx, buildQueryFlux(r.bucket, q))
}

func (r *InfluxDBRepository) Delete(ctx context.Context, id string) error {
	reading, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	predicate := fmt.Sprintf(`_measurement="%s" AND %s="%s"`, readingsMeasurement, models.FieldID, id)
	start := reading.CreatedAt.Add(-time.Second)
	stop := reading.CreatedAt.Add(time.Second)
	if err := r.client.DeleteAPI().DeleteWithName(ctx, r.org, r.bucket, start, stop, predicate); err != nil {
		return fmt.Errorf("error deleting from InfluxDB: %w", err)
	}
	return nil
}

func (r *InfluxDBRepository) Close(context.Context) error {
	r.client.Close()
	return nil
}

func (r *InfluxDBRepository) run(ctx context.Context, flux string) ([]models.Reading, error) {
	r.logger.Debug("executing InfluxDB query", zap.String("flux", flux))
	result, err := r.client.QueryAPI(r.org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	readings := []models.Reading{}
	for result.Next() {
		reading, err := readingFromRecord(result.Record())
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query error: %w", result.Err())
	}
	return readings, nil
}

func readingFromRecord(record *query.FluxRecord) (models.Reading, error) {
	reading := models.Reading{CreatedAt: record.Time().UTC()}
	if id, ok := record.ValueByKey(models.FieldID).(string); ok {
		reading.ID = id
	}
	if ts, ok := record.ValueByKey(models.FieldTimestamp).(string); ok {
		reading.Timestamp = ts
	}

	var values [5]any
	for i, field := range models.RequiredFields {
		raw, ok := record.ValueByKey(field).(string)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), &values[i]); err != nil {
			return models.Reading{}, fmt.Errorf("error decoding %s of reading %s: %w", field, reading.ID, err)
		}
	}
	reading.SetValues(values)
	return reading, nil
}

func buildGetFlux(bucket, id string) string {
	return fmt.Sprintf(`from(bucket: %q)
	|> range(start: 0)
	|> filter(fn: (r) => r["_measurement"] == %q and r[%q] == %q)
	|> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
	|> limit(n: 1)`, bucket, readingsMeasurement, models.FieldID, id)
}

func buildQueryFlux(bucket string, q Query) string {
	rangeClause := "range(start: 0)"
	if q.From != nil || q.To != nil {
		start := "1970-01-01T00:00:00Z"
		if q.From != nil {
			start = q.From.UTC().Format(time.RFC3339Nano)
		}
		// flux stop is exclusive, the query bound is not
		stop := "now()"
		if q.To != nil {
			stop = q.To.Add(time.Nanosecond).UTC().Format(time.RFC3339Nano)
		}
		rangeClause = fmt.Sprintf("range(start: %s, stop: %s)", start, stop)
	}

	sortColumn := "_time"
	if q.orderField() == models.FieldTimestamp {
		sortColumn = models.FieldTimestamp
	}

	flux := fmt.Sprintf(`from(bucket: %q)
	|> %s
	|> filter(fn: (r) => r["_measurement"] == %q)
	|> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
	|> group()
	|> sort(columns: [%q], desc: %t)`, bucket, rangeClause, readingsMeasurement, sortColumn, q.Descending)
	if q.Limit > 0 {
		flux += fmt.Sprintf("\n\t|> limit(n: %d)", q.Limit)
	}
	return flux
}
