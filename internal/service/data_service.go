package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CapIot.readings/internal/models"
	"CapIot.readings/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultListLimit  = 50
	DefaultRangeLimit = 100
)

// SortableFields lists the fields GET /data may order by.
var SortableFields = []string{models.FieldCreatedAt, models.FieldTimestamp}

// ErrNotFound is returned when a reading id does not exist.
var ErrNotFound = repository.ErrNotFound

// ListParams are the raw query parameters of a list request.
type ListParams struct {
	Limit   string
	OrderBy string
	Order   string
}

// RangeParams are the raw query parameters of a date-range request.
type RangeParams struct {
	StartDate string
	EndDate   string
	Limit     string
}

// RangeResult carries the matched readings and the effective inclusive bounds.
type RangeResult struct {
	Readings []models.Reading
	Start    time.Time
	End      time.Time
}

// DataService handles the business logic for readings.
type DataService struct {
	repo   repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDataService creates a new DataService.
func NewDataService(repo repository.Repository, logger *zap.Logger) *DataService {
	return &DataService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// SaveReading validates the decoded body and persists a new reading.
// A key counts as supplied when present in the body, even with a null value.
func (s *DataService) SaveReading(ctx context.Context, body map[string]any) (*models.Reading, error) {
	var (
		in      models.NewReading
		missing []string
	)
	for i, field := range models.RequiredFields {
		value, ok := body[field]
		if !ok {
			missing = append(missing, field)
			continue
		}
		in.Values[i] = value
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message:  "Missing required fields",
			Required: models.RequiredFields,
			Missing:  missing,
		}
	}

	in.Timestamp = FormatDisplayTimestamp(s.now())
	reading, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("error saving reading: %w", err)
	}
	s.logger.Info("reading saved", zap.String("id", reading.ID), zap.String("timestamp", reading.Timestamp))
	return reading, nil
}

// ListReadings returns readings ordered and limited as requested.
func (s *DataService) ListReadings(ctx context.Context, p ListParams) ([]models.Reading, error) {
	limit, err := parseLimit(p.Limit, DefaultListLimit)
	if err != nil {
		return nil, err
	}
	orderBy, err := parseOrderBy(p.OrderBy)
	if err != nil {
		return nil, err
	}
	descending, err := parseOrder(p.Order)
	if err != nil {
		return nil, err
	}

	readings, err := s.repo.Query(ctx, repository.Query{
		OrderBy:    orderBy,
		Descending: descending,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("error querying readings: %w", err)
	}
	return readings, nil
}

// GetReading returns the reading with the given id or ErrNotFound.
func (s *DataService) GetReading(ctx context.Context, id string) (*models.Reading, error) {
	reading, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching reading %s: %w", id, err)
	}
	return reading, nil
}

// LatestReading returns the most recently created reading, or nil when there is none.
func (s *DataService) LatestReading(ctx context.Context) (*models.Reading, error) {
	readings, err := s.repo.Query(ctx, repository.Query{
		OrderBy:    models.FieldCreatedAt,
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("error querying latest reading: %w", err)
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

// ReadingsInRange returns readings created between the start of startDate and the
// last millisecond of endDate, newest first.
func (s *DataService) ReadingsInRange(ctx context.Context, p RangeParams) (*RangeResult, error) {
	if p.StartDate == "" || p.EndDate == "" {
		return nil, &ValidationError{
			Message:  "startDate and endDate are required",
			Required: []string{"startDate", "endDate"},
			Format:   DateFormat,
		}
	}

	start, err := ParseDate(p.StartDate)
	if err != nil {
		return nil, &ParameterError{Param: "startDate", Value: p.StartDate, Reason: err.Error()}
	}
	end, err := ParseDate(p.EndDate)
	if err != nil {
		return nil, &ParameterError{Param: "endDate", Value: p.EndDate, Reason: err.Error()}
	}
	// an inverted range is valid and simply matches nothing
	end = EndOfDay(end)

	limit, err := parseLimit(p.Limit, DefaultRangeLimit)
	if err != nil {
		return nil, err
	}

	readings, err := s.repo.Query(ctx, repository.Query{
		OrderBy:    models.FieldCreatedAt,
		Descending: true,
		Limit:      limit,
		From:       &start,
		To:         &end,
	})
	if err != nil {
		return nil, fmt.Errorf("error querying readings in range: %w", err)
	}
	return &RangeResult{Readings: readings, Start: start, End: end}, nil
}

// DeleteReading removes a reading after checking that it exists.
func (s *DataService) DeleteReading(ctx context.Context, id string) error {
	if _, err := s.GetReading(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		// lost a race with another delete
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting reading %s: %w", id, err)
	}
	s.logger.Info("reading deleted", zap.String("id", id))
	return nil
}

func parseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, &ParameterError{Param: "limit", Value: raw, Reason: "must be a positive integer"}
	}
	return limit, nil
}

func parseOrderBy(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.FieldCreatedAt, nil
	}
	for _, field := range SortableFields {
		if raw == field {
			return field, nil
		}
	}
	return "", &ParameterError{
		Param:  "orderBy",
		Value:  raw,
		Reason: "must be one of " + strings.Join(SortableFields, ", "),
	}
}

func parseOrder(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "desc":
		return true, nil
	case "asc":
		return false, nil
	default:
		return false, &ParameterError{Param: "order", Value: raw, Reason: "must be asc or desc"}
	}
}
